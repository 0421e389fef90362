package types

import (
	"encoding/json"
	"fmt"

	"github.com/tendermint/bridge/crypto"
)

// Reserved event types (alphabetically sorted).
const (
	EventTypeTokenBurned   = "TokenBurned"
	EventTypeTokenLocked   = "TokenLocked"
	EventTypeTokenMinted   = "TokenMinted"
	EventTypeTokenReleased = "TokenReleased"
)

// Event is emitted by the bridge after a successful state transition.
// Relayers observe outbound events to build transactions on the other chain.
type Event interface {
	EventType() string
}

// EventTokenLocked is emitted by Vault.Lock.
type EventTokenLocked struct {
	Sender      crypto.Address `json:"sender"`
	Recipient   crypto.Address `json:"recipient"`
	Amount      uint64         `json:"amount"`
	Denom       string         `json:"denom"`
	DestChainID uint64         `json:"dest_chain_id"`
	Nonce       uint64         `json:"nonce"`
}

func (EventTokenLocked) EventType() string { return EventTypeTokenLocked }

// EventTokenReleased is emitted by Vault.Release.
type EventTokenReleased struct {
	Recipient     crypto.Address `json:"recipient"`
	Amount        uint64         `json:"amount"`
	Denom         string         `json:"denom"`
	SourceChainID uint64         `json:"source_chain_id"`
	Nonce         uint64         `json:"nonce"`
}

func (EventTokenReleased) EventType() string { return EventTypeTokenReleased }

// EventTokenMinted is emitted by MintController.MintWrapped.
type EventTokenMinted struct {
	Recipient     crypto.Address `json:"recipient"`
	Amount        uint64         `json:"amount"`
	Denom         string         `json:"denom"`
	SourceChainID uint64         `json:"source_chain_id"`
	Nonce         uint64         `json:"nonce"`
}

func (EventTokenMinted) EventType() string { return EventTypeTokenMinted }

// EventTokenBurned is emitted by MintController.BurnWrapped.
type EventTokenBurned struct {
	Sender      crypto.Address `json:"sender"`
	Amount      uint64         `json:"amount"`
	DestChainID uint64         `json:"dest_chain_id"`
	Nonce       uint64         `json:"nonce"`
}

func (EventTokenBurned) EventType() string { return EventTypeTokenBurned }

// EventNonce returns the nonce carried by ev.
func EventNonce(ev Event) uint64 {
	switch ev := ev.(type) {
	case EventTokenLocked:
		return ev.Nonce
	case EventTokenReleased:
		return ev.Nonce
	case EventTokenMinted:
		return ev.Nonce
	case EventTokenBurned:
		return ev.Nonce
	}
	return 0
}

// MarshalEvent returns the JSON encoding of ev.
func MarshalEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

// UnmarshalEvent decodes the JSON payload of an event of the given type.
func UnmarshalEvent(eventType string, data []byte) (Event, error) {
	switch eventType {
	case EventTypeTokenLocked:
		var ev EventTokenLocked
		err := json.Unmarshal(data, &ev)
		return ev, err
	case EventTypeTokenReleased:
		var ev EventTokenReleased
		err := json.Unmarshal(data, &ev)
		return ev, err
	case EventTypeTokenMinted:
		var ev EventTokenMinted
		err := json.Unmarshal(data, &ev)
		return ev, err
	case EventTypeTokenBurned:
		var ev EventTokenBurned
		err := json.Unmarshal(data, &ev)
		return ev, err
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}
