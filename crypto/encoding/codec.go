package encoding

import (
	"fmt"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/crypto/ed25519"
	tmbytes "github.com/tendermint/bridge/libs/bytes"
)

// PublicKey is the serializable form of a crypto.PubKey: a key type tag and
// the raw key bytes. It is used in JSON documents and persisted state.
type PublicKey struct {
	Type  string           `json:"type" toml:"type"`
	Value tmbytes.HexBytes `json:"value" toml:"value"`
}

// PubKeyToWire takes crypto.PubKey and transforms it to a PublicKey.
func PubKeyToWire(k crypto.PubKey) (PublicKey, error) {
	switch k := k.(type) {
	case ed25519.PubKey:
		return PublicKey{Type: ed25519.KeyType, Value: tmbytes.HexBytes(k).Copy()}, nil
	default:
		return PublicKey{}, fmt.Errorf("towire: key type %v is not supported", k)
	}
}

// PubKeyFromWire takes a PublicKey and transforms it to a crypto.PubKey.
func PubKeyFromWire(k PublicKey) (crypto.PubKey, error) {
	switch k.Type {
	case ed25519.KeyType:
		if len(k.Value) != ed25519.PubKeySize {
			return nil, fmt.Errorf("invalid size for PubKeyEd25519. Got %d, expected %d",
				len(k.Value), ed25519.PubKeySize)
		}
		pk := make(ed25519.PubKey, ed25519.PubKeySize)
		copy(pk, k.Value)
		return pk, nil
	default:
		return nil, fmt.Errorf("fromwire: key type %q is not supported", k.Type)
	}
}

// PubKeyFromTypeAndBytes builds a crypto.PubKey from a type tag and raw bytes.
func PubKeyFromTypeAndBytes(keyType string, bz []byte) (crypto.PubKey, error) {
	return PubKeyFromWire(PublicKey{Type: keyType, Value: bz})
}
