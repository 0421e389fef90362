package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/crypto/encoding"
	tmbytes "github.com/tendermint/bridge/libs/bytes"
)

// Relayer is an off-chain party allowed to attest to source chain
// transactions.
type Relayer struct {
	Address crypto.Address `json:"address"`
	PubKey  crypto.PubKey  `json:"pub_key"`
}

// NewRelayer returns a relayer whose address is derived from pubKey.
func NewRelayer(pubKey crypto.PubKey) *Relayer {
	return &Relayer{
		Address: pubKey.Address(),
		PubKey:  pubKey,
	}
}

// ValidateBasic performs basic validation.
func (r *Relayer) ValidateBasic() error {
	if r == nil {
		return errors.New("nil relayer")
	}
	if r.PubKey == nil {
		return errors.New("relayer does not have a public key")
	}
	if !bytes.Equal(r.Address, r.PubKey.Address()) {
		return fmt.Errorf("relayer address %v does not match its public key", r.Address)
	}
	return nil
}

func (r *Relayer) String() string {
	if r == nil {
		return "nil-Relayer"
	}
	return fmt.Sprintf("Relayer{%v}", r.Address)
}

type relayerJSON struct {
	Address crypto.Address     `json:"address"`
	PubKey  encoding.PublicKey `json:"pub_key"`
}

// MarshalJSON encodes the public key in its typed wire form.
func (r *Relayer) MarshalJSON() ([]byte, error) {
	pk, err := encoding.PubKeyToWire(r.PubKey)
	if err != nil {
		return nil, err
	}
	return json.Marshal(relayerJSON{Address: r.Address, PubKey: pk})
}

// UnmarshalJSON decodes a relayer. A missing address is derived from the key.
func (r *Relayer) UnmarshalJSON(data []byte) error {
	var v relayerJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	pk, err := encoding.PubKeyFromWire(v.PubKey)
	if err != nil {
		return err
	}
	r.PubKey = pk
	r.Address = v.Address
	if len(r.Address) == 0 {
		r.Address = pk.Address()
	}
	return nil
}

// RelayerSignature is one relayer's signature over a transaction's sign bytes.
type RelayerSignature struct {
	Relayer   crypto.Address   `json:"relayer"`
	Signature tmbytes.HexBytes `json:"signature"`
}

// RelayerSet is an ordered set of relayers together with the number of
// distinct relayers that must sign before a transaction is authorized.
//
// A RelayerSet is immutable once created. Rotating relayers means replacing
// the set.
type RelayerSet struct {
	Relayers  []*Relayer `json:"relayers"`
	Threshold int        `json:"threshold"`
}

// NewRelayerSet returns a set over relayers. It fails with ErrInvalidThreshold
// when threshold is zero or larger than the number of relayers, and rejects
// duplicates.
func NewRelayerSet(relayers []*Relayer, threshold int) (*RelayerSet, error) {
	rs := &RelayerSet{
		Relayers:  make([]*Relayer, len(relayers)),
		Threshold: threshold,
	}
	copy(rs.Relayers, relayers)
	if err := rs.ValidateBasic(); err != nil {
		return nil, err
	}
	return rs, nil
}

// ValidateBasic checks the threshold bounds and relayer uniqueness.
func (rs *RelayerSet) ValidateBasic() error {
	if rs == nil {
		return errors.New("nil relayer set")
	}
	if rs.Threshold < 1 || rs.Threshold > len(rs.Relayers) {
		return fmt.Errorf("%w: threshold %d with %d relayers", ErrInvalidThreshold,
			rs.Threshold, len(rs.Relayers))
	}
	seen := make(map[string]struct{}, len(rs.Relayers))
	for idx, r := range rs.Relayers {
		if err := r.ValidateBasic(); err != nil {
			return fmt.Errorf("invalid relayer #%d: %w", idx, err)
		}
		key := string(r.Address)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate relayer %v", r.Address)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Size returns the number of relayers.
func (rs *RelayerSet) Size() int {
	return len(rs.Relayers)
}

// HasAddress reports whether address belongs to a relayer of the set.
func (rs *RelayerSet) HasAddress(address []byte) bool {
	idx, _ := rs.GetByAddress(address)
	return idx != -1
}

// GetByAddress returns the index and relayer for address, or -1 and nil.
func (rs *RelayerSet) GetByAddress(address []byte) (int, *Relayer) {
	for idx, r := range rs.Relayers {
		if bytes.Equal(r.Address, address) {
			return idx, r
		}
	}
	return -1, nil
}

// Authorize checks that at least Threshold distinct relayers signed
// signBytes. Signatures from unknown addresses or that fail verification are
// skipped, and a relayer that signs more than once is counted once.
func (rs *RelayerSet) Authorize(signBytes []byte, sigs []RelayerSignature) error {
	var (
		tallied int
		seen    = make(map[int]struct{}, len(sigs))
	)

	for _, sig := range sigs {
		idx, r := rs.GetByAddress(sig.Relayer)
		if r == nil {
			continue
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		if !r.PubKey.VerifySignature(signBytes, sig.Signature) {
			continue
		}
		seen[idx] = struct{}{}

		tallied++
		if tallied >= rs.Threshold {
			return nil
		}
	}

	return fmt.Errorf("%w: %d of %d required relayer signatures", ErrUnauthorized, tallied, rs.Threshold)
}

// Bytes returns the canonical encoding of the set, used to persist it.
func (rs *RelayerSet) Bytes() []byte {
	e := newCanonicalEncoder(domainRelayers)
	e.writeUint64(uint64(rs.Threshold))
	e.writeUint64(uint64(len(rs.Relayers)))
	for _, r := range rs.Relayers {
		e.writeString(r.PubKey.Type())
		e.writeBytes(r.PubKey.Bytes())
	}
	return e.Bytes()
}

// RelayerSetFromBytes decodes a set written by Bytes.
func RelayerSetFromBytes(bz []byte) (*RelayerSet, error) {
	d := newCanonicalDecoder(bz, domainRelayers)
	threshold := d.readUint64()
	n := d.readUint64()
	if d.err == nil && n > uint64(len(d.bz)) {
		return nil, errShortBuffer
	}
	relayers := make([]*Relayer, 0, n)
	for i := uint64(0); i < n && d.err == nil; i++ {
		keyType := d.readString()
		keyBytes := d.readBytes()
		if d.err != nil {
			break
		}
		pk, err := encoding.PubKeyFromTypeAndBytes(keyType, keyBytes)
		if err != nil {
			return nil, err
		}
		relayers = append(relayers, NewRelayer(pk))
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return NewRelayerSet(relayers, int(threshold))
}

func (rs *RelayerSet) String() string {
	if rs == nil {
		return "nil-RelayerSet"
	}
	addrs := make([]string, len(rs.Relayers))
	for i, r := range rs.Relayers {
		addrs[i] = r.Address.String()
	}
	return fmt.Sprintf("RelayerSet{%d of [%s]}", rs.Threshold, strings.Join(addrs, " "))
}
