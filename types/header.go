package types

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/tendermint/bridge/crypto/tmhash"
	tmbytes "github.com/tendermint/bridge/libs/bytes"
)

// BlockHeader is the part of a remote chain's block that the light client
// tracks. Hash commits to every other field and is fixed at construction.
type BlockHeader struct {
	ParentHash tmbytes.HexBytes `json:"parent_hash"`
	StateRoot  tmbytes.HexBytes `json:"state_root"`
	TxRoot     tmbytes.HexBytes `json:"tx_root"`
	Number     uint64           `json:"number"`
	Time       time.Time        `json:"time"`

	Hash tmbytes.HexBytes `json:"hash"`
}

// NewBlockHeader returns a header with its hash computed. Time is truncated to
// the precision the canonical encoding keeps so that a header hashes the same
// before and after a round trip through storage.
func NewBlockHeader(parentHash, stateRoot, txRoot []byte, number uint64, t time.Time) *BlockHeader {
	h := &BlockHeader{
		ParentHash: tmbytes.HexBytes(parentHash).Copy(),
		StateRoot:  tmbytes.HexBytes(stateRoot).Copy(),
		TxRoot:     tmbytes.HexBytes(txRoot).Copy(),
		Number:     number,
		Time:       time.Unix(0, t.UnixNano()).UTC(),
	}
	h.Hash = h.ComputeHash()
	return h
}

// Bytes returns the canonical encoding of every field except Hash. It is both
// the hash preimage and the stored form of the header.
func (h *BlockHeader) Bytes() []byte {
	e := newCanonicalEncoder(domainHeader)
	e.writeBytes(h.ParentHash)
	e.writeBytes(h.StateRoot)
	e.writeBytes(h.TxRoot)
	e.writeUint64(h.Number)
	e.writeTime(h.Time)
	return e.Bytes()
}

// ComputeHash hashes the canonical encoding of the header.
func (h *BlockHeader) ComputeHash() tmbytes.HexBytes {
	return tmhash.Sum(h.Bytes())
}

// ValidateBasic performs checks that do not depend on any other header.
func (h *BlockHeader) ValidateBasic() error {
	if h == nil {
		return errors.New("nil header")
	}
	if len(h.Hash) != tmhash.Size {
		return fmt.Errorf("expected hash size to be %d bytes, got %d bytes", tmhash.Size, len(h.Hash))
	}
	if len(h.TxRoot) != tmhash.Size {
		return fmt.Errorf("expected tx root size to be %d bytes, got %d bytes", tmhash.Size, len(h.TxRoot))
	}
	if len(h.ParentHash) != 0 && len(h.ParentHash) != tmhash.Size {
		return fmt.Errorf("expected parent hash size to be %d bytes, got %d bytes",
			tmhash.Size, len(h.ParentHash))
	}
	if computed := h.ComputeHash(); !bytes.Equal(computed, h.Hash) {
		return fmt.Errorf("header hash %X does not match computed hash %X", []byte(h.Hash), []byte(computed))
	}
	return nil
}

// String returns a short description of the header.
func (h *BlockHeader) String() string {
	if h == nil {
		return "nil-BlockHeader"
	}
	return fmt.Sprintf("BlockHeader{#%d %v parent:%v}", h.Number, h.Hash.ShortString(),
		h.ParentHash.ShortString())
}

// HeaderFromBytes decodes a header written by Bytes and recomputes its hash.
func HeaderFromBytes(bz []byte) (*BlockHeader, error) {
	d := newCanonicalDecoder(bz, domainHeader)
	h := &BlockHeader{
		ParentHash: d.readBytes(),
		StateRoot:  d.readBytes(),
		TxRoot:     d.readBytes(),
		Number:     d.readUint64(),
		Time:       d.readTime(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	h.Hash = h.ComputeHash()
	return h, nil
}
