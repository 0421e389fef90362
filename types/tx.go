package types

import (
	"errors"
	"fmt"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/crypto/merkle"
	"github.com/tendermint/bridge/crypto/tmhash"
	tmbytes "github.com/tendermint/bridge/libs/bytes"
)

// CrossChainTx describes a transfer observed on a source chain that is to be
// completed on this one. It is what relayers sign and what the Merkle proof
// proves inclusion of.
type CrossChainTx struct {
	Recipient     crypto.Address   `json:"recipient"`
	Amount        uint64           `json:"amount"`
	Denom         string           `json:"denom"`
	SourceChainID uint64           `json:"source_chain_id"`
	Nonce         uint64           `json:"nonce"`
	BlockHash     tmbytes.HexBytes `json:"block_hash"`
}

// ValidateBasic checks the shape of the transaction. Amount is not checked
// here; a zero amount is a balance error reported by the caller.
func (tx *CrossChainTx) ValidateBasic() error {
	if tx == nil {
		return errors.New("nil transaction")
	}
	if len(tx.Recipient) != crypto.AddressSize {
		return fmt.Errorf("expected recipient size to be %d bytes, got %d bytes",
			crypto.AddressSize, len(tx.Recipient))
	}
	if err := ValidateDenom(tx.Denom); err != nil {
		return err
	}
	if len(tx.BlockHash) != tmhash.Size {
		return fmt.Errorf("expected block hash size to be %d bytes, got %d bytes",
			tmhash.Size, len(tx.BlockHash))
	}
	return nil
}

// Bytes returns the canonical encoding of the transaction.
func (tx *CrossChainTx) Bytes() []byte {
	e := newCanonicalEncoder(domainTx)
	e.writeBytes(tx.Recipient)
	e.writeUint64(tx.Amount)
	e.writeString(tx.Denom)
	e.writeUint64(tx.SourceChainID)
	e.writeUint64(tx.Nonce)
	e.writeBytes(tx.BlockHash)
	return e.Bytes()
}

// LeafBytes returns the item a Merkle leaf of the source block commits to.
// BlockHash is left out since the block hash itself covers the leaves.
func (tx *CrossChainTx) LeafBytes() []byte {
	e := newCanonicalEncoder(domainLeaf)
	e.writeBytes(tx.Recipient)
	e.writeUint64(tx.Amount)
	e.writeString(tx.Denom)
	e.writeUint64(tx.SourceChainID)
	e.writeUint64(tx.Nonce)
	return e.Bytes()
}

// LeafHash is the Merkle leaf digest of the transaction.
func (tx *CrossChainTx) LeafHash() []byte {
	return merkle.LeafHash(tx.LeafBytes())
}

// SignBytes returns the bytes relayers sign to authorize tx at the bridge
// instance identified by instanceID. Binding the instance keeps a signature
// for one vault from being replayed against another.
func (tx *CrossChainTx) SignBytes(instanceID string) []byte {
	e := newCanonicalEncoder(domainSign)
	e.writeString(instanceID)
	e.writeBytes(tx.Bytes())
	return e.Bytes()
}

// ReplayKey identifies tx in a replay ledger.
func (tx *CrossChainTx) ReplayKey() NonceKey {
	return NonceKey{SourceChainID: tx.SourceChainID, Nonce: tx.Nonce}
}

func (tx *CrossChainTx) String() string {
	return fmt.Sprintf("CrossChainTx{%d%s -> %v chain:%d nonce:%d}",
		tx.Amount, tx.Denom, tx.Recipient, tx.SourceChainID, tx.Nonce)
}

// TxFromBytes decodes a transaction written by Bytes.
func TxFromBytes(bz []byte) (*CrossChainTx, error) {
	d := newCanonicalDecoder(bz, domainTx)
	tx := &CrossChainTx{
		Recipient:     d.readBytes(),
		Amount:        d.readUint64(),
		Denom:         d.readString(),
		SourceChainID: d.readUint64(),
		Nonce:         d.readUint64(),
		BlockHash:     d.readBytes(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return tx, nil
}

// NonceKey is one entry of a replay ledger.
type NonceKey struct {
	SourceChainID uint64 `json:"source_chain_id"`
	Nonce         uint64 `json:"nonce"`
}

func (k NonceKey) String() string {
	return fmt.Sprintf("%d/%d", k.SourceChainID, k.Nonce)
}
