package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/crypto/merkle"
	"github.com/tendermint/bridge/crypto/tmhash"
)

func makeTx(nonce uint64) *CrossChainTx {
	return &CrossChainTx{
		Recipient:     crypto.AddressHash([]byte("recipient")),
		Amount:        500,
		Denom:         "uatom",
		SourceChainID: 1,
		Nonce:         nonce,
		BlockHash:     tmhash.Sum([]byte("block")),
	}
}

func TestCrossChainTxValidateBasic(t *testing.T) {
	assert.NoError(t, makeTx(1).ValidateBasic())

	tx := makeTx(1)
	tx.Recipient = []byte{1, 2}
	assert.Error(t, tx.ValidateBasic())

	tx = makeTx(1)
	tx.Denom = ""
	assert.Error(t, tx.ValidateBasic())

	tx = makeTx(1)
	tx.BlockHash = nil
	assert.Error(t, tx.ValidateBasic())

	tx = makeTx(1)
	tx.Amount = 0
	assert.NoError(t, tx.ValidateBasic())
}

func TestCrossChainTxBytes(t *testing.T) {
	tx := makeTx(3)

	decoded, err := TxFromBytes(tx.Bytes())
	require.NoError(t, err)
	assert.Equal(t, tx, decoded)

	other := makeTx(4)
	assert.NotEqual(t, tx.Bytes(), other.Bytes())
	assert.NotEqual(t, tx.LeafHash(), other.LeafHash())
	assert.Equal(t, merkle.LeafHash(tx.LeafBytes()), tx.LeafHash())

	// The leaf does not depend on the block it is included in.
	moved := makeTx(3)
	moved.BlockHash = tmhash.Sum([]byte("other block"))
	assert.Equal(t, tx.LeafHash(), moved.LeafHash())
	assert.NotEqual(t, tx.Bytes(), moved.Bytes())
}

func TestCrossChainTxSignBytesBindInstance(t *testing.T) {
	tx := makeTx(1)
	assert.Equal(t, tx.SignBytes("vault-a"), tx.SignBytes("vault-a"))
	assert.NotEqual(t, tx.SignBytes("vault-a"), tx.SignBytes("vault-b"))
	assert.NotEqual(t, tx.Bytes(), tx.SignBytes(""))
}

func TestCrossChainTxReplayKey(t *testing.T) {
	tx := makeTx(9)
	assert.Equal(t, NonceKey{SourceChainID: 1, Nonce: 9}, tx.ReplayKey())
	assert.Equal(t, "1/9", tx.ReplayKey().String())
}
