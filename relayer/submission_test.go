package relayer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/bridge/types"
)

func TestSubmissionSignAndSave(t *testing.T) {
	txs := []*types.CrossChainTx{makeTx(1), makeTx(2), makeTx(3)}
	root := TxRoot(txs)

	s, err := NewSubmission("vault/atom", txs, 1)
	require.NoError(t, err)
	require.NoError(t, s.ValidateBasic())
	assert.NoError(t, s.Proof.Verify(root))
	assert.EqualValues(t, 2, s.Tx.Nonce)

	a, b := GenFileKey(""), GenFileKey("")
	require.NoError(t, s.Sign(a))
	require.NoError(t, s.Sign(b))
	require.NoError(t, s.Sign(a))
	require.Len(t, s.Signatures, 2)

	path := filepath.Join(t.TempDir(), "submission.json")
	require.NoError(t, s.Save(path))

	loaded, err := LoadSubmission(path)
	require.NoError(t, err)
	require.NoError(t, loaded.ValidateBasic())
	assert.Equal(t, s.InstanceID, loaded.InstanceID)
	assert.Equal(t, s.Tx, loaded.Tx)
	assert.NoError(t, loaded.Proof.Verify(root))

	rs, err := types.NewRelayerSet([]*types.Relayer{a.Relayer(), b.Relayer()}, 2)
	require.NoError(t, err)
	assert.NoError(t, rs.Authorize(loaded.Tx.SignBytes(loaded.InstanceID), loaded.Signatures))
}

func TestSubmissionErrors(t *testing.T) {
	txs := []*types.CrossChainTx{makeTx(1), makeTx(2)}

	_, err := NewSubmission("vault/atom", txs, 2)
	assert.Error(t, err)
	_, err = ProveInclusion([]*types.CrossChainTx{makeTx(1), nil}, 0)
	assert.Error(t, err)

	s, err := NewSubmission("vault/atom", txs, 0)
	require.NoError(t, err)
	s.Tx = txs[1]
	assert.Error(t, s.ValidateBasic())

	s, err = NewSubmission("", txs, 0)
	require.NoError(t, err)
	assert.Error(t, s.ValidateBasic())

	_, err = LoadSubmission(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
