package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"
	"pgregory.net/rapid"

	"github.com/tendermint/bridge/ledger/account"
	"github.com/tendermint/bridge/types"
)

func TestVaultProperties(t *testing.T) {
	rapid.Check(t, rapid.Run(&vaultModel{}))
}

// vaultModel locks and releases random amounts and checks the vault against
// a plain count of the escrow and the consumed nonces.
type vaultModel struct {
	f *vaultFixture

	escrow    uint64
	aliceBal  uint64
	lastLock  uint64
	processed map[uint64]bool
}

func (m *vaultModel) Init(t *rapid.T) {
	m.f = newVaultFixtureWithBank(t, account.NewBank(dbm.NewMemDB()))
	m.aliceBal = 1000
	m.processed = make(map[uint64]bool)
}

func (m *vaultModel) Lock(t *rapid.T) {
	amount := rapid.Uint64Range(0, 300).Draw(t, "amount").(uint64)

	nonce, err := m.f.vault.Lock(alice, bob, amount, sourceChainID)
	switch {
	case amount == 0 || amount > m.aliceBal:
		require.True(t, errors.Is(err, types.ErrInsufficientBalance), "got %v", err)
	default:
		require.NoError(t, err)
		m.lastLock++
		require.Equal(t, m.lastLock, nonce)
		m.escrow += amount
		m.aliceBal -= amount
	}
}

func (m *vaultModel) Release(t *rapid.T) {
	amount := rapid.Uint64Range(0, 300).Draw(t, "amount").(uint64)
	nonce := rapid.Uint64Range(1, 8).Draw(t, "nonce").(uint64)
	signers := rapid.IntRange(0, 3).Draw(t, "signers").(int)

	tx, proof := m.f.chain.transfer(t, vaultDenom, amount, nonce)
	idxs := make([]int, signers)
	for i := range idxs {
		idxs[i] = i
	}

	err := m.f.vault.Release(tx, proof, m.f.sign(t, tx, idxs...))
	switch {
	case m.processed[nonce]:
		require.True(t, errors.Is(err, types.ErrAlreadyProcessed), "got %v", err)
	case signers < 2:
		require.True(t, errors.Is(err, types.ErrUnauthorized), "got %v", err)
	case amount == 0 || amount > m.escrow:
		require.True(t, errors.Is(err, types.ErrInsufficientBalance), "got %v", err)
	default:
		require.NoError(t, err)
		m.processed[nonce] = true
		m.escrow -= amount
	}
}

func (m *vaultModel) Check(t *rapid.T) {
	require.Equal(t, m.escrow, m.f.escrow(t))
	require.Equal(t, m.lastLock, m.f.vault.LocalNonce())
	requireBalance(t, m.f.bank, alice, vaultDenom, m.aliceBal)

	nonces, err := m.f.vault.ProcessedNonces(sourceChainID)
	require.NoError(t, err)
	require.Len(t, nonces, len(m.processed))
	for _, n := range nonces {
		require.True(t, m.processed[n], "nonce %d", n)
	}
}
