package store

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/crypto/ed25519"
	"github.com/tendermint/bridge/types"
)

func makeRelayers(t *testing.T) *types.RelayerSet {
	t.Helper()
	relayers := []*types.Relayer{
		types.NewRelayer(ed25519.GenPrivKeyFromSecret([]byte("a")).PubKey()),
		types.NewRelayer(ed25519.GenPrivKeyFromSecret([]byte("b")).PubKey()),
	}
	rs, err := types.NewRelayerSet(relayers, 2)
	require.NoError(t, err)
	return rs
}

func makeVaultState(t *testing.T) *VaultState {
	return &VaultState{
		ID:         "vault-1",
		Denom:      "uatom",
		Admin:      crypto.AddressHash([]byte("admin")),
		Relayers:   makeRelayers(t),
		DestChains: []uint64{2, 5},
		LocalNonce: 3,
	}
}

func TestStoreVaultRoundTrip(t *testing.T) {
	s := NewStore(dbm.NewMemDB())

	_, err := s.LoadVault("vault-1")
	assert.True(t, errors.Is(err, ErrNotFound))

	v := makeVaultState(t)
	b := s.NewBatch()
	require.NoError(t, b.SaveVault(v))
	require.NoError(t, b.Write())
	require.NoError(t, b.Close())

	loaded, err := s.LoadVault("vault-1")
	require.NoError(t, err)
	assert.Equal(t, v.Denom, loaded.Denom)
	assert.Equal(t, v.Admin, loaded.Admin)
	assert.Equal(t, v.DestChains, loaded.DestChains)
	assert.Equal(t, v.LocalNonce, loaded.LocalNonce)
	assert.Equal(t, v.Relayers.Bytes(), loaded.Relayers.Bytes())
}

func TestStoreControllerRoundTrip(t *testing.T) {
	s := NewStore(dbm.NewMemDB())

	c := &ControllerState{
		ID:            "weth",
		Admin:         crypto.AddressHash([]byte("admin")),
		Relayers:      makeRelayers(t),
		Asset:         types.AssetMetadata{Denom: "weth", Name: "Wrapped Ether", Symbol: "WETH", Decimals: 18},
		OutboundNonce: 7,
	}
	b := s.NewBatch()
	require.NoError(t, b.SaveController(c))
	require.NoError(t, b.Write())
	require.NoError(t, b.Close())

	loaded, err := s.LoadController("weth")
	require.NoError(t, err)
	if diff := cmp.Diff(c.Asset, loaded.Asset); diff != "" {
		t.Errorf("asset mismatch (-want +got):\n%s", diff)
	}
	assert.EqualValues(t, 7, loaded.OutboundNonce)

	_, err = s.LoadController("other")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStoreBatchIsAtomic(t *testing.T) {
	s := NewStore(dbm.NewMemDB())
	key := types.NonceKey{SourceChainID: 1, Nonce: 1}

	// A closed, unwritten batch leaves no trace.
	b := s.NewBatch()
	require.NoError(t, b.MarkProcessed("vault-1", key))
	require.NoError(t, b.SaveVault(makeVaultState(t)))
	require.NoError(t, b.Close())

	processed, err := s.IsProcessed("vault-1", key)
	require.NoError(t, err)
	assert.False(t, processed)
	_, err = s.LoadVault("vault-1")
	assert.True(t, errors.Is(err, ErrNotFound))

	// Invalid state is rejected before it reaches the batch.
	b = s.NewBatch()
	invalid := makeVaultState(t)
	invalid.Denom = ""
	assert.Error(t, b.SaveVault(invalid))
	require.NoError(t, b.Close())
}

func TestStoreProcessedNonces(t *testing.T) {
	s := NewStore(dbm.NewMemDB())

	b := s.NewBatch()
	for _, nk := range []types.NonceKey{
		{SourceChainID: 1, Nonce: 5},
		{SourceChainID: 1, Nonce: 2},
		{SourceChainID: 1, Nonce: 300},
		{SourceChainID: 2, Nonce: 1},
	} {
		require.NoError(t, b.MarkProcessed("vault-1", nk))
	}
	require.NoError(t, b.MarkProcessed("vault-2", types.NonceKey{SourceChainID: 1, Nonce: 9}))
	require.NoError(t, b.Write())
	require.NoError(t, b.Close())

	nonces, err := s.ProcessedNonces("vault-1", 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 5, 300}, nonces)

	nonces, err = s.ProcessedNonces("vault-1", 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, nonces)

	nonces, err = s.ProcessedNonces("vault-1", 3)
	require.NoError(t, err)
	assert.Empty(t, nonces)

	// Ledgers are scoped per instance.
	processed, err := s.IsProcessed("vault-2", types.NonceKey{SourceChainID: 1, Nonce: 5})
	require.NoError(t, err)
	assert.False(t, processed)
	processed, err = s.IsProcessed("vault-2", types.NonceKey{SourceChainID: 1, Nonce: 9})
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestNormalizeChains(t *testing.T) {
	assert.Equal(t, []uint64{1, 2, 7}, NormalizeChains([]uint64{7, 2, 1, 2, 7}))
	assert.Empty(t, NormalizeChains(nil))

	v := &VaultState{DestChains: NormalizeChains([]uint64{9, 3})}
	assert.True(t, v.SupportsDestChain(3))
	assert.True(t, v.SupportsDestChain(9))
	assert.False(t, v.SupportsDestChain(4))
}

func TestVaultStateCopy(t *testing.T) {
	v := makeVaultState(t)
	c := v.Copy()
	c.DestChains[0] = 100
	c.LocalNonce++
	assert.EqualValues(t, 2, v.DestChains[0])
	assert.EqualValues(t, 3, v.LocalNonce)
}
