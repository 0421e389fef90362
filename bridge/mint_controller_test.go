package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/ledger/account"
	"github.com/tendermint/bridge/libs/log"
	"github.com/tendermint/bridge/store"
	"github.com/tendermint/bridge/types"
)

var wrappedAsset = types.AssetMetadata{
	Denom:         "wrapped/uatom",
	Name:          "Wrapped Atom",
	Symbol:        "wATOM",
	Decimals:      6,
	OriginChainID: sourceChainID,
}

type mintFixture struct {
	mc       *MintController
	bank     *account.Bank
	store    store.Store
	events   *store.EventLog
	chain    *remoteChain
	relayers []testRelayer
}

func newMintFixture(t *testing.T) *mintFixture {
	f := &mintFixture{
		bank:     account.NewBank(dbm.NewMemDB()),
		store:    store.NewStore(dbm.NewMemDB()),
		events:   store.NewEventLog(dbm.NewMemDB()),
		chain:    newRemoteChain(t, sourceChainID),
		relayers: genRelayers("relayer", 3),
	}

	mc, err := InitMintController(f.store, f.bank, f.chain.roots(), MintParams{
		ID:        "atom",
		Admin:     admin,
		Relayers:  relayerList(f.relayers),
		Threshold: 2,
		Asset:     wrappedAsset,
	}, Logger(log.TestingLogger()), WithEventSink(f.events))
	require.NoError(t, err)
	f.mc = mc
	return f
}

func (f *mintFixture) sign(t require.TestingT, tx *types.CrossChainTx, idxs ...int) []types.RelayerSignature {
	return signWith(t, f.relayers, f.mc.InstanceID(), tx, idxs...)
}

func (f *mintFixture) supply(t *testing.T) uint64 {
	supply, err := f.mc.Supply()
	require.NoError(t, err)
	return supply
}

// mint credits amount of the wrapped asset to bob through a proven transfer.
func (f *mintFixture) mint(t *testing.T, amount, nonce uint64) {
	tx, proof := f.chain.transfer(t, wrappedAsset.Denom, amount, nonce)
	require.NoError(t, f.mc.MintWrapped(tx, proof, f.sign(t, tx, 0, 1)))
}

func TestMintController_MintWrapped(t *testing.T) {
	f := newMintFixture(t)

	tx, proof := f.chain.transfer(t, wrappedAsset.Denom, 500, 1)

	err := f.mc.MintWrapped(tx, proof, f.sign(t, tx, 0))
	assert.True(t, errors.Is(err, types.ErrUnauthorized), "got %v", err)
	err = f.mc.MintWrapped(tx, proof, f.sign(t, tx, 2, 2))
	assert.True(t, errors.Is(err, types.ErrUnauthorized), "got %v", err)
	assert.EqualValues(t, 0, f.supply(t))

	require.NoError(t, f.mc.MintWrapped(tx, proof, f.sign(t, tx, 1, 2)))
	assert.EqualValues(t, 500, f.supply(t))
	requireBalance(t, f.bank, bob, wrappedAsset.Denom, 500)

	err = f.mc.MintWrapped(tx, proof, f.sign(t, tx, 1, 2))
	assert.True(t, errors.Is(err, types.ErrAlreadyProcessed), "got %v", err)
	err = f.mc.MintWrapped(tx, nil, nil)
	assert.True(t, errors.Is(err, types.ErrAlreadyProcessed), "got %v", err)
	assert.EqualValues(t, 500, f.supply(t))

	processed, err := f.mc.IsProcessed(sourceChainID, 1)
	require.NoError(t, err)
	assert.True(t, processed)

	records, err := f.events.Events(f.mc.InstanceID(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	ev, err := records[0].Event()
	require.NoError(t, err)
	assert.Equal(t, types.EventTokenMinted{
		Recipient:     bob,
		Amount:        500,
		Denom:         wrappedAsset.Denom,
		SourceChainID: sourceChainID,
		Nonce:         1,
	}, ev)
}

func TestMintController_MintRejects(t *testing.T) {
	f := newMintFixture(t)

	// The native denom is not what this controller mints.
	tx, proof := f.chain.transfer(t, "uatom", 10, 1)
	err := f.mc.MintWrapped(tx, proof, f.sign(t, tx, 0, 1))
	assert.True(t, errors.Is(err, types.ErrInvalidProof), "got %v", err)

	tx, proof = f.chain.transfer(t, wrappedAsset.Denom, 0, 2)
	err = f.mc.MintWrapped(tx, proof, f.sign(t, tx, 0, 1))
	assert.True(t, errors.Is(err, types.ErrInsufficientBalance), "got %v", err)

	tx, _ = f.chain.transfer(t, wrappedAsset.Denom, 10, 3)
	_, other := f.chain.transfer(t, wrappedAsset.Denom, 10, 4)
	err = f.mc.MintWrapped(tx, other, f.sign(t, tx, 0, 1))
	assert.True(t, errors.Is(err, types.ErrInvalidProof), "got %v", err)

	assert.EqualValues(t, 0, f.supply(t))
	nonces, err := f.mc.ProcessedNonces(sourceChainID)
	require.NoError(t, err)
	assert.Empty(t, nonces)
}

func TestMintController_RejectsOtherOrigin(t *testing.T) {
	home := newRemoteChain(t, sourceChainID)
	other := newRemoteChain(t, sourceChainID+1)
	roots := LightClients{home.id: home.client, other.id: other.client}
	relayers := genRelayers("relayer", 3)
	bank := account.NewBank(dbm.NewMemDB())

	mc, err := InitMintController(store.NewStore(dbm.NewMemDB()), bank, roots, MintParams{
		ID:        "atom",
		Admin:     admin,
		Relayers:  relayerList(relayers),
		Threshold: 2,
		Asset:     wrappedAsset,
	}, Logger(log.TestingLogger()))
	require.NoError(t, err)

	tx, proof := other.transfer(t, wrappedAsset.Denom, 500, 1)
	err = mc.MintWrapped(tx, proof, signWith(t, relayers, mc.InstanceID(), tx, 0, 1))
	assert.True(t, errors.Is(err, types.ErrChainNotSupported), "got %v", err)
	requireBalance(t, bank, bob, wrappedAsset.Denom, 0)
	processed, err := mc.IsProcessed(other.id, 1)
	require.NoError(t, err)
	assert.False(t, processed)

	tx, proof = home.transfer(t, wrappedAsset.Denom, 500, 1)
	require.NoError(t, mc.MintWrapped(tx, proof, signWith(t, relayers, mc.InstanceID(), tx, 0, 1)))
	requireBalance(t, bank, bob, wrappedAsset.Denom, 500)
}

func TestMintController_BurnWrapped(t *testing.T) {
	f := newMintFixture(t)
	f.mint(t, 500, 1)

	nonce, err := f.mc.BurnWrapped(bob, types.NewCoin(wrappedAsset.Denom, 200), sourceChainID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, nonce)
	nonce, err = f.mc.BurnWrapped(bob, types.NewCoin(wrappedAsset.Denom, 100), sourceChainID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, nonce)

	assert.EqualValues(t, 200, f.supply(t))
	requireBalance(t, f.bank, bob, wrappedAsset.Denom, 200)

	_, err = f.mc.BurnWrapped(bob, types.NewCoin(wrappedAsset.Denom, 0), sourceChainID)
	assert.True(t, errors.Is(err, types.ErrInsufficientBalance), "got %v", err)
	_, err = f.mc.BurnWrapped(bob, types.NewCoin(wrappedAsset.Denom, 201), sourceChainID)
	assert.True(t, errors.Is(err, types.ErrInsufficientBalance), "got %v", err)
	_, err = f.mc.BurnWrapped(bob, types.NewCoin("uatom", 1), sourceChainID)
	assert.Error(t, err)

	assert.EqualValues(t, 2, f.mc.OutboundNonce())
	assert.EqualValues(t, 200, f.supply(t))

	records, err := f.events.Events(f.mc.InstanceID(), 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	ev, err := records[1].Event()
	require.NoError(t, err)
	assert.Equal(t, types.EventTokenBurned{
		Sender:      bob,
		Amount:      100,
		DestChainID: sourceChainID,
		Nonce:       2,
	}, ev)
}

func TestMintController_Restore(t *testing.T) {
	f := newMintFixture(t)
	f.mint(t, 500, 1)

	_, err := f.mc.BurnWrapped(bob, types.NewCoin(wrappedAsset.Denom, 50), sourceChainID)
	require.NoError(t, err)
	_, err = f.mc.BurnWrapped(bob, types.NewCoin(wrappedAsset.Denom, 50), sourceChainID)
	require.NoError(t, err)

	_, err = InitMintController(f.store, f.bank, f.chain.roots(), MintParams{
		ID:        "atom",
		Admin:     admin,
		Relayers:  relayerList(f.relayers),
		Threshold: 1,
		Asset:     wrappedAsset,
	})
	assert.Error(t, err)

	restored, err := LoadMintController(f.store, f.bank, f.chain.roots(), "atom")
	require.NoError(t, err)
	assert.Equal(t, wrappedAsset, restored.Asset())
	assert.EqualValues(t, 2, restored.OutboundNonce())
	assert.Equal(t, admin, restored.Admin())
	assert.Equal(t, "atom", restored.ID())

	// Burn nonces keep counting from where they were.
	nonce, err := restored.BurnWrapped(bob, types.NewCoin(wrappedAsset.Denom, 50), sourceChainID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, nonce)

	nonces, err := restored.ProcessedNonces(sourceChainID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, nonces)

	_, err = LoadMintController(f.store, f.bank, f.chain.roots(), "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
}

func TestMintController_RotateRelayers(t *testing.T) {
	f := newMintFixture(t)

	err := f.mc.RotateRelayers(alice, relayerList(f.relayers), 1)
	assert.True(t, errors.Is(err, types.ErrUnauthorized), "got %v", err)
	err = f.mc.RotateRelayers(admin, nil, 1)
	assert.True(t, errors.Is(err, types.ErrInvalidThreshold), "got %v", err)

	next := genRelayers("next", 2)
	require.NoError(t, f.mc.RotateRelayers(admin, relayerList(next), 2))
	assert.Equal(t, 2, f.mc.Relayers().Size())

	tx, proof := f.chain.transfer(t, wrappedAsset.Denom, 10, 1)
	err = f.mc.MintWrapped(tx, proof, f.sign(t, tx, 0, 1))
	assert.True(t, errors.Is(err, types.ErrUnauthorized), "got %v", err)
	require.NoError(t, f.mc.MintWrapped(tx, proof, signWith(t, next, f.mc.InstanceID(), tx, 0, 1)))
}

func TestInitMintController_Invalid(t *testing.T) {
	relayers := relayerList(genRelayers("relayer", 2))

	_, err := InitMintController(store.NewStore(dbm.NewMemDB()), account.NewBank(dbm.NewMemDB()), LightClients{},
		MintParams{ID: "atom", Admin: admin, Relayers: relayers, Threshold: 3, Asset: wrappedAsset})
	assert.True(t, errors.Is(err, types.ErrInvalidThreshold), "got %v", err)

	asset := wrappedAsset
	asset.Symbol = ""
	_, err = InitMintController(store.NewStore(dbm.NewMemDB()), account.NewBank(dbm.NewMemDB()), LightClients{},
		MintParams{ID: "atom", Admin: admin, Relayers: relayers, Threshold: 1, Asset: asset})
	assert.Error(t, err)
}

// The same (source chain, nonce) pair is tracked separately by every
// instance.
func TestReplayLedgersAreScopedToInstance(t *testing.T) {
	chain := newRemoteChain(t, sourceChainID)
	relayers := genRelayers("relayer", 1)
	bank := account.NewBank(dbm.NewMemDB())
	st := store.NewStore(dbm.NewMemDB())

	v, err := InitVault(st, bank, chain.roots(), VaultParams{
		ID:         "atom",
		Denom:      vaultDenom,
		Admin:      admin,
		Relayers:   relayerList(relayers),
		Threshold:  1,
		DestChains: []uint64{sourceChainID},
	})
	require.NoError(t, err)
	mc, err := InitMintController(st, bank, chain.roots(), MintParams{
		ID:        "atom",
		Admin:     admin,
		Relayers:  relayerList(relayers),
		Threshold: 1,
		Asset:     wrappedAsset,
	})
	require.NoError(t, err)

	require.NoError(t, bank.Mint(alice, types.NewCoin(vaultDenom, 100)))
	_, err = v.Lock(alice, bob, 100, sourceChainID)
	require.NoError(t, err)

	release, releaseProof := chain.transfer(t, vaultDenom, 100, 1)
	mint, mintProof := chain.transfer(t, wrappedAsset.Denom, 100, 1)

	// A vault signature is not a controller signature.
	err = mc.MintWrapped(mint, mintProof, signWith(t, relayers, v.InstanceID(), mint, 0))
	assert.True(t, errors.Is(err, types.ErrUnauthorized), "got %v", err)

	require.NoError(t, v.Release(release, releaseProof, signWith(t, relayers, v.InstanceID(), release, 0)))
	require.NoError(t, mc.MintWrapped(mint, mintProof, signWith(t, relayers, mc.InstanceID(), mint, 0)))

	requireBalance(t, bank, bob, vaultDenom, 100)
	requireBalance(t, bank, bob, wrappedAsset.Denom, 100)
}
