package bridge

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/crypto/merkle"
	"github.com/tendermint/bridge/ledger"
	tmmath "github.com/tendermint/bridge/libs/math"
	"github.com/tendermint/bridge/store"
	"github.com/tendermint/bridge/types"
)

// MintParams configures a new MintController.
type MintParams struct {
	ID        string
	Admin     crypto.Address
	Relayers  []*types.Relayer
	Threshold int
	Asset     types.AssetMetadata
}

// MintController issues a wrapped representation of an asset that is native
// to another chain. Proven inbound transfers mint it; burning it starts a
// transfer back to the origin chain.
//
// MintController is safe for concurrent use by multiple goroutines.
type MintController struct {
	instance

	mtx   sync.Mutex
	state *store.ControllerState

	store store.Store
	bank  ledger.Bank
	roots RootProvider
}

// InitMintController creates and persists a controller for params.Asset.
func InitMintController(st store.Store, bank ledger.Bank, roots RootProvider, params MintParams,
	options ...Option) (*MintController, error) {

	relayers, err := types.NewRelayerSet(params.Relayers, params.Threshold)
	if err != nil {
		return nil, err
	}

	if _, err := st.LoadController(params.ID); err == nil {
		return nil, fmt.Errorf("mint controller %q already exists", params.ID)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	state := &store.ControllerState{
		ID:       params.ID,
		Admin:    params.Admin,
		Relayers: relayers,
		Asset:    params.Asset,
	}

	b := st.NewBatch()
	defer b.Close()
	if err := b.SaveController(state); err != nil {
		return nil, err
	}
	if err := b.Write(); err != nil {
		return nil, err
	}

	mc := newMintController(st, bank, roots, state, options...)
	mc.logger.Info("initialized mint controller", "asset", state.Asset.Denom,
		"origin_chain", state.Asset.OriginChainID, "relayers", relayers.Size(), "threshold", relayers.Threshold)
	return mc, nil
}

// LoadMintController restores the controller with the given id from st. The
// outbound nonce continues from where it was.
func LoadMintController(st store.Store, bank ledger.Bank, roots RootProvider, id string,
	options ...Option) (*MintController, error) {
	state, err := st.LoadController(id)
	if err != nil {
		return nil, err
	}
	return newMintController(st, bank, roots, state, options...), nil
}

func newMintController(st store.Store, bank ledger.Bank, roots RootProvider, state *store.ControllerState,
	options ...Option) *MintController {
	return &MintController{
		instance: newInstance(ControllerInstanceID(state.ID), options...),
		state:    state,
		store:    st,
		bank:     bank,
		roots:    roots,
	}
}

// MintWrapped creates tx.Amount of the wrapped asset for tx.Recipient once tx
// is proven. It fails with the same errors as Vault.Release, except that
// there is no balance to run out of.
func (mc *MintController) MintWrapped(tx *types.CrossChainTx, proof *merkle.Proof,
	sigs []types.RelayerSignature) error {
	mc.mtx.Lock()
	defer mc.mtx.Unlock()

	if err := mc.gate().verify(tx, proof, sigs); err != nil {
		return mc.rejected("mint", err)
	}

	b := mc.store.NewBatch()
	defer b.Close()
	if err := mc.replay().record(b, tx.ReplayKey()); err != nil {
		return err
	}

	if err := mc.bank.Mint(tx.Recipient, types.NewCoin(tx.Denom, tx.Amount)); err != nil {
		return mc.rejected("mint", err)
	}
	mustWrite(b)

	mc.metrics.Inbound.With("instance", mc.id).Add(1)
	mc.metrics.Volume.With("instance", mc.id, "direction", "in").Add(float64(tx.Amount))
	mc.logger.Info("minted", "recipient", tx.Recipient, "amount", tx.Amount,
		"source_chain", tx.SourceChainID, "nonce", tx.Nonce)

	mc.emit(types.EventTokenMinted{
		Recipient:     tx.Recipient,
		Amount:        tx.Amount,
		Denom:         tx.Denom,
		SourceChainID: tx.SourceChainID,
		Nonce:         tx.Nonce,
	})

	return nil
}

// BurnWrapped destroys coin, held by holder, to be unlocked on destChainID,
// and returns the outbound nonce assigned to the burn.
func (mc *MintController) BurnWrapped(holder crypto.Address, coin types.Coin, destChainID uint64) (uint64, error) {
	mc.mtx.Lock()
	defer mc.mtx.Unlock()

	if coin.IsZero() {
		return 0, mc.rejected("burn", fmt.Errorf("%w: zero amount", types.ErrInsufficientBalance))
	}
	if coin.Denom != mc.state.Asset.Denom {
		return 0, mc.rejected("burn", fmt.Errorf("can't burn %q with the controller of %q",
			coin.Denom, mc.state.Asset.Denom))
	}

	nonce, err := tmmath.SafeAddUint64(mc.state.OutboundNonce, 1)
	if err != nil {
		return 0, err
	}
	next := mc.state.Copy()
	next.OutboundNonce = nonce

	b := mc.store.NewBatch()
	defer b.Close()
	if err := b.SaveController(next); err != nil {
		return 0, err
	}

	if err := mc.bank.Burn(holder, coin); err != nil {
		return 0, mc.rejected("burn", fmt.Errorf("can't burn %v: %w", coin, err))
	}
	mustWrite(b)
	mc.state = next

	mc.metrics.Outbound.With("instance", mc.id).Add(1)
	mc.metrics.Volume.With("instance", mc.id, "direction", "out").Add(float64(coin.Amount))
	mc.logger.Info("burned", "holder", holder, "amount", coin.Amount, "dest_chain", destChainID, "nonce", nonce)

	mc.emit(types.EventTokenBurned{
		Sender:      holder,
		Amount:      coin.Amount,
		DestChainID: destChainID,
		Nonce:       nonce,
	})

	return nonce, nil
}

// RotateRelayers replaces the relayer set.
func (mc *MintController) RotateRelayers(caller crypto.Address, relayers []*types.Relayer, threshold int) error {
	mc.mtx.Lock()
	defer mc.mtx.Unlock()

	if !mc.state.Admin.Equal(caller) {
		return mc.rejected("rotate_relayers", fmt.Errorf("%w: %v is not the admin", types.ErrUnauthorized, caller))
	}
	rs, err := types.NewRelayerSet(relayers, threshold)
	if err != nil {
		return mc.rejected("rotate_relayers", err)
	}

	next := mc.state.Copy()
	next.Relayers = rs

	b := mc.store.NewBatch()
	defer b.Close()
	if err := b.SaveController(next); err != nil {
		return err
	}
	if err := b.Write(); err != nil {
		return err
	}
	mc.state = next

	mc.logger.Info("rotated relayers", "relayers", rs.Size(), "threshold", rs.Threshold)
	return nil
}

func (mc *MintController) replay() replayLedger {
	return replayLedger{instanceID: mc.id, store: mc.store}
}

func (mc *MintController) gate() inboundGate {
	return inboundGate{
		replay:   mc.replay(),
		relayers: mc.state.Relayers,
		roots:    mc.roots,
		denom:    mc.state.Asset.Denom,

		sourceChainID: mc.state.Asset.OriginChainID,
	}
}

// ID returns the controller's id.
func (mc *MintController) ID() string {
	return mc.state.ID
}

// InstanceID returns the id relayers sign for and events are emitted under.
func (mc *MintController) InstanceID() string {
	return mc.id
}

// Admin returns the address allowed to rotate relayers.
func (mc *MintController) Admin() crypto.Address {
	return mc.state.Admin
}

// Asset returns the metadata of the wrapped asset.
func (mc *MintController) Asset() types.AssetMetadata {
	return mc.state.Asset
}

// OutboundNonce returns the nonce of the last burn.
func (mc *MintController) OutboundNonce() uint64 {
	mc.mtx.Lock()
	defer mc.mtx.Unlock()
	return mc.state.OutboundNonce
}

// Supply returns the amount of the wrapped asset in circulation.
func (mc *MintController) Supply() (uint64, error) {
	return mc.bank.Supply(mc.state.Asset.Denom)
}

// Relayers returns the current relayer set.
func (mc *MintController) Relayers() *types.RelayerSet {
	mc.mtx.Lock()
	defer mc.mtx.Unlock()
	return mc.state.Relayers
}

// IsProcessed reports whether the transfer from sourceChainID with nonce has
// been minted.
func (mc *MintController) IsProcessed(sourceChainID, nonce uint64) (bool, error) {
	return mc.replay().isProcessed(types.NonceKey{SourceChainID: sourceChainID, Nonce: nonce})
}

// ProcessedNonces returns the minted nonces from sourceChainID.
func (mc *MintController) ProcessedNonces(sourceChainID uint64) ([]uint64, error) {
	return mc.replay().nonces(sourceChainID)
}
