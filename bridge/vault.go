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

// VaultParams configures a new Vault.
type VaultParams struct {
	ID         string
	Denom      string
	Admin      crypto.Address
	Relayers   []*types.Relayer
	Threshold  int
	DestChains []uint64
}

// Vault escrows a native asset. Outbound transfers lock funds in the escrow
// account; inbound transfers proven by relayers release them.
//
// Vault is safe for concurrent use by multiple goroutines.
type Vault struct {
	instance

	mtx   sync.Mutex
	state *store.VaultState

	store  store.Store
	bank   ledger.Bank
	roots  RootProvider
	escrow crypto.Address
}

// InitVault creates and persists an empty vault. It fails with
// types.ErrInvalidThreshold if the threshold is not within
// [1, len(params.Relayers)].
func InitVault(st store.Store, bank ledger.Bank, roots RootProvider, params VaultParams,
	options ...Option) (*Vault, error) {

	relayers, err := types.NewRelayerSet(params.Relayers, params.Threshold)
	if err != nil {
		return nil, err
	}

	if _, err := st.LoadVault(params.ID); err == nil {
		return nil, fmt.Errorf("vault %q already exists", params.ID)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	state := &store.VaultState{
		ID:         params.ID,
		Denom:      params.Denom,
		Admin:      params.Admin,
		Relayers:   relayers,
		DestChains: store.NormalizeChains(params.DestChains),
	}

	b := st.NewBatch()
	defer b.Close()
	if err := b.SaveVault(state); err != nil {
		return nil, err
	}
	if err := b.Write(); err != nil {
		return nil, err
	}

	v := newVault(st, bank, roots, state, options...)
	v.logger.Info("initialized vault", "denom", state.Denom, "relayers", relayers.Size(),
		"threshold", relayers.Threshold, "dest_chains", state.DestChains)
	return v, nil
}

// LoadVault restores the vault with the given id from st.
func LoadVault(st store.Store, bank ledger.Bank, roots RootProvider, id string, options ...Option) (*Vault, error) {
	state, err := st.LoadVault(id)
	if err != nil {
		return nil, err
	}
	return newVault(st, bank, roots, state, options...), nil
}

func newVault(st store.Store, bank ledger.Bank, roots RootProvider, state *store.VaultState,
	options ...Option) *Vault {
	return &Vault{
		instance: newInstance(VaultInstanceID(state.ID), options...),
		state:    state,
		store:    st,
		bank:     bank,
		roots:    roots,
		escrow:   EscrowAddress(state.ID),
	}
}

// Lock moves amount from sender into escrow for delivery to recipient on
// destChainID, and returns the nonce assigned to the transfer.
func (v *Vault) Lock(sender, recipient crypto.Address, amount, destChainID uint64) (uint64, error) {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if amount == 0 {
		return 0, v.rejected("lock", fmt.Errorf("%w: zero amount", types.ErrInsufficientBalance))
	}
	if !v.state.SupportsDestChain(destChainID) {
		return 0, v.rejected("lock", fmt.Errorf("%w: %d", types.ErrChainNotSupported, destChainID))
	}
	if len(recipient) == 0 {
		return 0, v.rejected("lock", errors.New("empty recipient"))
	}
	if sender.Equal(v.escrow) {
		return 0, v.rejected("lock", errors.New("sender is the escrow account"))
	}

	nonce, err := tmmath.SafeAddUint64(v.state.LocalNonce, 1)
	if err != nil {
		return 0, err
	}
	next := v.state.Copy()
	next.LocalNonce = nonce

	b := v.store.NewBatch()
	defer b.Close()
	if err := b.SaveVault(next); err != nil {
		return 0, err
	}

	coin := types.NewCoin(v.state.Denom, amount)
	if err := v.bank.Transfer(sender, v.escrow, coin); err != nil {
		return 0, v.rejected("lock", fmt.Errorf("can't lock %v: %w", coin, err))
	}
	mustWrite(b)
	v.state = next

	v.metrics.Outbound.With("instance", v.id).Add(1)
	v.metrics.Volume.With("instance", v.id, "direction", "out").Add(float64(amount))
	v.reportEscrow()
	v.logger.Info("locked", "sender", sender, "recipient", recipient, "amount", amount,
		"dest_chain", destChainID, "nonce", nonce)

	v.emit(types.EventTokenLocked{
		Sender:      sender,
		Recipient:   recipient,
		Amount:      amount,
		Denom:       v.state.Denom,
		DestChainID: destChainID,
		Nonce:       nonce,
	})

	return nonce, nil
}

// Release pays tx.Amount out of escrow to tx.Recipient once tx is proven.
//
// It fails with types.ErrAlreadyProcessed if tx's nonce was consumed before,
// types.ErrUnauthorized if too few relayers signed, types.ErrInvalidProof if
// proof does not include tx in a block known to the light client, and
// types.ErrInsufficientBalance if the escrow cannot cover tx.Amount. On
// failure nothing is recorded, so a corrected submission can still succeed.
func (v *Vault) Release(tx *types.CrossChainTx, proof *merkle.Proof, sigs []types.RelayerSignature) error {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if err := v.gate().verify(tx, proof, sigs); err != nil {
		return v.rejected("release", err)
	}

	escrow, err := v.bank.Balance(v.escrow, v.state.Denom)
	if err != nil {
		return err
	}
	if escrow < tx.Amount {
		return v.rejected("release", fmt.Errorf("%w: escrow holds %d, release needs %d",
			types.ErrInsufficientBalance, escrow, tx.Amount))
	}

	b := v.store.NewBatch()
	defer b.Close()
	if err := v.replay().record(b, tx.ReplayKey()); err != nil {
		return err
	}

	if err := v.bank.Transfer(v.escrow, tx.Recipient, types.NewCoin(tx.Denom, tx.Amount)); err != nil {
		return v.rejected("release", err)
	}
	mustWrite(b)

	v.metrics.Inbound.With("instance", v.id).Add(1)
	v.metrics.Volume.With("instance", v.id, "direction", "in").Add(float64(tx.Amount))
	v.reportEscrow()
	v.logger.Info("released", "recipient", tx.Recipient, "amount", tx.Amount,
		"source_chain", tx.SourceChainID, "nonce", tx.Nonce)

	v.emit(types.EventTokenReleased{
		Recipient:     tx.Recipient,
		Amount:        tx.Amount,
		Denom:         tx.Denom,
		SourceChainID: tx.SourceChainID,
		Nonce:         tx.Nonce,
	})

	return nil
}

// AddDestChain adds chainID to the supported destinations.
func (v *Vault) AddDestChain(caller crypto.Address, chainID uint64) error {
	return v.update(caller, "add_dest_chain", func(s *store.VaultState) error {
		s.DestChains = store.NormalizeChains(append(s.DestChains, chainID))
		return nil
	})
}

// RemoveDestChain removes chainID from the supported destinations.
func (v *Vault) RemoveDestChain(caller crypto.Address, chainID uint64) error {
	return v.update(caller, "remove_dest_chain", func(s *store.VaultState) error {
		if !s.SupportsDestChain(chainID) {
			return fmt.Errorf("%w: %d", types.ErrChainNotSupported, chainID)
		}
		chains := s.DestChains[:0]
		for _, c := range s.DestChains {
			if c != chainID {
				chains = append(chains, c)
			}
		}
		s.DestChains = chains
		return nil
	})
}

// RotateRelayers replaces the relayer set. Nonces already processed stay
// processed.
func (v *Vault) RotateRelayers(caller crypto.Address, relayers []*types.Relayer, threshold int) error {
	return v.update(caller, "rotate_relayers", func(s *store.VaultState) error {
		rs, err := types.NewRelayerSet(relayers, threshold)
		if err != nil {
			return err
		}
		s.Relayers = rs
		return nil
	})
}

// update applies an admin change to a copy of the state and commits it.
func (v *Vault) update(caller crypto.Address, op string, fn func(*store.VaultState) error) error {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if !v.state.Admin.Equal(caller) {
		return v.rejected(op, fmt.Errorf("%w: %v is not the admin", types.ErrUnauthorized, caller))
	}

	next := v.state.Copy()
	if err := fn(next); err != nil {
		return v.rejected(op, err)
	}

	b := v.store.NewBatch()
	defer b.Close()
	if err := b.SaveVault(next); err != nil {
		return err
	}
	if err := b.Write(); err != nil {
		return err
	}
	v.state = next

	v.logger.Info("updated vault", "op", op, "dest_chains", next.DestChains,
		"relayers", next.Relayers.Size(), "threshold", next.Relayers.Threshold)
	return nil
}

func (v *Vault) replay() replayLedger {
	return replayLedger{instanceID: v.id, store: v.store}
}

func (v *Vault) gate() inboundGate {
	return inboundGate{
		replay:   v.replay(),
		relayers: v.state.Relayers,
		roots:    v.roots,
		denom:    v.state.Denom,
	}
}

func (v *Vault) reportEscrow() {
	if bal, err := v.bank.Balance(v.escrow, v.state.Denom); err == nil {
		v.metrics.EscrowBalance.With("instance", v.id).Set(float64(bal))
	}
}

// ID returns the vault's id.
func (v *Vault) ID() string {
	return v.state.ID
}

// InstanceID returns the id relayers sign for and events are emitted under.
func (v *Vault) InstanceID() string {
	return v.id
}

// Denom returns the escrowed asset.
func (v *Vault) Denom() string {
	return v.state.Denom
}

// Admin returns the address allowed to reconfigure the vault.
func (v *Vault) Admin() crypto.Address {
	return v.state.Admin
}

// EscrowAddress returns the ledger account holding the escrow.
func (v *Vault) EscrowAddress() crypto.Address {
	return v.escrow
}

// EscrowBalance returns the escrowed amount.
func (v *Vault) EscrowBalance() (uint64, error) {
	return v.bank.Balance(v.escrow, v.state.Denom)
}

// LocalNonce returns the nonce of the last lock.
func (v *Vault) LocalNonce() uint64 {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	return v.state.LocalNonce
}

// SupportedDestChains returns the supported destination chains in ascending
// order.
func (v *Vault) SupportedDestChains() []uint64 {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	chains := make([]uint64, len(v.state.DestChains))
	copy(chains, v.state.DestChains)
	return chains
}

// Relayers returns the current relayer set.
func (v *Vault) Relayers() *types.RelayerSet {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	return v.state.Relayers
}

// IsProcessed reports whether the transfer from sourceChainID with nonce has
// been released.
func (v *Vault) IsProcessed(sourceChainID, nonce uint64) (bool, error) {
	return v.replay().isProcessed(types.NonceKey{SourceChainID: sourceChainID, Nonce: nonce})
}

// ProcessedNonces returns the released nonces from sourceChainID.
func (v *Vault) ProcessedNonces(sourceChainID uint64) ([]uint64, error) {
	return v.replay().nonces(sourceChainID)
}
