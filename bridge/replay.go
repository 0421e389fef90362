package bridge

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tendermint/bridge/crypto/merkle"
	"github.com/tendermint/bridge/store"
	"github.com/tendermint/bridge/types"
)

// replayLedger is the set of (source chain, nonce) pairs an instance has
// consumed. Entries are never removed.
type replayLedger struct {
	instanceID string
	store      store.Store
}

func (r replayLedger) isProcessed(key types.NonceKey) (bool, error) {
	return r.store.IsProcessed(r.instanceID, key)
}

func (r replayLedger) checkNotProcessed(key types.NonceKey) error {
	processed, err := r.isProcessed(key)
	if err != nil {
		return err
	}
	if processed {
		return fmt.Errorf("%w: %v at %s", types.ErrAlreadyProcessed, key, r.instanceID)
	}
	return nil
}

func (r replayLedger) record(b store.Batch, key types.NonceKey) error {
	return b.MarkProcessed(r.instanceID, key)
}

func (r replayLedger) nonces(sourceChainID uint64) ([]uint64, error) {
	return r.store.ProcessedNonces(r.instanceID, sourceChainID)
}

// inboundGate holds what Release and MintWrapped check before committing.
type inboundGate struct {
	replay   replayLedger
	relayers *types.RelayerSet
	roots    RootProvider
	denom    string
	// When non-zero, the only chain transfers may come from.
	sourceChainID uint64
}

// verify runs every check on an inbound transfer. It does not modify
// anything.
func (g inboundGate) verify(tx *types.CrossChainTx, proof *merkle.Proof, sigs []types.RelayerSignature) error {
	if tx == nil {
		return errors.New("nil transaction")
	}

	if err := g.replay.checkNotProcessed(tx.ReplayKey()); err != nil {
		return err
	}

	if err := tx.ValidateBasic(); err != nil {
		return fmt.Errorf("%w: malformed transaction: %v", types.ErrInvalidProof, err)
	}

	if err := g.relayers.Authorize(tx.SignBytes(g.replay.instanceID), sigs); err != nil {
		return err
	}

	if err := verifyInclusion(g.roots, tx, proof); err != nil {
		return err
	}

	if g.sourceChainID != 0 && tx.SourceChainID != g.sourceChainID {
		return fmt.Errorf("%w: transaction is from chain %d, expected %d", types.ErrChainNotSupported,
			tx.SourceChainID, g.sourceChainID)
	}
	if tx.Denom != g.denom {
		return fmt.Errorf("%w: transaction is for %q, expected %q", types.ErrInvalidProof, tx.Denom, g.denom)
	}
	if tx.Amount == 0 {
		return fmt.Errorf("%w: zero amount", types.ErrInsufficientBalance)
	}

	return nil
}

// verifyInclusion checks that proof proves tx is a leaf under the transaction
// root of tx.BlockHash.
func verifyInclusion(roots RootProvider, tx *types.CrossChainTx, proof *merkle.Proof) error {
	if proof == nil {
		return fmt.Errorf("%w: nil proof", types.ErrInvalidProof)
	}
	if !bytes.Equal(proof.Leaf, tx.LeafHash()) {
		return fmt.Errorf("%w: proof leaf %X is not the transaction's leaf hash", types.ErrInvalidProof,
			[]byte(proof.Leaf))
	}

	root, err := roots.TxRoot(tx.SourceChainID, tx.BlockHash)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}
	if err := proof.Verify(root); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, types.ErrAlreadyProcessed):
		return "already_processed"
	case errors.Is(err, types.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, types.ErrInvalidProof):
		return "invalid_proof"
	case errors.Is(err, types.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, types.ErrChainNotSupported):
		return "chain_not_supported"
	default:
		return "other"
	}
}
