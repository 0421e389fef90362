package types

import "errors"

// Error kinds returned by the bridge core. Callers match them with errors.Is;
// every failure leaves the instance it was returned from unchanged.
var (
	// ErrInvalidHeader: non-increasing height or mismatched parent hash.
	ErrInvalidHeader = errors.New("invalid header")
	// ErrInvalidProof: empty header proof, or a Merkle proof that does not
	// recompute to the expected root.
	ErrInvalidProof = errors.New("invalid proof")
	// ErrAlreadyProcessed: the (source chain, nonce) pair was consumed before.
	ErrAlreadyProcessed = errors.New("nonce already processed")
	// ErrUnauthorized: too few relayer signatures, or a non-admin caller.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrChainNotSupported: destination chain unknown to the vault.
	ErrChainNotSupported = errors.New("chain not supported")
	// ErrInsufficientBalance: escrow underfunded, or a zero amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidThreshold: threshold is zero or exceeds the relayer count.
	ErrInvalidThreshold = errors.New("invalid threshold")
)
