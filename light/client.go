package light

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/tendermint/bridge/libs/log"
	"github.com/tendermint/bridge/light/store"
	"github.com/tendermint/bridge/types"
)

const (
	// DefaultFinalityDepth is the number of most recent headers kept in the
	// trusted window. Older headers are finalized.
	DefaultFinalityDepth = 10
)

// Option sets a parameter for the light client.
type Option func(*Client)

// FinalityDepth option sets the size of the trusted window. Default: 10.
func FinalityDepth(depth int) Option {
	return func(c *Client) {
		c.finalityDepth = depth
	}
}

// WithProofVerifier option replaces the header proof check. Default:
// NonEmptyProof.
func WithProofVerifier(v ProofVerifier) Option {
	return func(c *Client) {
		c.proofVerifier = v
	}
}

// Logger option can be used to set a logger for the client.
func Logger(l log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics option sets the metrics the client reports to.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client tracks the header chain of one remote chain. Every accepted header
// extends the latest one; once more than finalityDepth headers are trusted the
// oldest of them is finalized. Accepted headers are never removed.
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	chainID       uint64
	finalityDepth int
	proofVerifier ProofVerifier

	mtx sync.RWMutex
	// Where accepted headers are stored.
	trustedStore store.Store
	// Trusted window, oldest first. The last element is the latest header.
	trusted []*types.BlockHeader
	// Number of finalized headers (all of them precede trusted).
	finalized uint64

	logger  log.Logger
	metrics *Metrics
}

// NewClient initializes a light client for chainID, seeded with genesis as
// its first trusted header. If trustedStore already holds a header chain
// starting at genesis, the client resumes from it instead.
//
// See all Option(s) for the additional configuration.
func NewClient(
	chainID uint64,
	genesis *types.BlockHeader,
	trustedStore store.Store,
	options ...Option) (*Client, error) {

	if err := genesis.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid genesis header: %w", err)
	}

	if trustedStore.Size() > 0 {
		first, err := trustedStore.Headers(0, 1)
		if err != nil {
			return nil, fmt.Errorf("can't load genesis header: %w", err)
		}
		if len(first) == 0 || !bytes.Equal(first[0].Hash, genesis.Hash) {
			var stored []byte
			if len(first) > 0 {
				stored = first[0].Hash
			}
			return nil, ErrGenesisMismatch{Stored: stored, Given: genesis.Hash}
		}
		return NewClientFromTrustedStore(chainID, trustedStore, options...)
	}

	c := newClient(chainID, trustedStore, options...)
	if err := c.validate(); err != nil {
		return nil, err
	}

	if err := trustedStore.SaveHeader(genesis, 0); err != nil {
		return nil, fmt.Errorf("failed to save genesis header: %w", err)
	}
	c.trusted = []*types.BlockHeader{genesis}
	c.reportState()

	c.logger.Info("initialized light client", "number", genesis.Number, "hash", genesis.Hash)

	return c, nil
}

// NewClientFromTrustedStore restores a light client from trustedStore, which
// must have been initialized by NewClient.
func NewClientFromTrustedStore(
	chainID uint64,
	trustedStore store.Store,
	options ...Option) (*Client, error) {

	c := newClient(chainID, trustedStore, options...)
	if err := c.validate(); err != nil {
		return nil, err
	}

	size, finalized := trustedStore.Size(), trustedStore.Finalized()
	if size == 0 {
		return nil, ErrNotInitialized
	}
	if finalized >= size {
		return nil, fmt.Errorf("store finalized all %d headers, expected a trusted window", size)
	}

	trusted, err := trustedStore.Headers(finalized, size-finalized)
	if err != nil {
		return nil, fmt.Errorf("can't load trusted headers: %w", err)
	}
	if uint64(len(trusted)) != size-finalized {
		return nil, fmt.Errorf("expected %d trusted headers in store, got %d", size-finalized, len(trusted))
	}
	c.trusted = trusted
	c.finalized = finalized
	c.reportState()

	latest := c.latest()
	c.logger.Info("restored light client", "number", latest.Number, "hash", latest.Hash,
		"trusted", len(c.trusted), "finalized", c.finalized)

	return c, nil
}

func newClient(chainID uint64, trustedStore store.Store, options ...Option) *Client {
	c := &Client{
		chainID:       chainID,
		finalityDepth: DefaultFinalityDepth,
		proofVerifier: NonEmptyProof{},
		trustedStore:  trustedStore,
		logger:        log.NewNopLogger(),
		metrics:       NopMetrics(),
	}

	for _, o := range options {
		o(c)
	}

	c.logger = c.logger.With("module", "light", "chain", chainID)

	return c
}

func (c *Client) validate() error {
	if c.finalityDepth < 1 {
		return fmt.Errorf("finality depth must be positive, got %d", c.finalityDepth)
	}
	if c.proofVerifier == nil {
		return errors.New("nil proof verifier")
	}
	return nil
}

// UpdateHeader verifies that header extends the latest trusted header and
// that proof is accepted by the proof verifier, then appends header to the
// trusted window. If the window grows beyond the finality depth, its oldest
// headers are finalized.
//
// Errors match types.ErrInvalidHeader or types.ErrInvalidProof. On error
// neither the client nor the store is modified.
func (c *Client) UpdateHeader(header *types.BlockHeader, proof []byte) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	latest := c.latest()

	if err := verifyAdjacent(latest, header); err != nil {
		c.metrics.RejectedHeaders.Add(1)
		return err
	}
	if err := c.proofVerifier.VerifyHeaderProof(c.chainID, latest, header, proof); err != nil {
		c.metrics.RejectedHeaders.Add(1)
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}

	trusted := make([]*types.BlockHeader, len(c.trusted), len(c.trusted)+1)
	copy(trusted, c.trusted)
	trusted = append(trusted, header)

	finalized := c.finalized
	for len(trusted) > c.finalityDepth {
		trusted = trusted[1:]
		finalized++
	}

	if err := c.trustedStore.SaveHeader(header, finalized); err != nil {
		return fmt.Errorf("failed to save header #%d: %w", header.Number, err)
	}

	newlyFinalized := finalized - c.finalized
	c.trusted = trusted
	c.finalized = finalized

	c.metrics.HeaderUpdates.Add(1)
	c.reportState()
	c.logger.Debug("accepted header", "number", header.Number, "hash", header.Hash,
		"finalized", newlyFinalized)

	return nil
}

// ChainID returns the id of the tracked chain.
func (c *Client) ChainID() uint64 {
	return c.chainID
}

// FinalityDepth returns the size of the trusted window.
func (c *Client) FinalityDepth() int {
	return c.finalityDepth
}

// LatestHeader returns the latest trusted header.
func (c *Client) LatestHeader() *types.BlockHeader {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.latest()
}

// TrustedHeaders returns the trusted window, oldest first.
func (c *Client) TrustedHeaders() []*types.BlockHeader {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	headers := make([]*types.BlockHeader, len(c.trusted))
	copy(headers, c.trusted)
	return headers
}

// FinalizedCount returns the number of finalized headers.
func (c *Client) FinalizedCount() uint64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.finalized
}

// FinalizedHeaders returns all finalized headers, oldest first.
func (c *Client) FinalizedHeaders() ([]*types.BlockHeader, error) {
	c.mtx.RLock()
	finalized := c.finalized
	c.mtx.RUnlock()

	if finalized == 0 {
		return []*types.BlockHeader{}, nil
	}
	return c.trustedStore.Headers(0, finalized)
}

// HeaderByHash returns the trusted or finalized header with the given hash.
// It returns ErrUnknownBlock if no such header was ever accepted.
func (c *Client) HeaderByHash(hash []byte) (*types.BlockHeader, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	for i := len(c.trusted) - 1; i >= 0; i-- {
		if bytes.Equal(c.trusted[i].Hash, hash) {
			return c.trusted[i], nil
		}
	}

	h, err := c.trustedStore.HeaderByHash(hash)
	switch {
	case errors.Is(err, store.ErrHeaderNotFound):
		return nil, fmt.Errorf("%w: %X", ErrUnknownBlock, hash)
	case err != nil:
		return nil, err
	}
	return h, nil
}

// IsFinalized reports whether the header with the given hash is finalized.
func (c *Client) IsFinalized(hash []byte) (bool, error) {
	h, err := c.HeaderByHash(hash)
	if err != nil {
		return false, err
	}

	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return h.Number < c.trusted[0].Number, nil
}

// TxRoot returns the transaction root recorded in the header with the given
// hash.
func (c *Client) TxRoot(blockHash []byte) ([]byte, error) {
	h, err := c.HeaderByHash(blockHash)
	if err != nil {
		return nil, err
	}
	return h.TxRoot, nil
}

func (c *Client) latest() *types.BlockHeader {
	return c.trusted[len(c.trusted)-1]
}

func (c *Client) reportState() {
	c.metrics.LatestNumber.Set(float64(c.latest().Number))
	c.metrics.TrustedHeaders.Set(float64(len(c.trusted)))
	c.metrics.FinalizedHeaders.Set(float64(c.finalized))
}
