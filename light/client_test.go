package light

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/libs/log"
	"github.com/tendermint/bridge/light/store"
	dbs "github.com/tendermint/bridge/light/store/db"
	"github.com/tendermint/bridge/types"
)

func newTestClient(t *testing.T, genesis *types.BlockHeader, options ...Option) (*Client, store.Store) {
	t.Helper()
	trustedStore := dbs.New(dbm.NewMemDB(), "")
	options = append([]Option{Logger(log.TestingLogger())}, options...)
	c, err := NewClient(chainID, genesis, trustedStore, options...)
	require.NoError(t, err)
	return c, trustedStore
}

func TestClient_FinalityWindow(t *testing.T) {
	testCases := []struct {
		headers           int
		expTrusted        int
		expFinalizedCount int
	}{
		{1, 1, 0},
		{2, 2, 0},
		{10, 10, 0},
		{11, 10, 1},
		{12, 10, 2},
		{35, 10, 25},
	}

	for _, tc := range testCases {
		chain := genHeaders(tc.headers)
		c, _ := newTestClient(t, chain[0])
		for _, h := range chain[1:] {
			require.NoError(t, c.UpdateHeader(h, someProof))
		}

		trusted := c.TrustedHeaders()
		assert.Len(t, trusted, tc.expTrusted, "%d headers", tc.headers)
		assert.EqualValues(t, tc.expFinalizedCount, c.FinalizedCount())
		assert.Equal(t, chain[len(chain)-1], c.LatestHeader())
		assert.Equal(t, chain[len(chain)-1], trusted[len(trusted)-1])

		finalized, err := c.FinalizedHeaders()
		require.NoError(t, err)
		require.Len(t, finalized, tc.expFinalizedCount)
		for i, h := range finalized {
			assert.Equal(t, chain[i].Hash, h.Hash)
		}
		for i, h := range trusted {
			assert.Equal(t, chain[tc.expFinalizedCount+i].Hash, h.Hash)
		}
	}
}

func TestClient_CustomFinalityDepth(t *testing.T) {
	chain := genHeaders(6)
	c, _ := newTestClient(t, chain[0], FinalityDepth(2))
	for _, h := range chain[1:] {
		require.NoError(t, c.UpdateHeader(h, someProof))
	}
	assert.Len(t, c.TrustedHeaders(), 2)
	assert.EqualValues(t, 4, c.FinalizedCount())

	_, err := NewClient(chainID, chain[0], dbs.New(dbm.NewMemDB(), ""), FinalityDepth(0))
	assert.Error(t, err)
}

func TestClient_UpdateHeaderRejects(t *testing.T) {
	chain := genHeaders(3)
	latest := chain[2]

	tamperedHash := nextHeader(latest, 1)
	tamperedHash.Hash = hash("not the hash")

	testCases := []struct {
		name   string
		header *types.BlockHeader
		proof  []byte
		expErr error
	}{
		{"same number", types.NewBlockHeader(latest.Hash, nil, hash("txs"), latest.Number, bTime), someProof,
			types.ErrInvalidHeader},
		{"lower number", types.NewBlockHeader(latest.Hash, nil, hash("txs"), 1, bTime), someProof,
			types.ErrInvalidHeader},
		{"wrong parent", nextHeader(chain[1], 2), someProof, types.ErrInvalidHeader},
		{"no parent", types.NewBlockHeader(nil, nil, hash("txs"), latest.Number+1, bTime), someProof,
			types.ErrInvalidHeader},
		{"tampered hash", tamperedHash, someProof, types.ErrInvalidHeader},
		{"nil header", nil, someProof, types.ErrInvalidHeader},
		{"empty proof", nextHeader(latest, 1), nil, types.ErrInvalidProof},
		{"zero length proof", nextHeader(latest, 1), []byte{}, types.ErrInvalidProof},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c, trustedStore := newTestClient(t, chain[0])
			for _, h := range chain[1:] {
				require.NoError(t, c.UpdateHeader(h, someProof))
			}

			err := c.UpdateHeader(tc.header, tc.proof)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.expErr), "got %v", err)

			assert.Equal(t, latest, c.LatestHeader())
			assert.Len(t, c.TrustedHeaders(), 3)
			assert.EqualValues(t, 3, trustedStore.Size())
		})
	}
}

func TestClient_InvalidHeaderCarriesReason(t *testing.T) {
	chain := genHeaders(2)
	c, _ := newTestClient(t, chain[0])

	err := c.UpdateHeader(nextHeader(nextHeader(chain[0], 1), 1), someProof)
	var invalid ErrInvalidHeader
	require.True(t, errors.As(err, &invalid))
	assert.IsType(t, errParentMismatch{}, invalid.Reason)
}

func TestClient_NumbersMayGap(t *testing.T) {
	chain := genHeaders(1)
	c, _ := newTestClient(t, chain[0])

	h := nextHeader(chain[0], 100)
	require.NoError(t, c.UpdateHeader(h, someProof))
	assert.EqualValues(t, 101, c.LatestHeader().Number)
}

type rejectAll struct{}

func (rejectAll) VerifyHeaderProof(uint64, *types.BlockHeader, *types.BlockHeader, []byte) error {
	return errors.New("rejected")
}

func TestClient_WithProofVerifier(t *testing.T) {
	chain := genHeaders(2)
	c, _ := newTestClient(t, chain[0], WithProofVerifier(rejectAll{}))

	err := c.UpdateHeader(chain[1], someProof)
	assert.True(t, errors.Is(err, types.ErrInvalidProof))
	assert.Equal(t, chain[0], c.LatestHeader())
}

func TestClient_Restore(t *testing.T) {
	chain := genHeaders(15)
	c, trustedStore := newTestClient(t, chain[0])
	for _, h := range chain[1:] {
		require.NoError(t, c.UpdateHeader(h, someProof))
	}

	restored, err := NewClientFromTrustedStore(chainID, trustedStore)
	require.NoError(t, err)
	assert.Equal(t, c.LatestHeader().Hash, restored.LatestHeader().Hash)
	assert.Equal(t, c.FinalizedCount(), restored.FinalizedCount())
	require.Len(t, restored.TrustedHeaders(), len(c.TrustedHeaders()))
	for i, h := range c.TrustedHeaders() {
		assert.Equal(t, h.Hash, restored.TrustedHeaders()[i].Hash)
	}

	// NewClient with the same genesis resumes.
	resumed, err := NewClient(chainID, chain[0], trustedStore)
	require.NoError(t, err)
	assert.Equal(t, chain[14].Hash, resumed.LatestHeader().Hash)

	next := nextHeader(chain[14], 1)
	require.NoError(t, resumed.UpdateHeader(next, someProof))
	assert.EqualValues(t, 6, resumed.FinalizedCount())

	// A different genesis does not.
	_, err = NewClient(chainID, nextHeader(chain[0], 5), trustedStore)
	var mismatch ErrGenesisMismatch
	assert.True(t, errors.As(err, &mismatch))

	_, err = NewClientFromTrustedStore(chainID, dbs.New(dbm.NewMemDB(), ""))
	assert.Equal(t, ErrNotInitialized, err)
}

func TestClient_RestoreShrinksWindow(t *testing.T) {
	chain := genHeaders(8)
	c, trustedStore := newTestClient(t, chain[0])
	for _, h := range chain[1:] {
		require.NoError(t, c.UpdateHeader(h, someProof))
	}

	restored, err := NewClientFromTrustedStore(chainID, trustedStore, FinalityDepth(3))
	require.NoError(t, err)
	assert.Len(t, restored.TrustedHeaders(), 8)

	require.NoError(t, restored.UpdateHeader(nextHeader(chain[7], 1), someProof))
	assert.Len(t, restored.TrustedHeaders(), 3)
	assert.EqualValues(t, 6, restored.FinalizedCount())
}

func TestClient_HeaderLookups(t *testing.T) {
	chain := genHeaders(12)
	c, _ := newTestClient(t, chain[0])
	for _, h := range chain[1:] {
		require.NoError(t, c.UpdateHeader(h, someProof))
	}

	// chain[0] and chain[1] are finalized, the rest are trusted.
	for i, h := range chain {
		root, err := c.TxRoot(h.Hash)
		require.NoError(t, err)
		assert.Equal(t, []byte(h.TxRoot), root)

		finalized, err := c.IsFinalized(h.Hash)
		require.NoError(t, err)
		assert.Equal(t, i < 2, finalized, "header #%d", h.Number)
	}

	_, err := c.TxRoot(hash("unknown"))
	assert.True(t, errors.Is(err, ErrUnknownBlock))
	_, err = c.IsFinalized(hash("unknown"))
	assert.True(t, errors.Is(err, ErrUnknownBlock))

	assert.Equal(t, chainID, c.ChainID())
	assert.Equal(t, DefaultFinalityDepth, c.FinalityDepth())
}

func TestNewClient_InvalidGenesis(t *testing.T) {
	genesis := genHeaders(1)[0]
	genesis.Number++

	_, err := NewClient(chainID, genesis, dbs.New(dbm.NewMemDB(), ""))
	assert.Error(t, err)
}
