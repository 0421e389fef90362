package store

import (
	"errors"

	"github.com/tendermint/bridge/types"
)

// ErrHeaderNotFound is returned when a store does not have the requested
// header.
var ErrHeaderNotFound = errors.New("header not found")

// Store is anything that can persistently store the header chain of a light
// client. Headers are kept in the order they were accepted, which is also
// ascending number order. The oldest Finalized() of them are finalized, the
// rest form the trusted window.
type Store interface {
	// SaveHeader appends h as the newest header and sets the number of
	// finalized headers to finalized. Both happen in one write or not at all.
	SaveHeader(h *types.BlockHeader, finalized uint64) error

	// HeaderByNumber returns the header with the given number.
	//
	// If it is not found, ErrHeaderNotFound is returned.
	HeaderByNumber(number uint64) (*types.BlockHeader, error)

	// HeaderByHash returns the header with the given hash.
	//
	// If it is not found, ErrHeaderNotFound is returned.
	HeaderByHash(hash []byte) (*types.BlockHeader, error)

	// Headers returns at most limit headers in ascending order, skipping the
	// oldest skip headers.
	Headers(skip, limit uint64) ([]*types.BlockHeader, error)

	// Size returns the number of stored headers.
	Size() uint64

	// Finalized returns how many of the oldest stored headers are finalized.
	Finalized() uint64
}
