package light

import (
	"errors"
	"fmt"

	"github.com/tendermint/bridge/types"
)

// ErrInvalidHeader means the header failed basic validation or does not
// extend the latest trusted header (number not increasing, parent hash
// mismatch). It matches types.ErrInvalidHeader with errors.Is.
type ErrInvalidHeader struct {
	Reason error
}

func (e ErrInvalidHeader) Error() string {
	return fmt.Sprintf("invalid header: %v", e.Reason)
}

func (e ErrInvalidHeader) Is(target error) bool {
	return target == types.ErrInvalidHeader
}

func (e ErrInvalidHeader) Unwrap() error {
	return e.Reason
}

// ErrGenesisMismatch means the store was initialized with a different genesis
// header than the one given to NewClient.
type ErrGenesisMismatch struct {
	Stored, Given []byte
}

func (e ErrGenesisMismatch) Error() string {
	return fmt.Sprintf("store was initialized with genesis %X, not %X", e.Stored, e.Given)
}

// ErrUnknownBlock is returned when the client has never accepted a header
// with the requested hash.
var ErrUnknownBlock = errors.New("unknown block")

// ErrNotInitialized is returned when a client is restored from an empty
// store.
var ErrNotInitialized = errors.New("light client is not initialized")

type errNonIncreasing struct {
	Trusted, Untrusted uint64
}

func (e errNonIncreasing) Error() string {
	return fmt.Sprintf("expected number greater than %d, got %d", e.Trusted, e.Untrusted)
}

type errParentMismatch struct {
	Expected, Got []byte
}

func (e errParentMismatch) Error() string {
	return fmt.Sprintf("expected parent hash %X, got %X", e.Expected, e.Got)
}
