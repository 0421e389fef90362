package light

import (
	"errors"

	"github.com/tendermint/bridge/types"
)

// ProofVerifier checks the consensus proof submitted alongside a header, i.e.
// that the remote chain actually produced untrusted on top of trusted.
type ProofVerifier interface {
	VerifyHeaderProof(chainID uint64, trusted, untrusted *types.BlockHeader, proof []byte) error
}

// NonEmptyProof accepts any non-empty proof.
//
// It does not verify anything about the remote chain's consensus. It exists so
// the header pipeline can run until a real finality proof verifier is plugged
// in with WithProofVerifier.
type NonEmptyProof struct{}

var _ ProofVerifier = NonEmptyProof{}

var errEmptyProof = errors.New("empty header proof")

func (NonEmptyProof) VerifyHeaderProof(_ uint64, _, _ *types.BlockHeader, proof []byte) error {
	if len(proof) == 0 {
		return errEmptyProof
	}
	return nil
}

// verifyAdjacent checks that untrusted directly extends trusted.
func verifyAdjacent(trusted, untrusted *types.BlockHeader) error {
	if err := untrusted.ValidateBasic(); err != nil {
		return ErrInvalidHeader{err}
	}
	if untrusted.Number <= trusted.Number {
		return ErrInvalidHeader{Reason: errNonIncreasing{Trusted: trusted.Number, Untrusted: untrusted.Number}}
	}
	if !trusted.Hash.Equal(untrusted.ParentHash) {
		return ErrInvalidHeader{Reason: errParentMismatch{Expected: trusted.Hash, Got: untrusted.ParentHash}}
	}
	return nil
}
