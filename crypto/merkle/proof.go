package merkle

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tendermint/bridge/crypto/tmhash"
	tmbytes "github.com/tendermint/bridge/libs/bytes"
)

const (
	// MaxPathLength is the maximum number of siblings allowed in a proof. A
	// tree of depth 100 holds more leaves than any block ever will.
	MaxPathLength = 100
)

// Proof represents a Merkle inclusion proof. Leaf is the leaf digest, Path
// the sibling digests from the leaf level up, and Indices[i] reports whether
// the running node is the right child at level i.
type Proof struct {
	Leaf    tmbytes.HexBytes   `json:"leaf"`
	Path    []tmbytes.HexBytes `json:"path"`
	Indices []bool             `json:"indices"`
	Root    tmbytes.HexBytes   `json:"root"`
}

// ComputeRoot recomputes the root from leaf by folding in the sibling path.
// It returns an error only if the path and indices disagree in length.
func ComputeRoot(leaf []byte, path [][]byte, indices []bool) ([]byte, error) {
	if len(path) != len(indices) {
		return nil, fmt.Errorf("path has %d entries but indices has %d", len(path), len(indices))
	}

	current := leaf
	for i, sibling := range path {
		if indices[i] {
			current = innerHash(sibling, current)
		} else {
			current = innerHash(current, sibling)
		}
	}
	return current, nil
}

// Verify reports whether proof recomputes to expectedRoot.
func Verify(proof *Proof, expectedRoot []byte) bool {
	return proof.Verify(expectedRoot) == nil
}

// ValidateBasic performs basic validation.
func (p *Proof) ValidateBasic() error {
	if p == nil {
		return errors.New("nil proof")
	}
	if len(p.Leaf) != tmhash.Size {
		return fmt.Errorf("expected leaf size to be %d, got %d", tmhash.Size, len(p.Leaf))
	}
	if len(p.Path) > MaxPathLength {
		return fmt.Errorf("expected no more than %d siblings, got %d", MaxPathLength, len(p.Path))
	}
	if len(p.Path) != len(p.Indices) {
		return fmt.Errorf("path has %d entries but indices has %d", len(p.Path), len(p.Indices))
	}
	for i, sibling := range p.Path {
		if len(sibling) != tmhash.Size {
			return fmt.Errorf("expected sibling #%d size to be %d, got %d", i, tmhash.Size, len(sibling))
		}
	}
	return nil
}

// ComputeRoot folds the proof's path into its leaf.
func (p *Proof) ComputeRoot() ([]byte, error) {
	if p == nil {
		return nil, errors.New("nil proof")
	}
	return ComputeRoot(p.Leaf, p.path(), p.Indices)
}

// Verify checks that the proof is well formed and that it recomputes to
// expectedRoot. The Root carried inside the proof is informational and must
// agree with expectedRoot when set.
func (p *Proof) Verify(expectedRoot []byte) error {
	if err := p.ValidateBasic(); err != nil {
		return err
	}
	if len(p.Root) > 0 && !bytes.Equal(p.Root, expectedRoot) {
		return fmt.Errorf("proof root %X does not match expected root %X", []byte(p.Root), expectedRoot)
	}
	computed, err := p.ComputeRoot()
	if err != nil {
		return err
	}
	if !bytes.Equal(computed, expectedRoot) {
		return fmt.Errorf("computed root %X does not match expected root %X", computed, expectedRoot)
	}
	return nil
}

// VerifyItem additionally checks that the proof's leaf is the leaf hash of
// item.
func (p *Proof) VerifyItem(expectedRoot, item []byte) error {
	if p == nil {
		return errors.New("nil proof")
	}
	if !bytes.Equal(p.Leaf, LeafHash(item)) {
		return fmt.Errorf("leaf %X is not the hash of the given item", []byte(p.Leaf))
	}
	return p.Verify(expectedRoot)
}

func (p *Proof) path() [][]byte {
	path := make([][]byte, len(p.Path))
	for i, sibling := range p.Path {
		path[i] = sibling
	}
	return path
}
