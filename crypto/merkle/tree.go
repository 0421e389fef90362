package merkle

import (
	"fmt"

	tmbytes "github.com/tendermint/bridge/libs/bytes"
)

// Tree is a binary Merkle tree held as its layers; layers[0] are the leaf
// digests and the last layer holds only the root.
type Tree struct {
	layers [][][]byte
}

// NewTree builds a tree over the leaf hashes of items, in order.
func NewTree(items [][]byte) *Tree {
	leaves := make([][]byte, len(items))
	for i, item := range items {
		leaves[i] = LeafHash(item)
	}
	return NewTreeFromLeaves(leaves)
}

// NewTreeFromLeaves builds a tree over already hashed leaves. When a layer has
// an odd number of nodes the last node is carried up to the next layer
// unhashed, so [a b c] and [a b c c] have different roots.
func NewTreeFromLeaves(leaves [][]byte) *Tree {
	current := make([][]byte, len(leaves))
	copy(current, leaves)
	layers := [][][]byte{current}

	for len(current) > 1 {
		next := make([][]byte, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			if i+1 < len(current) {
				next = append(next, innerHash(current[i], current[i+1]))
			} else {
				next = append(next, current[i])
			}
		}
		layers = append(layers, next)
		current = next
	}

	return &Tree{layers: layers}
}

// Size returns the number of leaves.
func (t *Tree) Size() int {
	return len(t.layers[0])
}

// Root returns the root digest. The root of an empty tree is the hash of
// the empty string.
func (t *Tree) Root() []byte {
	if t.Size() == 0 {
		return emptyHash()
	}
	return t.layers[len(t.layers)-1][0]
}

// Proof returns the inclusion proof of the leaf at index.
func (t *Tree) Proof(index int) (*Proof, error) {
	if index < 0 || index >= t.Size() {
		return nil, fmt.Errorf("leaf index %d out of range [0, %d)", index, t.Size())
	}

	var (
		path    = make([]tmbytes.HexBytes, 0, len(t.layers)-1)
		indices = make([]bool, 0, len(t.layers)-1)
		idx     = index
	)
	for _, layer := range t.layers[:len(t.layers)-1] {
		isRight := idx%2 == 1
		sibling := idx + 1
		if isRight {
			sibling = idx - 1
		}
		if sibling >= len(layer) {
			// carried up without a sibling
			idx /= 2
			continue
		}
		path = append(path, layer[sibling])
		indices = append(indices, isRight)
		idx /= 2
	}

	return &Proof{
		Leaf:    t.layers[0][index],
		Path:    path,
		Indices: indices,
		Root:    t.Root(),
	}, nil
}
