package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeRootKnownShapes(t *testing.T) {
	a, b, c := []byte("a"), []byte("b"), []byte("c")
	la, lb, lc := LeafHash(a), LeafHash(b), LeafHash(c)

	testCases := []struct {
		name  string
		items [][]byte
		root  []byte
	}{
		{"empty", nil, sha([]byte{})},
		{"single", [][]byte{a}, la},
		{"pair", [][]byte{a, b}, sha(la, lb)},
		{"odd", [][]byte{a, b, c}, sha(sha(la, lb), lc)},
		{"padded", [][]byte{a, b, c, c}, sha(sha(la, lb), sha(lc, lc))},
		{"five", [][]byte{a, b, c, a, b}, sha(sha(sha(la, lb), sha(lc, la)), lb)},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.root, NewTree(tc.items).Root())
		})
	}
}

func TestTreeProofOutOfRange(t *testing.T) {
	tree := NewTree([][]byte{[]byte("a")})
	_, err := tree.Proof(1)
	require.Error(t, err)
	_, err = tree.Proof(-1)
	require.Error(t, err)

	_, err = NewTree(nil).Proof(0)
	require.Error(t, err)
}

func TestTreeOddLayerProof(t *testing.T) {
	items := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	tree := NewTree(items)

	proof, err := tree.Proof(2)
	require.NoError(t, err)
	// the unpaired leaf skips the first level
	require.Len(t, proof.Path, 1)
	assert.EqualValues(t, innerHash(LeafHash(items[0]), LeafHash(items[1])), proof.Path[0])
	assert.Equal(t, []bool{true}, proof.Indices)
	require.NoError(t, proof.Verify(tree.Root()))

	padded := NewTree(append(items, items[2]))
	assert.NotEqual(t, tree.Root(), padded.Root())
	require.Error(t, proof.Verify(padded.Root()))
}
