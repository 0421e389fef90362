package merkle

import (
	"github.com/tendermint/bridge/crypto/tmhash"
)

// LeafHash returns the leaf digest of a serialized item.
func LeafHash(bz []byte) []byte {
	return tmhash.Sum(bz)
}

// innerHash returns H(left || right).
func innerHash(left []byte, right []byte) []byte {
	data := make([]byte, len(left)+len(right))
	n := copy(data, left)
	copy(data[n:], right)
	return tmhash.Sum(data)
}

// emptyHash is the root of a tree with no leaves.
func emptyHash() []byte {
	return tmhash.Sum([]byte{})
}
