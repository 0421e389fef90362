/*
Package merkle verifies inclusion proofs against a binary Merkle root.

A proof is an ordered sibling path from a leaf digest up to the root, paired
with one direction bit per level. For level i:

	Indices[i] == false: current is the left child,  next = H(current || Path[i])
	Indices[i] == true:  current is the right child, next = H(Path[i] || current)

H is SHA-256 (see crypto/tmhash). Leaves are the hash of the serialized item
(LeafHash). Trees built by NewTree duplicate the last node of an odd layer.
*/
package merkle
