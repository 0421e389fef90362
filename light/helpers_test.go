package light

import (
	"time"

	"github.com/tendermint/bridge/crypto/tmhash"
	"github.com/tendermint/bridge/types"
)

var (
	chainID   uint64 = 1
	bTime            = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	someProof        = []byte("proof")
)

func hash(s string) []byte {
	return tmhash.Sum([]byte(s))
}

// genHeaders returns a chain of n headers starting at number 1.
func genHeaders(n int) []*types.BlockHeader {
	headers := make([]*types.BlockHeader, 0, n)
	headers = append(headers, types.NewBlockHeader(nil, hash("state"), hash("txs-1"), 1, bTime))
	for len(headers) < n {
		headers = append(headers, nextHeader(headers[len(headers)-1], 1))
	}
	return headers
}

// nextHeader returns a header extending prev whose number is step higher.
func nextHeader(prev *types.BlockHeader, step uint64) *types.BlockHeader {
	number := prev.Number + step
	return types.NewBlockHeader(
		prev.Hash,
		hash("state"),
		tmhash.Sum(append([]byte("txs"), byte(number), byte(number>>8))),
		number,
		prev.Time.Add(time.Second),
	)
}
