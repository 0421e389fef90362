package db

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/google/orderedcode"
	"github.com/pkg/errors"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/light/store"
	"github.com/tendermint/bridge/types"
)

const (
	prefixHeader = int64(1)
	prefixHash   = int64(2)
	prefixMeta   = int64(3)
)

type dbs struct {
	db     dbm.DB
	prefix string

	mtx       sync.RWMutex
	size      uint64
	finalized uint64
}

// New returns a Store that wraps any DB (with an optional prefix in case you
// want to use one DB with many light clients).
//
// Headers are stored in their canonical encoding.
func New(db dbm.DB, prefix string) store.Store {
	s := &dbs{db: db, prefix: prefix}

	bz, err := db.Get(s.metaKey())
	if err != nil {
		panic(err)
	}
	if len(bz) > 0 {
		s.size, s.finalized = unmarshalMeta(bz)
	}

	return s
}

// SaveHeader persists the header, its hash index and the updated counters in
// a single batch.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) SaveHeader(h *types.BlockHeader, finalized uint64) error {
	if h == nil {
		panic("nil header")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if finalized > s.size+1 {
		return fmt.Errorf("cannot finalize %d of %d headers", finalized, s.size+1)
	}

	var numBz [8]byte
	binary.BigEndian.PutUint64(numBz[:], h.Number)

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(s.headerKey(h.Number), h.Bytes()); err != nil {
		return errors.Wrap(err, "saving header")
	}
	if err := b.Set(s.hashKey(h.Hash), numBz[:]); err != nil {
		return errors.Wrap(err, "saving header hash index")
	}
	if err := b.Set(s.metaKey(), marshalMeta(s.size+1, finalized)); err != nil {
		return errors.Wrap(err, "saving size")
	}
	if err := b.WriteSync(); err != nil {
		return errors.Wrap(err, "writing batch")
	}

	s.size++
	s.finalized = finalized

	return nil
}

// HeaderByNumber loads the header with the given number.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) HeaderByNumber(number uint64) (*types.BlockHeader, error) {
	bz, err := s.db.Get(s.headerKey(number))
	if err != nil {
		panic(err)
	}
	if len(bz) == 0 {
		return nil, store.ErrHeaderNotFound
	}

	h, err := types.HeaderFromBytes(bz)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding header #%d", number)
	}
	return h, nil
}

// HeaderByHash loads the header with the given hash.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) HeaderByHash(hash []byte) (*types.BlockHeader, error) {
	bz, err := s.db.Get(s.hashKey(hash))
	if err != nil {
		panic(err)
	}
	if len(bz) == 0 {
		return nil, store.ErrHeaderNotFound
	}
	if len(bz) != 8 {
		return nil, fmt.Errorf("corrupted hash index for %X", hash)
	}
	return s.HeaderByNumber(binary.BigEndian.Uint64(bz))
}

// Headers iterates over stored headers in ascending number order.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) Headers(skip, limit uint64) ([]*types.BlockHeader, error) {
	itr, err := s.db.Iterator(s.headerKey(0), s.headerEndKey())
	if err != nil {
		panic(err)
	}
	defer itr.Close()

	var headers []*types.BlockHeader
	for idx := uint64(0); itr.Valid() && uint64(len(headers)) < limit; itr.Next() {
		if idx < skip {
			idx++
			continue
		}
		h, err := types.HeaderFromBytes(itr.Value())
		if err != nil {
			return nil, errors.Wrap(err, "decoding header")
		}
		headers = append(headers, h)
	}
	if err := itr.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating headers")
	}

	return headers, nil
}

// Size returns the number of stored headers.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) Size() uint64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.size
}

// Finalized returns the number of finalized headers.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) Finalized() uint64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.finalized
}

func (s *dbs) headerKey(number uint64) []byte {
	key, err := orderedcode.Append(nil, s.prefix, prefixHeader, number)
	if err != nil {
		panic(err)
	}
	return key
}

func (s *dbs) headerEndKey() []byte {
	key, err := orderedcode.Append(nil, s.prefix, prefixHeader+1)
	if err != nil {
		panic(err)
	}
	return key
}

func (s *dbs) hashKey(hash []byte) []byte {
	key, err := orderedcode.Append(nil, s.prefix, prefixHash, string(hash))
	if err != nil {
		panic(err)
	}
	return key
}

func (s *dbs) metaKey() []byte {
	key, err := orderedcode.Append(nil, s.prefix, prefixMeta)
	if err != nil {
		panic(err)
	}
	return key
}

func marshalMeta(size, finalized uint64) []byte {
	bs := make([]byte, 16)
	binary.BigEndian.PutUint64(bs[:8], size)
	binary.BigEndian.PutUint64(bs[8:], finalized)
	return bs
}

func unmarshalMeta(bz []byte) (size, finalized uint64) {
	if len(bz) != 16 {
		panic(fmt.Sprintf("corrupted light store meta: %X", bz))
	}
	return binary.BigEndian.Uint64(bz[:8]), binary.BigEndian.Uint64(bz[8:])
}
