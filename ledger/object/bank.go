// Package object implements ledger.Bank over a coin-object model: value is
// held in discrete coin objects with an owner, and spending splits and merges
// objects instead of adjusting a balance.
package object

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/orderedcode"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/ledger"
	tmmath "github.com/tendermint/bridge/libs/math"
	"github.com/tendermint/bridge/types"
)

const (
	prefixObject = int64(0)
	prefixOwner  = int64(1)
	prefixSupply = int64(2)
	prefixNextID = int64(3)
)

// Coin is a coin object.
type Coin struct {
	ID     uint64         `json:"id"`
	Owner  crypto.Address `json:"owner"`
	Denom  string         `json:"denom"`
	Amount uint64         `json:"amount"`
}

// Bank is a coin-object ledger.Bank. A holder's balance is the sum of the
// coins it owns.
type Bank struct {
	mtx sync.Mutex
	db  dbm.DB
}

var _ ledger.Bank = (*Bank)(nil)

// NewBank returns a Bank storing coin objects in db.
func NewBank(db dbm.DB) *Bank {
	return &Bank{db: db}
}

// Coins returns the coins of denom owned by owner, oldest first.
func (b *Bank) Coins(owner crypto.Address, denom string) ([]Coin, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.coins(owner, denom)
}

func (b *Bank) Balance(addr crypto.Address, denom string) (uint64, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	coins, err := b.coins(addr, denom)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, c := range coins {
		if total, err = tmmath.SafeAddUint64(total, c.Amount); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (b *Bank) Supply(denom string) (uint64, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.getUint64(supplyKey(denom))
}

// Transfer spends the sender's coins oldest first, splitting the last one if
// needed, and gives the recipient one new coin.
func (b *Bank) Transfer(from, to crypto.Address, coin types.Coin) error {
	if err := coin.Validate(); err != nil {
		return err
	}
	if coin.IsZero() {
		return nil
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	batch := b.db.NewBatch()
	defer batch.Close()

	nextID, err := b.getUint64(nextIDKey())
	if err != nil {
		return err
	}
	if nextID, err = b.spend(batch, from, coin, nextID); err != nil {
		return err
	}
	if nextID, err = b.create(batch, to, coin, nextID); err != nil {
		return err
	}
	if err := setUint64(batch, nextIDKey(), nextID); err != nil {
		return err
	}
	return batch.WriteSync()
}

// Mint creates a new coin owned by to.
func (b *Bank) Mint(to crypto.Address, coin types.Coin) error {
	if err := coin.Validate(); err != nil {
		return err
	}
	if coin.IsZero() {
		return nil
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	supply, err := b.getUint64(supplyKey(coin.Denom))
	if err != nil {
		return err
	}
	if supply, err = tmmath.SafeAddUint64(supply, coin.Amount); err != nil {
		return err
	}
	nextID, err := b.getUint64(nextIDKey())
	if err != nil {
		return err
	}

	batch := b.db.NewBatch()
	defer batch.Close()

	if nextID, err = b.create(batch, to, coin, nextID); err != nil {
		return err
	}
	if err := setUint64(batch, nextIDKey(), nextID); err != nil {
		return err
	}
	if err := setUint64(batch, supplyKey(coin.Denom), supply); err != nil {
		return err
	}
	return batch.WriteSync()
}

// Burn spends coins of from like Transfer and destroys the spent value.
func (b *Bank) Burn(from crypto.Address, coin types.Coin) error {
	if err := coin.Validate(); err != nil {
		return err
	}
	if coin.IsZero() {
		return nil
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	nextID, err := b.getUint64(nextIDKey())
	if err != nil {
		return err
	}

	batch := b.db.NewBatch()
	defer batch.Close()

	if nextID, err = b.spend(batch, from, coin, nextID); err != nil {
		return err
	}
	supply, err := b.getUint64(supplyKey(coin.Denom))
	if err != nil {
		return err
	}
	if supply, err = tmmath.SafeSubUint64(supply, coin.Amount); err != nil {
		return err
	}
	if err := setUint64(batch, nextIDKey(), nextID); err != nil {
		return err
	}
	if err := setUint64(batch, supplyKey(coin.Denom), supply); err != nil {
		return err
	}
	return batch.WriteSync()
}

// Merge joins all coins of denom owned by owner into one.
func (b *Bank) Merge(owner crypto.Address, denom string) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	coins, err := b.coins(owner, denom)
	if err != nil {
		return err
	}
	if len(coins) < 2 {
		return nil
	}

	batch := b.db.NewBatch()
	defer batch.Close()

	merged := coins[0]
	for _, c := range coins[1:] {
		if merged.Amount, err = tmmath.SafeAddUint64(merged.Amount, c.Amount); err != nil {
			return err
		}
		if err := deleteCoin(batch, c); err != nil {
			return err
		}
	}
	if err := putCoin(batch, merged); err != nil {
		return err
	}
	return batch.WriteSync()
}

// spend removes coin.Amount worth of coins from owner in batch. A partially
// spent coin is split: the change is a new coin owned by owner.
func (b *Bank) spend(batch dbm.Batch, owner crypto.Address, coin types.Coin, nextID uint64) (uint64, error) {
	coins, err := b.coins(owner, coin.Denom)
	if err != nil {
		return nextID, err
	}

	remaining := coin.Amount
	for _, c := range coins {
		if remaining == 0 {
			break
		}
		if err := deleteCoin(batch, c); err != nil {
			return nextID, err
		}
		if c.Amount <= remaining {
			remaining -= c.Amount
			continue
		}
		change := types.NewCoin(c.Denom, c.Amount-remaining)
		remaining = 0
		if nextID, err = b.create(batch, owner, change, nextID); err != nil {
			return nextID, err
		}
	}
	if remaining > 0 {
		return nextID, fmt.Errorf("%w: %v is short %d of %v", ledger.ErrInsufficientFunds, owner, remaining, coin)
	}
	return nextID, nil
}

func (b *Bank) create(batch dbm.Batch, owner crypto.Address, coin types.Coin, nextID uint64) (uint64, error) {
	c := Coin{ID: nextID, Owner: owner.Copy(), Denom: coin.Denom, Amount: coin.Amount}
	return nextID + 1, putCoin(batch, c)
}

func (b *Bank) coins(owner crypto.Address, denom string) ([]Coin, error) {
	start := ownerKey(owner, denom, 0)
	itr, err := b.db.Iterator(start, ownerEndKey(owner, denom))
	if err != nil {
		return nil, err
	}

	var ids []uint64
	for ; itr.Valid(); itr.Next() {
		ids = append(ids, decodeOwnerKeyID(itr.Key()))
	}
	if err := itr.Error(); err != nil {
		itr.Close()
		return nil, err
	}
	if err := itr.Close(); err != nil {
		return nil, err
	}

	coins := make([]Coin, 0, len(ids))
	for _, id := range ids {
		bz, err := b.db.Get(objectKey(id))
		if err != nil {
			return nil, err
		}
		var c Coin
		if err := json.Unmarshal(bz, &c); err != nil {
			panic(fmt.Sprintf("corrupted coin object %d: %v", id, err))
		}
		coins = append(coins, c)
	}
	return coins, nil
}

func (b *Bank) getUint64(key []byte) (uint64, error) {
	bz, err := b.db.Get(key)
	if err != nil {
		return 0, err
	}
	if len(bz) == 0 {
		return 0, nil
	}
	if len(bz) != 8 {
		panic(fmt.Sprintf("corrupted counter at %X: %X", key, bz))
	}
	return binary.BigEndian.Uint64(bz), nil
}

func setUint64(batch dbm.Batch, key []byte, v uint64) error {
	var bz [8]byte
	binary.BigEndian.PutUint64(bz[:], v)
	return batch.Set(key, bz[:])
}

func putCoin(batch dbm.Batch, c Coin) error {
	bz, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := batch.Set(objectKey(c.ID), bz); err != nil {
		return err
	}
	return batch.Set(ownerKey(c.Owner, c.Denom, c.ID), []byte{})
}

func deleteCoin(batch dbm.Batch, c Coin) error {
	if err := batch.Delete(objectKey(c.ID)); err != nil {
		return err
	}
	return batch.Delete(ownerKey(c.Owner, c.Denom, c.ID))
}

func objectKey(id uint64) []byte {
	key, err := orderedcode.Append(nil, prefixObject, id)
	if err != nil {
		panic(err)
	}
	return key
}

func ownerKey(owner crypto.Address, denom string, id uint64) []byte {
	key, err := orderedcode.Append(nil, prefixOwner, string(owner), denom, id)
	if err != nil {
		panic(err)
	}
	return key
}

func ownerEndKey(owner crypto.Address, denom string) []byte {
	key, err := orderedcode.Append(nil, prefixOwner, string(owner), denom)
	if err != nil {
		panic(err)
	}
	return append(key, 0xff)
}

func decodeOwnerKeyID(key []byte) uint64 {
	var (
		prefix       int64
		owner, denom string
		id           uint64
	)
	remaining, err := orderedcode.Parse(string(key), &prefix, &owner, &denom, &id)
	if err != nil {
		panic(err)
	}
	if len(remaining) != 0 {
		panic(fmt.Sprintf("expected complete key but got remainder: %s", remaining))
	}
	return id
}

func supplyKey(denom string) []byte {
	key, err := orderedcode.Append(nil, prefixSupply, denom)
	if err != nil {
		panic(err)
	}
	return key
}

func nextIDKey() []byte {
	key, err := orderedcode.Append(nil, prefixNextID)
	if err != nil {
		panic(err)
	}
	return key
}
