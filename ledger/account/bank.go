// Package account implements ledger.Bank over an account model: one balance
// per (address, denom) kept in a key-value table.
package account

import (
	"encoding/binary"
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
	prefixBalance = int64(0)
	prefixSupply  = int64(1)
)

// Bank is an account-model ledger.Bank.
type Bank struct {
	mtx sync.Mutex
	db  dbm.DB
}

var _ ledger.Bank = (*Bank)(nil)

// NewBank returns a Bank storing balances in db.
func NewBank(db dbm.DB) *Bank {
	return &Bank{db: db}
}

func (b *Bank) Balance(addr crypto.Address, denom string) (uint64, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.get(balanceKey(addr, denom))
}

func (b *Bank) Supply(denom string) (uint64, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.get(supplyKey(denom))
}

func (b *Bank) Transfer(from, to crypto.Address, coin types.Coin) error {
	if err := coin.Validate(); err != nil {
		return err
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	fromBal, err := b.get(balanceKey(from, coin.Denom))
	if err != nil {
		return err
	}
	if fromBal < coin.Amount {
		return fmt.Errorf("%w: %v has %d, needs %v", ledger.ErrInsufficientFunds, from, fromBal, coin)
	}
	if from.Equal(to) {
		return nil
	}
	toBal, err := b.get(balanceKey(to, coin.Denom))
	if err != nil {
		return err
	}
	toBal, err = tmmath.SafeAddUint64(toBal, coin.Amount)
	if err != nil {
		return err
	}

	return b.write(
		kv{balanceKey(from, coin.Denom), fromBal - coin.Amount},
		kv{balanceKey(to, coin.Denom), toBal},
	)
}

func (b *Bank) Mint(to crypto.Address, coin types.Coin) error {
	if err := coin.Validate(); err != nil {
		return err
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	supply, err := b.get(supplyKey(coin.Denom))
	if err != nil {
		return err
	}
	if supply, err = tmmath.SafeAddUint64(supply, coin.Amount); err != nil {
		return err
	}
	bal, err := b.get(balanceKey(to, coin.Denom))
	if err != nil {
		return err
	}
	if bal, err = tmmath.SafeAddUint64(bal, coin.Amount); err != nil {
		return err
	}

	return b.write(
		kv{supplyKey(coin.Denom), supply},
		kv{balanceKey(to, coin.Denom), bal},
	)
}

func (b *Bank) Burn(from crypto.Address, coin types.Coin) error {
	if err := coin.Validate(); err != nil {
		return err
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	bal, err := b.get(balanceKey(from, coin.Denom))
	if err != nil {
		return err
	}
	if bal < coin.Amount {
		return fmt.Errorf("%w: %v has %d, needs %v", ledger.ErrInsufficientFunds, from, bal, coin)
	}
	supply, err := b.get(supplyKey(coin.Denom))
	if err != nil {
		return err
	}
	if supply, err = tmmath.SafeSubUint64(supply, coin.Amount); err != nil {
		return err
	}

	return b.write(
		kv{supplyKey(coin.Denom), supply},
		kv{balanceKey(from, coin.Denom), bal - coin.Amount},
	)
}

type kv struct {
	key   []byte
	value uint64
}

func (b *Bank) write(kvs ...kv) error {
	batch := b.db.NewBatch()
	defer batch.Close()

	for _, e := range kvs {
		var bz [8]byte
		binary.BigEndian.PutUint64(bz[:], e.value)
		if err := batch.Set(e.key, bz[:]); err != nil {
			return err
		}
	}
	return batch.WriteSync()
}

func (b *Bank) get(key []byte) (uint64, error) {
	bz, err := b.db.Get(key)
	if err != nil {
		return 0, err
	}
	if len(bz) == 0 {
		return 0, nil
	}
	if len(bz) != 8 {
		panic(fmt.Sprintf("corrupted balance at %X: %X", key, bz))
	}
	return binary.BigEndian.Uint64(bz), nil
}

func balanceKey(addr crypto.Address, denom string) []byte {
	key, err := orderedcode.Append(nil, prefixBalance, denom, string(addr))
	if err != nil {
		panic(err)
	}
	return key
}

func supplyKey(denom string) []byte {
	key, err := orderedcode.Append(nil, prefixSupply, denom)
	if err != nil {
		panic(err)
	}
	return key
}
