package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/ledger"
	"github.com/tendermint/bridge/ledger/ledgertest"
	"github.com/tendermint/bridge/types"
)

func TestBankContract(t *testing.T) {
	ledgertest.TestBank(t, func() ledger.Bank {
		return NewBank(dbm.NewMemDB())
	})
}

func TestBankSplitsAndMerges(t *testing.T) {
	var (
		bank  = NewBank(dbm.NewMemDB())
		alice = crypto.AddressHash([]byte("alice"))
		bob   = crypto.AddressHash([]byte("bob"))
	)

	require.NoError(t, bank.Mint(alice, types.NewCoin("uatom", 30)))
	require.NoError(t, bank.Mint(alice, types.NewCoin("uatom", 20)))

	coins, err := bank.Coins(alice, "uatom")
	require.NoError(t, err)
	require.Len(t, coins, 2)

	// 30 is consumed whole, 20 is split into 5 sent and 15 change.
	require.NoError(t, bank.Transfer(alice, bob, types.NewCoin("uatom", 35)))

	coins, err = bank.Coins(alice, "uatom")
	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.EqualValues(t, 15, coins[0].Amount)

	coins, err = bank.Coins(bob, "uatom")
	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.EqualValues(t, 35, coins[0].Amount)
	assert.Equal(t, bob, coins[0].Owner)

	require.NoError(t, bank.Mint(bob, types.NewCoin("uatom", 1)))
	require.NoError(t, bank.Mint(bob, types.NewCoin("uatom", 2)))
	require.NoError(t, bank.Merge(bob, "uatom"))

	coins, err = bank.Coins(bob, "uatom")
	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.EqualValues(t, 38, coins[0].Amount)

	bal, err := bank.Balance(bob, "uatom")
	require.NoError(t, err)
	assert.EqualValues(t, 38, bal)
}
