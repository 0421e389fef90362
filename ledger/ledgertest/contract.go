// Package ledgertest holds the behavior every ledger.Bank implementation must
// share.
package ledgertest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/ledger"
	"github.com/tendermint/bridge/types"
)

var (
	alice = crypto.AddressHash([]byte("alice"))
	bob   = crypto.AddressHash([]byte("bob"))
)

// TestBank runs the Bank contract against fresh banks made by newBank.
func TestBank(t *testing.T, newBank func() ledger.Bank) {
	t.Run("MintAndSupply", func(t *testing.T) { testMint(t, newBank()) })
	t.Run("Transfer", func(t *testing.T) { testTransfer(t, newBank()) })
	t.Run("TransferInsufficient", func(t *testing.T) { testTransferInsufficient(t, newBank()) })
	t.Run("Burn", func(t *testing.T) { testBurn(t, newBank()) })
	t.Run("DenomsAreSeparate", func(t *testing.T) { testDenoms(t, newBank()) })
	t.Run("InvalidDenom", func(t *testing.T) { testInvalidDenom(t, newBank()) })
}

func requireBalance(t *testing.T, bank ledger.Bank, addr crypto.Address, denom string, exp uint64) {
	t.Helper()
	bal, err := bank.Balance(addr, denom)
	require.NoError(t, err)
	require.Equal(t, exp, bal, "balance of %v", addr)
}

func requireSupply(t *testing.T, bank ledger.Bank, denom string, exp uint64) {
	t.Helper()
	supply, err := bank.Supply(denom)
	require.NoError(t, err)
	require.Equal(t, exp, supply, "supply of %s", denom)
}

func testMint(t *testing.T, bank ledger.Bank) {
	requireBalance(t, bank, alice, "uatom", 0)
	requireSupply(t, bank, "uatom", 0)

	require.NoError(t, bank.Mint(alice, types.NewCoin("uatom", 100)))
	require.NoError(t, bank.Mint(alice, types.NewCoin("uatom", 50)))
	require.NoError(t, bank.Mint(bob, types.NewCoin("uatom", 1)))

	requireBalance(t, bank, alice, "uatom", 150)
	requireBalance(t, bank, bob, "uatom", 1)
	requireSupply(t, bank, "uatom", 151)
}

func testTransfer(t *testing.T, bank ledger.Bank) {
	require.NoError(t, bank.Mint(alice, types.NewCoin("uatom", 60)))
	require.NoError(t, bank.Mint(alice, types.NewCoin("uatom", 40)))

	require.NoError(t, bank.Transfer(alice, bob, types.NewCoin("uatom", 70)))
	requireBalance(t, bank, alice, "uatom", 30)
	requireBalance(t, bank, bob, "uatom", 70)

	require.NoError(t, bank.Transfer(bob, alice, types.NewCoin("uatom", 70)))
	requireBalance(t, bank, alice, "uatom", 100)
	requireBalance(t, bank, bob, "uatom", 0)

	require.NoError(t, bank.Transfer(alice, alice, types.NewCoin("uatom", 10)))
	requireBalance(t, bank, alice, "uatom", 100)

	require.NoError(t, bank.Transfer(alice, bob, types.NewCoin("uatom", 0)))
	requireBalance(t, bank, bob, "uatom", 0)

	requireSupply(t, bank, "uatom", 100)
}

func testTransferInsufficient(t *testing.T, bank ledger.Bank) {
	require.NoError(t, bank.Mint(alice, types.NewCoin("uatom", 10)))

	err := bank.Transfer(alice, bob, types.NewCoin("uatom", 11))
	assert.True(t, errors.Is(err, ledger.ErrInsufficientFunds), "got %v", err)
	assert.True(t, errors.Is(err, types.ErrInsufficientBalance))

	requireBalance(t, bank, alice, "uatom", 10)
	requireBalance(t, bank, bob, "uatom", 0)
}

func testBurn(t *testing.T, bank ledger.Bank) {
	require.NoError(t, bank.Mint(alice, types.NewCoin("weth", 10)))
	require.NoError(t, bank.Mint(bob, types.NewCoin("weth", 5)))

	require.NoError(t, bank.Burn(alice, types.NewCoin("weth", 4)))
	requireBalance(t, bank, alice, "weth", 6)
	requireSupply(t, bank, "weth", 11)

	err := bank.Burn(alice, types.NewCoin("weth", 7))
	assert.True(t, errors.Is(err, types.ErrInsufficientBalance), "got %v", err)
	requireBalance(t, bank, alice, "weth", 6)
	requireSupply(t, bank, "weth", 11)

	err = bank.Burn(alice, types.NewCoin("weth", 12))
	assert.True(t, errors.Is(err, types.ErrInsufficientBalance), "got %v", err)

	require.NoError(t, bank.Burn(alice, types.NewCoin("weth", 6)))
	requireBalance(t, bank, alice, "weth", 0)
	requireSupply(t, bank, "weth", 5)
}

func testDenoms(t *testing.T, bank ledger.Bank) {
	require.NoError(t, bank.Mint(alice, types.NewCoin("uatom", 10)))
	require.NoError(t, bank.Mint(alice, types.NewCoin("weth", 3)))

	err := bank.Transfer(alice, bob, types.NewCoin("weth", 4))
	assert.True(t, errors.Is(err, types.ErrInsufficientBalance))

	require.NoError(t, bank.Transfer(alice, bob, types.NewCoin("weth", 3)))
	requireBalance(t, bank, alice, "uatom", 10)
	requireBalance(t, bank, alice, "weth", 0)
	requireBalance(t, bank, bob, "weth", 3)
	requireBalance(t, bank, bob, "uatom", 0)
}

func testInvalidDenom(t *testing.T, bank ledger.Bank) {
	assert.Error(t, bank.Mint(alice, types.NewCoin("", 1)))
	assert.Error(t, bank.Transfer(alice, bob, types.NewCoin("not valid", 1)))
	assert.Error(t, bank.Burn(alice, types.NewCoin("", 1)))
}
