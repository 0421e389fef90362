// Package ledger defines the asset custody capability the bridge relies on.
// The host ledger owns balances; the bridge only asks it to move, create and
// destroy them.
package ledger

import (
	"fmt"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/types"
)

// ErrInsufficientFunds is returned when an account cannot cover a transfer
// or burn. It matches types.ErrInsufficientBalance.
var ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", types.ErrInsufficientBalance)

// Bank moves, creates and destroys fungible assets. Every method either
// fully applies or leaves the ledger unchanged.
type Bank interface {
	// Balance returns how much of denom addr holds.
	Balance(addr crypto.Address, denom string) (uint64, error)
	// Supply returns the total amount of denom in existence.
	Supply(denom string) (uint64, error)
	// Transfer moves coin from one address to another.
	Transfer(from, to crypto.Address, coin types.Coin) error
	// Mint creates coin and credits it to addr.
	Mint(to crypto.Address, coin types.Coin) error
	// Burn debits coin from addr and destroys it.
	Burn(from crypto.Address, coin types.Coin) error
}

// ModuleAddress returns the address of an account owned by a module rather
// than a key, such as a vault's escrow.
func ModuleAddress(name string) crypto.Address {
	return crypto.AddressHash([]byte("module/" + name))
}
