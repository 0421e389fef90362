package account

import (
	"testing"

	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/ledger"
	"github.com/tendermint/bridge/ledger/ledgertest"
)

func TestBankContract(t *testing.T) {
	ledgertest.TestBank(t, func() ledger.Bank {
		return NewBank(dbm.NewMemDB())
	})
}
