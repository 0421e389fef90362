package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/bridge/config"
	"github.com/tendermint/bridge/libs/log"
	"github.com/tendermint/bridge/types"
)

// MakeLedgerCommand returns the commands that inspect and seed the local
// ledger.
func MakeLedgerCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and seed the local ledger",
	}

	var (
		address, denom string
		amount         uint64
	)

	fundCmd := &cobra.Command{
		Use:   "fund",
		Short: "Create native coins for an address, for test networks",
		Args:  cobra.NoArgs,
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			addr, err := parseAddress("address", address)
			if err != nil {
				return err
			}
			coin := types.NewCoin(denom, amount)
			if err := coin.Validate(); err != nil {
				return err
			}
			if err := e.bank.Mint(addr, coin); err != nil {
				return err
			}
			logger.Info("funded", "address", addr, "coin", coin)
			return nil
		}),
	}
	fundCmd.Flags().Uint64Var(&amount, "amount", 0, "amount to create")

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Print the balance of an address",
		Args:  cobra.NoArgs,
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			addr, err := parseAddress("address", address)
			if err != nil {
				return err
			}
			balance, err := e.bank.Balance(addr, denom)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), balance)
			return nil
		}),
	}

	for _, c := range []*cobra.Command{fundCmd, balanceCmd} {
		c.Flags().StringVar(&address, "address", "", "hex address")
		c.Flags().StringVar(&denom, "denom", "", "asset denomination")
	}

	cmd.AddCommand(fundCmd, balanceCmd)
	return cmd
}
