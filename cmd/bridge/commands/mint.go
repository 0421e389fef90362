package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/bridge/config"
	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/libs/log"
	"github.com/tendermint/bridge/types"
)

// MakeMintCommand returns the mint controller commands.
func MakeMintCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint wrapped assets on proof and burn them to go back",
	}

	initCmd := &cobra.Command{
		Use:   "init [controller-id]",
		Short: "Create a mint controller described by the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			mc, err := e.initController(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mc.Asset().Denom)
			return nil
		}),
	}

	mintCmd := &cobra.Command{
		Use:   "mint [controller-id] [submission-file]",
		Short: "Mint wrapped tokens for a signed and proven inbound transfer",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			mc, err := e.controller(args[0])
			if err != nil {
				return err
			}
			s, err := loadSubmissionFor(args[1], mc.InstanceID())
			if err != nil {
				return err
			}
			return mc.MintWrapped(s.Tx, s.Proof, s.Signatures)
		}),
	}

	var (
		holder            string
		amount, destChain uint64
	)
	burnCmd := &cobra.Command{
		Use:   "burn [controller-id]",
		Short: "Burn wrapped tokens of the holder to unlock them on another chain and print the nonce",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			from, err := parseAddress("holder", holder)
			if err != nil {
				return err
			}
			mc, err := e.controller(args[0])
			if err != nil {
				return err
			}
			nonce, err := mc.BurnWrapped(from, types.NewCoin(mc.Asset().Denom, amount), destChain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), nonce)
			return nil
		}),
	}
	burnCmd.Flags().StringVar(&holder, "holder", "", "hex address the wrapped tokens are burned from")
	burnCmd.Flags().Uint64Var(&amount, "amount", 0, "amount to burn")
	burnCmd.Flags().Uint64Var(&destChain, "dest-chain", 0, "chain id the native asset is unlocked on")

	showCmd := &cobra.Command{
		Use:   "show [controller-id]",
		Short: "Show the state of a mint controller",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			mc, err := e.controller(args[0])
			if err != nil {
				return err
			}
			supply, err := mc.Supply()
			if err != nil {
				return err
			}
			processed, err := processedByChain(e, mc.ProcessedNonces)
			if err != nil {
				return err
			}
			return printJSON(cmd, controllerStatus{
				ID:            mc.ID(),
				Admin:         mc.Admin(),
				Asset:         mc.Asset(),
				Supply:        supply,
				OutboundNonce: mc.OutboundNonce(),
				Relayers:      mc.Relayers(),
				Processed:     processed,
			})
		}),
	}

	cmd.AddCommand(initCmd, mintCmd, burnCmd, showCmd)
	return cmd
}

type controllerStatus struct {
	ID            string              `json:"id"`
	Admin         crypto.Address      `json:"admin"`
	Asset         types.AssetMetadata `json:"asset"`
	Supply        uint64              `json:"supply"`
	OutboundNonce uint64              `json:"outbound_nonce"`
	Relayers      *types.RelayerSet   `json:"relayers"`
	Processed     map[uint64][]uint64 `json:"processed_nonces"`
}
