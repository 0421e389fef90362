package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/bridge/bridge"
	"github.com/tendermint/bridge/config"
	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/libs/log"
	"github.com/tendermint/bridge/relayer"
	"github.com/tendermint/bridge/types"
)

// MakeVaultCommand returns the vault commands.
func MakeVaultCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Lock native assets and release them on proof",
	}

	initCmd := &cobra.Command{
		Use:   "init [vault-id]",
		Short: "Create a vault described by the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			v, err := e.initVault(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.EscrowAddress())
			return nil
		}),
	}

	var (
		sender, recipient string
		amount, destChain uint64
	)
	lockCmd := &cobra.Command{
		Use:   "lock [vault-id]",
		Short: "Lock funds of the sender for delivery on another chain and print the nonce",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			from, err := parseAddress("sender", sender)
			if err != nil {
				return err
			}
			to, err := parseAddress("recipient", recipient)
			if err != nil {
				return err
			}
			v, err := e.vault(args[0])
			if err != nil {
				return err
			}
			nonce, err := v.Lock(from, to, amount, destChain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), nonce)
			return nil
		}),
	}
	lockCmd.Flags().StringVar(&sender, "sender", "", "hex address the funds are taken from")
	lockCmd.Flags().StringVar(&recipient, "recipient", "", "hex address on the destination chain")
	lockCmd.Flags().Uint64Var(&amount, "amount", 0, "amount to lock")
	lockCmd.Flags().Uint64Var(&destChain, "dest-chain", 0, "destination chain id")

	releaseCmd := &cobra.Command{
		Use:   "release [vault-id] [submission-file]",
		Short: "Release escrowed funds for a signed and proven inbound transfer",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			v, err := e.vault(args[0])
			if err != nil {
				return err
			}
			s, err := loadSubmissionFor(args[1], v.InstanceID())
			if err != nil {
				return err
			}
			return v.Release(s.Tx, s.Proof, s.Signatures)
		}),
	}

	var admin string
	addChainCmd := &cobra.Command{
		Use:   "add-dest-chain [vault-id] [chain-id]",
		Short: "Allow locks to a destination chain",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			return updateVault(e, args, admin, (*bridge.Vault).AddDestChain)
		}),
	}
	removeChainCmd := &cobra.Command{
		Use:   "remove-dest-chain [vault-id] [chain-id]",
		Short: "Stop allowing locks to a destination chain",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			return updateVault(e, args, admin, (*bridge.Vault).RemoveDestChain)
		}),
	}
	for _, c := range []*cobra.Command{addChainCmd, removeChainCmd} {
		c.Flags().StringVar(&admin, "admin", "", "hex address of the vault admin")
	}

	showCmd := &cobra.Command{
		Use:   "show [vault-id]",
		Short: "Show the state of a vault",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			v, err := e.vault(args[0])
			if err != nil {
				return err
			}
			escrow, err := v.EscrowBalance()
			if err != nil {
				return err
			}
			processed, err := processedByChain(e, v.ProcessedNonces)
			if err != nil {
				return err
			}
			return printJSON(cmd, vaultStatus{
				ID:            v.ID(),
				Denom:         v.Denom(),
				Admin:         v.Admin(),
				Escrow:        v.EscrowAddress(),
				EscrowBalance: escrow,
				LocalNonce:    v.LocalNonce(),
				DestChains:    v.SupportedDestChains(),
				Relayers:      v.Relayers(),
				Processed:     processed,
			})
		}),
	}

	cmd.AddCommand(initCmd, lockCmd, releaseCmd, addChainCmd, removeChainCmd, showCmd)
	return cmd
}

type vaultStatus struct {
	ID            string              `json:"id"`
	Denom         string              `json:"denom"`
	Admin         crypto.Address      `json:"admin"`
	Escrow        crypto.Address      `json:"escrow"`
	EscrowBalance uint64              `json:"escrow_balance"`
	LocalNonce    uint64              `json:"local_nonce"`
	DestChains    []uint64            `json:"dest_chains"`
	Relayers      *types.RelayerSet   `json:"relayers"`
	Processed     map[uint64][]uint64 `json:"processed_nonces"`
}

func updateVault(e *env, args []string, admin string,
	op func(*bridge.Vault, crypto.Address, uint64) error) error {
	caller, err := parseAddress("admin", admin)
	if err != nil {
		return err
	}
	chainID, err := parseChainID(args[1])
	if err != nil {
		return err
	}
	v, err := e.vault(args[0])
	if err != nil {
		return err
	}
	return op(v, caller, chainID)
}

// processedByChain lists the processed nonces of every chain followed by a
// light client of the manifest.
func processedByChain(e *env, nonces func(uint64) ([]uint64, error)) (map[uint64][]uint64, error) {
	processed := make(map[uint64][]uint64, len(e.manifest.LightClients))
	for _, lc := range e.manifest.LightClients {
		ns, err := nonces(lc.ChainID)
		if err != nil {
			return nil, err
		}
		processed[lc.ChainID] = ns
	}
	return processed, nil
}

func loadSubmissionFor(path, instanceID string) (*relayer.Submission, error) {
	s, err := relayer.LoadSubmission(path)
	if err != nil {
		return nil, err
	}
	if s.InstanceID != instanceID {
		return nil, fmt.Errorf("submission is for %q, not %q", s.InstanceID, instanceID)
	}
	return s, nil
}

func parseAddress(name, s string) (crypto.Address, error) {
	var addr crypto.Address
	if err := addr.UnmarshalText([]byte(s)); err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	if len(addr) != crypto.AddressSize {
		return nil, fmt.Errorf("invalid --%s: expected %d bytes, got %d", name, crypto.AddressSize, len(addr))
	}
	return addr, nil
}
