package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tendermint/bridge/config"
	tmbytes "github.com/tendermint/bridge/libs/bytes"
	"github.com/tendermint/bridge/libs/log"
	"github.com/tendermint/bridge/types"
)

// MakeLightCommand returns the light client commands.
func MakeLightCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "light",
		Short: "Follow the headers of remote chains",
	}

	initCmd := &cobra.Command{
		Use:   "init [chain-id]",
		Short: "Seed the light client of a chain with the genesis header named by the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			chainID, err := parseChainID(args[0])
			if err != nil {
				return err
			}
			c, err := e.initLightClient(chainID)
			if err != nil {
				return err
			}
			return printJSON(cmd, lightStatus(c.ChainID(), c.FinalityDepth(), c.LatestHeader(),
				len(c.TrustedHeaders()), c.FinalizedCount()))
		}),
	}

	var proof string
	updateCmd := &cobra.Command{
		Use:   "update [chain-id] [header-file]",
		Short: "Append a header read from a JSON file to the light client of a chain",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			chainID, err := parseChainID(args[0])
			if err != nil {
				return err
			}
			header, err := loadHeader(args[1])
			if err != nil {
				return err
			}
			var proofBz tmbytes.HexBytes
			if err := proofBz.UnmarshalText([]byte(proof)); err != nil {
				return fmt.Errorf("invalid --proof: %w", err)
			}

			c, err := e.lightClient(chainID)
			if err != nil {
				return err
			}
			if err := c.UpdateHeader(header, proofBz); err != nil {
				return err
			}
			logger.Info("updated light client", "chain", chainID, "number", header.Number, "hash", header.Hash)
			return nil
		}),
	}
	updateCmd.Flags().StringVar(&proof, "proof", "", "hex encoded proof that the header is valid on its chain")

	showCmd := &cobra.Command{
		Use:   "show [chain-id]",
		Short: "Show the state of the light client of a chain",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			chainID, err := parseChainID(args[0])
			if err != nil {
				return err
			}
			c, err := e.lightClient(chainID)
			if err != nil {
				return err
			}
			return printJSON(cmd, lightStatus(c.ChainID(), c.FinalityDepth(), c.LatestHeader(),
				len(c.TrustedHeaders()), c.FinalizedCount()))
		}),
	}

	cmd.AddCommand(initCmd, updateCmd, showCmd)
	return cmd
}

type lightClientStatus struct {
	ChainID       uint64             `json:"chain_id"`
	FinalityDepth int                `json:"finality_depth"`
	Latest        *types.BlockHeader `json:"latest"`
	Trusted       int                `json:"trusted"`
	Finalized     uint64             `json:"finalized"`
}

func lightStatus(chainID uint64, depth int, latest *types.BlockHeader, trusted int,
	finalized uint64) lightClientStatus {
	return lightClientStatus{
		ChainID:       chainID,
		FinalityDepth: depth,
		Latest:        latest,
		Trusted:       trusted,
		Finalized:     finalized,
	}
}

func parseChainID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	return id, nil
}

func loadHeader(path string) (*types.BlockHeader, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	h := new(types.BlockHeader)
	if err := json.Unmarshal(bz, h); err != nil {
		return nil, fmt.Errorf("decoding header %v: %w", path, err)
	}
	return h, nil
}
