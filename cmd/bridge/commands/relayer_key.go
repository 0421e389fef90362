package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/bridge/config"
	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/crypto/encoding"
	"github.com/tendermint/bridge/libs/log"
	tmos "github.com/tendermint/bridge/libs/os"
	"github.com/tendermint/bridge/relayer"
)

// MakeGenRelayerKeyCommand returns the command that generates the relayer
// key of this home and prints its address.
func MakeGenRelayerKeyCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "gen-relayer-key",
		Short: "Generate a relayer key and print its address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keyFile := conf.RelayerKeyFile()
			if tmos.FileExists(keyFile) {
				return fmt.Errorf("relayer key at %s already exists", keyFile)
			}

			key := relayer.GenFileKey(keyFile)
			if err := key.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key.Address)
			return nil
		},
	}
}

// relayerInfo is what show-relayer prints. The pub_key can be pasted into
// the relayers list of a manifest entry.
type relayerInfo struct {
	Address crypto.Address     `json:"address"`
	PubKey  encoding.PublicKey `json:"pub_key"`
}

// MakeShowRelayerCommand returns the command that prints the relayer key's
// public information.
func MakeShowRelayerCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "show-relayer",
		Short: "Show this home's relayer address and public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keyFile := conf.RelayerKeyFile()
			if !tmos.FileExists(keyFile) {
				return fmt.Errorf("relayer key file %s does not exist", keyFile)
			}
			key, err := relayer.LoadFileKey(keyFile)
			if err != nil {
				return err
			}
			pk, err := encoding.PubKeyToWire(key.PubKey)
			if err != nil {
				return err
			}
			return printJSON(cmd, relayerInfo{Address: key.Address, PubKey: pk})
		},
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return nil
}
