package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/bridge/version"
)

var verbose bool

// VersionCmd prints the version.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return nil
		}
		values, err := json.MarshalIndent(struct {
			Bridge        string `json:"bridge"`
			StateProtocol uint64 `json:"state_protocol"`
			SignProtocol  uint64 `json:"sign_protocol"`
		}{
			Bridge:        version.Version,
			StateProtocol: version.StateProtocol.Uint64(),
			SignProtocol:  version.SignProtocol.Uint64(),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(values))
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show protocol versions")
}
