package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tendermint/bridge/config"
	"github.com/tendermint/bridge/libs/cli"
	"github.com/tendermint/bridge/libs/log"
)

// ParseConfig retrieves the default environment configuration,
// sets up the bridge root and ensures that the root exists
func ParseConfig(conf *config.Config) (*config.Config, error) {
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}

	conf.SetRoot(conf.RootDir)

	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return conf, nil
}

// RootCommand constructs the root command-line entry point for the bridge.
func RootCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Lock, mint, burn and release assets across chains",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == VersionCmd.Name() {
				return nil
			}

			pconf, err := ParseConfig(conf)
			if err != nil {
				return err
			}
			*conf = *pconf
			config.EnsureRoot(conf.RootDir)
			return log.OverrideWithNewLogger(logger, conf.LogFormat, conf.LogLevel)
		},
	}
	cmd.PersistentFlags().String("log-level", conf.LogLevel, "log level")
	return cli.PrepareBaseCmd(cmd, "BRIDGE", os.ExpandEnv(filepath.Join("$HOME", config.DefaultBridgeDir)))
}

// withEnv wraps a command body that needs the bridge databases.
func withEnv(conf *config.Config, logger log.Logger,
	run func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		e, err := openEnv(conf, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := e.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return run(cmd, args, e)
	}
}
