package commands

import (
	"github.com/spf13/cobra"

	"github.com/tendermint/bridge/config"
	"github.com/tendermint/bridge/libs/log"
	tmos "github.com/tendermint/bridge/libs/os"
	"github.com/tendermint/bridge/relayer"
)

// MakeInitCommand returns the command that initializes a bridge home: the
// config file, an empty manifest and a relayer key.
func MakeInitCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a bridge home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initFiles(conf, logger)
		},
	}
}

func initFiles(conf *config.Config, logger log.Logger) error {
	if err := config.WriteDefaultConfigFileIfNone(conf.RootDir); err != nil {
		return err
	}

	manifestFile := conf.ManifestFile()
	if tmos.FileExists(manifestFile) {
		logger.Info("Found manifest", "path", manifestFile)
	} else {
		if err := (&config.Manifest{}).Save(manifestFile); err != nil {
			return err
		}
		logger.Info("Generated manifest", "path", manifestFile)
	}

	keyFile := conf.RelayerKeyFile()
	if tmos.FileExists(keyFile) {
		logger.Info("Found relayer key", "path", keyFile)
		return nil
	}
	key := relayer.GenFileKey(keyFile)
	if err := key.Save(); err != nil {
		return err
	}
	logger.Info("Generated relayer key", "path", keyFile, "address", key.Address)
	return nil
}
