package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tendermint/bridge/cmd/bridge/commands"
	"github.com/tendermint/bridge/config"
	"github.com/tendermint/bridge/libs/cli"
	"github.com/tendermint/bridge/libs/log"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf := config.DefaultConfig()
	logger, err := log.NewDefaultLogger(conf.LogFormat, conf.LogLevel)
	if err != nil {
		panic(err)
	}

	rcmd := commands.RootCommand(conf, logger)
	rcmd.AddCommand(
		commands.MakeInitCommand(conf, logger),
		commands.MakeGenRelayerKeyCommand(conf, logger),
		commands.MakeShowRelayerCommand(conf, logger),
		commands.MakeLightCommand(conf, logger),
		commands.MakeVaultCommand(conf, logger),
		commands.MakeMintCommand(conf, logger),
		commands.MakeLedgerCommand(conf, logger),
		commands.MakeRelayCommand(conf, logger),
		commands.VersionCmd,
	)

	if err := cli.RunWithTrace(ctx, rcmd); err != nil {
		os.Exit(1)
	}
}
