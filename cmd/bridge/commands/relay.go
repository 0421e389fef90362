package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendermint/bridge/config"
	"github.com/tendermint/bridge/indexer"
	tmbytes "github.com/tendermint/bridge/libs/bytes"
	"github.com/tendermint/bridge/libs/log"
	"github.com/tendermint/bridge/relayer"
	"github.com/tendermint/bridge/types"
)

// MakeRelayCommand returns the commands relayers use to build, sign and
// observe cross-chain transfers.
func MakeRelayCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Build, sign and observe cross-chain transfers",
	}

	var parentFile string
	headerCmd := &cobra.Command{
		Use:   "make-header [txs-file]",
		Short: "Print the header of a block holding the transactions of a JSON file",
		Long: `Print the header of a block holding the transactions of a JSON file. The
header extends the one in --parent. It is what a remote chain of a test network
would produce; feed it to "light update".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := loadTxs(args[0])
			if err != nil {
				return err
			}
			parent, err := loadHeader(parentFile)
			if err != nil {
				return err
			}
			root := relayer.TxRoot(txs)
			h := types.NewBlockHeader(parent.Hash, parent.StateRoot, root, parent.Number+1, time.Now())
			return printJSON(cmd, h)
		},
	}
	headerCmd.Flags().StringVar(&parentFile, "parent", "", "JSON file of the parent header")

	var (
		instanceID, blockHash, out string
	)
	proveCmd := &cobra.Command{
		Use:   "prove [txs-file] [index]",
		Short: "Write an unsigned submission proving one transaction of a block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := loadTxs(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			if index < 0 || index >= len(txs) {
				return fmt.Errorf("index %d out of range [0, %d)", index, len(txs))
			}
			var hash tmbytes.HexBytes
			if err := hash.UnmarshalText([]byte(blockHash)); err != nil {
				return fmt.Errorf("invalid --block-hash: %w", err)
			}
			for _, tx := range txs {
				tx.BlockHash = hash
			}

			s, err := relayer.NewSubmission(instanceID, txs, index)
			if err != nil {
				return err
			}
			if err := s.ValidateBasic(); err != nil {
				return err
			}
			return s.Save(out)
		},
	}
	proveCmd.Flags().StringVar(&instanceID, "instance", "", "instance the transfer is for, e.g. vault/atom or mint/weth")
	proveCmd.Flags().StringVar(&blockHash, "block-hash", "", "hex hash of the block holding the transactions")
	proveCmd.Flags().StringVar(&out, "out", "submission.json", "file to write the submission to")

	signCmd := &cobra.Command{
		Use:   "sign [submission-file]",
		Short: "Add this home's relayer signature to a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := relayer.LoadFileKey(conf.RelayerKeyFile())
			if err != nil {
				return err
			}
			s, err := relayer.LoadSubmission(args[0])
			if err != nil {
				return err
			}
			if err := s.ValidateBasic(); err != nil {
				return err
			}
			if err := s.Sign(key); err != nil {
				return err
			}
			logger.Info("signed submission", "instance", s.InstanceID, "nonce", s.Tx.Nonce,
				"relayer", key.Address, "signatures", len(s.Signatures))
			return s.Save(args[0])
		},
	}

	var after uint64
	eventsCmd := &cobra.Command{
		Use:   "events [instance-id]",
		Short: "Print the events of an instance from the kv event log",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(conf, logger, func(cmd *cobra.Command, args []string, e *env) error {
			l, ok := indexer.EventLog(e.sinks)
			if !ok {
				return fmt.Errorf("the kv indexer is not enabled in %v", conf.TxIndex.Indexer)
			}
			records, err := l.Events(args[0], after)
			if err != nil {
				return err
			}
			return printJSON(cmd, records)
		}),
	}
	eventsCmd.Flags().Uint64Var(&after, "after", 0, "only print events with a greater sequence number")

	cmd.AddCommand(headerCmd, proveCmd, signCmd, eventsCmd)
	return cmd
}

func loadTxs(path string) ([]*types.CrossChainTx, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var txs []*types.CrossChainTx
	if err := json.Unmarshal(bz, &txs); err != nil {
		return nil, fmt.Errorf("decoding transactions %v: %w", path, err)
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("no transactions in %v", path)
	}
	return txs, nil
}
