package bridge

import (
	"fmt"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/ledger"
	"github.com/tendermint/bridge/libs/log"
	"github.com/tendermint/bridge/light"
	"github.com/tendermint/bridge/types"
)

// RootProvider returns the transaction root of a verified block of a remote
// chain.
type RootProvider interface {
	TxRoot(sourceChainID uint64, blockHash []byte) ([]byte, error)
}

// LightClients serves transaction roots from one light client per remote
// chain.
type LightClients map[uint64]*light.Client

var _ RootProvider = LightClients(nil)

// TxRoot implements RootProvider.
func (lc LightClients) TxRoot(sourceChainID uint64, blockHash []byte) ([]byte, error) {
	c, ok := lc[sourceChainID]
	if !ok {
		return nil, fmt.Errorf("no light client for chain %d", sourceChainID)
	}
	return c.TxRoot(blockHash)
}

// EventSink receives the events of committed operations.
type EventSink interface {
	Emit(instanceID string, ev types.Event) error
}

// NopEventSink drops all events.
type NopEventSink struct{}

func (NopEventSink) Emit(string, types.Event) error { return nil }

// MultiEventSink emits to every sink in turn.
type MultiEventSink []EventSink

func (ms MultiEventSink) Emit(instanceID string, ev types.Event) error {
	for _, s := range ms {
		if err := s.Emit(instanceID, ev); err != nil {
			return err
		}
	}
	return nil
}

// EscrowAddress returns the ledger account holding the escrow of the vault
// with the given id.
func EscrowAddress(vaultID string) crypto.Address {
	return ledger.ModuleAddress(VaultInstanceID(vaultID))
}

// VaultInstanceID is the instance id of a vault: it scopes the replay
// ledger, the relayer sign bytes and the event log.
func VaultInstanceID(id string) string {
	return "vault/" + id
}

// ControllerInstanceID is the instance id of a mint controller.
func ControllerInstanceID(id string) string {
	return "mint/" + id
}

// Option sets a parameter of a Vault or MintController.
type Option func(*instance)

// Logger option sets the logger.
func Logger(l log.Logger) Option {
	return func(i *instance) {
		i.logger = l
	}
}

// WithMetrics option sets the metrics.
func WithMetrics(m *Metrics) Option {
	return func(i *instance) {
		i.metrics = m
	}
}

// WithEventSink option sets where events go. Default: NopEventSink.
func WithEventSink(s EventSink) Option {
	return func(i *instance) {
		i.sink = s
	}
}

// instance holds what Vault and MintController have in common.
type instance struct {
	id string

	logger  log.Logger
	metrics *Metrics
	sink    EventSink
}

func newInstance(id string, options ...Option) instance {
	i := instance{
		id:      id,
		logger:  log.NewNopLogger(),
		metrics: NopMetrics(),
		sink:    NopEventSink{},
	}
	for _, o := range options {
		o(&i)
	}
	i.logger = i.logger.With("module", "bridge", "instance", id)
	return i
}

// emit hands ev to the sink. The operation that produced ev has already
// committed, so a sink failure is only logged.
func (i *instance) emit(ev types.Event) {
	if err := i.sink.Emit(i.id, ev); err != nil {
		i.logger.Error("failed to emit event", "type", ev.EventType(), "err", err)
	}
}

func (i *instance) rejected(op string, err error) error {
	i.metrics.Rejected.With("instance", i.id, "reason", rejectReason(err)).Add(1)
	i.logger.Debug("rejected", "op", op, "err", err)
	return err
}

// mustWrite writes a batch whose effects on the ledger have already been
// applied. A write failure leaves the store behind the ledger, which nothing
// can repair automatically.
func mustWrite(b interface{ Write() error }) {
	if err := b.Write(); err != nil {
		panic(fmt.Sprintf("failed to write bridge state: %v", err))
	}
}
