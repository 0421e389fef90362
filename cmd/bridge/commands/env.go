package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/bridge"
	"github.com/tendermint/bridge/config"
	"github.com/tendermint/bridge/indexer"
	"github.com/tendermint/bridge/ledger"
	"github.com/tendermint/bridge/ledger/account"
	"github.com/tendermint/bridge/ledger/object"
	"github.com/tendermint/bridge/libs/log"
	tmos "github.com/tendermint/bridge/libs/os"
	"github.com/tendermint/bridge/light"
	lightstore "github.com/tendermint/bridge/light/store"
	lightdb "github.com/tendermint/bridge/light/store/db"
	"github.com/tendermint/bridge/store"
)

// env holds the databases and components a bridge command works with. It
// lives for a single command invocation.
type env struct {
	conf     *config.Config
	logger   log.Logger
	manifest *config.Manifest

	stateDB  dbm.DB
	ledgerDB dbm.DB
	lightDB  dbm.DB

	store store.Store
	bank  ledger.Bank
	sinks []bridge.EventSink

	bridgeMetrics *bridge.Metrics
	lightMetrics  *light.Metrics
}

// openEnv opens the databases of the home directory. The manifest is loaded
// when present.
func openEnv(conf *config.Config, logger log.Logger) (e *env, err error) {
	e = &env{
		conf:          conf,
		logger:        logger,
		bridgeMetrics: bridge.NopMetrics(),
		lightMetrics:  light.NopMetrics(),
	}
	defer func() {
		if err != nil {
			e.closeDBs()
		}
	}()

	if conf.Instrumentation.Prometheus {
		e.bridgeMetrics = bridge.PrometheusMetrics(conf.Instrumentation.Namespace)
		e.lightMetrics = light.PrometheusMetrics(conf.Instrumentation.Namespace)
	}

	if e.stateDB, err = config.DefaultDBProvider(&config.DBContext{ID: "bridge", Config: conf}); err != nil {
		return nil, err
	}
	if e.ledgerDB, err = config.DefaultDBProvider(&config.DBContext{ID: "ledger", Config: conf}); err != nil {
		return nil, err
	}
	if e.lightDB, err = config.DefaultDBProvider(&config.DBContext{ID: "light", Config: conf}); err != nil {
		return nil, err
	}

	e.store = store.NewStore(e.stateDB)

	switch conf.Ledger {
	case config.LedgerAccount:
		e.bank = account.NewBank(e.ledgerDB)
	case config.LedgerObject:
		e.bank = object.NewBank(e.ledgerDB)
	default:
		return nil, fmt.Errorf("unknown ledger %q", conf.Ledger)
	}

	if e.sinks, err = indexer.EventSinksFromConfig(conf, e.stateDB); err != nil {
		return nil, err
	}

	e.manifest = &config.Manifest{}
	if tmos.FileExists(conf.ManifestFile()) {
		if e.manifest, err = config.LoadManifest(conf.ManifestFile()); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Close pushes metrics when enabled and releases everything env opened.
func (e *env) Close() error {
	var pushErr error
	if e.conf.Instrumentation.Prometheus {
		pushErr = push.New(e.conf.Instrumentation.PrometheusPushGateway, e.conf.Instrumentation.Namespace).
			Gatherer(prometheus.DefaultGatherer).
			Push()
		if pushErr != nil {
			e.logger.Error("failed to push metrics", "gateway", e.conf.Instrumentation.PrometheusPushGateway,
				"err", pushErr)
		}
	}
	if err := indexer.Stop(e.sinks); err != nil {
		e.logger.Error("failed to stop event sinks", "err", err)
	}
	return e.closeDBs()
}

func (e *env) closeDBs() error {
	var firstErr error
	for _, db := range []dbm.DB{e.stateDB, e.ledgerDB, e.lightDB} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *env) bridgeOptions() []bridge.Option {
	return []bridge.Option{
		bridge.Logger(e.logger),
		bridge.WithMetrics(e.bridgeMetrics),
		bridge.WithEventSink(bridge.MultiEventSink(e.sinks)),
	}
}

func (e *env) lightStore(chainID uint64) lightstore.Store {
	return lightdb.New(e.lightDB, "chain/"+strconv.FormatUint(chainID, 10))
}

func (e *env) lightOptions(lc config.LightClientManifest) []light.Option {
	depth := e.conf.Light.FinalityDepth
	if lc.FinalityDepth > 0 {
		depth = lc.FinalityDepth
	}
	return []light.Option{
		light.FinalityDepth(depth),
		light.Logger(e.logger),
		light.WithMetrics(e.lightMetrics),
	}
}

// initLightClient seeds the light client of chainID with the genesis header
// named by the manifest.
func (e *env) initLightClient(chainID uint64) (*light.Client, error) {
	lc, ok := e.manifest.LightClient(chainID)
	if !ok {
		return nil, fmt.Errorf("no light client for chain %d in %v", chainID, e.conf.ManifestFile())
	}
	genesis, err := lc.Genesis(e.conf.RootDir)
	if err != nil {
		return nil, err
	}
	return light.NewClient(chainID, genesis, e.lightStore(chainID), e.lightOptions(lc)...)
}

// lightClient restores the light client of chainID.
func (e *env) lightClient(chainID uint64) (*light.Client, error) {
	lc, ok := e.manifest.LightClient(chainID)
	if !ok {
		return nil, fmt.Errorf("no light client for chain %d in %v", chainID, e.conf.ManifestFile())
	}
	return light.NewClientFromTrustedStore(chainID, e.lightStore(chainID), e.lightOptions(lc)...)
}

// lightClients restores every initialized light client of the manifest.
func (e *env) lightClients() (bridge.LightClients, error) {
	clients := make(bridge.LightClients, len(e.manifest.LightClients))
	for _, lc := range e.manifest.LightClients {
		c, err := e.lightClient(lc.ChainID)
		if errors.Is(err, light.ErrNotInitialized) {
			e.logger.Debug("skipping uninitialized light client", "chain", lc.ChainID)
			continue
		}
		if err != nil {
			return nil, err
		}
		clients[lc.ChainID] = c
	}
	return clients, nil
}

func (e *env) initVault(id string) (*bridge.Vault, error) {
	vm, ok := e.manifest.Vault(id)
	if !ok {
		return nil, fmt.Errorf("no vault %q in %v", id, e.conf.ManifestFile())
	}
	params, err := vm.Params()
	if err != nil {
		return nil, err
	}
	roots, err := e.lightClients()
	if err != nil {
		return nil, err
	}
	return bridge.InitVault(e.store, e.bank, roots, params, e.bridgeOptions()...)
}

func (e *env) vault(id string) (*bridge.Vault, error) {
	roots, err := e.lightClients()
	if err != nil {
		return nil, err
	}
	return bridge.LoadVault(e.store, e.bank, roots, id, e.bridgeOptions()...)
}

func (e *env) initController(id string) (*bridge.MintController, error) {
	mm, ok := e.manifest.MintController(id)
	if !ok {
		return nil, fmt.Errorf("no mint controller %q in %v", id, e.conf.ManifestFile())
	}
	params, err := mm.Params()
	if err != nil {
		return nil, err
	}
	roots, err := e.lightClients()
	if err != nil {
		return nil, err
	}
	return bridge.InitMintController(e.store, e.bank, roots, params, e.bridgeOptions()...)
}

func (e *env) controller(id string) (*bridge.MintController, error) {
	roots, err := e.lightClients()
	if err != nil {
		return nil, err
	}
	return bridge.LoadMintController(e.store, e.bank, roots, id, e.bridgeOptions()...)
}
