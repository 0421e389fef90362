package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tendermint/bridge/light"
)

const (
	// LogFormatPlain is a format for colored text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"

	// LedgerAccount keeps balances in an account table.
	LedgerAccount = "account"
	// LedgerObject keeps balances as coin objects.
	LedgerObject = "object"
)

// NOTE: Most of the structs & relevant comments + the
// default configuration options were used to manually
// generate the config.toml. Please reflect any changes
// made here in the defaultConfigTemplate constant in
// config/toml.go
// NOTE: libs/cli must know to look in the config dir!
var (
	DefaultBridgeDir = ".bridge"
	defaultConfigDir = "config"
	defaultDataDir   = "data"

	defaultConfigFileName   = "config.toml"
	defaultManifestFileName = "bridge.toml"
	defaultRelayerKeyName   = "relayer_key.json"

	defaultConfigFilePath = filepath.Join(defaultConfigDir, defaultConfigFileName)
	defaultManifestPath   = filepath.Join(defaultConfigDir, defaultManifestFileName)
	defaultRelayerKeyPath = filepath.Join(defaultConfigDir, defaultRelayerKeyName)
)

// Config defines the top level configuration of a bridge home.
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	// Options for services
	Light           *LightConfig           `mapstructure:"light"`
	TxIndex         *TxIndexConfig         `mapstructure:"tx-index"`
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseConfig:      DefaultBaseConfig(),
		Light:           DefaultLightConfig(),
		TxIndex:         DefaultTxIndexConfig(),
		Instrumentation: DefaultInstrumentationConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing
func TestConfig() *Config {
	return &Config{
		BaseConfig:      TestBaseConfig(),
		Light:           DefaultLightConfig(),
		TxIndex:         TestTxIndexConfig(),
		Instrumentation: TestInstrumentationConfig(),
	}
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.Light.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [light] section: %w", err)
	}
	if err := cfg.TxIndex.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [tx-index] section: %w", err)
	}
	if err := cfg.Instrumentation.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [instrumentation] section: %w", err)
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration of a bridge home.
type BaseConfig struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Database backend: goleveldb | memdb
	// * goleveldb (github.com/syndtr/goleveldb - most popular implementation)
	//   - pure go
	//   - stable
	// * memdb
	//   - nothing survives the process, for testing only
	DBBackend string `mapstructure:"db-backend"`

	// Database directory
	DBPath string `mapstructure:"db-dir"`

	// Output level for logging
	LogLevel string `mapstructure:"log-level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log-format"`

	// How the local ledger keeps balances: account | object
	Ledger string `mapstructure:"ledger"`

	// Path to the TOML file describing the vaults, mint controllers and
	// light clients of this deployment
	Manifest string `mapstructure:"manifest-file"`

	// Path to the JSON file containing the relayer's private key
	RelayerKey string `mapstructure:"relayer-key-file"`
}

// DefaultBaseConfig returns a default base configuration.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		DBBackend:  "goleveldb",
		DBPath:     defaultDataDir,
		LogLevel:   DefaultLogLevel,
		LogFormat:  LogFormatPlain,
		Ledger:     LedgerAccount,
		Manifest:   defaultManifestPath,
		RelayerKey: defaultRelayerKeyPath,
	}
}

// TestBaseConfig returns a base configuration for testing.
func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.DBBackend = "memdb"
	return cfg
}

// ManifestFile returns the full path to the bridge.toml file
func (cfg BaseConfig) ManifestFile() string {
	return rootify(cfg.Manifest, cfg.RootDir)
}

// RelayerKeyFile returns the full path to the relayer_key.json file
func (cfg BaseConfig) RelayerKeyFile() string {
	return rootify(cfg.RelayerKey, cfg.RootDir)
}

// DBDir returns the full path to the database directory
func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return errors.New("unknown log-format (must be 'plain' or 'json')")
	}
	switch cfg.Ledger {
	case LedgerAccount, LedgerObject:
	default:
		return fmt.Errorf("unknown ledger %q (must be %q or %q)", cfg.Ledger, LedgerAccount, LedgerObject)
	}
	switch cfg.DBBackend {
	case "goleveldb", "memdb":
	default:
		return fmt.Errorf("unsupported db-backend %q", cfg.DBBackend)
	}
	return nil
}

// DefaultLogLevel is the log level of a fresh home.
const DefaultLogLevel = "info"

//-----------------------------------------------------------------------------
// LightConfig

// LightConfig defines the light client defaults. A light client entry of the
// manifest may override them.
type LightConfig struct {
	// Number of most recent headers a light client keeps as trusted; older
	// headers are finalized.
	FinalityDepth int `mapstructure:"finality-depth"`
}

// DefaultLightConfig returns the default light client configuration.
func DefaultLightConfig() *LightConfig {
	return &LightConfig{
		FinalityDepth: light.DefaultFinalityDepth,
	}
}

// ValidateBasic performs basic validation.
func (cfg *LightConfig) ValidateBasic() error {
	if cfg.FinalityDepth < 1 {
		return errors.New("finality-depth must be positive")
	}
	return nil
}

//-----------------------------------------------------------------------------
// TxIndexConfig

// TxIndexConfig defines where bridge events are indexed.
type TxIndexConfig struct {
	// The backend database list to back the indexer.
	// If list contains `null`, meaning no indexer service will be used.
	//
	// Options:
	//   1) "null" (default) - no indexer services.
	//   2) "kv" - events are appended to the event log in the bridge database
	//      and can be listed per instance.
	//   3) "psql" - events are inserted into a PostgreSQL database.
	Indexer []string `mapstructure:"indexer"`

	// The PostgreSQL connection configuration, the connection format:
	// postgresql://<user>:<password>@<host>:<port>/<db>?<opts>
	PsqlConn string `mapstructure:"psql-conn"`
}

// DefaultTxIndexConfig returns a default configuration for the event indexer.
func DefaultTxIndexConfig() *TxIndexConfig {
	return &TxIndexConfig{
		Indexer: []string{"kv"},
	}
}

// TestTxIndexConfig returns a default configuration for the event indexer.
func TestTxIndexConfig() *TxIndexConfig {
	return DefaultTxIndexConfig()
}

// ValidateBasic performs basic validation.
func (cfg *TxIndexConfig) ValidateBasic() error {
	for _, indexer := range cfg.Indexer {
		switch indexer {
		case "null", "kv":
		case "psql":
			if cfg.PsqlConn == "" {
				return errors.New("psql indexer requires psql-conn")
			}
		default:
			return fmt.Errorf("unsupported indexer %q", indexer)
		}
	}
	return nil
}

//-----------------------------------------------------------------------------
// InstrumentationConfig

// InstrumentationConfig defines the configuration for metrics reporting.
type InstrumentationConfig struct {
	// When true, Prometheus metrics are recorded and pushed to
	// PrometheusPushGateway after every command.
	Prometheus bool `mapstructure:"prometheus"`

	// Address of the Prometheus push gateway.
	PrometheusPushGateway string `mapstructure:"prometheus-push-gateway"`

	// Instrumentation namespace.
	Namespace string `mapstructure:"namespace"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus:            false,
		PrometheusPushGateway: "http://127.0.0.1:9091",
		Namespace:             "bridge",
	}
}

// TestInstrumentationConfig returns a default configuration for metrics
// reporting.
func TestInstrumentationConfig() *InstrumentationConfig {
	return DefaultInstrumentationConfig()
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.Prometheus && cfg.PrometheusPushGateway == "" {
		return errors.New("prometheus requires prometheus-push-gateway")
	}
	if cfg.Namespace == "" {
		return errors.New("empty namespace")
	}
	return nil
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
