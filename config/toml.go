package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/creachadair/atomicfile"

	tmos "github.com/tendermint/bridge/libs/os"
)

// defaultDirPerm is the default permissions used when creating directories.
const defaultDirPerm = 0700

var configTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("configFileTemplate").Funcs(template.FuncMap{
		"StringsJoin": strings.Join,
	})
	if configTemplate, err = tmpl.Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

/****** these are for production settings ***********/

// EnsureRoot creates the root, config, and data directories if they don't exist,
// and panics if it fails.
func EnsureRoot(rootDir string) {
	if err := tmos.EnsureDir(rootDir, defaultDirPerm); err != nil {
		panic(err.Error())
	}
	if err := tmos.EnsureDir(filepath.Join(rootDir, defaultConfigDir), defaultDirPerm); err != nil {
		panic(err.Error())
	}
	if err := tmos.EnsureDir(filepath.Join(rootDir, defaultDataDir), defaultDirPerm); err != nil {
		panic(err.Error())
	}
}

// WriteConfigFile renders config using the template and writes it to
// rootDir/config/config.toml.
func WriteConfigFile(rootDir string, config *Config) error {
	return config.WriteToTemplate(filepath.Join(rootDir, defaultConfigFilePath))
}

// WriteToTemplate writes the config to the exact file specified by
// the path, in the default toml template and does not mangle the path
// or filename at all.
func (cfg *Config) WriteToTemplate(path string) error {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return err
	}

	return writeFile(path, buffer.Bytes(), 0644)
}

// WriteDefaultConfigFileIfNone writes the default config.toml unless one
// is already in place.
func WriteDefaultConfigFileIfNone(rootDir string) error {
	configFilePath := filepath.Join(rootDir, defaultConfigFilePath)
	if !tmos.FileExists(configFilePath) {
		return WriteConfigFile(rootDir, DefaultConfig())
	}
	return nil
}

func writeFile(path string, data []byte, mode os.FileMode) error {
	_, err := atomicfile.WriteAll(path, bytes.NewReader(data), mode)
	return err
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

# NOTE: Any path below can be absolute (e.g. "/var/bridge/data") or
# relative to the home directory (e.g. "data"). The home directory is
# "$HOME/.bridge" by default, but could be changed via $BRIDGE_HOME env variable
# or --home cmd flag.

#######################################################################
###                   Main Base Config Options                      ###
#######################################################################

# Database backend: goleveldb | memdb
# * goleveldb (github.com/syndtr/goleveldb - most popular implementation)
#   - pure go
#   - stable
# * memdb
#   - nothing survives the process, for testing only
db-backend = "{{ .BaseConfig.DBBackend }}"

# Database directory
db-dir = "{{ js .BaseConfig.DBPath }}"

# Output level for logging: debug | info | error
log-level = "{{ .BaseConfig.LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log-format = "{{ .BaseConfig.LogFormat }}"

# How the local ledger keeps balances: account | object
ledger = "{{ .BaseConfig.Ledger }}"

# Path to the TOML file describing the vaults, mint controllers and light
# clients of this deployment
manifest-file = "{{ js .BaseConfig.Manifest }}"

# Path to the JSON file containing the relayer's private key
relayer-key-file = "{{ js .BaseConfig.RelayerKey }}"

#######################################################################
###                 Light Client Configuration Options              ###
#######################################################################
[light]

# Number of most recent headers a light client keeps as trusted; older
# headers are finalized. A light client entry of the manifest may override it.
finality-depth = {{ .Light.FinalityDepth }}

#######################################################################
###                   Event Indexer Configuration Options           ###
#######################################################################
[tx-index]

# The backend database list to back the indexer.
# If list contains "null", meaning no indexer service will be used.
#
# Options:
#   1) "null"
#   2) "kv" (default) - events are appended to the event log in the bridge
#      database and can be listed per instance.
#   3) "psql" - events are inserted into a PostgreSQL database.
indexer = [{{ range $i, $e := .TxIndex.Indexer }}{{ if $i }}, {{ end }}{{ printf "%q" $e }}{{ end }}]

# The PostgreSQL connection configuration, the connection format:
#   postgresql://<user>:<password>@<host>:<port>/<db>?<opts>
psql-conn = "{{ js .TxIndex.PsqlConn }}"

#######################################################################
###                   Instrumentation Configuration Options         ###
#######################################################################
[instrumentation]

# When true, Prometheus metrics are recorded and pushed to
# prometheus-push-gateway after every command.
prometheus = {{ .Instrumentation.Prometheus }}

# Address of the Prometheus push gateway.
prometheus-push-gateway = "{{ .Instrumentation.PrometheusPushGateway }}"

# Instrumentation namespace
namespace = "{{ .Instrumentation.Namespace }}"
`
