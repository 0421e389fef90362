// Package indexer builds the event sinks selected by the [tx-index] section
// of the configuration.
package indexer

import (
	"errors"
	"fmt"
	"strings"

	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/bridge"
	"github.com/tendermint/bridge/config"
	"github.com/tendermint/bridge/indexer/psql"
	"github.com/tendermint/bridge/store"
)

// Sink types.
const (
	NULL = "null"
	KV   = "kv"
	PSQL = "psql"
)

// EventSinksFromConfig constructs the event sinks named by cfg.TxIndex. The kv
// sink is an event log kept in db, next to the bridge state. The psql schema
// is installed when missing.
func EventSinksFromConfig(cfg *config.Config, db dbm.DB) ([]bridge.EventSink, error) {
	if len(cfg.TxIndex.Indexer) == 0 {
		return []bridge.EventSink{bridge.NopEventSink{}}, nil
	}

	// check for duplicated sinks
	sinks := map[string]struct{}{}
	order := make([]string, 0, len(cfg.TxIndex.Indexer))
	for _, s := range cfg.TxIndex.Indexer {
		sl := strings.ToLower(s)
		if _, ok := sinks[sl]; ok {
			return nil, errors.New("found duplicated sinks, please check the tx-index section in the config.toml")
		}
		sinks[sl] = struct{}{}
		order = append(order, sl)
	}

	eventSinks := []bridge.EventSink{}
	for _, k := range order {
		switch k {
		case NULL:
			// When we see null in the config, the eventsinks will be reset with the
			// nop sink.
			return []bridge.EventSink{bridge.NopEventSink{}}, nil

		case KV:
			eventSinks = append(eventSinks, store.NewEventLog(db))

		case PSQL:
			conn := cfg.TxIndex.PsqlConn
			if conn == "" {
				return nil, errors.New("the psql connection settings cannot be empty")
			}

			es, err := psql.NewEventSink(conn)
			if err != nil {
				return nil, err
			}
			if err := es.InstallSchema(); err != nil {
				return nil, fmt.Errorf("installing psql schema: %w", err)
			}
			eventSinks = append(eventSinks, es)
		default:
			return nil, fmt.Errorf("unsupported event sink type %q", k)
		}
	}
	return eventSinks, nil
}

// EventLog returns the kv event log among sinks, if any.
func EventLog(sinks []bridge.EventSink) (*store.EventLog, bool) {
	for _, s := range sinks {
		if l, ok := s.(*store.EventLog); ok {
			return l, true
		}
	}
	return nil, false
}

// Stop releases the resources held by sinks.
func Stop(sinks []bridge.EventSink) error {
	var errs []string
	for _, s := range sinks {
		if st, ok := s.(interface{ Stop() error }); ok {
			if err := st.Stop(); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("stopping event sinks: %s", strings.Join(errs, "; "))
	}
	return nil
}
