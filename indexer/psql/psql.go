// Package psql implements an event sink backed by a PostgreSQL database.
package psql

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/adlio/schema"

	"github.com/tendermint/bridge/bridge"
	"github.com/tendermint/bridge/types"

	// Register the Postgres database driver.
	_ "github.com/lib/pq"
)

const (
	TableEvents = "bridge_events"
	DriverName  = "postgres"

	schemaMigrationID = "2022-05-01 bridge events"
)

//go:embed schema.sql
var schemaScript string

var _ bridge.EventSink = (*EventSink)(nil)

// EventSink stores bridge events in a PostgreSQL database using the schema
// defined in indexer/psql/schema.sql.
type EventSink struct {
	store *sql.DB
}

// NewEventSink constructs an event sink associated with the PostgreSQL
// database specified by connStr. The connection is opened lazily.
func NewEventSink(connStr string) (*EventSink, error) {
	db, err := sql.Open(DriverName, connStr)
	if err != nil {
		return nil, err
	}

	return &EventSink{
		store: db,
	}, nil
}

// DB returns the underlying Postgres connection used by the sink.
// This is exported to support testing.
func (es *EventSink) DB() *sql.DB { return es.store }

// Migrations returns the schema migrations of the sink.
func Migrations() []*schema.Migration {
	return []*schema.Migration{{
		ID:     schemaMigrationID,
		Script: schemaScript,
	}}
}

// InstallSchema applies the sink's schema to the database. Migrations that
// have already been applied are skipped.
func (es *EventSink) InstallSchema() error {
	return schema.NewMigrator().Apply(es.store, Migrations())
}

// Emit implements bridge.EventSink. Emitting the same event twice is a no-op.
func (es *EventSink) Emit(instanceID string, ev types.Event) error {
	data, err := types.MarshalEvent(ev)
	if err != nil {
		return err
	}

	_, err = sq.
		Insert(TableEvents).
		Columns("instance_id", "type", "nonce", "data", "created_at").
		Values(instanceID, ev.EventType(), int64(types.EventNonce(ev)), string(data), time.Now().UTC()).
		Suffix("ON CONFLICT (instance_id, type, nonce)").
		Suffix("DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		RunWith(es.store).
		Exec()
	if err != nil {
		return fmt.Errorf("indexing %s event of %s: %w", ev.EventType(), instanceID, err)
	}
	return nil
}

// Record is an event row.
type Record struct {
	InstanceID string
	Type       string
	Nonce      uint64
	Data       json.RawMessage
	CreatedAt  time.Time
}

// Event decodes the record's payload.
func (r Record) Event() (types.Event, error) {
	return types.UnmarshalEvent(r.Type, r.Data)
}

// Events returns the events of instanceID in the order they were emitted.
// An empty eventType matches every type.
func (es *EventSink) Events(instanceID, eventType string) ([]Record, error) {
	stmt := sq.
		Select("instance_id", "type", "nonce", "data", "created_at").
		From(TableEvents).
		Where(sq.Eq{"instance_id": instanceID}).
		OrderBy("rowid").
		PlaceholderFormat(sq.Dollar)
	if eventType != "" {
		stmt = stmt.Where(sq.Eq{"type": eventType})
	}

	rows, err := stmt.RunWith(es.store).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			r     Record
			nonce int64
			data  []byte
		)
		if err := rows.Scan(&r.InstanceID, &r.Type, &nonce, &data, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Nonce = uint64(nonce)
		r.Data = data
		records = append(records, r)
	}
	return records, rows.Err()
}

// Stop closes the underlying PostgreSQL database.
func (es *EventSink) Stop() error { return es.store.Close() }
