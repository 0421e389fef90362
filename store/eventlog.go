package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/google/orderedcode"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/types"
)

// EventRecord is an event as kept in the event log.
type EventRecord struct {
	InstanceID string          `json:"instance_id"`
	Seq        uint64          `json:"seq"`
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
}

// Event decodes the record's payload.
func (r EventRecord) Event() (types.Event, error) {
	return types.UnmarshalEvent(r.Type, r.Data)
}

// EventLog is an append-only, per-instance log of bridge events kept in a
// key-value DB. Relayers read outbound events from it.
type EventLog struct {
	mtx sync.Mutex
	db  dbm.DB
}

// NewEventLog returns an event log backed by db.
func NewEventLog(db dbm.DB) *EventLog {
	return &EventLog{db: db}
}

// Emit appends ev to the log of instanceID.
func (l *EventLog) Emit(instanceID string, ev types.Event) error {
	data, err := types.MarshalEvent(ev)
	if err != nil {
		return err
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	seq, err := l.lastSeq(instanceID)
	if err != nil {
		return err
	}
	seq++

	bz, err := json.Marshal(EventRecord{InstanceID: instanceID, Seq: seq, Type: ev.EventType(), Data: data})
	if err != nil {
		return err
	}

	var seqBz [8]byte
	binary.BigEndian.PutUint64(seqBz[:], seq)

	batch := l.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(eventKey(instanceID, seq), bz); err != nil {
		return err
	}
	if err := batch.Set(eventSeqKey(instanceID), seqBz[:]); err != nil {
		return err
	}
	return batch.WriteSync()
}

// Events returns the events of instanceID with sequence numbers greater than
// after, oldest first.
func (l *EventLog) Events(instanceID string, after uint64) ([]EventRecord, error) {
	if after == math.MaxUint64 {
		return []EventRecord{}, nil
	}
	itr, err := l.db.Iterator(eventKey(instanceID, after+1), eventEndKey(instanceID))
	if err != nil {
		return nil, err
	}
	defer itr.Close()

	records := []EventRecord{}
	for ; itr.Valid(); itr.Next() {
		var r EventRecord
		if err := json.Unmarshal(itr.Value(), &r); err != nil {
			panic(fmt.Sprintf("corrupted event at %X: %v", itr.Key(), err))
		}
		records = append(records, r)
	}
	return records, itr.Error()
}

func (l *EventLog) lastSeq(instanceID string) (uint64, error) {
	bz, err := l.db.Get(eventSeqKey(instanceID))
	if err != nil {
		return 0, err
	}
	if len(bz) == 0 {
		return 0, nil
	}
	if len(bz) != 8 {
		panic(fmt.Sprintf("corrupted event sequence for %q: %X", instanceID, bz))
	}
	return binary.BigEndian.Uint64(bz), nil
}

func eventKey(instanceID string, seq uint64) []byte {
	key, err := orderedcode.Append(nil, prefixEvent, instanceID, seq)
	if err != nil {
		panic(err)
	}
	return key
}

func eventEndKey(instanceID string) []byte {
	key, err := orderedcode.Append(nil, prefixEvent, instanceID)
	if err != nil {
		panic(err)
	}
	return append(key, 0xff)
}

func eventSeqKey(instanceID string) []byte {
	key, err := orderedcode.Append(nil, prefixEventSeq, instanceID)
	if err != nil {
		panic(err)
	}
	return key
}
