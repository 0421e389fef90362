package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/orderedcode"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/types"
)

// ErrNotFound is returned when a vault or controller is not in the store.
var ErrNotFound = errors.New("not found")

// Store persists bridge instances and their replay ledgers.
//
// NOTE: Store methods will panic if they encounter errors deserializing
// loaded data, indicating probable corruption on disk.
type Store interface {
	// LoadVault returns the vault with the given id, or ErrNotFound.
	LoadVault(id string) (*VaultState, error)
	// LoadController returns the controller with the given id, or
	// ErrNotFound.
	LoadController(id string) (*ControllerState, error)
	// IsProcessed reports whether key is in the replay ledger of instanceID.
	IsProcessed(instanceID string, key types.NonceKey) (bool, error)
	// ProcessedNonces returns the processed nonces from sourceChainID in
	// ascending order.
	ProcessedNonces(instanceID string, sourceChainID uint64) ([]uint64, error)
	// NewBatch starts a set of writes that are applied together.
	NewBatch() Batch
	// Close closes the underlying DB.
	Close() error
}

// Batch collects writes. Nothing is visible until Write succeeds. A batch
// must be closed whether or not it was written.
type Batch interface {
	SaveVault(*VaultState) error
	SaveController(*ControllerState) error
	MarkProcessed(instanceID string, key types.NonceKey) error
	Write() error
	Close() error
}

type dbStore struct {
	db dbm.DB
}

var _ Store = (*dbStore)(nil)

// NewStore creates the bridge store over db.
func NewStore(db dbm.DB) Store {
	return &dbStore{db}
}

func (s *dbStore) LoadVault(id string) (*VaultState, error) {
	var v VaultState
	if !s.load(vaultKey(id), &v) {
		return nil, fmt.Errorf("vault %q: %w", id, ErrNotFound)
	}
	return &v, nil
}

func (s *dbStore) LoadController(id string) (*ControllerState, error) {
	var c ControllerState
	if !s.load(controllerKey(id), &c) {
		return nil, fmt.Errorf("controller %q: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (s *dbStore) load(key []byte, v interface{}) bool {
	bz, err := s.db.Get(key)
	if err != nil {
		panic(err)
	}
	if len(bz) == 0 {
		return false
	}
	if err := json.Unmarshal(bz, v); err != nil {
		panic(fmt.Sprintf("corrupted bridge state at %X: %v", key, err))
	}
	return true
}

func (s *dbStore) IsProcessed(instanceID string, key types.NonceKey) (bool, error) {
	return s.db.Has(processedKey(instanceID, key))
}

func (s *dbStore) ProcessedNonces(instanceID string, sourceChainID uint64) ([]uint64, error) {
	start := processedKey(instanceID, types.NonceKey{SourceChainID: sourceChainID})
	end := processedChainEndKey(instanceID, sourceChainID)

	itr, err := s.db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer itr.Close()

	nonces := []uint64{}
	for ; itr.Valid(); itr.Next() {
		_, key, err := decodeProcessedKey(itr.Key())
		if err != nil {
			panic(err)
		}
		nonces = append(nonces, key.Nonce)
	}
	return nonces, itr.Error()
}

func (s *dbStore) NewBatch() Batch {
	return &dbBatch{batch: s.db.NewBatch()}
}

func (s *dbStore) Close() error {
	return s.db.Close()
}

type dbBatch struct {
	batch dbm.Batch
}

func (b *dbBatch) SaveVault(v *VaultState) error {
	if err := v.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid vault state: %w", err)
	}
	return b.save(vaultKey(v.ID), v)
}

func (b *dbBatch) SaveController(c *ControllerState) error {
	if err := c.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid controller state: %w", err)
	}
	return b.save(controllerKey(c.ID), c)
}

func (b *dbBatch) save(key []byte, v interface{}) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.batch.Set(key, bz)
}

func (b *dbBatch) MarkProcessed(instanceID string, key types.NonceKey) error {
	return b.batch.Set(processedKey(instanceID, key), []byte{1})
}

func (b *dbBatch) Write() error {
	return b.batch.WriteSync()
}

func (b *dbBatch) Close() error {
	return b.batch.Close()
}

//---------------------------------- KEY ENCODING -----------------------------------------

// key prefixes
const (
	prefixVault      = int64(0)
	prefixController = int64(1)
	prefixProcessed  = int64(2)
	prefixEvent      = int64(3)
	prefixEventSeq   = int64(4)
)

func vaultKey(id string) []byte {
	key, err := orderedcode.Append(nil, prefixVault, id)
	if err != nil {
		panic(err)
	}
	return key
}

func controllerKey(id string) []byte {
	key, err := orderedcode.Append(nil, prefixController, id)
	if err != nil {
		panic(err)
	}
	return key
}

func processedKey(instanceID string, nk types.NonceKey) []byte {
	key, err := orderedcode.Append(nil, prefixProcessed, instanceID, nk.SourceChainID, nk.Nonce)
	if err != nil {
		panic(err)
	}
	return key
}

func processedChainEndKey(instanceID string, sourceChainID uint64) []byte {
	key, err := orderedcode.Append(nil, prefixProcessed, instanceID, sourceChainID)
	if err != nil {
		panic(err)
	}
	// Encoded nonces never start with 0xff.
	return append(key, 0xff)
}

func decodeProcessedKey(key []byte) (instanceID string, nk types.NonceKey, err error) {
	var prefix int64
	remaining, err := orderedcode.Parse(string(key), &prefix, &instanceID, &nk.SourceChainID, &nk.Nonce)
	if err != nil {
		return
	}
	if len(remaining) != 0 {
		return "", nk, fmt.Errorf("expected complete key but got remainder: %s", remaining)
	}
	if prefix != prefixProcessed {
		return "", nk, fmt.Errorf("incorrect prefix. Expected %v, got %v", prefixProcessed, prefix)
	}
	return
}
