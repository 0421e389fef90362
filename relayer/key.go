// Package relayer holds what an off-chain relayer needs on this side of the
// bridge: a key kept on disk and the signatures it produces over inbound
// transfers.
package relayer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/creachadair/atomicfile"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/crypto/ed25519"
	"github.com/tendermint/bridge/crypto/encoding"
	tmbytes "github.com/tendermint/bridge/libs/bytes"
	tmos "github.com/tendermint/bridge/libs/os"
	"github.com/tendermint/bridge/types"
)

// FileKey is a relayer key persisted as JSON.
type FileKey struct {
	Address crypto.Address
	PubKey  crypto.PubKey
	PrivKey ed25519.PrivKey

	filePath string
}

type privKeyJSON struct {
	Type  string           `json:"type"`
	Value tmbytes.HexBytes `json:"value"`
}

type fileKeyJSON struct {
	Address crypto.Address     `json:"address"`
	PubKey  encoding.PublicKey `json:"pub_key"`
	PrivKey privKeyJSON        `json:"priv_key"`
}

func (k FileKey) MarshalJSON() ([]byte, error) {
	pk, err := encoding.PubKeyToWire(k.PubKey)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fileKeyJSON{
		Address: k.Address,
		PubKey:  pk,
		PrivKey: privKeyJSON{Type: k.PrivKey.Type(), Value: tmbytes.HexBytes(k.PrivKey)},
	})
}

func (k *FileKey) UnmarshalJSON(data []byte) error {
	var v fileKeyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.PrivKey.Type != ed25519.KeyType {
		return fmt.Errorf("unsupported private key type %q", v.PrivKey.Type)
	}
	if len(v.PrivKey.Value) != ed25519.PrivateKeySize {
		return fmt.Errorf("expected private key size to be %d bytes, got %d bytes",
			ed25519.PrivateKeySize, len(v.PrivKey.Value))
	}
	pub, err := encoding.PubKeyFromWire(v.PubKey)
	if err != nil {
		return fmt.Errorf("decoding pub_key: %w", err)
	}

	k.PrivKey = ed25519.PrivKey(v.PrivKey.Value)
	if !k.PrivKey.PubKey().Equals(pub) {
		return errors.New("pub_key does not match priv_key")
	}
	k.PubKey = pub
	k.Address = v.Address
	if len(k.Address) == 0 {
		k.Address = pub.Address()
	}
	if !bytes.Equal(k.Address, pub.Address()) {
		return fmt.Errorf("address %v does not match pub_key", k.Address)
	}
	return nil
}

// NewFileKey wraps privKey. Nothing is written until Save.
func NewFileKey(privKey ed25519.PrivKey, filePath string) *FileKey {
	pub := privKey.PubKey()
	return &FileKey{
		Address:  pub.Address(),
		PubKey:   pub,
		PrivKey:  privKey,
		filePath: filePath,
	}
}

// GenFileKey generates a new random key. Nothing is written until Save.
func GenFileKey(filePath string) *FileKey {
	return NewFileKey(ed25519.GenPrivKey(), filePath)
}

// LoadFileKey reads the key at filePath.
func LoadFileKey(filePath string) (*FileKey, error) {
	bz, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading relayer key from %v: %w", filePath, err)
	}
	k := new(FileKey)
	if err := json.Unmarshal(bz, k); err != nil {
		return nil, fmt.Errorf("reading relayer key from %v: %w", filePath, err)
	}
	k.filePath = filePath
	return k, nil
}

// LoadOrGenFileKey loads the key at filePath or, if there is none, generates
// and saves one.
func LoadOrGenFileKey(filePath string) (*FileKey, error) {
	if tmos.FileExists(filePath) {
		return LoadFileKey(filePath)
	}
	k := GenFileKey(filePath)
	if err := k.Save(); err != nil {
		return nil, err
	}
	return k, nil
}

// Save writes the key to its file, readable only by the owner.
func (k *FileKey) Save() error {
	if k.filePath == "" {
		return errors.New("cannot save relayer key: filePath not set")
	}
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return err
	}
	_, err = atomicfile.WriteAll(k.filePath, bytes.NewReader(data), 0600)
	return err
}

// FilePath returns where the key is kept.
func (k *FileKey) FilePath() string {
	return k.filePath
}

// Relayer returns the public identity to put in a relayer set.
func (k *FileKey) Relayer() *types.Relayer {
	return types.NewRelayer(k.PubKey)
}

// SignTx signs tx for the bridge instance instanceID.
func (k *FileKey) SignTx(instanceID string, tx *types.CrossChainTx) (types.RelayerSignature, error) {
	if err := tx.ValidateBasic(); err != nil {
		return types.RelayerSignature{}, fmt.Errorf("refusing to sign invalid transaction: %w", err)
	}
	sig, err := k.PrivKey.Sign(tx.SignBytes(instanceID))
	if err != nil {
		return types.RelayerSignature{}, err
	}
	return types.RelayerSignature{Relayer: k.Address, Signature: sig}, nil
}

func (k *FileKey) String() string {
	return fmt.Sprintf("FileKey{%v}", k.Address)
}
