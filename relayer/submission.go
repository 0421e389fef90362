package relayer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/creachadair/atomicfile"

	"github.com/tendermint/bridge/crypto/merkle"
	"github.com/tendermint/bridge/types"
)

// Submission is everything a relayer hands to Vault.Release or
// MintController.MintWrapped for one inbound transfer. It is passed around
// as a JSON document while relayers add their signatures.
type Submission struct {
	InstanceID string                   `json:"instance_id"`
	Tx         *types.CrossChainTx      `json:"tx"`
	Proof      *merkle.Proof            `json:"proof"`
	Signatures []types.RelayerSignature `json:"signatures"`
}

// NewSubmission proves that txs[index] is in the block whose transaction
// root is built over txs, and returns an unsigned submission for it. The
// transaction's BlockHash must already be set.
func NewSubmission(instanceID string, txs []*types.CrossChainTx, index int) (*Submission, error) {
	proof, err := ProveInclusion(txs, index)
	if err != nil {
		return nil, err
	}
	return &Submission{
		InstanceID: instanceID,
		Tx:         txs[index],
		Proof:      proof,
		Signatures: []types.RelayerSignature{},
	}, nil
}

// ProveInclusion builds the transaction tree of a block over txs and returns
// the inclusion proof of txs[index].
func ProveInclusion(txs []*types.CrossChainTx, index int) (*merkle.Proof, error) {
	items := make([][]byte, len(txs))
	for i, tx := range txs {
		if tx == nil {
			return nil, fmt.Errorf("nil transaction #%d", i)
		}
		items[i] = tx.LeafBytes()
	}
	return merkle.NewTree(items).Proof(index)
}

// TxRoot returns the transaction root of a block holding txs.
func TxRoot(txs []*types.CrossChainTx) []byte {
	items := make([][]byte, len(txs))
	for i, tx := range txs {
		items[i] = tx.LeafBytes()
	}
	return merkle.NewTree(items).Root()
}

// Sign adds k's signature, replacing an earlier one by the same key.
func (s *Submission) Sign(k *FileKey) error {
	sig, err := k.SignTx(s.InstanceID, s.Tx)
	if err != nil {
		return err
	}
	for i, existing := range s.Signatures {
		if bytes.Equal(existing.Relayer, sig.Relayer) {
			s.Signatures[i] = sig
			return nil
		}
	}
	s.Signatures = append(s.Signatures, sig)
	return nil
}

// ValidateBasic checks that the submission is complete enough to submit.
func (s *Submission) ValidateBasic() error {
	if s.InstanceID == "" {
		return errors.New("empty instance id")
	}
	if err := s.Tx.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid tx: %w", err)
	}
	if err := s.Proof.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid proof: %w", err)
	}
	if !bytes.Equal(s.Proof.Leaf, s.Tx.LeafHash()) {
		return errors.New("proof is not for tx")
	}
	return nil
}

// LoadSubmission reads a submission document.
func LoadSubmission(filePath string) (*Submission, error) {
	bz, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	s := new(Submission)
	if err := json.Unmarshal(bz, s); err != nil {
		return nil, fmt.Errorf("decoding submission %v: %w", filePath, err)
	}
	return s, nil
}

// Save writes the submission to filePath.
func (s *Submission) Save(filePath string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = atomicfile.WriteAll(filePath, bytes.NewReader(data), 0644)
	return err
}
