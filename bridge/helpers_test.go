package bridge

import (
	"fmt"
	"time"

	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/crypto/ed25519"
	"github.com/tendermint/bridge/crypto/merkle"
	"github.com/tendermint/bridge/crypto/tmhash"
	"github.com/tendermint/bridge/ledger"
	"github.com/tendermint/bridge/light"
	lightdb "github.com/tendermint/bridge/light/store/db"
	"github.com/tendermint/bridge/types"
)

var (
	sourceChainID uint64 = 2
	bTime                = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	someProof            = []byte("proof")

	admin = crypto.AddressHash([]byte("admin"))
	alice = crypto.AddressHash([]byte("alice"))
	bob   = crypto.AddressHash([]byte("bob"))
)

type testRelayer struct {
	priv ed25519.PrivKey
	*types.Relayer
}

// genRelayers returns n relayers with keys derived from name.
func genRelayers(name string, n int) []testRelayer {
	trs := make([]testRelayer, n)
	for i := range trs {
		priv := ed25519.GenPrivKeyFromSecret([]byte(fmt.Sprintf("%s-%d", name, i)))
		trs[i] = testRelayer{priv: priv, Relayer: types.NewRelayer(priv.PubKey())}
	}
	return trs
}

func relayerList(trs []testRelayer) []*types.Relayer {
	rs := make([]*types.Relayer, len(trs))
	for i, tr := range trs {
		rs[i] = tr.Relayer
	}
	return rs
}

func (tr testRelayer) sign(t require.TestingT, instanceID string, tx *types.CrossChainTx) types.RelayerSignature {
	sig, err := tr.priv.Sign(tx.SignBytes(instanceID))
	require.NoError(t, err)
	return types.RelayerSignature{Relayer: tr.Address, Signature: sig}
}

// signWith collects the signatures of trs[idx] for each idx.
func signWith(t require.TestingT, trs []testRelayer, instanceID string, tx *types.CrossChainTx,
	idxs ...int) []types.RelayerSignature {
	sigs := make([]types.RelayerSignature, 0, len(idxs))
	for _, idx := range idxs {
		sigs = append(sigs, trs[idx].sign(t, instanceID, tx))
	}
	return sigs
}

// remoteChain produces blocks of a source chain and feeds their headers to a
// light client.
type remoteChain struct {
	id     uint64
	client *light.Client
	latest *types.BlockHeader
}

func newRemoteChain(t require.TestingT, id uint64) *remoteChain {
	genesis := types.NewBlockHeader(nil, tmhash.Sum([]byte("state")), merkle.NewTree(nil).Root(), 1, bTime)
	c, err := light.NewClient(id, genesis, lightdb.New(dbm.NewMemDB(), ""))
	require.NoError(t, err)
	return &remoteChain{id: id, client: c, latest: genesis}
}

func (rc *remoteChain) roots() LightClients {
	return LightClients{rc.id: rc.client}
}

// commit includes txs in a new block, sets their BlockHash and returns their
// inclusion proofs.
func (rc *remoteChain) commit(t require.TestingT, txs ...*types.CrossChainTx) []*merkle.Proof {
	items := make([][]byte, len(txs))
	for i, tx := range txs {
		items[i] = tx.LeafBytes()
	}
	tree := merkle.NewTree(items)

	h := types.NewBlockHeader(rc.latest.Hash, tmhash.Sum([]byte("state")), tree.Root(),
		rc.latest.Number+1, rc.latest.Time.Add(time.Second))
	require.NoError(t, rc.client.UpdateHeader(h, someProof))
	rc.latest = h

	proofs := make([]*merkle.Proof, len(txs))
	for i, tx := range txs {
		tx.BlockHash = h.Hash
		proof, err := tree.Proof(i)
		require.NoError(t, err)
		proofs[i] = proof
	}
	return proofs
}

// transfer returns an inbound transfer to bob proven in a new block.
func (rc *remoteChain) transfer(t require.TestingT, denom string, amount, nonce uint64) (*types.CrossChainTx,
	*merkle.Proof) {
	tx := &types.CrossChainTx{
		Recipient:     bob,
		Amount:        amount,
		Denom:         denom,
		SourceChainID: rc.id,
		Nonce:         nonce,
	}
	return tx, rc.commit(t, tx)[0]
}

func requireBalance(t require.TestingT, bank ledger.Bank, addr crypto.Address, denom string, exp uint64) {
	bal, err := bank.Balance(addr, denom)
	require.NoError(t, err)
	require.Equal(t, exp, bal, "balance of %v", addr)
}
