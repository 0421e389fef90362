package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/crypto/ed25519"
	"github.com/tendermint/bridge/crypto/encoding"
	"github.com/tendermint/bridge/crypto/tmhash"
	"github.com/tendermint/bridge/types"
)

func relayerKeys(t *testing.T, n int) []encoding.PublicKey {
	keys := make([]encoding.PublicKey, n)
	for i := range keys {
		pk, err := encoding.PubKeyToWire(ed25519.GenPrivKeyFromSecret([]byte(fmt.Sprintf("relayer-%d", i))).PubKey())
		require.NoError(t, err)
		keys[i] = pk
	}
	return keys
}

func testManifest(t *testing.T) *Manifest {
	admin := crypto.AddressHash([]byte("admin"))
	return &Manifest{
		LightClients: []LightClientManifest{
			{ChainID: 2, GenesisFile: "config/genesis-2.json"},
			{ChainID: 3, GenesisFile: "/abs/genesis-3.json", FinalityDepth: 4},
		},
		Vaults: []VaultManifest{{
			ID:         "atom",
			Denom:      "uatom",
			Admin:      admin,
			Threshold:  2,
			DestChains: []uint64{2, 3},
			Relayers:   relayerKeys(t, 3),
		}},
		MintControllers: []MintManifest{{
			ID:        "weth",
			Admin:     admin,
			Threshold: 1,
			Relayers:  relayerKeys(t, 2),
			Asset: types.AssetMetadata{
				Denom:         "wrapped/weth",
				Name:          "Wrapped Ether",
				Symbol:        "WETH",
				Decimals:      18,
				OriginChainID: 3,
			},
		}},
	}
}

func TestManifestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.toml")
	m := testManifest(t)
	require.NoError(t, m.ValidateBasic())
	require.NoError(t, m.Save(path))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)

	lc, ok := loaded.LightClient(3)
	require.True(t, ok)
	assert.Equal(t, 4, lc.FinalityDepth)
	_, ok = loaded.LightClient(9)
	assert.False(t, ok)

	v, ok := loaded.Vault("atom")
	require.True(t, ok)
	params, err := v.Params()
	require.NoError(t, err)
	assert.Equal(t, "uatom", params.Denom)
	assert.Len(t, params.Relayers, 3)
	assert.Equal(t, 2, params.Threshold)

	mc, ok := loaded.MintController("weth")
	require.True(t, ok)
	mp, err := mc.Params()
	require.NoError(t, err)
	assert.Equal(t, "wrapped/weth", mp.Asset.Denom)

	_, ok = loaded.MintController("atom")
	assert.False(t, ok)
}

func TestLoadManifestRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[light_client]]
chain_id = 2
genesis_file = "genesis.json"
trust_period = "1h"
`), 0600))

	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trust_period")

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestManifestValidateBasic(t *testing.T) {
	testCases := map[string]func(*Manifest){
		"duplicate chain": func(m *Manifest) { m.LightClients[1].ChainID = 2 },
		"no genesis":      func(m *Manifest) { m.LightClients[0].GenesisFile = "" },
		"negative depth":  func(m *Manifest) { m.LightClients[0].FinalityDepth = -1 },
		"duplicate vault": func(m *Manifest) { m.Vaults = append(m.Vaults, m.Vaults[0]) },
		"threshold":       func(m *Manifest) { m.Vaults[0].Threshold = 4 },
		"zero threshold":  func(m *Manifest) { m.MintControllers[0].Threshold = 0 },
		"bad denom":       func(m *Manifest) { m.Vaults[0].Denom = "" },
		"bad admin":       func(m *Manifest) { m.Vaults[0].Admin = crypto.Address{1, 2} },
		"empty id":        func(m *Manifest) { m.MintControllers[0].ID = "" },
		"bad asset":       func(m *Manifest) { m.MintControllers[0].Asset.Symbol = "" },
		"bad key":         func(m *Manifest) { m.Vaults[0].Relayers[0].Type = "secp256k1" },
		"duplicate controller": func(m *Manifest) {
			m.MintControllers = append(m.MintControllers, m.MintControllers[0])
		},
	}
	for name, tamper := range testCases {
		t.Run(name, func(t *testing.T) {
			m := testManifest(t)
			tamper(m)
			assert.Error(t, m.ValidateBasic())
		})
	}
}

func TestLightClientManifestGenesis(t *testing.T) {
	root := t.TempDir()
	genesis := types.NewBlockHeader(nil, tmhash.Sum([]byte("state")), tmhash.Sum([]byte("txs")), 1,
		time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC))
	bz, err := json.Marshal(genesis)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "genesis.json"), bz, 0600))

	lc := LightClientManifest{ChainID: 2, GenesisFile: "genesis.json"}
	h, err := lc.Genesis(root)
	require.NoError(t, err)
	assert.Equal(t, genesis.Hash, h.Hash)
	assert.Equal(t, genesis.Number, h.Number)

	lc.GenesisFile = "missing.json"
	_, err = lc.Genesis(root)
	assert.Error(t, err)
}
