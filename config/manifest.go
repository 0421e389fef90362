package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tendermint/bridge/bridge"
	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/crypto/encoding"
	"github.com/tendermint/bridge/types"
)

// Manifest describes the bridge instances of a deployment: the remote chains
// followed by light clients, the vaults and the mint controllers. It lives
// in bridge.toml next to config.toml.
type Manifest struct {
	LightClients    []LightClientManifest `toml:"light_client"`
	Vaults          []VaultManifest       `toml:"vault"`
	MintControllers []MintManifest        `toml:"mint_controller"`
}

// LightClientManifest describes the light client of one remote chain.
type LightClientManifest struct {
	ChainID uint64 `toml:"chain_id"`
	// JSON file holding the first trusted header.
	GenesisFile string `toml:"genesis_file"`
	// Overrides [light] finality-depth when set.
	FinalityDepth int `toml:"finality_depth,omitempty"`
}

// VaultManifest describes a vault.
type VaultManifest struct {
	ID         string               `toml:"id"`
	Denom      string               `toml:"denom"`
	Admin      crypto.Address       `toml:"admin"`
	Threshold  int                  `toml:"threshold"`
	DestChains []uint64             `toml:"dest_chains"`
	Relayers   []encoding.PublicKey `toml:"relayers"`
}

// MintManifest describes a mint controller.
type MintManifest struct {
	ID        string               `toml:"id"`
	Admin     crypto.Address       `toml:"admin"`
	Threshold int                  `toml:"threshold"`
	Relayers  []encoding.PublicKey `toml:"relayers"`
	Asset     types.AssetMetadata  `toml:"asset"`
}

// LoadManifest reads and validates the manifest at path. Unknown keys are an
// error.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %v: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("manifest %v has unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := m.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid manifest %v: %w", path, err)
	}
	return &m, nil
}

// Save writes the manifest to path.
func (m *Manifest) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes(), 0644)
}

// ValidateBasic checks each entry and that ids and chain ids are unique.
func (m *Manifest) ValidateBasic() error {
	chains := make(map[uint64]bool, len(m.LightClients))
	for _, lc := range m.LightClients {
		if chains[lc.ChainID] {
			return fmt.Errorf("duplicate light client for chain %d", lc.ChainID)
		}
		chains[lc.ChainID] = true
		if lc.GenesisFile == "" {
			return fmt.Errorf("light client for chain %d has no genesis_file", lc.ChainID)
		}
		if lc.FinalityDepth < 0 {
			return fmt.Errorf("light client for chain %d has negative finality_depth", lc.ChainID)
		}
	}

	vaults := make(map[string]bool, len(m.Vaults))
	for _, v := range m.Vaults {
		if vaults[v.ID] {
			return fmt.Errorf("duplicate vault %q", v.ID)
		}
		vaults[v.ID] = true
		if _, err := v.Params(); err != nil {
			return fmt.Errorf("vault %q: %w", v.ID, err)
		}
	}

	controllers := make(map[string]bool, len(m.MintControllers))
	for _, mc := range m.MintControllers {
		if controllers[mc.ID] {
			return fmt.Errorf("duplicate mint controller %q", mc.ID)
		}
		controllers[mc.ID] = true
		if _, err := mc.Params(); err != nil {
			return fmt.Errorf("mint controller %q: %w", mc.ID, err)
		}
	}
	return nil
}

// LightClient returns the light client entry of chainID.
func (m *Manifest) LightClient(chainID uint64) (LightClientManifest, bool) {
	for _, lc := range m.LightClients {
		if lc.ChainID == chainID {
			return lc, true
		}
	}
	return LightClientManifest{}, false
}

// Vault returns the vault entry with the given id.
func (m *Manifest) Vault(id string) (VaultManifest, bool) {
	for _, v := range m.Vaults {
		if v.ID == id {
			return v, true
		}
	}
	return VaultManifest{}, false
}

// MintController returns the mint controller entry with the given id.
func (m *Manifest) MintController(id string) (MintManifest, bool) {
	for _, mc := range m.MintControllers {
		if mc.ID == id {
			return mc, true
		}
	}
	return MintManifest{}, false
}

// Genesis reads the genesis header. A relative GenesisFile is resolved
// against root.
func (lc LightClientManifest) Genesis(root string) (*types.BlockHeader, error) {
	bz, err := os.ReadFile(rootify(lc.GenesisFile, root))
	if err != nil {
		return nil, err
	}
	var h types.BlockHeader
	if err := json.Unmarshal(bz, &h); err != nil {
		return nil, fmt.Errorf("decoding genesis header of chain %d: %w", lc.ChainID, err)
	}
	return &h, nil
}

// Params converts the entry to what bridge.InitVault takes.
func (v VaultManifest) Params() (bridge.VaultParams, error) {
	relayers, err := relayersFromKeys(v.Relayers, v.Threshold)
	if err != nil {
		return bridge.VaultParams{}, err
	}
	if err := types.ValidateDenom(v.Denom); err != nil {
		return bridge.VaultParams{}, err
	}
	if err := validateEntry(v.ID, v.Admin); err != nil {
		return bridge.VaultParams{}, err
	}
	return bridge.VaultParams{
		ID:         v.ID,
		Denom:      v.Denom,
		Admin:      v.Admin,
		Relayers:   relayers,
		Threshold:  v.Threshold,
		DestChains: v.DestChains,
	}, nil
}

// Params converts the entry to what bridge.InitMintController takes.
func (mc MintManifest) Params() (bridge.MintParams, error) {
	relayers, err := relayersFromKeys(mc.Relayers, mc.Threshold)
	if err != nil {
		return bridge.MintParams{}, err
	}
	if err := mc.Asset.ValidateBasic(); err != nil {
		return bridge.MintParams{}, fmt.Errorf("invalid asset: %w", err)
	}
	if err := validateEntry(mc.ID, mc.Admin); err != nil {
		return bridge.MintParams{}, err
	}
	return bridge.MintParams{
		ID:        mc.ID,
		Admin:     mc.Admin,
		Relayers:  relayers,
		Threshold: mc.Threshold,
		Asset:     mc.Asset,
	}, nil
}

func validateEntry(id string, admin crypto.Address) error {
	if id == "" {
		return fmt.Errorf("empty id")
	}
	if len(admin) != crypto.AddressSize {
		return fmt.Errorf("expected admin address size to be %d bytes, got %d bytes",
			crypto.AddressSize, len(admin))
	}
	return nil
}

func relayersFromKeys(keys []encoding.PublicKey, threshold int) ([]*types.Relayer, error) {
	relayers := make([]*types.Relayer, len(keys))
	for i, k := range keys {
		pk, err := encoding.PubKeyFromWire(k)
		if err != nil {
			return nil, fmt.Errorf("relayer #%d: %w", i, err)
		}
		relayers[i] = types.NewRelayer(pk)
	}
	if _, err := types.NewRelayerSet(relayers, threshold); err != nil {
		return nil, err
	}
	return relayers, nil
}
