package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tendermint/bridge/crypto"
	"github.com/tendermint/bridge/types"
)

// VaultState is the persisted state of a Vault.
type VaultState struct {
	ID         string            `json:"id"`
	Denom      string            `json:"denom"`
	Admin      crypto.Address    `json:"admin"`
	Relayers   *types.RelayerSet `json:"relayers"`
	DestChains []uint64          `json:"dest_chains"`
	// LocalNonce is the nonce of the last lock.
	LocalNonce uint64 `json:"local_nonce"`
}

// ValidateBasic performs basic validation.
func (s *VaultState) ValidateBasic() error {
	if s.ID == "" {
		return errors.New("empty vault id")
	}
	if err := types.ValidateDenom(s.Denom); err != nil {
		return err
	}
	if len(s.Admin) != crypto.AddressSize {
		return fmt.Errorf("expected admin address size to be %d bytes, got %d bytes",
			crypto.AddressSize, len(s.Admin))
	}
	return s.Relayers.ValidateBasic()
}

// SupportsDestChain reports whether chainID is a supported destination.
func (s *VaultState) SupportsDestChain(chainID uint64) bool {
	i := sort.Search(len(s.DestChains), func(i int) bool { return s.DestChains[i] >= chainID })
	return i < len(s.DestChains) && s.DestChains[i] == chainID
}

// Copy returns a copy that shares only the immutable relayer set.
func (s *VaultState) Copy() *VaultState {
	c := *s
	c.Admin = s.Admin.Copy()
	c.DestChains = make([]uint64, len(s.DestChains))
	copy(c.DestChains, s.DestChains)
	return &c
}

// ControllerState is the persisted state of a MintController.
type ControllerState struct {
	ID       string              `json:"id"`
	Admin    crypto.Address      `json:"admin"`
	Relayers *types.RelayerSet   `json:"relayers"`
	Asset    types.AssetMetadata `json:"asset"`
	// OutboundNonce is the nonce of the last burn.
	OutboundNonce uint64 `json:"outbound_nonce"`
}

// ValidateBasic performs basic validation.
func (s *ControllerState) ValidateBasic() error {
	if s.ID == "" {
		return errors.New("empty controller id")
	}
	if len(s.Admin) != crypto.AddressSize {
		return fmt.Errorf("expected admin address size to be %d bytes, got %d bytes",
			crypto.AddressSize, len(s.Admin))
	}
	if err := s.Asset.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid asset: %w", err)
	}
	return s.Relayers.ValidateBasic()
}

// Copy returns a copy that shares only the immutable relayer set.
func (s *ControllerState) Copy() *ControllerState {
	c := *s
	c.Admin = s.Admin.Copy()
	return &c
}

// NormalizeChains sorts chains and removes duplicates.
func NormalizeChains(chains []uint64) []uint64 {
	out := make([]uint64, len(chains))
	copy(out, chains)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	n := 0
	for i, c := range out {
		if i > 0 && c == out[n-1] {
			continue
		}
		out[n] = c
		n++
	}
	return out[:n]
}
