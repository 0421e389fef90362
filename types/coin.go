package types

import (
	"errors"
	"fmt"
	"regexp"
)

// MaxDenomLength bounds the length of an asset denomination.
const MaxDenomLength = 128

var reDenom = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9/:._-]*$`)

// ValidateDenom checks that denom is a usable asset name.
func ValidateDenom(denom string) error {
	if len(denom) == 0 {
		return errors.New("empty denom")
	}
	if len(denom) > MaxDenomLength {
		return fmt.Errorf("denom is longer than %d characters", MaxDenomLength)
	}
	if !reDenom.MatchString(denom) {
		return fmt.Errorf("invalid denom %q", denom)
	}
	return nil
}

// Coin is an amount of a single asset.
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// NewCoin returns a coin. It does not validate.
func NewCoin(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: amount}
}

// Validate returns an error if the denom is invalid.
func (c Coin) Validate() error {
	return ValidateDenom(c.Denom)
}

// IsZero reports whether the coin holds nothing.
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

// AssetMetadata describes a wrapped asset created by a MintController.
type AssetMetadata struct {
	Denom    string `json:"denom" toml:"denom"`
	Name     string `json:"name" toml:"name"`
	Symbol   string `json:"symbol" toml:"symbol"`
	Decimals uint8  `json:"decimals" toml:"decimals"`
	// Origin is the chain the native asset lives on. Only transfers from it
	// are minted; zero accepts any chain with a light client.
	OriginChainID uint64 `json:"origin_chain_id" toml:"origin_chain_id"`
}

// ValidateBasic performs basic validation.
func (m AssetMetadata) ValidateBasic() error {
	if err := ValidateDenom(m.Denom); err != nil {
		return err
	}
	if m.Symbol == "" {
		return errors.New("empty symbol")
	}
	if m.Decimals > 18 {
		return fmt.Errorf("decimals must be at most 18, got %d", m.Decimals)
	}
	return nil
}
