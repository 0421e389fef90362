package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDenom(t *testing.T) {
	for _, denom := range []string{"uatom", "ibc/27394FB0", "wrapped:eth", "a"} {
		assert.NoError(t, ValidateDenom(denom), denom)
	}
	for _, denom := range []string{"", "1atom", "has space", string(make([]byte, MaxDenomLength+1))} {
		assert.Error(t, ValidateDenom(denom), denom)
	}
}

func TestAssetMetadataValidateBasic(t *testing.T) {
	m := AssetMetadata{Denom: "weth", Name: "Wrapped Ether", Symbol: "WETH", Decimals: 18, OriginChainID: 1}
	assert.NoError(t, m.ValidateBasic())

	m.Decimals = 19
	assert.Error(t, m.ValidateBasic())

	m = AssetMetadata{Denom: "weth"}
	assert.Error(t, m.ValidateBasic())
}

func TestCoin(t *testing.T) {
	c := NewCoin("uatom", 10)
	assert.Equal(t, "10uatom", c.String())
	assert.False(t, c.IsZero())
	assert.True(t, NewCoin("uatom", 0).IsZero())
}
