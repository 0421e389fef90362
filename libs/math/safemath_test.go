package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeAddUint64(t *testing.T) {
	sum, err := SafeAddUint64(1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, sum)

	_, err = SafeAddUint64(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflowUint64)
}

func TestSafeSubUint64(t *testing.T) {
	diff, err := SafeSubUint64(5, 5)
	require.NoError(t, err)
	assert.Zero(t, diff)

	_, err = SafeSubUint64(1, 2)
	assert.ErrorIs(t, err, ErrUnderflowUint64)
}
