package helpers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

func TestCheckedMul(t *testing.T) {
	result, err := CheckedMul(7, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(84), result)

	result, err = CheckedMul(0, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result)

	// The largest product that still fits.
	result, err = CheckedMul(math.MaxInt64, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), result)

	_, err = CheckedMul(math.MaxInt64/2+1, 2)
	assert.ErrorIs(t, err, apperrors.ErrArithmeticOverflow)

	_, err = CheckedMul(math.MaxInt64, math.MaxInt64)
	assert.ErrorIs(t, err, apperrors.ErrArithmeticOverflow)

	_, err = CheckedMul(-1, 2)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = CheckedMul(2, -1)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCheckedAdd(t *testing.T) {
	result, err := CheckedAdd(40, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result)

	result, err = CheckedAdd(math.MaxInt64-1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), result)

	_, err = CheckedAdd(math.MaxInt64, 1)
	assert.ErrorIs(t, err, apperrors.ErrArithmeticOverflow)

	_, err = CheckedAdd(1, math.MaxInt64)
	assert.ErrorIs(t, err, apperrors.ErrArithmeticOverflow)

	_, err = CheckedAdd(-1, 1)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
