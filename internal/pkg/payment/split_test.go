package payment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

func TestSplitFloorsPlatformShare(t *testing.T) {
	// 2000 bps of 30 is exactly 6.
	creator, platform, err := Split(30, 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(24), creator)
	assert.Equal(t, int64(6), platform)

	// 2000 bps of 33 is 6.6; the platform gets the floor, the creator the dust.
	creator, platform, err = Split(33, 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(27), creator)
	assert.Equal(t, int64(6), platform)

	// Amount below the bps granularity all goes to the creator.
	creator, platform, err = Split(3, 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(3), creator)
	assert.Equal(t, int64(0), platform)
}

func TestSplitConservesAmount(t *testing.T) {
	for _, amount := range []int64{0, 1, 7, 9999, 10_000, math.MaxInt64} {
		for _, bps := range []int{0, 1, 333, 2000, 9999, 10_000} {
			creator, platform, err := Split(amount, bps)
			require.NoError(t, err)
			assert.Equal(t, amount, creator+platform, "amount=%d bps=%d", amount, bps)
			assert.GreaterOrEqual(t, creator, int64(0))
			assert.GreaterOrEqual(t, platform, int64(0))
		}
	}
}

func TestSplitBpsExtremes(t *testing.T) {
	creator, platform, err := Split(100, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), creator)
	assert.Equal(t, int64(0), platform)

	creator, platform, err = Split(100, BpsDenominator)
	require.NoError(t, err)
	assert.Equal(t, int64(0), creator)
	assert.Equal(t, int64(100), platform)
}

func TestSplitRejectsInvalidInput(t *testing.T) {
	_, _, err := Split(-1, 2000)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, _, err = Split(100, -1)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, _, err = Split(100, BpsDenominator+1)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestNewBreakdown(t *testing.T) {
	breakdown, err := NewBreakdown(30, 100, 2000)
	require.NoError(t, err)
	assert.Equal(t, Breakdown{
		Cost:          30,
		CreatorShare:  24,
		PlatformShare: 6,
		Refund:        70,
	}, breakdown)
}
