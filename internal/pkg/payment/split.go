package payment

import (
	"math/bits"

	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

// BpsDenominator is the basis-point scale used for the fee split.
const BpsDenominator = 10000

// Breakdown describes how a settled payment is distributed.
type Breakdown struct {
	Cost          int64 `json:"cost"`
	CreatorShare  int64 `json:"creatorShare"`
	PlatformShare int64 `json:"platformShare"`
	Refund        int64 `json:"refund"`
}

// Split divides an amount between creator and platform. The platform share is
// floor(amount * feeBps / 10000); the creator receives the remainder, so any
// rounding dust goes to the creator. Deterministic for a given (amount, bps).
func Split(amount int64, feeBps int) (creator, platform int64, err error) {
	if amount < 0 || feeBps < 0 || feeBps > BpsDenominator {
		return 0, 0, apperrors.ErrValidationFailed
	}
	// amount*feeBps can exceed int64; do the scaled division in 128 bits.
	hi, lo := bits.Mul64(uint64(amount), uint64(feeBps))
	q, _ := bits.Div64(hi, lo, BpsDenominator)
	platform = int64(q)
	creator = amount - platform
	return creator, platform, nil
}

// NewBreakdown computes the full settlement breakdown for a payment offered
// against a cost. Assumes payment >= cost was already validated.
func NewBreakdown(cost, paid int64, feeBps int) (Breakdown, error) {
	creator, platform, err := Split(cost, feeBps)
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{
		Cost:          cost,
		CreatorShare:  creator,
		PlatformShare: platform,
		Refund:        paid - cost,
	}, nil
}
