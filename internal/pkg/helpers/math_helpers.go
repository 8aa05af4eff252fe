package helpers

import (
	"math"

	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

// CheckedMul multiplies two non-negative int64 values and rejects overflow
// instead of wrapping. Amounts and period counts in the ledger are never
// negative, so negative inputs are rejected as validation failures.
func CheckedMul(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, apperrors.ErrValidationFailed
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt64/b {
		return 0, apperrors.ErrArithmeticOverflow
	}
	return a * b, nil
}

// CheckedAdd adds two non-negative int64 values and rejects overflow.
func CheckedAdd(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, apperrors.ErrValidationFailed
	}
	if a > math.MaxInt64-b {
		return 0, apperrors.ErrArithmeticOverflow
	}
	return a + b, nil
}
