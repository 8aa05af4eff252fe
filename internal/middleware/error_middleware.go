package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mertcelik/eduledger/internal/app/models/dto"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

// HandleAPIError maps service errors onto HTTP responses. Every handler
// funnels failures through here so the status codes stay consistent across
// the three ledgers.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(401, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials"),
		})
	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(401, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired"),
		})
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		c.JSON(401, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token"),
		})

	case errors.Is(err, apperrors.ErrInsufficientPayment):
		c.JSON(402, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInsufficientPayment, "Payment does not cover the price").WithDetails(err.Error()),
		})

	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(403, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied").WithDetails(err.Error()),
		})

	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrOfferingNotFound),
		errors.Is(err, apperrors.ErrLicenseNotFound),
		errors.Is(err, apperrors.ErrCredentialNotFound),
		errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(404, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found").WithDetails(err.Error()),
		})

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		c.JSON(409, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists"),
		})
	case errors.Is(err, apperrors.ErrCommitmentAlreadyUsed):
		c.JSON(409, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeCommitmentReused, "Payment commitment already used"),
		})
	case errors.Is(err, apperrors.ErrLicenseNotExpired),
		errors.Is(err, apperrors.ErrOfferingInactive),
		errors.Is(err, apperrors.ErrLicenseInvalid),
		errors.Is(err, apperrors.ErrUnitAlreadyCompleted),
		errors.Is(err, apperrors.ErrOfferingNotCompleted),
		errors.Is(err, apperrors.ErrOfferingAlreadyEarned),
		errors.Is(err, apperrors.ErrInsufficientBalance),
		errors.Is(err, apperrors.ErrStateConflict):
		c.JSON(409, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeStateConflict, "Operation conflicts with current state").WithDetails(err.Error()),
		})

	case errors.Is(err, apperrors.ErrArithmeticOverflow):
		c.JSON(422, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeArithmeticOverflow, "Arithmetic overflow").WithDetails(err.Error()),
		})
	case errors.Is(err, apperrors.ErrTransferFailed):
		c.JSON(422, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeTransferFailed, "Settlement transfer failed").WithDetails(err.Error()),
		})

	case errors.Is(err, apperrors.ErrLedgerPaused):
		c.JSON(503, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeLedgerPaused, "Ledger is paused"),
		})

	case errors.Is(err, apperrors.ErrInvalidPeriods),
		errors.Is(err, apperrors.ErrUnitIndexOutOfRange),
		errors.Is(err, apperrors.ErrEmptyCommitment),
		errors.Is(err, apperrors.ErrDisplayNameInvalid),
		errors.Is(err, apperrors.ErrPriceOutOfRange),
		errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrBadRequest):
		c.JSON(400, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").WithDetails(err.Error()),
		})

	default:
		c.JSON(500, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		})
	}
}
