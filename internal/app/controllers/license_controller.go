package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/app/models/dto"
	"github.com/mertcelik/eduledger/internal/app/services"
	"github.com/mertcelik/eduledger/internal/middleware"
)

// LicenseController handles license purchases, renewals and validity queries
type LicenseController struct {
	licenseService *services.LicenseService
	logger         zerolog.Logger
}

// NewLicenseController creates a new LicenseController
func NewLicenseController(licenseService *services.LicenseService, logger zerolog.Logger) *LicenseController {
	return &LicenseController{
		licenseService: licenseService,
		logger:         logger,
	}
}

func licenseResponse(license *models.License) dto.LicenseResponse {
	return dto.LicenseResponse{
		ID:               license.ID,
		LearnerID:        license.LearnerID,
		OfferingID:       license.OfferingID,
		PeriodsPurchased: license.PeriodsPurchased,
		ExpiresAt:        license.ExpiresAt,
		Active:           license.Active,
		IssuedAt:         license.IssuedAt,
	}
}

// Purchase handles a new license purchase
// @Summary Purchase a license
// @Description Grants the caller time-bound access to an offering for the requested number of periods.
// @Tags licenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PurchaseLicenseRequest true "Purchase details"
// @Success 201 {object} dto.APIResponse{data=dto.LicenseResponse} "License granted"
// @Failure 400 {object} dto.ErrorResponse "Invalid periods or payload"
// @Failure 402 {object} dto.ErrorResponse "Payment below price"
// @Failure 409 {object} dto.ErrorResponse "Unexpired license exists or offering inactive"
// @Failure 422 {object} dto.ErrorResponse "Arithmetic overflow or transfer failure"
// @Router /licenses/purchase [post]
func (c *LicenseController) Purchase(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.PurchaseLicenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	license, err := c.licenseService.Purchase(ctx.Request.Context(), userID, req.OfferingID, req.Periods, req.Payment)
	if err != nil {
		c.logger.Warn().Err(err).Int64("offeringID", req.OfferingID).Msg("License purchase failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      licenseResponse(license),
		Timestamp: time.Now(),
	})
}

// Renew handles an additive license renewal
// @Summary Renew a license
// @Description Extends an existing grant; remaining validity is kept, periods add onto it.
// @Tags licenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RenewLicenseRequest true "Renewal details"
// @Success 200 {object} dto.APIResponse{data=dto.LicenseResponse} "License renewed"
// @Failure 402 {object} dto.ErrorResponse "Payment below price"
// @Failure 404 {object} dto.ErrorResponse "No license to renew"
// @Router /licenses/renew [post]
func (c *LicenseController) Renew(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.RenewLicenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	license, err := c.licenseService.Renew(ctx.Request.Context(), userID, req.OfferingID, req.Periods, req.Payment)
	if err != nil {
		c.logger.Warn().Err(err).Int64("offeringID", req.OfferingID).Msg("License renewal failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      licenseResponse(license),
		Timestamp: time.Now(),
	})
}

// GetLicense returns the caller's grant for one offering
// @Summary Get own license
// @Description Returns the caller's license row for an offering, expired or not.
// @Tags licenses
// @Produce json
// @Security BearerAuth
// @Param offeringId path int true "Offering ID"
// @Success 200 {object} dto.APIResponse{data=dto.LicenseResponse} "License"
// @Failure 404 {object} dto.ErrorResponse "License not found"
// @Router /licenses/{offeringId} [get]
func (c *LicenseController) GetLicense(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	offeringID, ok := parseIDParam(ctx, "offeringId")
	if !ok {
		return
	}

	license, err := c.licenseService.GetLicense(ctx.Request.Context(), userID, offeringID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      licenseResponse(license),
		Timestamp: time.Now(),
	})
}

// CheckValidity reports whether the caller's grant currently confers access
// @Summary Check license validity
// @Description Reports whether the caller holds currently valid access to an offering.
// @Tags licenses
// @Produce json
// @Security BearerAuth
// @Param offeringId path int true "Offering ID"
// @Success 200 {object} dto.APIResponse{data=dto.LicenseValidityResponse} "Validity flag"
// @Router /licenses/{offeringId}/validity [get]
func (c *LicenseController) CheckValidity(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	offeringID, ok := parseIDParam(ctx, "offeringId")
	if !ok {
		return
	}

	valid, err := c.licenseService.IsValid(ctx.Request.Context(), userID, offeringID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.LicenseValidityResponse{
			LearnerID:  userID,
			OfferingID: offeringID,
			Valid:      valid,
		},
		Timestamp: time.Now(),
	})
}

// MarkExpired deactivates a lapsed grant
// @Summary Mark a license expired
// @Description Flips the active flag of a grant whose expiry has passed. A no-op for still-valid grants.
// @Tags licenses
// @Produce json
// @Security BearerAuth
// @Param offeringId path int true "Offering ID"
// @Success 200 {object} dto.APIResponse{data=dto.LicenseResponse} "License state"
// @Failure 404 {object} dto.ErrorResponse "License not found"
// @Router /licenses/{offeringId}/expire [post]
func (c *LicenseController) MarkExpired(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	offeringID, ok := parseIDParam(ctx, "offeringId")
	if !ok {
		return
	}

	license, err := c.licenseService.MarkExpired(ctx.Request.Context(), userID, offeringID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      licenseResponse(license),
		Timestamp: time.Now(),
	})
}
