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

// CredentialController handles the cumulative credential surface
type CredentialController struct {
	credentialService *services.CredentialService
	logger            zerolog.Logger
}

// NewCredentialController creates a new CredentialController
func NewCredentialController(credentialService *services.CredentialService, logger zerolog.Logger) *CredentialController {
	return &CredentialController{
		credentialService: credentialService,
		logger:            logger,
	}
}

func credentialResponse(credential *models.Credential) dto.CredentialResponse {
	return dto.CredentialResponse{
		ID:          credential.ID,
		LearnerID:   credential.LearnerID,
		DisplayName: credential.DisplayName,
		Valid:       credential.Valid,
		ContentRef:  credential.ContentRef,
		IssuedAt:    credential.IssuedAt,
		LastUpdated: credential.LastUpdated,
		OfferingIDs: credential.OfferingIDs,
	}
}

// MintOrGrow issues or grows the caller's credential
// @Summary Mint or grow a credential
// @Description Issues the caller's credential on their first qualifying completion, or appends the offering to it.
// @Tags credentials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MintOrGrowRequest true "Mint or grow details"
// @Success 200 {object} dto.APIResponse{data=dto.CredentialResponse} "Credential state"
// @Failure 400 {object} dto.ErrorResponse "Empty commitment or invalid display name"
// @Failure 402 {object} dto.ErrorResponse "Payment below price"
// @Failure 409 {object} dto.ErrorResponse "Offering not completed, already earned, or commitment reused"
// @Router /credentials/mint-or-grow [post]
func (c *CredentialController) MintOrGrow(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.MintOrGrowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	credential, err := c.credentialService.MintOrGrow(ctx.Request.Context(), userID, req.OfferingID, req.DisplayName, req.ContentRef, req.PaymentCommitment, req.Payment)
	if err != nil {
		c.logger.Warn().Err(err).Int64("offeringID", req.OfferingID).Msg("Mint-or-grow failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      credentialResponse(credential),
		Timestamp: time.Now(),
	})
}

// MintOrGrowBatch applies mint-or-grow across several offerings
// @Summary Mint or grow with a batch of offerings
// @Description Applies the mint-or-grow preconditions to every listed offering and commits all of them together.
// @Tags credentials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MintOrGrowBatchRequest true "Batch details"
// @Success 200 {object} dto.APIResponse{data=dto.CredentialResponse} "Credential state"
// @Failure 409 {object} dto.ErrorResponse "Any failing entry rejects the whole batch"
// @Router /credentials/mint-or-grow/batch [post]
func (c *CredentialController) MintOrGrowBatch(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.MintOrGrowBatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	credential, err := c.credentialService.MintOrGrowBatch(ctx.Request.Context(), userID, req.OfferingIDs, req.DisplayName, req.ContentRef, req.PaymentCommitment, req.Payment)
	if err != nil {
		c.logger.Warn().Err(err).Int("batchSize", len(req.OfferingIDs)).Msg("Batch mint-or-grow failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      credentialResponse(credential),
		Timestamp: time.Now(),
	})
}

// UpdateContentRef refreshes the caller's credential content reference
// @Summary Update credential content reference
// @Description Replaces the content reference of the caller's credential.
// @Tags credentials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credential ID"
// @Param request body dto.UpdateContentRefRequest true "New content reference"
// @Success 200 {object} dto.APIResponse{data=dto.CredentialResponse} "Credential state"
// @Failure 403 {object} dto.ErrorResponse "Credential belongs to another learner"
// @Router /credentials/{id}/content-ref [put]
func (c *CredentialController) UpdateContentRef(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	credentialID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateContentRefRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	credential, err := c.credentialService.UpdateContentRef(ctx.Request.Context(), userID, credentialID, req.ContentRef, req.PaymentCommitment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      credentialResponse(credential),
		Timestamp: time.Now(),
	})
}

// SetPrice overrides an offering's credential price
// @Summary Set a credential price override
// @Description Sets the mint or growth price for credentials earned through one offering. Creator only.
// @Tags credentials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param offeringId path int true "Offering ID"
// @Param request body dto.SetPriceRequest true "Price override"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Price set"
// @Failure 400 {object} dto.ErrorResponse "Price out of range"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the offering's creator"
// @Router /credentials/offerings/{offeringId}/price [put]
func (c *CredentialController) SetPrice(ctx *gin.Context) {
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

	var req dto.SetPriceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.credentialService.SetPrice(ctx.Request.Context(), userID, offeringID, req.Kind, req.Price); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Price updated"},
		Timestamp: time.Now(),
	})
}

// Revoke invalidates a credential
// @Summary Revoke a credential
// @Description Marks a credential invalid while keeping its history queryable. Admin only.
// @Tags credentials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credential ID"
// @Param request body dto.RevokeCredentialRequest true "Revocation reason"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Credential revoked"
// @Failure 404 {object} dto.ErrorResponse "Credential not found"
// @Router /admin/credentials/{id}/revoke [post]
func (c *CredentialController) Revoke(ctx *gin.Context) {
	credentialID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RevokeCredentialRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.credentialService.Revoke(ctx.Request.Context(), credentialID, req.Reason); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Credential revoked"},
		Timestamp: time.Now(),
	})
}

// Verify reports a credential's validity. Public endpoint.
// @Summary Verify a credential
// @Description Reports whether the credential exists and has not been revoked.
// @Tags credentials
// @Produce json
// @Param id path int true "Credential ID"
// @Success 200 {object} dto.APIResponse{data=dto.CredentialVerifyResponse} "Validity flag"
// @Router /credentials/{id}/verify [get]
func (c *CredentialController) Verify(ctx *gin.Context) {
	credentialID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	valid, err := c.credentialService.Verify(ctx.Request.Context(), credentialID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.CredentialVerifyResponse{
			CredentialID: credentialID,
			Valid:        valid,
		},
		Timestamp: time.Now(),
	})
}

// GetOfferings returns a credential's cumulative offering list. Public endpoint.
// @Summary List a credential's offerings
// @Description Returns the credential's offering identifiers in the order they were earned.
// @Tags credentials
// @Produce json
// @Param id path int true "Credential ID"
// @Success 200 {object} dto.APIResponse "Offering identifiers"
// @Failure 404 {object} dto.ErrorResponse "Credential not found"
// @Router /credentials/{id}/offerings [get]
func (c *CredentialController) GetOfferings(ctx *gin.Context) {
	credentialID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	offeringIDs, err := c.credentialService.GetCumulativeOfferings(ctx.Request.Context(), credentialID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      offeringIDs,
		Timestamp: time.Now(),
	})
}

// GetCredential returns a credential with its offering list. Public endpoint.
// @Summary Get a credential
// @Description Returns the full credential record including its cumulative offering list.
// @Tags credentials
// @Produce json
// @Param id path int true "Credential ID"
// @Success 200 {object} dto.APIResponse{data=dto.CredentialResponse} "Credential"
// @Failure 404 {object} dto.ErrorResponse "Credential not found"
// @Router /credentials/{id} [get]
func (c *CredentialController) GetCredential(ctx *gin.Context) {
	credentialID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	credential, err := c.credentialService.GetCredential(ctx.Request.Context(), credentialID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      credentialResponse(credential),
		Timestamp: time.Now(),
	})
}
