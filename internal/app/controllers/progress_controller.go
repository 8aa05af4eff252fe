package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mertcelik/eduledger/internal/app/models/dto"
	"github.com/mertcelik/eduledger/internal/app/services"
	"github.com/mertcelik/eduledger/internal/middleware"
)

// ProgressController handles unit completions and progress queries
type ProgressController struct {
	progressService *services.ProgressService
	offeringService *services.OfferingService
	logger          zerolog.Logger
}

// NewProgressController creates a new ProgressController
func NewProgressController(progressService *services.ProgressService, offeringService *services.OfferingService, logger zerolog.Logger) *ProgressController {
	return &ProgressController{
		progressService: progressService,
		offeringService: offeringService,
		logger:          logger,
	}
}

// CompleteUnit records one unit completion
// @Summary Complete a unit
// @Description Records the caller's completion of one unit. Requires a currently valid license for the offering.
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CompleteUnitRequest true "Unit completion"
// @Success 200 {object} dto.APIResponse{data=dto.UnitCompletionResponse} "Progress state"
// @Failure 400 {object} dto.ErrorResponse "Unit index out of range"
// @Failure 409 {object} dto.ErrorResponse "No valid license or unit already completed"
// @Router /progress/complete [post]
func (c *ProgressController) CompleteUnit(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.CompleteUnitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	completion, err := c.progressService.CompleteUnit(ctx.Request.Context(), userID, req.OfferingID, *req.UnitIndex)
	if err != nil {
		c.logger.Warn().Err(err).Int64("offeringID", req.OfferingID).Int("unitIndex", *req.UnitIndex).Msg("Unit completion failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	offering, err := c.offeringService.GetByID(ctx.Request.Context(), req.OfferingID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.UnitCompletionResponse{
			OfferingID:        req.OfferingID,
			UnitIndex:         *req.UnitIndex,
			CompletedUnits:    completion.CompletedUnits,
			UnitCount:         offering.UnitCount,
			OfferingCompleted: completion.Completed,
			CompletedAt:       completion.CompletedAt,
		},
		Timestamp: time.Now(),
	})
}

// GetProgress returns the caller's per-unit completion sequence
// @Summary Get offering progress
// @Description Returns the per-unit completion flags for the caller in unit order.
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param offeringId path int true "Offering ID"
// @Success 200 {object} dto.APIResponse{data=dto.OfferingProgressResponse} "Progress"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /progress/{offeringId} [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
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

	units, err := c.progressService.GetOfferingProgress(ctx.Request.Context(), userID, offeringID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	completed, err := c.progressService.IsOfferingCompleted(ctx.Request.Context(), userID, offeringID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.OfferingProgressResponse{
			OfferingID: offeringID,
			Units:      units,
			Completed:  completed,
		},
		Timestamp: time.Now(),
	})
}
