package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mertcelik/eduledger/internal/app/models/dto"
	"github.com/mertcelik/eduledger/internal/app/services"
	"github.com/mertcelik/eduledger/internal/middleware"
)

// OfferingController serves the read-only catalog
type OfferingController struct {
	offeringService *services.OfferingService
	logger          zerolog.Logger
}

// NewOfferingController creates a new OfferingController
func NewOfferingController(offeringService *services.OfferingService, logger zerolog.Logger) *OfferingController {
	return &OfferingController{
		offeringService: offeringService,
		logger:          logger,
	}
}

// parseIDParam reads a positive int64 path parameter
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid path parameter")
		errorDetail = errorDetail.WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// GetAll lists offerings
// @Summary List offerings
// @Description Returns every catalog offering.
// @Tags offerings
// @Produce json
// @Success 200 {object} dto.APIResponse "Offering list"
// @Router /offerings [get]
func (c *OfferingController) GetAll(ctx *gin.Context) {
	offerings, err := c.offeringService.GetAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      offerings,
		Timestamp: time.Now(),
	})
}

// GetByID returns one offering
// @Summary Get an offering
// @Description Returns a single catalog offering by identifier.
// @Tags offerings
// @Produce json
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.APIResponse "Offering"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /offerings/{id} [get]
func (c *OfferingController) GetByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	offering, err := c.offeringService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      offering,
		Timestamp: time.Now(),
	})
}
