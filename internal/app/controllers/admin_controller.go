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

// AdminController exposes the ledger-wide settings surface. Every route it
// serves sits behind the ADMIN role middleware.
type AdminController struct {
	adminService *services.AdminService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService *services.AdminService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

func settingsResponse(settings *models.PlatformSettings) dto.SettingsResponse {
	return dto.SettingsResponse{
		Paused:             settings.Paused,
		FeeBps:             settings.FeeBps,
		DefaultMintPrice:   settings.DefaultMintPrice,
		DefaultGrowthPrice: settings.DefaultGrowthPrice,
		TreasuryAccountID:  settings.TreasuryAccountID,
	}
}

// GetSettings returns the current ledger settings
// @Summary Get ledger settings
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SettingsResponse} "Settings"
// @Router /admin/settings [get]
func (c *AdminController) GetSettings(ctx *gin.Context) {
	settings, err := c.adminService.GetSettings(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      settingsResponse(settings),
		Timestamp: time.Now(),
	})
}

// SetDefaultPrice changes a ledger-wide default credential price
// @Summary Set a default credential price
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetDefaultPriceRequest true "Price kind and value"
// @Success 200 {object} dto.APIResponse{data=dto.SettingsResponse} "Updated settings"
// @Failure 400 {object} dto.ErrorResponse "Price out of range"
// @Router /admin/settings/default-price [put]
func (c *AdminController) SetDefaultPrice(ctx *gin.Context) {
	var req dto.SetDefaultPriceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	settings, err := c.adminService.SetDefaultPrice(ctx.Request.Context(), req.Kind, req.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      settingsResponse(settings),
		Timestamp: time.Now(),
	})
}

// SetFeeSplit changes the platform share of settlements
// @Summary Set the fee split
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetFeeSplitRequest true "Platform share in basis points"
// @Success 200 {object} dto.APIResponse{data=dto.SettingsResponse} "Updated settings"
// @Failure 400 {object} dto.ErrorResponse "Basis points out of range"
// @Router /admin/settings/fee-split [put]
func (c *AdminController) SetFeeSplit(ctx *gin.Context) {
	var req dto.SetFeeSplitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	settings, err := c.adminService.SetFeeSplit(ctx.Request.Context(), *req.Bps)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      settingsResponse(settings),
		Timestamp: time.Now(),
	})
}

// SetSettlementAddress changes the treasury account
// @Summary Set the settlement address
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetSettlementAddressRequest true "Treasury account identifier"
// @Success 200 {object} dto.APIResponse{data=dto.SettingsResponse} "Updated settings"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /admin/settings/settlement-address [put]
func (c *AdminController) SetSettlementAddress(ctx *gin.Context) {
	var req dto.SetSettlementAddressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	settings, err := c.adminService.SetSettlementAddress(ctx.Request.Context(), req.AccountID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      settingsResponse(settings),
		Timestamp: time.Now(),
	})
}

// Pause halts state-changing ledger operations
// @Summary Pause the ledger
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SettingsResponse} "Updated settings"
// @Failure 409 {object} dto.ErrorResponse "Already paused"
// @Router /admin/pause [post]
func (c *AdminController) Pause(ctx *gin.Context) {
	settings, err := c.adminService.Pause(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Warn().Msg("Ledger paused")
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      settingsResponse(settings),
		Timestamp: time.Now(),
	})
}

// Unpause resumes state-changing ledger operations
// @Summary Unpause the ledger
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SettingsResponse} "Updated settings"
// @Failure 409 {object} dto.ErrorResponse "Not paused"
// @Router /admin/unpause [post]
func (c *AdminController) Unpause(ctx *gin.Context) {
	settings, err := c.adminService.Unpause(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Msg("Ledger unpaused")
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      settingsResponse(settings),
		Timestamp: time.Now(),
	})
}

// CreditAccount funds a wallet
// @Summary Credit an account
// @Description Adds native settlement units to an account balance.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param request body dto.CreditAccountRequest true "Credit amount"
// @Success 200 {object} dto.APIResponse "Updated account"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /admin/accounts/{id}/credit [post]
func (c *AdminController) CreditAccount(ctx *gin.Context) {
	accountID := ctx.Param("id")
	if accountID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid path parameter").WithField("id")))
		return
	}

	var req dto.CreditAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	account, err := c.adminService.CreditAccount(ctx.Request.Context(), accountID, req.Amount)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      account,
		Timestamp: time.Now(),
	})
}
