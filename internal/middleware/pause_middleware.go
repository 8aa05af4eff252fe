package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mertcelik/eduledger/internal/app/models/dto"
	"github.com/mertcelik/eduledger/internal/app/services"
	"github.com/mertcelik/eduledger/internal/pkg/logger"
)

// PauseMiddleware rejects state-changing ledger requests while the pause
// flag is set. Admin routes are mounted outside it so the switch can always
// be flipped back.
type PauseMiddleware struct {
	adminService *services.AdminService
}

// NewPauseMiddleware creates a new PauseMiddleware
func NewPauseMiddleware(adminService *services.AdminService) *PauseMiddleware {
	return &PauseMiddleware{
		adminService: adminService,
	}
}

// RejectWhenPaused aborts with 503 while the ledger is paused
func (m *PauseMiddleware) RejectWhenPaused() gin.HandlerFunc {
	return func(c *gin.Context) {
		paused, err := m.adminService.IsPaused(c.Request.Context())
		if err != nil {
			logger.Error().Err(err).Msg("Failed to read pause state")
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
			return
		}

		if paused {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeLedgerPaused, "Ledger is paused")
			errorDetail = errorDetail.WithDetails("State-changing operations are temporarily disabled")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}
