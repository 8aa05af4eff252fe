package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mertcelik/eduledger/internal/app/controllers"
	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	offeringController *controllers.OfferingController,
	licenseController *controllers.LicenseController,
	progressController *controllers.ProgressController,
	credentialController *controllers.CredentialController,
	adminController *controllers.AdminController,
	authMiddleware *middleware.AuthMiddleware,
	pauseMiddleware *middleware.PauseMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	offerings := v1.Group("/offerings")
	{
		offerings.GET("", offeringController.GetAll)
		offerings.GET("/:id", offeringController.GetByID)
	}

	// Credential verification is public so third parties can check validity
	// without an account.
	credentialsPublic := v1.Group("/credentials")
	{
		credentialsPublic.GET("/:id", credentialController.GetCredential)
		credentialsPublic.GET("/:id/verify", credentialController.Verify)
		credentialsPublic.GET("/:id/offerings", credentialController.GetOfferings)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", authController.Me)
		authenticated.GET("/licenses/:offeringId", licenseController.GetLicense)
		authenticated.GET("/licenses/:offeringId/validity", licenseController.CheckValidity)
		authenticated.GET("/progress/:offeringId", progressController.GetProgress)

		// State-changing ledger routes stop responding while paused; admin
		// routes stay reachable so the pause can be lifted.
		writes := authenticated.Group("")
		writes.Use(pauseMiddleware.RejectWhenPaused())
		{
			licenses := writes.Group("/licenses")
			{
				licenses.POST("/purchase", licenseController.Purchase)
				licenses.POST("/renew", licenseController.Renew)
				licenses.POST("/:offeringId/expire", licenseController.MarkExpired)
			}

			writes.POST("/progress/complete", progressController.CompleteUnit)

			credentials := writes.Group("/credentials")
			{
				credentials.POST("/mint-or-grow", credentialController.MintOrGrow)
				credentials.POST("/mint-or-grow/batch", credentialController.MintOrGrowBatch)
				credentials.PUT("/:id/content-ref", credentialController.UpdateContentRef)

				creatorProtected := credentials.Group("")
				creatorProtected.Use(authMiddleware.RoleRequired(string(models.RoleCreator)))
				{
					creatorProtected.PUT("/offerings/:offeringId/price", credentialController.SetPrice)
				}
			}
		}

		// --- Admin routes ---
		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
		{
			admin.GET("/settings", adminController.GetSettings)
			admin.PUT("/settings/default-price", adminController.SetDefaultPrice)
			admin.PUT("/settings/fee-split", adminController.SetFeeSplit)
			admin.PUT("/settings/settlement-address", adminController.SetSettlementAddress)
			admin.POST("/pause", adminController.Pause)
			admin.POST("/unpause", adminController.Unpause)
			admin.POST("/accounts/:id/credit", adminController.CreditAccount)
			admin.POST("/credentials/:id/revoke", credentialController.Revoke)
		}
	}
}
