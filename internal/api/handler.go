package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cashcraft/server/internal/models"
	"github.com/cashcraft/server/internal/rates"
	"github.com/cashcraft/server/internal/service"
)

// Handler holds dependencies for API handlers
type Handler struct {
	service service.Service
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service) *Handler {
	return &Handler{
		service: svc,
	}
}

// SetupRoutes registers all API routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	v1.GET("/health", h.Health)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/guest", h.GuestLogin)
		auth.POST("/google", h.GoogleLogin)
		auth.POST("/refresh", h.RefreshTokens)
		auth.POST("/logout", h.Logout)
	}

	protected := v1.Group("")
	protected.Use(AuthMiddleware())
	{
		accounts := protected.Group("/accounts")
		{
			accounts.GET("", h.GetAccounts)
			accounts.POST("", h.CreateAccount)
			accounts.GET("/stats", h.GetAccountStats)
			accounts.GET("/:id/stats", h.GetAccountStats)
			accounts.PUT("/:id", h.UpdateAccount)
			accounts.DELETE("/:id", h.DeleteAccount)
		}

		categories := protected.Group("/categories")
		{
			categories.GET("", h.GetCategories)
			categories.POST("", h.CreateCategory)
			categories.POST("/reset", h.ResetCategories)
			categories.PUT("/:id", h.UpdateCategory)
			categories.DELETE("/:id", h.DeleteCategory)
		}

		transactions := protected.Group("/transactions")
		{
			transactions.GET("", h.GetTransactions)
			transactions.POST("", h.CreateTransaction)
			transactions.GET("/stats", h.GetTransactionStats)
			transactions.PUT("/:id", h.UpdateTransaction)
			transactions.DELETE("/:id", h.DeleteTransaction)
		}

		debts := protected.Group("/debts")
		{
			debts.GET("", h.GetDebts)
			debts.POST("", h.CreateDebt)
			debts.GET("/stats", h.GetDebtStats)
			debts.PUT("/:id", h.UpdateDebt)
			debts.DELETE("/:id", h.DeleteDebt)
			debts.POST("/:id/pay", h.PayDebt)
		}

		exchangeRates := protected.Group("/exchange-rates")
		{
			exchangeRates.GET("/rate", h.GetExchangeRate)
			exchangeRates.GET("/last-update", h.GetRatesLastUpdate)
			exchangeRates.POST("/update", h.UpdateRates)
			exchangeRates.GET("/user", h.GetUserRates)
			exchangeRates.POST("/user", h.SaveUserRate)
			exchangeRates.DELETE("/user/:from/:to", h.DeleteUserRate)
		}

		sync := protected.Group("/sync")
		{
			sync.POST("/upload", h.PushSync)
			sync.GET("/download", h.DownloadSync)
			sync.GET("/status", h.SyncStatus)
			sync.DELETE("/wipe", h.WipeData)
		}
	}
}

// Health is a liveness probe
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// userID extracts the authenticated user id set by AuthMiddleware
func userID(c *gin.Context) string {
	return c.GetString("userId")
}

// respondError translates service errors into HTTP status codes
func respondError(c *gin.Context, err error) {
	var status int

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrLastAccount),
		errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, service.ErrEmailTaken):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrAccountLimit),
		errors.Is(err, service.ErrCategoryLimit),
		errors.Is(err, service.ErrSystemCategory),
		errors.Is(err, service.ErrSystemRenameOnly):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, rates.ErrRateNotFound):
		status = http.StatusNotFound
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(status, models.ErrorResponse{Error: err.Error()})
}
