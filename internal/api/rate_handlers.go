package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cashcraft/server/internal/models"
)

// GetExchangeRate resolves the rate for a currency pair
func (h *Handler) GetExchangeRate(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "from and to query parameters are required"})
		return
	}

	rate, err := h.service.GetExchangeRate(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RateResponse{Rate: rate, From: from, To: to})
}

// GetRatesLastUpdate reports when the rate cache was last refreshed
func (h *Handler) GetRatesLastUpdate(c *gin.Context) {
	lastUpdate, err := h.service.GetRatesLastUpdate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.LastUpdateResponse{LastUpdate: lastUpdate})
}

// UpdateRates triggers a staleness check and refresh
func (h *Handler) UpdateRates(c *gin.Context) {
	refreshed, err := h.service.UpdateRates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"refreshed": refreshed})
}

// GetUserRates lists the user's manual rates
func (h *Handler) GetUserRates(c *gin.Context) {
	entries, err := h.service.GetUserRates(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// SaveUserRate stores a manual per-user rate
func (h *Handler) SaveUserRate(c *gin.Context) {
	var req models.SaveUserRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	entry, err := h.service.SaveUserRate(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// DeleteUserRate removes a manual per-user rate
func (h *Handler) DeleteUserRate(c *gin.Context) {
	err := h.service.DeleteUserRate(c.Request.Context(), userID(c), c.Param("from"), c.Param("to"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
