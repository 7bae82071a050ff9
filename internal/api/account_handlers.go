package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cashcraft/server/internal/models"
)

// GetAccounts lists the user's accounts
func (h *Handler) GetAccounts(c *gin.Context) {
	accounts, err := h.service.GetAccounts(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// CreateAccount creates a new account
func (h *Handler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// UpdateAccount applies a partial update to an account
func (h *Handler) UpdateAccount(c *gin.Context) {
	var req models.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	account, err := h.service.UpdateAccount(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// DeleteAccount removes an account and its transactions
func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.service.DeleteAccount(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// GetAccountStats returns aggregate balances
func (h *Handler) GetAccountStats(c *gin.Context) {
	stats, err := h.service.GetAccountStats(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
