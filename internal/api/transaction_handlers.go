package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cashcraft/server/internal/models"
)

// parseTransactionFilter reads listing filters from query parameters
func parseTransactionFilter(c *gin.Context) models.TransactionFilter {
	filter := models.TransactionFilter{
		AccountID:  c.Query("accountId"),
		CategoryID: c.Query("categoryId"),
		Type:       models.TransactionType(c.Query("type")),
	}

	if v := c.Query("startDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := c.Query("endDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndDate = &t
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	return filter
}

// GetTransactions lists the user's transactions with optional filters
func (h *Handler) GetTransactions(c *gin.Context) {
	resp, err := h.service.GetTransactions(c.Request.Context(), userID(c), parseTransactionFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateTransaction records a transaction and applies its balance effect.
// Pushing an existing id updates the record instead.
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	trx, created, err := h.service.CreateTransaction(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, trx)
}

// UpdateTransaction applies a partial update, reversing the old balance
// effect and applying the new one
func (h *Handler) UpdateTransaction(c *gin.Context) {
	var req models.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	trx, err := h.service.UpdateTransaction(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trx)
}

// DeleteTransaction removes a transaction and rolls back its balance effect
func (h *Handler) DeleteTransaction(c *gin.Context) {
	if err := h.service.DeleteTransaction(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// GetTransactionStats returns income/expense aggregates
func (h *Handler) GetTransactionStats(c *gin.Context) {
	stats, err := h.service.GetTransactionStats(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
