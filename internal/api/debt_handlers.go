package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cashcraft/server/internal/models"
)

// GetDebts lists the user's debts
func (h *Handler) GetDebts(c *gin.Context) {
	debts, err := h.service.GetDebts(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, debts)
}

// CreateDebt records a debt. Pushing an existing id updates the record
// instead.
func (h *Handler) CreateDebt(c *gin.Context) {
	var req models.CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	debt, created, err := h.service.CreateDebt(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, debt)
}

// UpdateDebt applies a partial update to a debt
func (h *Handler) UpdateDebt(c *gin.Context) {
	var req models.UpdateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	debt, err := h.service.UpdateDebt(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, debt)
}

// DeleteDebt removes a debt
func (h *Handler) DeleteDebt(c *gin.Context) {
	if err := h.service.DeleteDebt(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// PayDebt settles a debt from an account, fully or partially
func (h *Handler) PayDebt(c *gin.Context) {
	var req models.PayDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.PayDebt(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetDebtStats nets owed-to-me against owed-by-me
func (h *Handler) GetDebtStats(c *gin.Context) {
	stats, err := h.service.GetDebtStats(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
