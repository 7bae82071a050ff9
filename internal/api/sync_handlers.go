package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cashcraft/server/internal/models"
)

// PushSync applies a client batch of accounts, categories, transactions and
// debts
func (h *Handler) PushSync(c *gin.Context) {
	var req models.SyncPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.PushSync(c.Request.Context(), userID(c), req.Data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DownloadSync returns the user's full server-side state
func (h *Handler) DownloadSync(c *gin.Context) {
	resp, err := h.service.DownloadSync(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SyncStatus reports entity counts and the last sync time
func (h *Handler) SyncStatus(c *gin.Context) {
	resp, err := h.service.SyncStatus(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// WipeData deletes everything the user owns and restores the default seed
func (h *Handler) WipeData(c *gin.Context) {
	if err := h.service.WipeData(c.Request.Context(), userID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
