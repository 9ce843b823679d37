package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListMyParticipations handles GET /users/participations
func (h *Handler) ListMyParticipations(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	result, err := h.services.Participations.ListForUser(c.Request.Context(), requesterFrom(c).UserID, participationStatusFromQuery(c), page)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyStats handles GET /users/me/stats
func (h *Handler) GetMyStats(c *gin.Context) {
	stats, err := h.services.Users.GetStats(c.Request.Context(), requesterFrom(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
