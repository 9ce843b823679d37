package api

import (
	"net/http"

	"tombola/models"

	"github.com/gin-gonic/gin"
)

// presentRaffle reports an active raffle past its deadline as ended
func (h *Handler) presentRaffle(r *models.Raffle) *models.Raffle {
	out := *r
	out.Status = r.EffectiveStatus(h.now())
	return &out
}

func (h *Handler) presentRafflePage(page *models.RafflePage) *models.RafflePage {
	out := *page
	out.Items = make([]*models.Raffle, len(page.Items))
	for i, r := range page.Items {
		out.Items[i] = h.presentRaffle(r)
	}
	return &out
}

// ListRaffles handles GET /raffles
func (h *Handler) ListRaffles(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	result, err := h.services.Raffles.List(c.Request.Context(), models.RaffleFilter{Status: raffleStatusFromQuery(c)}, page)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.presentRafflePage(result))
}

// GetRaffle handles GET /raffles/:id
func (h *Handler) GetRaffle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	raffle, err := h.services.Raffles.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.presentRaffle(raffle))
}

// CreateRaffle handles POST /raffles
func (h *Handler) CreateRaffle(c *gin.Context) {
	var cfg models.RaffleConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}

	raffle, err := h.services.Raffles.Create(c.Request.Context(), requesterFrom(c).UserID, cfg)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.presentRaffle(raffle))
}

// EditRaffle handles PUT /raffles/:id
func (h *Handler) EditRaffle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var cfg models.RaffleConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}

	raffle, err := h.services.Raffles.Edit(c.Request.Context(), id, cfg)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.presentRaffle(raffle))
}

// DeleteRaffle handles DELETE /raffles/:id
func (h *Handler) DeleteRaffle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Raffles.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DrawRaffle handles POST /raffles/:id/draw
func (h *Handler) DrawRaffle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.services.Draw.Draw(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecomputeRaffleStats handles POST /raffles/:id/recompute
func (h *Handler) RecomputeRaffleStats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	raffle, err := h.services.Raffles.RecomputeStats(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.presentRaffle(raffle))
}

// CancelRaffle handles POST /raffles/:id/cancel
func (h *Handler) CancelRaffle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	raffle, err := h.services.Raffles.Cancel(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.presentRaffle(raffle))
}
