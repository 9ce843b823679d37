package api

import (
	"net/http"

	"tombola/models"
	"tombola/service"

	"github.com/gin-gonic/gin"
)

type decisionRequest struct {
	Action models.DecisionAction `json:"action"`
	Notes  string                `json:"notes"`
}

// SubmitParticipation handles POST /participations
func (h *Handler) SubmitParticipation(c *gin.Context) {
	var req service.SubmitParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	req.UserID = requesterFrom(c).UserID

	participation, err := h.services.Participations.Submit(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, participation)
}

// ListParticipations handles GET /participations (admin)
func (h *Handler) ListParticipations(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	raffleID, ok := optionalQueryID(c, "raffleId")
	if !ok {
		return
	}
	userID, ok := optionalQueryID(c, "userId")
	if !ok {
		return
	}

	filter := models.ParticipationFilter{
		Status:   participationStatusFromQuery(c),
		RaffleID: raffleID,
		UserID:   userID,
	}

	result, err := h.services.Participations.ListAll(c.Request.Context(), filter, page)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetParticipation handles GET /participations/:id
func (h *Handler) GetParticipation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	participation, err := h.services.Participations.Get(c.Request.Context(), id, requesterFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, participation)
}

// GetParticipationByNumber handles GET /participations/number/:number
func (h *Handler) GetParticipationByNumber(c *gin.Context) {
	participation, err := h.services.Participations.GetByNumber(c.Request.Context(), c.Param("number"), requesterFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, participation)
}

// DecideParticipation handles PUT /participations/:id/validate
func (h *Handler) DecideParticipation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}

	participation, err := h.services.Validation.Decide(c.Request.Context(), id, requesterFrom(c).UserID, req.Action, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, participation)
}
