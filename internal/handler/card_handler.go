package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"group-board-api/internal/dto"
	"group-board-api/internal/response"
	"group-board-api/internal/service"
)

// CardHandler handles card endpoints. Cards are addressed by their short code
// within the group, never by internal UUID.
type CardHandler struct {
	cardService service.CardService
}

// NewCardHandler creates a new instance of CardHandler
func NewCardHandler(cardService service.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// CreateCard handles POST /groups/:groupId/cards
func (h *CardHandler) CreateCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	card, err := h.cardService.CreateCard(c.Request.Context(), userID, c.Param("groupId"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, card)
}

// GetCard handles GET /groups/:groupId/cards/:code
func (h *CardHandler) GetCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	card, err := h.cardService.GetCard(c.Request.Context(), userID, c.Param("groupId"), c.Param("code"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, card)
}

// ListCards handles GET /groups/:groupId/cards
func (h *CardHandler) ListCards(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cards, err := h.cardService.ListCards(c.Request.Context(), userID, c.Param("groupId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, cards)
}

// UpdateCard handles PATCH /groups/:groupId/cards/:code
func (h *CardHandler) UpdateCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	card, err := h.cardService.UpdateCard(c.Request.Context(), userID, c.Param("groupId"), c.Param("code"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, card)
}

// DeleteCard handles DELETE /groups/:groupId/cards/:code
func (h *CardHandler) DeleteCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.cardService.DeleteCard(c.Request.Context(), userID, c.Param("groupId"), c.Param("code")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
