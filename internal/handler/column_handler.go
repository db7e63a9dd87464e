package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"group-board-api/internal/dto"
	"group-board-api/internal/response"
	"group-board-api/internal/service"
)

// ColumnHandler handles board column endpoints
type ColumnHandler struct {
	columnService service.ColumnService
}

// NewColumnHandler creates a new instance of ColumnHandler
func NewColumnHandler(columnService service.ColumnService) *ColumnHandler {
	return &ColumnHandler{columnService: columnService}
}

// CreateColumn handles POST /groups/:groupId/columns
func (h *ColumnHandler) CreateColumn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	column, err := h.columnService.CreateColumn(c.Request.Context(), userID, c.Param("groupId"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, column)
}

// ListColumns handles GET /groups/:groupId/columns
func (h *ColumnHandler) ListColumns(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	columns, err := h.columnService.ListColumns(c.Request.Context(), userID, c.Param("groupId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, columns)
}

// UpdateColumn handles PATCH /groups/:groupId/columns/:columnId
func (h *ColumnHandler) UpdateColumn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	columnID, err := uuid.Parse(c.Param("columnId"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid column ID")
		return
	}

	var req dto.UpdateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	column, err := h.columnService.UpdateColumn(c.Request.Context(), userID, c.Param("groupId"), columnID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, column)
}

// DeleteColumn handles DELETE /groups/:groupId/columns/:columnId
func (h *ColumnHandler) DeleteColumn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	columnID, err := uuid.Parse(c.Param("columnId"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid column ID")
		return
	}

	if err := h.columnService.DeleteColumn(c.Request.Context(), userID, c.Param("groupId"), columnID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
