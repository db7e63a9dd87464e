package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"group-board-api/internal/dto"
	"group-board-api/internal/response"
	"group-board-api/internal/service"
)

// GroupHandler handles group and membership endpoints
type GroupHandler struct {
	groupService service.GroupService
	boardService service.BoardService
}

// NewGroupHandler creates a new instance of GroupHandler
func NewGroupHandler(groupService service.GroupService, boardService service.BoardService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		boardService: boardService,
	}
}

// CreateGroup handles POST /groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, group)
}

// GetGroup handles GET /groups/:groupId. The response is the full detail
// view: metadata, members with their tags, and the assembled board.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	detail, err := h.groupService.GetGroup(c.Request.Context(), userID, c.Param("groupId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, detail)
}

// GetBoard handles GET /groups/:groupId/board
func (h *GroupHandler) GetBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board, err := h.boardService.GetBoard(c.Request.Context(), userID, c.Param("groupId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, board)
}

// UpdateGroup handles PATCH /groups/:groupId
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	group, err := h.groupService.UpdateGroup(c.Request.Context(), userID, c.Param("groupId"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, group)
}

// DeleteGroup handles DELETE /groups/:groupId
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.groupService.DeleteGroup(c.Request.Context(), userID, c.Param("groupId")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddMember handles POST /groups/:groupId/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.groupService.AddMember(c.Request.Context(), userID, c.Param("groupId"), &req); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, nil)
}
