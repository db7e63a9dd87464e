package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"group-board-api/internal/domain"
	"group-board-api/internal/dto"
	"group-board-api/internal/response"
	"group-board-api/internal/service"
)

// TagHandler handles tag endpoints for both kinds. The kind is part of the
// route, so card tags and user tags share one handler while keeping their
// independent code namespaces.
type TagHandler struct {
	tagService service.TagService
}

// NewTagHandler creates a new instance of TagHandler
func NewTagHandler(tagService service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// kindFromParam resolves the :kind route segment to a tag kind
func kindFromParam(c *gin.Context) (domain.TagKind, bool) {
	switch c.Param("kind") {
	case string(domain.TagKindCard):
		return domain.TagKindCard, true
	case string(domain.TagKindUser):
		return domain.TagKindUser, true
	default:
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Tag kind must be 'card' or 'user'")
		return "", false
	}
}

// CreateTag handles POST /groups/:groupId/tags/:kind
func (h *TagHandler) CreateTag(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	tag, err := h.tagService.CreateTag(c.Request.Context(), userID, c.Param("groupId"), kind, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, tag)
}

// ListTags handles GET /groups/:groupId/tags/:kind
func (h *TagHandler) ListTags(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	tags, err := h.tagService.ListTags(c.Request.Context(), userID, c.Param("groupId"), kind)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, tags)
}

// GetTag handles GET /groups/:groupId/tags/:kind/:code
func (h *TagHandler) GetTag(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	tag, err := h.tagService.GetTag(c.Request.Context(), userID, c.Param("groupId"), kind, c.Param("code"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, tag)
}

// UpdateTag handles PATCH /groups/:groupId/tags/:kind/:code
func (h *TagHandler) UpdateTag(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	var req dto.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	tag, err := h.tagService.UpdateTag(c.Request.Context(), userID, c.Param("groupId"), kind, c.Param("code"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, tag)
}

// DeleteTag handles DELETE /groups/:groupId/tags/:kind/:code
func (h *TagHandler) DeleteTag(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	if err := h.tagService.DeleteTag(c.Request.Context(), userID, c.Param("groupId"), kind, c.Param("code")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateUserTagRelation handles POST /groups/:groupId/user-tags
func (h *TagHandler) CreateUserTagRelation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateUserTagRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	relation, err := h.tagService.CreateUserTagRelation(c.Request.Context(), userID, c.Param("groupId"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, relation)
}

// DeleteUserTagRelation handles DELETE /groups/:groupId/user-tags/:username/:code
func (h *TagHandler) DeleteUserTagRelation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	err := h.tagService.DeleteUserTagRelation(c.Request.Context(), userID,
		c.Param("groupId"), c.Param("username"), c.Param("code"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
