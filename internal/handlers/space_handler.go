package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spacebudget/internal/models"
	"spacebudget/internal/services"
)

// SpaceHandler handles spaces and their members.
type SpaceHandler struct {
	spaceService services.SpaceServicer
	auditService services.AuditServicer
}

// NewSpaceHandler creates a new SpaceHandler.
func NewSpaceHandler(spaceService services.SpaceServicer, auditService services.AuditServicer) *SpaceHandler {
	return &SpaceHandler{spaceService: spaceService, auditService: auditService}
}

// CreateSpaceRequest represents the request payload for creating a space
type CreateSpaceRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// UpdateSpaceRequest represents the request payload for updating a space
type UpdateSpaceRequest struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
	Slug *string `json:"slug" binding:"omitempty,slug"`
}

// AddMemberRequest represents the request payload for adding a member
type AddMemberRequest struct {
	UserID string            `json:"user_id" binding:"required,uuid"`
	Role   models.MemberRole `json:"role" binding:"omitempty,member_role"`
}

// ListSpaces lists the spaces the caller belongs to
// @Summary     List my spaces
// @Tags        spaces
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.SpaceWithRole
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /spaces [get]
func (h *SpaceHandler) ListSpaces(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	spaces, err := h.spaceService.ListMySpaces(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"spaces": spaces})
}

// CreateSpace creates a space owned by the caller
// @Summary     Create a space
// @Description Create a space; the slug is derived from the name plus a random suffix
// @Tags        spaces
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSpaceRequest true "Space details"
// @Success     201 {object} models.Space
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Slug taken"
// @Router      /spaces [post]
func (h *SpaceHandler) CreateSpace(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSpaceRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	space, err := h.spaceService.CreateSpace(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, space.Slug, "CREATE_SPACE", "space", space.ID, c.ClientIP(),
		map[string]any{"name": space.Name})

	c.JSON(http.StatusCreated, gin.H{"space": space})
}

// GetSpace returns a space the caller belongs to
// @Summary     Get a space
// @Tags        spaces
// @Produce     json
// @Security    BearerAuth
// @Param       slug path string true "Space slug"
// @Success     200 {object} services.SpaceWithRole
// @Failure     403 {object} ErrorResponse "No access"
// @Router      /spaces/{slug} [get]
func (h *SpaceHandler) GetSpace(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	space, err := h.spaceService.GetSpace(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"space": space})
}

// UpdateSpace renames a space or changes its slug
// @Summary     Update a space
// @Tags        spaces
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       slug    path string             true "Space slug"
// @Param       request body UpdateSpaceRequest true "Fields to update"
// @Success     200 {object} models.Space
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     409 {object} ErrorResponse "Slug taken"
// @Router      /spaces/{slug} [put]
func (h *SpaceHandler) UpdateSpace(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSpaceRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	slug := c.Param("slug")
	space, err := h.spaceService.UpdateSpace(c.Request.Context(), userID, slug,
		services.UpdateSpaceInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, space.Slug, "UPDATE_SPACE", "space", space.ID, c.ClientIP(),
		map[string]any{"previous_slug": slug, "name": space.Name, "slug": space.Slug})

	c.JSON(http.StatusOK, gin.H{"space": space})
}

// ListMembers lists the members of a space
// @Summary     List members
// @Tags        spaces
// @Produce     json
// @Security    BearerAuth
// @Param       slug path string true "Space slug"
// @Success     200 {array}  models.Member
// @Failure     403 {object} ErrorResponse "No access"
// @Router      /spaces/{slug}/members [get]
func (h *SpaceHandler) ListMembers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	members, err := h.spaceService.ListMembers(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// AddMember adds a user to a space
// @Summary     Add a member
// @Tags        spaces
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       slug    path string           true "Space slug"
// @Param       request body AddMemberRequest true "Member"
// @Success     201 {object} models.Member
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     409 {object} ErrorResponse "Already a member"
// @Router      /spaces/{slug}/members [post]
func (h *SpaceHandler) AddMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddMemberRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	if req.Role == "" {
		req.Role = models.MemberRoleMember
	}

	slug := c.Param("slug")
	member, err := h.spaceService.AddMember(c.Request.Context(), userID, slug, req.UserID, req.Role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, slug, "ADD_MEMBER", "member", member.UserID, c.ClientIP(),
		map[string]any{"role": member.Role})

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// RemoveMember removes a user from a space
// @Summary     Remove a member
// @Description The owner cannot be removed. Removing a non-member returns a null id.
// @Tags        spaces
// @Produce     json
// @Security    BearerAuth
// @Param       slug   path string true "Space slug"
// @Param       userId path string true "Member user ID"
// @Success     200 {object} DeletedResponse
// @Failure     400 {object} ErrorResponse "Owner removal"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Router      /spaces/{slug}/members/{userId} [delete]
func (h *SpaceHandler) RemoveMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	slug := c.Param("slug")
	removed, err := h.spaceService.RemoveMember(c.Request.Context(), userID, slug, memberID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if removed != nil {
		h.auditService.Log(c.Request.Context(), userID, slug, "REMOVE_MEMBER", "member", *removed, c.ClientIP(), nil)
	}

	c.JSON(http.StatusOK, DeletedResponse{ID: removed})
}
