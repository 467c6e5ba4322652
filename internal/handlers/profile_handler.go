package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spacebudget/internal/services"
)

// ProfileHandler handles profile-related requests.
type ProfileHandler struct {
	profileService services.ProfileServicer
	auditService   services.AuditServicer
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService services.ProfileServicer, auditService services.AuditServicer) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, auditService: auditService}
}

// UpsertProfileRequest represents the request payload for saving a profile
type UpsertProfileRequest struct {
	Name      string `json:"name" binding:"max=100"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url,max=2048"`
}

// GetProfile returns the caller's profile
// @Summary     Get profile
// @Description Get the profile of the authenticated user
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Profile
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Profile not found"
// @Router      /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpsertProfile creates or replaces the caller's profile
// @Summary     Save profile
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpsertProfileRequest true "Profile"
// @Success     200 {object} models.Profile
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [put]
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertProfileRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	profile, err := h.profileService.UpsertProfile(c.Request.Context(), userID, req.Name, req.AvatarURL)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "", "UPSERT_PROFILE", "profile", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
