package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spacebudget/internal/models"
	"spacebudget/internal/services"
)

// CategoryHandler handles category-related requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name  string              `json:"name" binding:"required,max=50"`
	Kind  models.CategoryKind `json:"kind" binding:"required,category_kind"`
	Color string              `json:"color" binding:"required,hex_color"`
	Icon  *string             `json:"icon" binding:"omitempty,max=64"`
}

// UpdateCategoryRequest represents the request payload for updating a category
type UpdateCategoryRequest struct {
	Name  *string              `json:"name" binding:"omitempty,max=50"`
	Kind  *models.CategoryKind `json:"kind" binding:"omitempty,category_kind"`
	Color *string              `json:"color" binding:"omitempty,hex_color"`
	Icon  *string              `json:"icon" binding:"omitempty,max=64"`
}

// ListCategoriesQuery holds the filters of a category listing.
type ListCategoriesQuery struct {
	Query string              `form:"q"`
	Kind  models.CategoryKind `form:"kind" binding:"omitempty,category_kind"`
}

// ListCategories lists the categories of a space
// @Summary     List categories
// @Description Newest first, seek-paginated
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       slug   path  string true  "Space slug"
// @Param       q      query string false "Name contains (case-insensitive)"
// @Param       kind   query string false "expense or income"
// @Param       cursor query string false "Cursor from the previous page"
// @Param       limit  query int    false "Page size (default 20, max 100)"
// @Success     200 {object} pagination.Page[models.Category]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "No access"
// @Router      /spaces/{slug}/categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListCategoriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, err)
		return
	}
	page, err := parseCursor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.CategoryFilter{Query: query.Query}
	if query.Kind != "" {
		filter.Kind = &query.Kind
	}

	result, err := h.categoryService.ListCategories(c.Request.Context(), userID, c.Param("slug"), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateCategory creates a category in a space
// @Summary     Create a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       slug    path string                true "Space slug"
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "No access"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /spaces/{slug}/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	slug := c.Param("slug")
	category, err := h.categoryService.CreateCategory(c.Request.Context(), userID, slug, services.CategoryInput{
		Name:  req.Name,
		Kind:  req.Kind,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, slug, "CREATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]any{"name": category.Name, "kind": category.Kind})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory applies a partial update to a category
// @Summary     Update a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       slug    path string                true "Space slug"
// @Param       id      path string                true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to update"
// @Success     200 {object} models.Category
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /spaces/{slug}/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	slug := c.Param("slug")
	category, err := h.categoryService.UpdateCategory(c.Request.Context(), userID, slug, categoryID, services.CategoryPatch{
		Name:  req.Name,
		Kind:  req.Kind,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, slug, "UPDATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]any{"name": category.Name, "kind": category.Kind, "color": category.Color})

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory deletes a category that nothing references
// @Summary     Delete a category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       slug path string true "Space slug"
// @Param       id   path string true "Category ID"
// @Success     200 {object} DeletedResponse
// @Failure     403 {object} ErrorResponse "No access"
// @Failure     409 {object} ErrorResponse "Category in use"
// @Router      /spaces/{slug}/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	slug := c.Param("slug")
	deleted, err := h.categoryService.DeleteCategory(c.Request.Context(), userID, slug, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if deleted != nil {
		h.auditService.Log(c.Request.Context(), userID, slug, "DELETE_CATEGORY", "category", *deleted, c.ClientIP(), nil)
	}

	c.JSON(http.StatusOK, DeletedResponse{ID: deleted})
}
