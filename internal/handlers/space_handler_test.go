package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/models"
	"spacebudget/internal/services"
)

// --- mock space service ---

type mockSpaceService struct {
	createSpaceFn  func(userID, name string) (*models.Space, error)
	listMySpacesFn func(userID string) ([]services.SpaceWithRole, error)
	getSpaceFn     func(userID, slug string) (*services.SpaceWithRole, error)
	updateSpaceFn  func(userID, slug string, in services.UpdateSpaceInput) (*models.Space, error)
	listMembersFn  func(userID, slug string) ([]models.Member, error)
	addMemberFn    func(userID, slug, memberID string, role models.MemberRole) (*models.Member, error)
	removeMemberFn func(userID, slug, memberID string) (*string, error)
}

func (m *mockSpaceService) AssertSpaceAccess(_ context.Context, _, _ string) (string, error) {
	return "space-id", nil
}

func (m *mockSpaceService) CreateSpace(_ context.Context, userID, name string) (*models.Space, error) {
	if m.createSpaceFn != nil {
		return m.createSpaceFn(userID, name)
	}
	return &models.Space{}, nil
}

func (m *mockSpaceService) ListMySpaces(_ context.Context, userID string) ([]services.SpaceWithRole, error) {
	if m.listMySpacesFn != nil {
		return m.listMySpacesFn(userID)
	}
	return []services.SpaceWithRole{}, nil
}

func (m *mockSpaceService) GetSpace(_ context.Context, userID, slug string) (*services.SpaceWithRole, error) {
	if m.getSpaceFn != nil {
		return m.getSpaceFn(userID, slug)
	}
	return &services.SpaceWithRole{}, nil
}

func (m *mockSpaceService) UpdateSpace(_ context.Context, userID, slug string, in services.UpdateSpaceInput) (*models.Space, error) {
	if m.updateSpaceFn != nil {
		return m.updateSpaceFn(userID, slug, in)
	}
	return &models.Space{}, nil
}

func (m *mockSpaceService) ListMembers(_ context.Context, userID, slug string) ([]models.Member, error) {
	if m.listMembersFn != nil {
		return m.listMembersFn(userID, slug)
	}
	return []models.Member{}, nil
}

func (m *mockSpaceService) AddMember(_ context.Context, userID, slug, memberID string, role models.MemberRole) (*models.Member, error) {
	if m.addMemberFn != nil {
		return m.addMemberFn(userID, slug, memberID, role)
	}
	return &models.Member{}, nil
}

func (m *mockSpaceService) RemoveMember(_ context.Context, userID, slug, memberID string) (*string, error) {
	if m.removeMemberFn != nil {
		return m.removeMemberFn(userID, slug, memberID)
	}
	return nil, nil
}

var _ services.SpaceServicer = (*mockSpaceService)(nil)

func setupSpaceRouter(handler *SpaceHandler) *gin.Engine {
	r := newRouter()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/spaces", handler.ListSpaces)
	auth.POST("/spaces", handler.CreateSpace)
	auth.GET("/spaces/:slug", handler.GetSpace)
	auth.PUT("/spaces/:slug", handler.UpdateSpace)
	auth.GET("/spaces/:slug/members", handler.ListMembers)
	auth.POST("/spaces/:slug/members", handler.AddMember)
	auth.DELETE("/spaces/:slug/members/:userId", handler.RemoveMember)
	return r
}

func TestSpaceHandler_CreateSpace(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockSpaceService{
			createSpaceFn: func(userID, name string) (*models.Space, error) {
				if userID != testUserID {
					t.Errorf("expected caller %s, got %s", testUserID, userID)
				}
				return &models.Space{Base: models.Base{ID: "s1"}, Name: name, Slug: "home-ab12cd34", OwnerID: userID}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupSpaceRouter(NewSpaceHandler(svc, audit))

		rec := doRequest(r, "POST", "/spaces", `{"name":"Home"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		space := parseJSON(t, rec)["space"].(map[string]interface{})
		if space["slug"] != "home-ab12cd34" {
			t.Errorf("expected slug home-ab12cd34, got %v", space["slug"])
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "CREATE_SPACE" {
			t.Errorf("expected one CREATE_SPACE audit entry, got %+v", audit.entries)
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupSpaceRouter(NewSpaceHandler(&mockSpaceService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/spaces", `{}`)

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_INPUT")
	})

	t.Run("returns 400 on unknown field", func(t *testing.T) {
		r := setupSpaceRouter(NewSpaceHandler(&mockSpaceService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/spaces", `{"name":"Home","owner_id":"x"}`)

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_INPUT")
	})

	t.Run("returns 409 when slugs keep colliding", func(t *testing.T) {
		svc := &mockSpaceService{
			createSpaceFn: func(_, _ string) (*models.Space, error) {
				return nil, apperrors.ErrSlugTaken
			},
		}
		r := setupSpaceRouter(NewSpaceHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/spaces", `{"name":"Home"}`)

		assertErrorCode(t, rec, http.StatusConflict, "SLUG_TAKEN")
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewSpaceHandler(&mockSpaceService{}, &mockAuditService{})
		r := newRouter()
		r.POST("/spaces", handler.CreateSpace)

		rec := doRequest(r, "POST", "/spaces", `{"name":"Home"}`)

		assertErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
	})
}

func TestSpaceHandler_GetSpace(t *testing.T) {
	t.Run("returns 403 for a space the caller cannot see", func(t *testing.T) {
		svc := &mockSpaceService{
			getSpaceFn: func(_, _ string) (*services.SpaceWithRole, error) {
				return nil, apperrors.ErrForbidden
			},
		}
		r := setupSpaceRouter(NewSpaceHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/spaces/someone-else", "")

		assertErrorCode(t, rec, http.StatusForbidden, "FORBIDDEN")
	})

	t.Run("returns the caller's role", func(t *testing.T) {
		svc := &mockSpaceService{
			getSpaceFn: func(_, slug string) (*services.SpaceWithRole, error) {
				return &services.SpaceWithRole{Space: models.Space{Slug: slug}, Role: models.MemberRoleMember}, nil
			},
		}
		r := setupSpaceRouter(NewSpaceHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/spaces/"+testSpace, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		space := parseJSON(t, rec)["space"].(map[string]interface{})
		if space["role"] != "member" || space["slug"] != testSpace {
			t.Errorf("unexpected space payload: %v", space)
		}
	})
}

func TestSpaceHandler_UpdateSpace(t *testing.T) {
	t.Run("rejects an invalid slug before calling the service", func(t *testing.T) {
		called := false
		svc := &mockSpaceService{
			updateSpaceFn: func(_, _ string, _ services.UpdateSpaceInput) (*models.Space, error) {
				called = true
				return &models.Space{}, nil
			},
		}
		r := setupSpaceRouter(NewSpaceHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/spaces/"+testSpace, `{"slug":"Not A Slug"}`)

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_INPUT")
		if called {
			t.Error("service should not be called")
		}
	})

	t.Run("passes only the provided fields", func(t *testing.T) {
		svc := &mockSpaceService{
			updateSpaceFn: func(_, slug string, in services.UpdateSpaceInput) (*models.Space, error) {
				if in.Slug != nil {
					t.Errorf("expected slug to be absent, got %q", *in.Slug)
				}
				return &models.Space{Name: *in.Name, Slug: slug}, nil
			},
		}
		r := setupSpaceRouter(NewSpaceHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/spaces/"+testSpace, `{"name":"Flat"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 403 for members", func(t *testing.T) {
		svc := &mockSpaceService{
			updateSpaceFn: func(_, _ string, _ services.UpdateSpaceInput) (*models.Space, error) {
				return nil, apperrors.ErrNotOwner
			},
		}
		r := setupSpaceRouter(NewSpaceHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/spaces/"+testSpace, `{"name":"Flat"}`)

		assertErrorCode(t, rec, http.StatusForbidden, "NOT_OWNER")
	})
}

func TestSpaceHandler_Members(t *testing.T) {
	t.Run("add defaults the role to member", func(t *testing.T) {
		svc := &mockSpaceService{
			addMemberFn: func(_, _, memberID string, role models.MemberRole) (*models.Member, error) {
				if role != models.MemberRoleMember {
					t.Errorf("expected member role, got %s", role)
				}
				return &models.Member{UserID: memberID, Role: role}, nil
			},
		}
		r := setupSpaceRouter(NewSpaceHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/spaces/"+testSpace+"/members",
			`{"user_id":"0199a1b2-0000-7000-8000-000000000002"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("add rejects a non-uuid user", func(t *testing.T) {
		r := setupSpaceRouter(NewSpaceHandler(&mockSpaceService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/spaces/"+testSpace+"/members", `{"user_id":"bob"}`)

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_INPUT")
	})

	t.Run("remove of a non-member returns a null id", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupSpaceRouter(NewSpaceHandler(&mockSpaceService{}, audit))

		rec := doRequest(r, "DELETE", "/spaces/"+testSpace+"/members/0199a1b2-0000-7000-8000-000000000002", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if id, ok := parseJSON(t, rec)["id"]; !ok || id != nil {
			t.Errorf("expected null id, got %v", id)
		}
		if len(audit.entries) != 0 {
			t.Errorf("expected no audit entry, got %d", len(audit.entries))
		}
	})

	t.Run("remove of the owner is rejected", func(t *testing.T) {
		svc := &mockSpaceService{
			removeMemberFn: func(_, _, _ string) (*string, error) {
				return nil, apperrors.ErrOwnerRemoval
			},
		}
		r := setupSpaceRouter(NewSpaceHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/spaces/"+testSpace+"/members/"+testUserID, "")

		assertErrorCode(t, rec, http.StatusBadRequest, "OWNER_REMOVAL")
	})
}
