package handlers

import (
	"context"
	"net/http"
	"testing"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/models"
	"spacebudget/internal/services"
)

type mockProfileService struct {
	getProfileFn    func(userID string) (*models.Profile, error)
	upsertProfileFn func(userID, name, avatarURL string) (*models.Profile, error)
}

func (m *mockProfileService) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(userID)
	}
	return &models.Profile{UserID: userID}, nil
}

func (m *mockProfileService) UpsertProfile(_ context.Context, userID, name, avatarURL string) (*models.Profile, error) {
	if m.upsertProfileFn != nil {
		return m.upsertProfileFn(userID, name, avatarURL)
	}
	return &models.Profile{UserID: userID, Name: name, AvatarURL: avatarURL}, nil
}

var _ services.ProfileServicer = (*mockProfileService)(nil)

func TestProfileHandler(t *testing.T) {
	setup := func(svc services.ProfileServicer) *ProfileHandler {
		return NewProfileHandler(svc, &mockAuditService{})
	}

	t.Run("get returns 404 before the first save", func(t *testing.T) {
		h := setup(&mockProfileService{
			getProfileFn: func(string) (*models.Profile, error) { return nil, apperrors.ErrProfileMissing },
		})
		r := newRouter()
		r.GET("/profile", injectUserID(testUserID), h.GetProfile)

		rec := doRequest(r, "GET", "/profile", "")

		assertErrorCode(t, rec, http.StatusNotFound, "PROFILE_NOT_FOUND")
	})

	t.Run("put saves the caller's profile", func(t *testing.T) {
		h := setup(&mockProfileService{})
		r := newRouter()
		r.PUT("/profile", injectUserID(testUserID), h.UpsertProfile)

		rec := doRequest(r, "PUT", "/profile", `{"name":"Jamie","avatar_url":"https://cdn.example.com/a.png"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		profile := parseJSON(t, rec)["profile"].(map[string]interface{})
		if profile["user_id"] != testUserID || profile["name"] != "Jamie" {
			t.Errorf("unexpected profile: %v", profile)
		}
	})

	t.Run("put rejects a malformed avatar url", func(t *testing.T) {
		h := setup(&mockProfileService{})
		r := newRouter()
		r.PUT("/profile", injectUserID(testUserID), h.UpsertProfile)

		rec := doRequest(r, "PUT", "/profile", `{"avatar_url":"not a url"}`)

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_INPUT")
	})
}
