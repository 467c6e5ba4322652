package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"spacebudget/internal/events"
	"spacebudget/internal/middleware"
	"spacebudget/internal/services"
	"spacebudget/internal/validator"
)

const (
	testUserID = "0199a1b2-0000-7000-8000-000000000001"
	testSpace  = "home-ab12cd34"
)

// --- shared mocks ---

type auditEntry struct {
	userID, slug, action, resourceType, resourceID string
	changes                                        map[string]any
}

type mockAuditService struct {
	entries []auditEntry
}

func (m *mockAuditService) Log(_ context.Context, userID, slug, action, resourceType, resourceID, _ string, changes map[string]any) {
	m.entries = append(m.entries, auditEntry{userID, slug, action, resourceType, resourceID, changes})
}

var _ services.AuditServicer = (*mockAuditService)(nil)

type mockPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

var _ events.Publisher = (*mockPublisher)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
}
