//go:build unit

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/handler"
	"booking-hold-service/internal/handler/api"
	"booking-hold-service/internal/handler/middleware"
	"booking-hold-service/internal/pkg/clock"
	"booking-hold-service/internal/pkg/config"
	"booking-hold-service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

var apiT0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type memStore struct {
	snapshot *engine.Snapshot
}

func (s *memStore) Load(context.Context) (*engine.Snapshot, error) { return s.snapshot, nil }
func (s *memStore) Save(_ context.Context, snap *engine.Snapshot) error {
	s.snapshot = snap
	return nil
}

type HoldAPITestSuite struct {
	suite.Suite
	router *gin.Engine
	clock  *clock.MockClock
	engine *engine.Engine
	gate   *usecase.Gate

	resourceID string
	itemID     string
}

func (s *HoldAPITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.clock = clock.NewMockClock(apiT0)
	s.engine = engine.New(s.clock)
	s.gate = usecase.NewGate(s.engine, &memStore{}, middleware.NewLogger(config.NewTestConfig().Log).GetSlogLogger())
	s.gate.Start()
	s.T().Cleanup(s.gate.Stop)

	commands := usecase.NewCommands(s.gate, s.engine)
	queries := usecase.NewQueries(s.gate, s.engine)

	handlers := handler.Handlers{
		Resource: api.NewResourceHandler(commands, queries),
		Item:     api.NewItemHandler(commands, queries),
		Hold:     api.NewHoldHandler(commands, queries),
		Artifact: api.NewArtifactHandler(commands, queries),
		Audit:    api.NewAuditHandler(queries),
		System:   api.NewSystemHandler(commands),
	}
	handler.NewRouter(s.router, config.NewTestConfig(), handlers, middleware.NewAuthMiddleware(nil))

	resource, err := s.engine.CreateResource(engine.CreateResourceInput{TenantID: "t1", Name: "Studio"})
	s.Require().NoError(err)
	s.resourceID = resource.ID

	qty := 5
	item, err := s.engine.CreateItem(engine.CreateItemInput{TenantID: "t1", Name: "Beamer", TotalQuantity: &qty})
	s.Require().NoError(err)
	s.itemID = item.ID
}

func TestHoldAPISuite(t *testing.T) {
	suite.Run(t, new(HoldAPITestSuite))
}

type apiCall struct {
	method  string
	path    string
	body    any
	role    string
	userID  string
	headers map[string]string
}

func (s *HoldAPITestSuite) do(call apiCall) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if call.body != nil {
		raw, err := json.Marshal(call.body)
		s.Require().NoError(err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(call.method, call.path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", "t1")
	if call.role != "" {
		req.Header.Set("X-User-Role", call.role)
	}
	if call.userID != "" {
		req.Header.Set("X-User-ID", call.userID)
	}
	for k, v := range call.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HoldAPITestSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func (s *HoldAPITestSuite) holdBody(expires int) map[string]any {
	return map[string]any{
		"expires_in_seconds": expires,
		"lines": []map[string]any{
			{"kind": "INVENTORY_QTY", "item_id": s.itemID, "quantity": 2},
		},
	}
}

func (s *HoldAPITestSuite) TestCreateHoldHappyPath() {
	rec := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/holds",
		body: s.holdBody(300), role: "MEMBER", userID: "u1",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var hold engine.Hold
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &hold))
	s.Equal(engine.HoldStatusActive, hold.Status)
	s.Equal("u1", hold.CreatedByUserID)
	s.Equal("t1", hold.TenantID)
}

func (s *HoldAPITestSuite) TestRoleGuard() {
	rec := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/holds",
		body: s.holdBody(300), role: "VIEWER", userID: "u1",
	})
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("FORBIDDEN", s.errorCode(rec))

	// resource creation is admin-only
	rec = s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/resources",
		body: map[string]any{"name": "Annex"}, role: "MEMBER", userID: "u1",
	})
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/resources",
		body: map[string]any{"name": "Annex"}, role: "ADMIN", userID: "admin",
	})
	s.Equal(http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *HoldAPITestSuite) TestInvalidRoleHeader() {
	rec := s.do(apiCall{
		method: http.MethodGet, path: "/api/v1/holds",
		role: "SUPERUSER", userID: "u1",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("INVALID_ROLE", s.errorCode(rec))
}

func (s *HoldAPITestSuite) TestMissingTenantIsUnauthorized() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/holds", nil)
	req.Header.Set("X-User-Role", "ADMIN")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HoldAPITestSuite) TestIdempotencyKeyHeaderFallback() {
	headers := map[string]string{"Idempotency-Key": "header-key"}
	first := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/holds",
		body: s.holdBody(300), role: "MEMBER", userID: "u1", headers: headers,
	})
	s.Require().Equal(http.StatusCreated, first.Code)
	second := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/holds",
		body: s.holdBody(300), role: "MEMBER", userID: "u1", headers: headers,
	})
	s.Require().Equal(http.StatusCreated, second.Code)

	var h1, h2 engine.Hold
	s.Require().NoError(json.Unmarshal(first.Body.Bytes(), &h1))
	s.Require().NoError(json.Unmarshal(second.Body.Bytes(), &h2))
	s.Equal(h1.ID, h2.ID)
}

func (s *HoldAPITestSuite) TestActorMismatchForbidden() {
	body := s.holdBody(300)
	body["actor_user_id"] = "someone-else"
	rec := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/holds",
		body: body, role: "MEMBER", userID: "u1",
	})
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("FORBIDDEN", s.errorCode(rec))
}

func (s *HoldAPITestSuite) TestConfirmFlowOverHTTP() {
	created := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/holds",
		body: s.holdBody(300), role: "MEMBER", userID: "u1",
	})
	s.Require().Equal(http.StatusCreated, created.Code)
	var hold engine.Hold
	s.Require().NoError(json.Unmarshal(created.Body.Bytes(), &hold))

	confirmed := s.do(apiCall{
		method: http.MethodPost, path: fmt.Sprintf("/api/v1/holds/%s/confirm", hold.ID),
		role: "MEMBER", userID: "u1",
	})
	s.Require().Equal(http.StatusOK, confirmed.Code, confirmed.Body.String())

	var result engine.ConfirmResult
	s.Require().NoError(json.Unmarshal(confirmed.Body.Bytes(), &result))
	s.Equal(engine.HoldStatusConfirmed, result.Status)
	s.Len(result.Reservations, 1)

	// expired holds refuse confirmation with a conflict
	another := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/holds",
		body: s.holdBody(60), role: "MEMBER", userID: "u1",
	})
	s.Require().Equal(http.StatusCreated, another.Code)
	var second engine.Hold
	s.Require().NoError(json.Unmarshal(another.Body.Bytes(), &second))

	s.clock.Advance(61 * time.Second)
	late := s.do(apiCall{
		method: http.MethodPost, path: fmt.Sprintf("/api/v1/holds/%s/confirm", second.ID),
		role: "MEMBER", userID: "u1",
	})
	s.Equal(http.StatusConflict, late.Code)
	s.Equal("HOLD_EXPIRED", s.errorCode(late))
}

func (s *HoldAPITestSuite) TestCrossTenantQueryForbidden() {
	rec := s.do(apiCall{
		method: http.MethodGet, path: "/api/v1/holds?tenant_id=t2",
		role: "ADMIN", userID: "admin",
	})
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HoldAPITestSuite) TestInvalidStatusFilter() {
	rec := s.do(apiCall{
		method: http.MethodGet, path: "/api/v1/holds?status=BOGUS",
		role: "ADMIN", userID: "admin",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("INVALID_QUERY", s.errorCode(rec))
}

func (s *HoldAPITestSuite) TestMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/holds", bytes.NewBufferString("{broken"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", "t1")
	req.Header.Set("X-User-Role", "MEMBER")
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("INVALID_JSON", s.errorCode(rec))
}

func (s *HoldAPITestSuite) TestUnknownRouteEnvelope() {
	rec := s.do(apiCall{method: http.MethodGet, path: "/api/v1/nowhere", role: "ADMIN", userID: "admin"})
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", s.errorCode(rec))
}

func (s *HoldAPITestSuite) TestExpireEndpoint() {
	created := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/holds",
		body: s.holdBody(60), role: "MEMBER", userID: "u1",
	})
	s.Require().Equal(http.StatusCreated, created.Code)

	s.clock.Advance(2 * time.Minute)
	rec := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/system/expire",
		role: "ADMIN", userID: "admin",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	var body map[string]int
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(1, body["expired"])

	// MEMBER cannot run the sweep
	rec = s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/system/expire",
		role: "MEMBER", userID: "u1",
	})
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HoldAPITestSuite) TestHoldOwnerGuardOverHTTP() {
	created := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/holds",
		body: s.holdBody(300), role: "MEMBER", userID: "u1",
	})
	s.Require().Equal(http.StatusCreated, created.Code)
	var hold engine.Hold
	s.Require().NoError(json.Unmarshal(created.Body.Bytes(), &hold))

	// another member of the same tenant sees neither the hold nor its confirm
	rec := s.do(apiCall{
		method: http.MethodGet, path: fmt.Sprintf("/api/v1/holds/%s", hold.ID),
		role: "MEMBER", userID: "u2",
	})
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("FORBIDDEN", s.errorCode(rec))

	rec = s.do(apiCall{
		method: http.MethodPost, path: fmt.Sprintf("/api/v1/holds/%s/confirm", hold.ID),
		role: "MEMBER", userID: "u2",
	})
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("FORBIDDEN", s.errorCode(rec))

	rec = s.do(apiCall{
		method: http.MethodGet, path: fmt.Sprintf("/api/v1/holds/%s", hold.ID),
		role: "ADMIN", userID: "admin",
	})
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(apiCall{
		method: http.MethodPost, path: fmt.Sprintf("/api/v1/holds/%s/confirm", hold.ID),
		role: "ADMIN", userID: "admin",
	})
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *HoldAPITestSuite) slotHoldBody(start, end time.Time) map[string]any {
	return map[string]any{
		"expires_in_seconds": 300,
		"lines": []map[string]any{
			{
				"kind":        "RESOURCE_SLOT",
				"resource_id": s.resourceID,
				"start_at":    start.Format(time.RFC3339),
				"end_at":      end.Format(time.RFC3339),
			},
		},
	}
}

func (s *HoldAPITestSuite) TestAvailabilityExcludesNamedHold() {
	start := apiT0.Add(time.Hour)
	end := start.Add(30 * time.Minute)
	created := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/holds",
		body: s.slotHoldBody(start, end), role: "MEMBER", userID: "u1",
	})
	s.Require().Equal(http.StatusCreated, created.Code, created.Body.String())
	var hold engine.Hold
	s.Require().NoError(json.Unmarshal(created.Body.Bytes(), &hold))

	base := fmt.Sprintf("/api/v1/resources/%s/availability?start_at=%s&end_at=%s",
		s.resourceID, start.Format(time.RFC3339), end.Format(time.RFC3339))

	rec := s.do(apiCall{method: http.MethodGet, path: base, role: "VIEWER"})
	s.Require().Equal(http.StatusOK, rec.Code)
	var blocked engine.ResourceAvailability
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &blocked))
	s.Require().NotEmpty(blocked.Slots)
	s.False(blocked.Slots[0].Available)
	s.Equal(engine.ReasonHeld, blocked.Slots[0].Reason)

	rec = s.do(apiCall{
		method: http.MethodGet,
		path:   base + "&exclude_hold_id=" + hold.ID,
		role:   "VIEWER",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	var cleared engine.ResourceAvailability
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &cleared))
	for _, slot := range cleared.Slots {
		s.True(slot.Available)
	}
}

func (s *HoldAPITestSuite) TestAuditLogTimeWindow() {
	created := s.do(apiCall{
		method: http.MethodPost, path: "/api/v1/holds",
		body: s.holdBody(300), role: "MEMBER", userID: "u1",
	})
	s.Require().Equal(http.StatusCreated, created.Code)

	rec := s.do(apiCall{
		method: http.MethodGet,
		path:   "/api/v1/audit-logs?from_at=" + apiT0.Add(-time.Minute).Format(time.RFC3339),
		role:   "ADMIN", userID: "admin",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var entries []engine.AuditEntry
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entries))
	s.NotEmpty(entries)

	// a window opening after every entry filters everything out
	rec = s.do(apiCall{
		method: http.MethodGet,
		path:   "/api/v1/audit-logs?from_at=" + apiT0.Add(time.Hour).Format(time.RFC3339),
		role:   "ADMIN", userID: "admin",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entries))
	s.Empty(entries)

	rec = s.do(apiCall{
		method: http.MethodGet,
		path:   "/api/v1/audit-logs?to_at=" + apiT0.Add(-time.Hour).Format(time.RFC3339),
		role:   "ADMIN", userID: "admin",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entries))
	s.Empty(entries)

	rec = s.do(apiCall{
		method: http.MethodGet, path: "/api/v1/audit-logs?from_at=yesterday",
		role: "ADMIN", userID: "admin",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("INVALID_QUERY", s.errorCode(rec))
}

func (s *HoldAPITestSuite) TestAvailabilityEndpoint() {
	start := apiT0.Add(time.Hour).Format(time.RFC3339)
	end := apiT0.Add(2 * time.Hour).Format(time.RFC3339)
	rec := s.do(apiCall{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/resources/%s/availability?start_at=%s&end_at=%s", s.resourceID, start, end),
		role:   "VIEWER",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var availability engine.ResourceAvailability
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &availability))
	s.Len(availability.Slots, 4)

	rec = s.do(apiCall{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/resources/%s/availability?start_at=oops&end_at=%s", s.resourceID, end),
		role:   "VIEWER",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("INVALID_QUERY", s.errorCode(rec))
}
