package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homefix-app/homefix-backend/internal/bootstrap"
	"github.com/homefix-app/homefix-backend/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "homefix-backend",
		Version:     "test",
		Store:       store.NewMemory(),
		Paths:       store.Paths{AppID: "home-repair-app"},
		CompanyName: "First Call Maintenance",
	})
}

func do(t *testing.T, r *gin.Engine, method, path, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set("X-Session-Id", sessionID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func setupProfile(t *testing.T, r *gin.Engine, sessionID string) {
	t.Helper()
	w := do(t, r, http.MethodPut, "/api/v1/profile", sessionID,
		`{"fullName":"Dana Smith","phone":"555-0100","address":"12 Oak Lane"}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func submitRequestFor(t *testing.T, r *gin.Engine, sessionID string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/requests", sessionID,
		`{"category":"plumbing","urgency":"high","description":"Leaky pipe"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	req := body["request"].(map[string]interface{})
	return req["id"].(string)
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "homefix-backend", body["service"])
}

func TestMintSession_Anonymous(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/session", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	id := body["identity"].(map[string]interface{})
	assert.NotEmpty(t, id["uid"])
	assert.Equal(t, true, id["anonymous"])
}

func TestMintSession_TokenWithoutVerifier(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/session", "", `{"token":"abc"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDataRoutes_RequireIdentity(t *testing.T) {
	r := newTestRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/profile"},
		{http.MethodGet, "/api/v1/requests"},
		{http.MethodPost, "/api/v1/requests"},
		{http.MethodGet, "/api/v1/requests/all"},
	} {
		w := do(t, r, route.method, route.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestProfileRoundtrip(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/profile", "alice", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "profile absent until first save")

	setupProfile(t, r, "alice")

	w = do(t, r, http.MethodGet, "/api/v1/profile", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, "Dana Smith", profile["fullName"])
	assert.Equal(t, "555-0100", profile["phone"])

	// Profiles are per-identity.
	w = do(t, r, http.MethodGet, "/api/v1/profile", "bob", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompanyDefaultsAndSave(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/company", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	company := decodeBody(t, w)["company"].(map[string]interface{})
	assert.Equal(t, "First Call Maintenance", company["name"])

	w = do(t, r, http.MethodPut, "/api/v1/company", "staff",
		`{"name":"Acme Repairs","email":"ops@acme.test"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/company", "bob", "")
	require.Equal(t, http.StatusOK, w.Code)
	company = decodeBody(t, w)["company"].(map[string]interface{})
	assert.Equal(t, "Acme Repairs", company["name"], "company profile is shared")
}

func TestSubmit_WithoutProfileIsConflict(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/requests", "alice",
		`{"category":"plumbing","urgency":"high","description":"Leaky pipe"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "profile_incomplete", body["code"])

	// Nothing must have been created.
	w = do(t, r, http.MethodGet, "/api/v1/requests/all", "staff", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["requests"])
}

func TestSubmit_CreatesRequest(t *testing.T) {
	r := newTestRouter(t)
	setupProfile(t, r, "alice")

	w := do(t, r, http.MethodPost, "/api/v1/requests", "alice",
		`{"category":"electrical","urgency":"medium","description":"Dead outlet"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	req := decodeBody(t, w)["request"].(map[string]interface{})
	assert.Equal(t, "pending", req["status"])
	assert.Equal(t, "alice", req["userId"])
	assert.Equal(t, "Dana Smith", req["userName"])
	assert.Equal(t, "12 Oak Lane", req["address"], "address prefilled from profile")
	_, hasProposed := req["proposedTime"]
	assert.False(t, hasProposed)
}

func TestSubmit_RejectsBadEnums(t *testing.T) {
	r := newTestRouter(t)
	setupProfile(t, r, "alice")

	w := do(t, r, http.MethodPost, "/api/v1/requests", "alice",
		`{"category":"roofing","urgency":"high","description":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLifecycleFlow_ConfirmPath(t *testing.T) {
	r := newTestRouter(t)
	setupProfile(t, r, "alice")
	id := submitRequestFor(t, r, "alice")

	w := do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/propose", "staff", `{"time":"Tomorrow 9AM"}`)
	require.Equal(t, http.StatusOK, w.Code)
	req := decodeBody(t, w)["request"].(map[string]interface{})
	assert.Equal(t, "waiting_confirmation", req["status"])
	assert.Equal(t, "Tomorrow 9AM", req["proposedTime"])

	w = do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/confirm", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	req = decodeBody(t, w)["request"].(map[string]interface{})
	assert.Equal(t, "in_progress", req["status"])

	w = do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/complete", "staff", "")
	require.Equal(t, http.StatusOK, w.Code)
	req = decodeBody(t, w)["request"].(map[string]interface{})
	assert.Equal(t, "completed", req["status"])

	// Completed is terminal.
	w = do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/propose", "staff", `{"time":"Friday"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLifecycleFlow_DeclinePath(t *testing.T) {
	r := newTestRouter(t)
	setupProfile(t, r, "alice")
	id := submitRequestFor(t, r, "alice")

	w := do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/propose", "staff", `{"time":"Tomorrow 9AM"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/decline", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	req := decodeBody(t, w)["request"].(map[string]interface{})
	assert.Equal(t, "pending", req["status"])
	_, hasProposed := req["proposedTime"]
	assert.False(t, hasProposed, "declined proposal is cleared, not blanked")

	// Back to square one: a new proposal is accepted.
	w = do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/propose", "staff", `{"time":"Friday 2PM"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPropose_EmptyTimeIsBadRequest(t *testing.T) {
	r := newTestRouter(t)
	setupProfile(t, r, "alice")
	id := submitRequestFor(t, r, "alice")

	w := do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/propose", "staff", `{"time":"   "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/requests/"+id, "staff", "")
	require.Equal(t, http.StatusOK, w.Code)
	req := decodeBody(t, w)["request"].(map[string]interface{})
	assert.Equal(t, "pending", req["status"], "whitespace-only proposal leaves the request untouched")
}

func TestListRequests_PersonalVsStaffView(t *testing.T) {
	r := newTestRouter(t)
	setupProfile(t, r, "alice")
	setupProfile(t, r, "bob")
	aliceID := submitRequestFor(t, r, "alice")
	submitRequestFor(t, r, "bob")

	w := do(t, r, http.MethodGet, "/api/v1/requests", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	reqs := body["requests"].([]interface{})
	require.Len(t, reqs, 1)
	assert.Equal(t, aliceID, reqs[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(0), body["inbox_count"])

	w = do(t, r, http.MethodGet, "/api/v1/requests/all", "staff", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Len(t, body["requests"].([]interface{}), 2)
	assert.Equal(t, float64(2), body["pending_count"])
}

func TestInboxCount_TracksAwaitingConfirmation(t *testing.T) {
	r := newTestRouter(t)
	setupProfile(t, r, "alice")
	id := submitRequestFor(t, r, "alice")

	w := do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/propose", "staff", `{"time":"Tomorrow 9AM"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/requests", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["inbox_count"])
}

func TestGetRequest_NotFound(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/requests/nope", "alice", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamActivity_WithoutBridge(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/requests/activity", "alice", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
