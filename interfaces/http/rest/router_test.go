package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"observador-backend/infrastructure/config"
	"observador-backend/infrastructure/di"
	"observador-backend/interfaces/http/rest/middleware"
	"observador-backend/pkg/auth"
	"observador-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t         *testing.T
	handler   http.Handler
	container *di.Container
	token     string
}

func newTestServer(t *testing.T, limiter auth.RateLimiter) *testServer {
	t.Helper()
	cfg := &config.Config{
		Environment:      "test",
		StorageDriver:    config.StorageMemory,
		AWSRegion:        "us-east-1",
		DynamoDBTable:    "observador",
		MetricsNamespace: "Observador",
		RateLimitRPS:     100,
		RateLimitBurst:   100,
		LogLevel:         "error",
		EnableMetrics:    true,
	}
	container, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	if limiter == nil {
		limiter = container.RateLimiter
	}
	router := NewRouter(
		container.CommandBus,
		container.QueryBus,
		container.JWT,
		container.Repositories.Agents,
		limiter,
		container.Collector,
		container.Ready,
		Options{EnableMetrics: true},
		container.Logger,
	)

	token, err := container.JWT.GenerateToken("u1", "u1@example.com")
	require.NoError(t, err)

	return &testServer{t: t, handler: router.Setup(), container: container, token: token}
}

func (s *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) authed(method, path string, body interface{}) *httptest.ResponseRecorder {
	return s.do(method, path, body, map[string]string{"Authorization": "Bearer " + s.token})
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestRouter_HealthAndReadiness(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", nil, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/ready", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/nope", nil, nil).Code)
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			rec := s.do(http.MethodGet, "/api/v1/system/graph", nil, headers)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_EntityToGraph(t *testing.T) {
	s := newTestServer(t, nil)

	// Arrange
	rec := s.authed(http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"id":             "p1",
		"name":           "Garden",
		"energyInvested": 7,
		"satisfaction":   8,
		// ignored: ownership always comes from the token
		"userId": "someone-else",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created map[string]string
	decodeData(t, rec, &created)
	assert.Equal(t, "p1", created["id"])
	assert.Equal(t, "project_p1", created["nodeId"])

	// Act
	rec = s.authed(http.MethodGet, "/api/v1/system/graph", nil)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var graph struct {
		Nodes []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"nodes"`
	}
	decodeData(t, rec, &graph)
	ids := make([]string, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Contains(t, ids, "project_p1")

	for _, path := range []string{
		"/api/v1/system/interpretation?lookbackDays=7",
		"/api/v1/system/trends",
		"/api/v1/system/coherence",
		"/api/v1/system/energy-flow",
	} {
		assert.Equal(t, http.StatusOK, s.authed(http.MethodGet, path, nil).Code, path)
	}
}

func TestRouter_ValidationErrors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"project without name", http.MethodPost, "/api/v1/projects", map[string]interface{}{"progress": 20}},
		{"progress out of range", http.MethodPost, "/api/v1/projects", map[string]interface{}{"name": "x", "progress": 120}},
		{"unknown energy exchange", http.MethodPost, "/api/v1/relationships", map[string]interface{}{"name": "Ana", "energyExchange": "WILD"}},
		{"entry without date", http.MethodPost, "/api/v1/entries", map[string]interface{}{"notes": "hi"}},
		{"entry in the future", http.MethodPost, "/api/v1/entries", map[string]interface{}{"date": "2999-01-01"}},
		{"non numeric days", http.MethodGet, "/api/v1/entries/stats?days=abc", nil},
		{"lookback too long", http.MethodGet, "/api/v1/system/trends?lookbackDays=9999", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.authed(tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_DailyEntries(t *testing.T) {
	s := newTestServer(t, nil)
	today := utils.FormatDate(time.Now())

	rec := s.authed(http.MethodPost, "/api/v1/entries", map[string]interface{}{
		"date":           today,
		"emotionalState": 7,
		"energyLevel":    6,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.authed(http.MethodGet, "/api/v1/entries/stats?days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats map[string]interface{}
	decodeData(t, rec, &stats)
	assert.EqualValues(t, 7, stats["days"])
}

func TestRouter_AgentWebhook(t *testing.T) {
	s := newTestServer(t, nil)

	// Arrange
	rec := s.authed(http.MethodPost, "/api/v1/agents/projects", map[string]string{"name": "Pricing bot"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var project struct {
		ID     string `json:"id"`
		APIKey string `json:"apiKey"`
	}
	decodeData(t, rec, &project)
	require.NotEmpty(t, project.APIKey)

	decision := map[string]interface{}{
		"agentName":      "pricer",
		"decisionType":   "discount",
		"revenueImpact":  120.5,
		"coherenceScore": 82,
	}

	// Act
	accepted := s.do(http.MethodPost, "/webhooks/agent-decisions", decision,
		map[string]string{middleware.APIKeyHeader: project.APIKey})
	rejected := s.do(http.MethodPost, "/webhooks/agent-decisions", decision,
		map[string]string{middleware.APIKeyHeader: "obs_wrong"})
	missing := s.do(http.MethodPost, "/webhooks/agent-decisions", decision, nil)

	// Assert
	assert.Equal(t, http.StatusCreated, accepted.Code, accepted.Body.String())
	assert.Equal(t, http.StatusUnauthorized, rejected.Code)
	assert.Equal(t, http.StatusUnauthorized, missing.Code)

	rec = s.authed(http.MethodGet, "/api/v1/agents/dashboard?projectId="+project.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dashboard struct {
		Summary struct {
			TotalDecisions int `json:"totalDecisions"`
		} `json:"summary"`
	}
	decodeData(t, rec, &dashboard)
	assert.Equal(t, 1, dashboard.Summary.TotalDecisions)

	rec = s.authed(http.MethodGet, "/api/v1/agents/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), project.APIKey, "the plain key is never listed")
}

func TestRouter_RateLimitsPerUser(t *testing.T) {
	s := newTestServer(t, auth.NewKeyedLimiter(1, 2))

	// the IP bucket and the user bucket each take one token per request
	first := s.authed(http.MethodGet, "/api/v1/system/coherence", nil)
	second := s.authed(http.MethodGet, "/api/v1/system/coherence", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, http.StatusTooManyRequests, s.authed(http.MethodGet, "/api/v1/system/coherence", nil).Code)
}

func TestRouter_ServesMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(http.MethodGet, "/health", nil, nil)

	rec := s.do(http.MethodGet, "/metrics", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "observador_http_requests_total")
}
