package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lifequest/internal/auth"
	"lifequest/internal/config"
	"lifequest/internal/engine"
	"lifequest/internal/storage"
)

type testClient struct {
	t       *testing.T
	handler http.Handler
	session string
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) (*Server, *testClient) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Server.RateLimit = 0
	if mutate != nil {
		mutate(cfg)
	}

	db, err := storage.Open(context.Background(), storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	srv := New(cfg, auth.NewService(db, cfg.Auth, nil), nil, nil)
	return srv, &testClient{t: t, handler: srv.Handler()}
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if c.session != "" {
		req.Header.Set(sessionHeader, c.session)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func (c *testClient) login() {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/session", nil)
	require.Equal(c.t, http.StatusCreated, rec.Code)
	var sr sessionResponse
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &sr))
	c.session = sr.SessionID

	rec = c.do(http.MethodPost, "/api/signup", auth.SignupInput{
		Username: "user" + sr.SessionID[:8] + "@gmail.com", FirstName: "Test", LastName: "User",
		Password: "pw", ConfirmPassword: "pw",
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decodeOutcome(t *testing.T, rec *httptest.ResponseRecorder) engine.Outcome {
	t.Helper()
	var out engine.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func namePath(prefix, name, suffix string) string {
	return prefix + url.PathEscape(name) + suffix
}

func TestRequiresSessionAndLogin(t *testing.T) {
	_, c := newTestServer(t, nil)

	rec := c.do(http.MethodGet, "/api/state", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/session", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
	var sr sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sr))
	c.session = sr.SessionID

	rec = c.do(http.MethodGet, "/api/state", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "login_required")

	rec = c.do(http.MethodPost, "/api/login", loginRequest{Username: "x@gmail.com", Password: "y"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_credentials")

	rec = c.do(http.MethodPost, "/api/signup", auth.SignupInput{Username: "x@yahoo.com", FirstName: "a", LastName: "b"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHabitFlow(t *testing.T) {
	_, c := newTestServer(t, nil)
	c.login()

	rec := c.do(http.MethodPost, namePath("/api/habits/", "Wake Up Early", "/complete"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 10, decodeOutcome(t, rec).Snapshot.TotalPoints)

	rec = c.do(http.MethodPost, namePath("/api/habits/", "Gym Workout", "/complete"), nil)
	assert.Equal(t, 25, decodeOutcome(t, rec).Snapshot.TotalPoints)

	rec = c.do(http.MethodPost, namePath("/api/habits/", "Wake Up Early", "/uncomplete"), nil)
	out := decodeOutcome(t, rec)
	assert.Equal(t, 15, out.Snapshot.TotalPoints)
	assert.Equal(t, -10, out.Delta)

	rec = c.do(http.MethodPost, namePath("/api/habits/", "Gym Workout", "/complete"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_completed")

	rec = c.do(http.MethodPost, namePath("/api/habits/", "Fly", "/complete"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomizeAndRedeem(t *testing.T) {
	_, c := newTestServer(t, nil)
	c.login()

	rec := c.do(http.MethodPost, "/api/habits", habitRequest{Name: "Read 10 pages", Points: 8})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = c.do(http.MethodPost, "/api/habits", habitRequest{Name: " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, namePath("/api/habits/", "Read 10 pages", "/complete"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodPost, namePath("/api/rewards/", "Watch Netflix before 8 PM", "/redeem"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	var eb errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eb))
	assert.Equal(t, "insufficient_points", eb.Code)
	require.NotNil(t, eb.State)
	assert.Equal(t, 8, eb.State.TotalPoints)

	rec = c.do(http.MethodPost, "/api/rewards", rewardRequest{Name: "Coffee/Tea", Cost: 3})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = c.do(http.MethodPost, namePath("/api/rewards/", "Coffee/Tea", "/redeem"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeOutcome(t, rec)
	require.NotNil(t, out.Redemption)
	assert.Equal(t, "Coffee/Tea", out.Redemption.Reward)
	assert.Equal(t, 5, out.Snapshot.TotalPoints)

	rec = c.do(http.MethodDelete, namePath("/api/habits/", "Read 10 pages", ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out = decodeOutcome(t, rec)
	assert.Contains(t, out.Snapshot.CompletedHabits, "Read 10 pages")
	assert.Empty(t, out.Snapshot.CustomHabits)

	rec = c.do(http.MethodPost, "/api/reset/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out = decodeOutcome(t, rec)
	assert.Empty(t, out.Snapshot.CompletedHabits)
	assert.Zero(t, out.Snapshot.TotalPoints)
	assert.True(t, out.Snapshot.LowBalance)

	rec = c.do(http.MethodPost, "/api/reset/everything", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProgressEndpoint(t *testing.T) {
	_, c := newTestServer(t, nil)
	c.login()
	c.do(http.MethodPost, namePath("/api/habits/", "Meditate", "/complete"), nil)

	rec := c.do(http.MethodGet, "/api/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p engine.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 10, p.CompletedPoints)
	assert.Equal(t, 57, p.RemainingPoints)
	assert.Len(t, p.Habits, 7)
}

func TestSessionsAreIsolated(t *testing.T) {
	srv, a := newTestServer(t, nil)
	a.login()
	b := &testClient{t: t, handler: srv.Handler()}
	b.login()

	a.do(http.MethodPost, namePath("/api/habits/", "Gym Workout", "/complete"), nil)

	rec := b.do(http.MethodGet, "/api/state", nil)
	var snap engine.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Zero(t, snap.TotalPoints)
	assert.Equal(t, 2, srv.Sessions().Len())

	rec = b.do(http.MethodDelete, "/api/session", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, srv.Sessions().Len())
}

func TestLogoutGatesAgain(t *testing.T) {
	_, c := newTestServer(t, nil)
	c.login()
	rec := c.do(http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = c.do(http.MethodPost, namePath("/api/habits/", "Meditate", "/complete"), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	_, c := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 0.001
		cfg.Server.RateBurst = 2
	})
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, c.do(http.MethodGet, "/healthz", nil).Code)
}

func TestRateLimitIgnoresUnknownSessionIDs(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 1
		cfg.Server.RateBurst = 2
	})

	limited := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		req.RemoteAddr = fmt.Sprintf("10.0.0.1:%d", 1000+i)
		req.Header.Set(sessionHeader, fmt.Sprintf("made-up-%d", i))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.GreaterOrEqual(t, limited, 45)
	assert.Equal(t, 1, srv.limiter.Len())
}

func TestRateLimitBucketsRealSessions(t *testing.T) {
	srv, c := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 0.001
		cfg.Server.RateBurst = 3
	})
	rec := c.do(http.MethodPost, "/api/session", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var sr sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sr))
	c.session = sr.SessionID

	// The address bucket spent one token on the create call; the session has its own.
	for i := 0; i < 3; i++ {
		assert.NotEqual(t, http.StatusTooManyRequests, c.do(http.MethodGet, "/api/state", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, c.do(http.MethodGet, "/api/state", nil).Code)

	srv.Sessions().Delete(sr.SessionID)
	assert.Equal(t, 1, srv.limiter.Len())
}

func TestMetricsEndpoint(t *testing.T) {
	_, c := newTestServer(t, nil)
	c.login()
	c.do(http.MethodPost, namePath("/api/habits/", "Meditate", "/complete"), nil)

	rec := c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lifequest_engine_changes_total{kind="habit_completed"} 1`)
	assert.Contains(t, rec.Body.String(), "lifequest_sessions_active 1")
}
