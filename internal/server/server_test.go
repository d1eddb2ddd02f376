package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/services"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/shared"
	tu "github.com/desertthunder/soundslate/internal/testing"
	"github.com/gin-gonic/gin"
	"github.com/go-test/deep"
)

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*tu.SpotifyServer, http.Handler) {
	t.Helper()

	fake := tu.NewSpotifyServer(t)
	svc, err := services.NewSpotifyService(fake.Config(), fake.Client())
	if err != nil {
		t.Fatalf("NewSpotifyService failed: %v", err)
	}

	cfg := shared.DefaultConfig()
	cfg.Spotify = fake.Config()

	srv, err := New(Opts{
		Service: svc,
		Config:  cfg,
		Logger:  shared.NewLogger(io.Discard),
		Now:     func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return fake, srv.Handler()
}

func do(h http.Handler, method, target string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func tokenCookie(token string) *http.Cookie {
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("requires a service", func(t *testing.T) {
		if _, err := New(Opts{}); err == nil {
			t.Error("expected error without a service")
		}
	})

	t.Run("healthz", func(t *testing.T) {
		_, h := newTestServer(t)
		rec := do(h, http.MethodGet, "/healthz", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if rec.Header().Get(requestIDHeader) == "" {
			t.Error("expected a request id header")
		}
	})

	t.Run("CORS preflight on the exchange endpoint", func(t *testing.T) {
		_, h := newTestServer(t)
		req := httptest.NewRequest(http.MethodOptions, "/api/spotify/callback", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("expected allowed origin, got %q", got)
		}
	})
}

func TestExchangeHandler(t *testing.T) {
	t.Run("valid code returns the token", func(t *testing.T) {
		fake, h := newTestServer(t)
		rec := do(h, http.MethodPost, "/api/spotify/callback", strings.NewReader(`{"code":"`+tu.FakeCode+`"}`))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var tok models.Token
		if err := json.Unmarshal(rec.Body.Bytes(), &tok); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		want := models.Token{AccessToken: tu.FakeToken, TokenType: "Bearer", ExpiresIn: 3600}
		if diff := deep.Equal(tok, want); diff != nil {
			t.Error(diff)
		}

		reqs := fake.RequestsTo("/api/token")
		if len(reqs) != 1 {
			t.Fatalf("expected exactly 1 token request, got %d", len(reqs))
		}
		if got := reqs[0].Form["redirect_uri"]; got != tu.FakeAppURL {
			t.Errorf("expected redirect_uri %q, got %q", tu.FakeAppURL, got)
		}
	})

	t.Run("rejected code returns the provider description", func(t *testing.T) {
		_, h := newTestServer(t)
		rec := do(h, http.MethodPost, "/api/spotify/callback", strings.NewReader(`{"code":"bad"}`))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if got := decode(t, rec)["error"]; got != "Invalid authorization code" {
			t.Errorf("unexpected error %v", got)
		}
	})

	t.Run("rejection without description", func(t *testing.T) {
		fake, h := newTestServer(t)
		fake.FailWith("/api/token", http.StatusServiceUnavailable)
		rec := do(h, http.MethodPost, "/api/spotify/callback", strings.NewReader(`{"code":"`+tu.FakeCode+`"}`))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if got := decode(t, rec)["error"]; got != "Token exchange failed" {
			t.Errorf("unexpected error %v", got)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		_, h := newTestServer(t)
		rec := do(h, http.MethodPost, "/api/spotify/callback", strings.NewReader(`{`))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing code", func(t *testing.T) {
		fake, h := newTestServer(t)
		rec := do(h, http.MethodPost, "/api/spotify/callback", strings.NewReader(`{}`))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if n := len(fake.RequestsTo("/api/token")); n != 0 {
			t.Errorf("expected no token request, got %d", n)
		}
	})

	t.Run("transport failure is internal", func(t *testing.T) {
		fake, h := newTestServer(t)
		fake.Close()
		rec := do(h, http.MethodPost, "/api/spotify/callback", strings.NewReader(`{"code":"`+tu.FakeCode+`"}`))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if got := decode(t, rec)["error"]; got != internalError {
			t.Errorf("unexpected error %v", got)
		}
	})
}

func TestAuthHandler(t *testing.T) {
	t.Run("login sets state and redirects", func(t *testing.T) {
		fake, h := newTestServer(t)
		rec := do(h, http.MethodGet, "/login", nil)

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		state := findCookie(rec, session.StateCookieName)
		if state == nil || state.Value == "" {
			t.Fatal("expected state cookie")
		}

		loc, err := url.Parse(rec.Header().Get("Location"))
		if err != nil {
			t.Fatalf("bad location: %v", err)
		}
		if !strings.HasPrefix(loc.String(), fake.URL+"/authorize") {
			t.Errorf("unexpected authorize URL %s", loc)
		}
		q := loc.Query()
		want := map[string]string{
			"client_id":     tu.FakeClientID,
			"response_type": "code",
			"redirect_uri":  tu.FakeAppURL,
			"scope":         "user-top-read",
			"show_dialog":   "true",
			"state":         state.Value,
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("%s: expected %q, got %q", k, v, got)
			}
		}
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		_, h := newTestServer(t)
		rec := do(h, http.MethodPost, "/logout", nil, tokenCookie(tu.FakeToken))

		if rec.Code != http.StatusSeeOther {
			t.Errorf("expected 303, got %d", rec.Code)
		}
		c := findCookie(rec, session.CookieName)
		if c == nil || c.MaxAge >= 0 {
			t.Errorf("expected expired session cookie, got %+v", c)
		}
	})

	t.Run("logout is not reachable by GET", func(t *testing.T) {
		_, h := newTestServer(t)
		rec := do(h, http.MethodGet, "/logout", nil, tokenCookie(tu.FakeToken))

		if rec.Code == http.StatusSeeOther {
			t.Error("expected GET /logout to be rejected")
		}
		if c := findCookie(rec, session.CookieName); c != nil {
			t.Errorf("expected session cookie untouched, got %+v", c)
		}
	})
}

func TestLoadSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(LoadSession(session.CookieStore{}))
	engine.GET("/", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			c.String(http.StatusUnauthorized, "")
			return
		}
		c.String(http.StatusOK, s.Token())
	})

	t.Run("cookie session is on the request context", func(t *testing.T) {
		rec := do(engine, http.MethodGet, "/", nil, tokenCookie(tu.FakeToken))
		if rec.Code != http.StatusOK || rec.Body.String() != tu.FakeToken {
			t.Errorf("expected token from context, got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("no cookie leaves no session", func(t *testing.T) {
		rec := do(engine, http.MethodGet, "/", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestDashboardHandler(t *testing.T) {
	t.Run("no session shows login", func(t *testing.T) {
		fake, h := newTestServer(t)
		rec := do(h, http.MethodGet, "/", nil)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Login with Spotify") {
			t.Error("expected login page")
		}
		if n := len(fake.Requests()); n != 0 {
			t.Errorf("expected no upstream requests, got %d", n)
		}
	})

	t.Run("provider error is shown", func(t *testing.T) {
		_, h := newTestServer(t)
		rec := do(h, http.MethodGet, "/?error=access_denied", nil)
		if !strings.Contains(rec.Body.String(), "access_denied") {
			t.Error("expected provider error on the login page")
		}
	})

	t.Run("code is exchanged and persisted", func(t *testing.T) {
		_, h := newTestServer(t)
		state := &http.Cookie{Name: session.StateCookieName, Value: "s1"}
		rec := do(h, http.MethodGet, "/?code="+tu.FakeCode+"&state=s1", nil, state)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
		}
		if loc := rec.Header().Get("Location"); loc != "/" {
			t.Errorf("expected redirect to /, got %q", loc)
		}
		c := findCookie(rec, session.CookieName)
		if c == nil || c.Value != tu.FakeToken {
			t.Fatalf("expected session cookie with token, got %+v", c)
		}

		next := do(h, http.MethodGet, "/", nil, c)
		if !strings.Contains(next.Body.String(), "Welcome, Test Listener") {
			t.Error("expected dashboard after login")
		}
	})

	t.Run("state mismatch", func(t *testing.T) {
		fake, h := newTestServer(t)
		state := &http.Cookie{Name: session.StateCookieName, Value: "s1"}
		rec := do(h, http.MethodGet, "/?code="+tu.FakeCode+"&state=other", nil, state)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if n := len(fake.RequestsTo("/api/token")); n != 0 {
			t.Errorf("expected no exchange, got %d", n)
		}
	})

	t.Run("failed exchange stays on login", func(t *testing.T) {
		_, h := newTestServer(t)
		rec := do(h, http.MethodGet, "/?code=bad", nil)

		if findCookie(rec, session.CookieName) != nil {
			t.Error("expected no session cookie")
		}
		if !strings.Contains(rec.Body.String(), "Invalid authorization code") {
			t.Error("expected exchange error on the login page")
		}
	})

	t.Run("dashboard fetches profile and list with filters", func(t *testing.T) {
		fake, h := newTestServer(t)
		rec := do(h, http.MethodGet, "/?tab=artists&time_range=short_term&limit=5", nil, tokenCookie(tu.FakeToken))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "Artist 5") || strings.Contains(body, "Artist 6") {
			t.Error("expected exactly five artists")
		}

		reqs := fake.RequestsTo("/v1/me/top/artists")
		if len(reqs) != 1 {
			t.Fatalf("expected 1 artists request, got %d", len(reqs))
		}
		if got := tu.QueryValue(reqs[0].Query, "time_range"); got != "short_term" {
			t.Errorf("expected short_term, got %q", got)
		}
		if got := tu.QueryValue(reqs[0].Query, "limit"); got != "5" {
			t.Errorf("expected limit 5, got %q", got)
		}
		if got := reqs[0].Auth; got != "Bearer "+tu.FakeToken {
			t.Errorf("expected bearer token, got %q", got)
		}
		if n := len(fake.RequestsTo("/v1/me/top/tracks")); n != 0 {
			t.Errorf("expected no tracks request, got %d", n)
		}
	})

	t.Run("list failure is inline", func(t *testing.T) {
		fake, h := newTestServer(t)
		fake.FailWith("/v1/me/top/tracks", http.StatusInternalServerError)
		rec := do(h, http.MethodGet, "/", nil, tokenCookie(tu.FakeToken))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Failed to fetch tracks") {
			t.Error("expected inline failure message")
		}
	})

	t.Run("expired token logs out", func(t *testing.T) {
		_, h := newTestServer(t)
		rec := do(h, http.MethodGet, "/", nil, tokenCookie("stale"))

		if !strings.Contains(rec.Body.String(), "Login with Spotify") {
			t.Error("expected login page")
		}
		c := findCookie(rec, session.CookieName)
		if c == nil || c.MaxAge >= 0 {
			t.Errorf("expected cleared session cookie, got %+v", c)
		}
	})

	t.Run("invalid filters fall back to defaults", func(t *testing.T) {
		fake, h := newTestServer(t)
		rec := do(h, http.MethodGet, "/?limit=7&time_range=forever", nil, tokenCookie(tu.FakeToken))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		reqs := fake.RequestsTo("/v1/me/top/tracks")
		if len(reqs) != 1 {
			t.Fatalf("expected 1 tracks request, got %d", len(reqs))
		}
		if got := tu.QueryValue(reqs[0].Query, "limit"); got != "10" {
			t.Errorf("expected default limit, got %q", got)
		}
	})
}

func TestAPIHandler(t *testing.T) {
	t.Run("me with bearer header", func(t *testing.T) {
		_, h := newTestServer(t)
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+tu.FakeToken)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var p models.Profile
		if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if p.ID != tu.SampleProfile.ID {
			t.Errorf("expected %q, got %q", tu.SampleProfile.ID, p.ID)
		}
	})

	t.Run("me without token", func(t *testing.T) {
		_, h := newTestServer(t)
		if rec := do(h, http.MethodGet, "/api/me", nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("expired token stays 401", func(t *testing.T) {
		_, h := newTestServer(t)
		rec := do(h, http.MethodGet, "/api/top/tracks", nil, tokenCookie("stale"))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if got := decode(t, rec)["error"]; got != "Session expired. Please login again." {
			t.Errorf("unexpected error %v", got)
		}
	})

	t.Run("top tracks", func(t *testing.T) {
		_, h := newTestServer(t)
		rec := do(h, http.MethodGet, "/api/top/tracks?time_range=long_term&limit=15", nil, tokenCookie(tu.FakeToken))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var out struct {
			Resource  string         `json:"resource"`
			TimeRange string         `json:"time_range"`
			Limit     int            `json:"limit"`
			Items     []models.Track `json:"items"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if out.Resource != "tracks" || out.TimeRange != "long_term" || out.Limit != 15 {
			t.Errorf("unexpected envelope %+v", out)
		}
		if len(out.Items) != 15 {
			t.Errorf("expected 15 items, got %d", len(out.Items))
		}
	})

	t.Run("upstream failure is 502", func(t *testing.T) {
		fake, h := newTestServer(t)
		fake.FailWith("/v1/me/top/artists", http.StatusInternalServerError)
		rec := do(h, http.MethodGet, "/api/top/artists", nil, tokenCookie(tu.FakeToken))
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})

	t.Run("bad parameters", func(t *testing.T) {
		_, h := newTestServer(t)
		tests := map[string]int{
			"/api/top/albums":                 http.StatusNotFound,
			"/api/top/tracks?limit=7":         http.StatusBadRequest,
			"/api/top/tracks?time_range=ever": http.StatusBadRequest,
			"/api/top/artists?limit=twenty":   http.StatusBadRequest,
		}
		for target, want := range tests {
			if rec := do(h, http.MethodGet, target, nil, tokenCookie(tu.FakeToken)); rec.Code != want {
				t.Errorf("%s: expected %d, got %d", target, want, rec.Code)
			}
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	newHandler := func(t *testing.T) (*tu.SpotifyServer, *OAuthHandler, http.Handler) {
		fake := tu.NewSpotifyServer(t)
		svc, err := services.NewSpotifyService(fake.Config(), fake.Client())
		if err != nil {
			t.Fatalf("NewSpotifyService failed: %v", err)
		}
		h := NewOAuthHandler(svc, "state123")
		return fake, h, NewCallbackEngine(h)
	}

	t.Run("successful callback", func(t *testing.T) {
		_, h, engine := newHandler(t)
		rec := do(engine, http.MethodGet, "/?code="+tu.FakeCode+"&state=state123", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		res := <-h.Result()
		if res.Error() != nil {
			t.Fatalf("unexpected error: %v", res.Error())
		}
		if res.Token.AccessToken != tu.FakeToken {
			t.Errorf("expected %q, got %q", tu.FakeToken, res.Token.AccessToken)
		}
	})

	t.Run("invalid state", func(t *testing.T) {
		fake, h, engine := newHandler(t)
		rec := do(engine, http.MethodGet, "/?code="+tu.FakeCode+"&state=wrong", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		res := <-h.Result()
		if res.Error() == nil {
			t.Error("expected error")
		}
		if n := len(fake.RequestsTo("/api/token")); n != 0 {
			t.Errorf("expected no exchange, got %d", n)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		_, h, engine := newHandler(t)
		do(engine, http.MethodGet, "/?error=access_denied&state=state123", nil)
		res := <-h.Result()
		if res.Error() == nil || !strings.Contains(res.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", res.Error())
		}
	})

	t.Run("only one callback is processed", func(t *testing.T) {
		_, _, engine := newHandler(t)
		do(engine, http.MethodGet, "/?code="+tu.FakeCode+"&state=state123", nil)
		rec := do(engine, http.MethodGet, "/?code="+tu.FakeCode+"&state=state123", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", rec.Code)
		}
	})
}
