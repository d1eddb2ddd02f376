package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/shared"
)

const (
	FakeClientID     = "fake_client_id"
	FakeClientSecret = "fake_client_secret"
	FakeCode         = "valid_code"
	FakeToken        = "valid_token"
	FakeAppURL       = "http://localhost:3000"
)

// RecordedRequest is a request seen by [SpotifyServer].
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Form   map[string]string
}

// SpotifyServer fakes the accounts service and the Web API endpoints used by SoundSlate.
//
// Token exchange succeeds for [FakeCode] and API reads succeed for [FakeToken].
// Any other token gets a 401 with a Spotify error body.
type SpotifyServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	failures map[string]int

	Profile models.Profile
	Tracks  []models.Track
	Artists []models.Artist
}

// NewSpotifyServer starts a fake Spotify server that is closed when the test ends.
func NewSpotifyServer(t *testing.T) *SpotifyServer {
	t.Helper()

	s := &SpotifyServer{
		failures: make(map[string]int),
		Profile:  SampleProfile,
		Tracks:   SampleTracks(20),
		Artists:  SampleArtists(20),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", s.token)
	mux.HandleFunc("/v1/me", s.me)
	mux.HandleFunc("/v1/me/top/tracks", s.topTracks)
	mux.HandleFunc("/v1/me/top/artists", s.topArtists)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Config returns Spotify settings pointing at the fake server.
func (s *SpotifyServer) Config() shared.SpotifyConfig {
	return shared.SpotifyConfig{
		ClientID:     FakeClientID,
		ClientSecret: FakeClientSecret,
		AppURL:       FakeAppURL + "/",
		AuthURL:      s.URL + "/authorize",
		TokenURL:     s.URL + "/api/token",
		APIBaseURL:   s.URL + "/v1",
	}
}

// FailWith makes requests to path answer with status until cleared with status 0.
func (s *SpotifyServer) FailWith(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = status
}

// Requests returns a copy of the recorded requests.
func (s *SpotifyServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the recorded requests for path.
func (s *SpotifyServer) RequestsTo(path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *SpotifyServer) record(r *http.Request) int {
	rec := RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			rec.Form = make(map[string]string)
			for k := range r.PostForm {
				rec.Form[k] = r.PostForm.Get(k)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, rec)
	return s.failures[r.URL.Path]
}

func (s *SpotifyServer) token(w http.ResponseWriter, r *http.Request) {
	failure := s.record(r)
	if failure != 0 {
		w.WriteHeader(failure)
		return
	}

	id, secret, ok := r.BasicAuth()
	if !ok || id != FakeClientID || secret != FakeClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_client",
			"error_description": "Invalid client",
		})
		return
	}

	if r.PostForm.Get("code") != FakeCode {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_grant",
			"error_description": "Invalid authorization code",
		})
		return
	}

	if r.PostForm.Get("redirect_uri") != FakeAppURL {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": FakeToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
		"scope":        "user-top-read",
	})
}

// authorize checks the bearer token and the failure table. It writes the
// error response and returns false when the request must not be served.
func (s *SpotifyServer) authorize(w http.ResponseWriter, r *http.Request) bool {
	failure := s.record(r)
	if r.Header.Get("Authorization") != "Bearer "+FakeToken {
		writeAPIError(w, http.StatusUnauthorized, "The access token expired")
		return false
	}
	if failure != 0 {
		writeAPIError(w, failure, http.StatusText(failure))
		return false
	}
	return true
}

func (s *SpotifyServer) me(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.Profile)
}

func (s *SpotifyServer) topTracks(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	n := pageSize(r, len(s.Tracks))
	writeJSON(w, http.StatusOK, map[string]any{"items": s.Tracks[:n], "total": len(s.Tracks), "limit": n})
}

func (s *SpotifyServer) topArtists(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	n := pageSize(r, len(s.Artists))
	writeJSON(w, http.StatusOK, map[string]any{"items": s.Artists[:n], "total": len(s.Artists), "limit": n})
}

func pageSize(r *http.Request, total int) int {
	n := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			n = parsed
		}
	}
	return min(n, total)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"status": status, "message": message},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// QueryValue extracts key from a recorded raw query.
func QueryValue(raw, key string) string {
	for _, pair := range strings.Split(raw, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if k == key {
			return v
		}
	}
	return ""
}
