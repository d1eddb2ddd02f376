package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/soundslate/internal/shared"
)

const (
	// CookieName holds the access token in the browser.
	CookieName = "spotify_access_token"

	// StateCookieName holds the OAuth state between /login and the callback.
	StateCookieName = "oauth_state"

	cookieMaxAge = 30 * 24 * time.Hour
	stateMaxAge  = 10 * time.Minute
)

// CookieStore persists a [Session] in an HttpOnly cookie.
type CookieStore struct {
	Secure bool
}

// Load reads the session cookie from r.
func (c CookieStore) Load(r *http.Request) (*Session, error) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil, fmt.Errorf("%w: no session cookie", shared.ErrNotAuthenticated)
	}
	return &Session{AccessToken: ck.Value, TokenType: "Bearer"}, nil
}

// Save writes the session cookie.
func (c CookieStore) Save(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, c.cookie(CookieName, s.Token(), cookieMaxAge))
}

// Clear expires the session cookie.
func (c CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(CookieName, "", -1))
}

// SaveState stores the OAuth state for the callback to check.
func (c CookieStore) SaveState(w http.ResponseWriter, state string) {
	http.SetCookie(w, c.cookie(StateCookieName, state, stateMaxAge))
}

// TakeState returns the stored OAuth state and expires its cookie.
func (c CookieStore) TakeState(w http.ResponseWriter, r *http.Request) string {
	ck, err := r.Cookie(StateCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, c.cookie(StateCookieName, "", -1))
	return ck.Value
}

func (c CookieStore) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		ck.MaxAge = -1
	} else {
		ck.MaxAge = int(maxAge.Seconds())
	}
	return ck
}
