// Package session holds the client-owned access token.
//
// The browser keeps it in a cookie ([CookieStore]); the CLI and terminal UI
// keep it in a TOML file ([FileStore]). Nothing is stored server side.
package session

import (
	"context"
	"time"

	"github.com/desertthunder/soundslate/internal/models"
)

// Session is the authenticated state of one client. A nil or empty session
// means the login screen is shown.
type Session struct {
	AccessToken string    `toml:"access_token" json:"access_token"`
	TokenType   string    `toml:"token_type,omitempty" json:"token_type,omitempty"`
	Expiry      time.Time `toml:"expiry,omitempty" json:"expiry,omitempty"`
}

// New creates a session from an exchanged token.
func New(tok *models.Token, now time.Time) *Session {
	s := &Session{AccessToken: tok.AccessToken, TokenType: tok.TokenType}
	if tok.ExpiresIn > 0 {
		s.Expiry = now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return s
}

// Valid reports whether the session carries a token. Expiry is informational
// only: a token is used until the API rejects it.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != ""
}

// Token returns the access token, or "" for a nil session.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying s.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by [WithContext], if it is valid.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	if !ok || !s.Valid() {
		return nil, false
	}
	return s, true
}
