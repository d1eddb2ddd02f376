// package services defines interface Service for talking to the Spotify accounts and Web API hosts
package services

import (
	"context"

	"github.com/desertthunder/soundslate/internal/models"
)

// Reader fetches the records shown by SoundSlate using a bearer token owned by the caller.
//
// Implementations return errors wrapping [shared.ErrTokenExpired] when the API
// answers 401 and [shared.ErrAPIRequest] for any other failure.
type Reader interface {
	// Profile retrieves the current user (GET /me).
	Profile(ctx context.Context, token string) (*models.Profile, error)

	// TopTracks retrieves the user's top tracks for the window (GET /me/top/tracks).
	TopTracks(ctx context.Context, token string, r models.TimeRange, limit int) ([]models.Track, error)

	// TopArtists retrieves the user's top artists for the window (GET /me/top/artists).
	TopArtists(ctx context.Context, token string, r models.TimeRange, limit int) ([]models.Artist, error)
}

// Service extends [Reader] with the authorization code flow.
type Service interface {
	Reader

	// AuthURL builds the provider authorize URL. An empty state is omitted.
	AuthURL(state string) string

	// Exchange trades an authorization code for an access token. Provider
	// rejections are returned as [*ExchangeError].
	Exchange(ctx context.Context, code string) (*models.Token, error)

	// Name returns the name of the service
	Name() string
}
