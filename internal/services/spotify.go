// Spotify API implementation of [Service]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1/"

	// defaultExchangeError is reported when the token endpoint gives no description.
	defaultExchangeError = "Token exchange failed"
)

// ExchangeError is a rejection from the token endpoint.
type ExchangeError struct {
	Status      int
	Code        string
	Description string
}

func (e *ExchangeError) Error() string {
	return e.Description
}

func (e *ExchangeError) Unwrap() error {
	return shared.ErrAuthFailed
}

// SpotifyService implements the Service interface for Spotify API interactions.
type SpotifyService struct {
	config     *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service from the configured credentials.
//
// httpClient is used for both the token endpoint and API reads and defaults to [http.DefaultClient].
func NewSpotifyService(cfg shared.SpotifyConfig, httpClient *http.Client) (*SpotifyService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	endpoint := oauth2.Endpoint{
		AuthURL:   spotifyauth.AuthURL,
		TokenURL:  spotifyauth.TokenURL,
		AuthStyle: oauth2.AuthStyleInHeader,
	}
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	baseURL := spotifyBaseURL
	if cfg.APIBaseURL != "" {
		baseURL = strings.TrimRight(cfg.APIBaseURL, "/") + "/"
	}

	return &SpotifyService{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI(),
			Scopes:       []string{spotifyauth.ScopeUserTopRead},
			Endpoint:     endpoint,
		},
		apiBaseURL: baseURL,
		httpClient: httpClient,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthURL returns the OAuth2 authorization URL for user login.
//
// The consent dialog is always shown so a different account can be picked after logout.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, spotifyauth.ShowDialog)
}

// Exchange trades code for an access token in a single attempt.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*models.Token, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: code", shared.ErrMissingArgument)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := s.config.Exchange(ctx, code)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			xErr := &ExchangeError{Code: rErr.ErrorCode, Description: rErr.ErrorDescription}
			if rErr.Response != nil {
				xErr.Status = rErr.Response.StatusCode
			}
			if xErr.Description == "" {
				xErr.Description = defaultExchangeError
			}
			return nil, xErr
		}
		return nil, fmt.Errorf("%w: token exchange: %v", shared.ErrAPIRequest, err)
	}

	return tokenFromOAuth(tok, time.Now()), nil
}

func tokenFromOAuth(tok *oauth2.Token, now time.Time) *models.Token {
	out := &models.Token{AccessToken: tok.AccessToken, TokenType: tok.TokenType}

	switch v := tok.Extra("expires_in").(type) {
	case float64:
		out.ExpiresIn = int(v)
	case int:
		out.ExpiresIn = v
	}
	if out.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		out.ExpiresIn = int(tok.Expiry.Sub(now).Round(time.Second).Seconds())
	}
	return out
}

// statusRecorder notes whether any response it carried was a 401.
type statusRecorder struct {
	base         http.RoundTripper
	unauthorized atomic.Bool
}

func (r *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.base.RoundTrip(req)
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		r.unauthorized.Store(true)
	}
	return resp, err
}

// client builds an API client that sends token as a static bearer credential.
// The recorder reports 401s whatever body the API sent with them.
func (s *SpotifyService) client(token string) (*spotify.Client, *statusRecorder) {
	base := s.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	rec := &statusRecorder{base: base}
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   rec,
		},
		Timeout: s.httpClient.Timeout,
	}
	return spotify.New(httpClient, spotify.WithBaseURL(s.apiBaseURL)), rec
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context, token string) (*models.Profile, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	client, rec := s.client(token)
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, classify("profile", err, rec.unauthorized.Load())
	}

	return &models.Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Images:      convertImages(user.Images),
	}, nil
}

// TopTracks retrieves the user's most played tracks for r.
func (s *SpotifyService) TopTracks(ctx context.Context, token string, r models.TimeRange, limit int) ([]models.Track, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	client, rec := s.client(token)
	page, err := client.CurrentUsersTopTracks(ctx,
		spotify.Timerange(spotify.Range(r)),
		spotify.Limit(limit),
	)
	if err != nil {
		return nil, classify("tracks", err, rec.unauthorized.Load())
	}

	tracks := make([]models.Track, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

// TopArtists retrieves the user's most played artists for r.
func (s *SpotifyService) TopArtists(ctx context.Context, token string, r models.TimeRange, limit int) ([]models.Artist, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	client, rec := s.client(token)
	page, err := client.CurrentUsersTopArtists(ctx,
		spotify.Timerange(spotify.Range(r)),
		spotify.Limit(limit),
	)
	if err != nil {
		return nil, classify("artists", err, rec.unauthorized.Load())
	}

	artists := make([]models.Artist, 0, len(page.Artists))
	for _, a := range page.Artists {
		artists = append(artists, convertArtist(a))
	}
	return artists, nil
}

// classify maps a client error to the shared sentinel errors. unauthorized
// reports that the API answered 401, which always means the token was rejected.
func classify(resource string, err error, unauthorized bool) error {
	if unauthorized {
		return fmt.Errorf("%w: %s: %v", shared.ErrTokenExpired, resource, err)
	}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", shared.ErrTokenExpired, apiErr.Message)
		}
		return fmt.Errorf("%w: %s: status %d: %s", shared.ErrAPIRequest, resource, apiErr.Status, apiErr.Message)
	}

	// Bodies that are not a Spotify error object surface as plain text.
	if strings.Contains(err.Error(), fmt.Sprintf("HTTP %d", http.StatusUnauthorized)) {
		return fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}
	return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, resource, err)
}

func convertImages(images []spotify.Image) []models.Image {
	if len(images) == 0 {
		return nil
	}
	out := make([]models.Image, 0, len(images))
	for _, img := range images {
		out = append(out, models.Image{URL: img.URL, Height: int(img.Height), Width: int(img.Width)})
	}
	return out
}

func convertTrack(t spotify.FullTrack) models.Track {
	artists := make([]models.ArtistRef, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, models.ArtistRef{ID: string(a.ID), Name: a.Name})
	}
	return models.Track{
		ID:      string(t.ID),
		Name:    t.Name,
		Artists: artists,
		Album: models.Album{
			ID:     string(t.Album.ID),
			Name:   t.Album.Name,
			Images: convertImages(t.Album.Images),
		},
		DurationMS: int(t.Duration),
		Popularity: int(t.Popularity),
		URI:        string(t.URI),
	}
}

func convertArtist(a spotify.FullArtist) models.Artist {
	return models.Artist{
		ID:         string(a.ID),
		Name:       a.Name,
		Images:     convertImages(a.Images),
		Popularity: int(a.Popularity),
		Genres:     a.Genres,
		URI:        string(a.URI),
	}
}
