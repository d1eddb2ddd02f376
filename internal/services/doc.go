// Package services defines the [Service] interface for the music provider and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] builds the authorize URL and exchanges authorization codes
// with [oauth2.Config]. The client secret is sent in a Basic header and never
// leaves the process. There is no refresh: tokens are used until the API
// answers 401.
//
// Reads go through [spotify.Client] from github.com/zmb3/spotify/v2, built per
// call around a static bearer token supplied by the caller. The service holds
// no per-user state, so one instance serves every request of the web server.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrTokenExpired] : the API answered 401
//   - [shared.ErrAPIRequest] : transport, status or decode failure
//   - [shared.ErrMissingArgument] : empty authorization code
//   - [ExchangeError] : the token endpoint rejected the code, wraps [shared.ErrAuthFailed]
package services
