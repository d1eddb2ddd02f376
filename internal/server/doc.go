// Package server is the SoundSlate web application and the CLI login callback.
//
// # Routes
//
//	GET  /                      login page, OAuth redirect target, or dashboard
//	GET  /login                 redirect to the Spotify authorize URL
//	POST /logout                clear the session cookie
//	GET  /healthz               liveness
//	POST /api/spotify/callback  {"code"} -> {"access_token","token_type","expires_in"}
//	GET  /api/me                profile pass-through
//	GET  /api/top/:resource     top tracks or artists pass-through
//
// # Sessions
//
// The only state a browser holds is the access token cookie. [LoadSession]
// puts it on the request context; handlers read it with [session.FromContext].
// A 401 from the profile read clears the cookie and shows the login page. A
// 401 on a list read is shown inline and the session is kept.
//
// # Dashboard fetches
//
// The dashboard reads the profile and the active list concurrently through a
// [stats.Loader] bound to the request context, so a client that goes away
// cancels both upstream calls.
//
// # CLI login
//
// [OAuthHandler] serves the app URL root on a short-lived local server. It
// checks state, exchanges the code, and reports one [OAuthResult].
package server
