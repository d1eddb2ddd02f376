// Package web holds the server-rendered pages of SoundSlate.
//
// Templates are embedded and parsed once by [Templates]. Two pages exist:
//
//   - login.html: the Spotify login button, plus the provider error when the
//     authorize step failed
//   - dashboard.html: header with the user's name, the tab bar, the time range
//     and limit form, and the stats list
//
// The dashboard renders the list once per layout ("list-card" and
// "list-simple"). A pair of radio inputs and CSS pick the visible one, so
// switching the view never reaches the server. Each layout panel carries its
// own PNG export as a data URI, rendered from the data already on the page.
//
// Tabs are links and the form submits with GET, so every view is a URL:
//
//	/?tab=artists&time_range=short_term&limit=20&view=simple
package web
