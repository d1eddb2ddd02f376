// Package ui implements the terminal stats view using bubbletea's Elm architecture.
//
// The [Model] shows the signed-in user's top tracks or artists with the same
// filters as the web dashboard:
//
//	tab  switch between tracks and artists
//	t    cycle the time range
//	l    cycle the item count
//	v    toggle card and simple layouts (no fetch)
//	e    export the list as a PNG
//	o    log out
//	q    quit
//
// Fetches run as commands through a [stats.Loader], so a newer request for a
// list cancels the older one and the stale result is dropped. A 401 on the
// profile read clears the stored session and ends on the logged out screen.
package ui
