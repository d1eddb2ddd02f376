// Package stats holds the filter state of the stats view and the loader that fetches its data.
//
// # Filters and View
//
// [Filters] is the full selection: tab, time range, limit and layout. [View]
// wraps it as a small state machine. Every setter reports the [Key] to fetch
// and whether a fetch is needed at all: choosing the value that is already
// selected needs none, and a layout change never does.
//
// # Loader
//
// [Loader] performs one read per [Key] against a [Source] with the session's
// bearer token. It keeps a single slot per resource: starting a load cancels
// the one in flight for the same resource, and the older call reports
// [StatusSuperseded] so its data is never shown. There is no cache and no retry.
package stats
