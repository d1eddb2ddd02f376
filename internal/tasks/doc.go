// Package tasks runs multi-list operations with progress reporting.
//
// # Snapshot Export
//
// [BulkExport] writes every top list of a session, one file per tab and time
// range, using a small worker pool. Each job reads through its own
// [stats.Loader] so concurrent reads of the same resource with different
// parameters do not supersede each other.
//
// A rejected token stops the remaining jobs. Other failures are recorded per
// list and the rest of the export continues. A manifest.json in the output
// directory summarizes the run.
//
// # Progress Reporting
//
// Updates are sent on an optional channel with select/default so a slow
// reader never blocks the workers.
package tasks
