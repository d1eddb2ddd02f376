package tasks

import (
	"fmt"

	"github.com/desertthunder/soundslate/internal/stats"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchList Phase = iota
	ExportList
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchList:
		return "fetch_list"
	case ExportList:
		return "export_list"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress sends without blocking; updates are dropped when the channel is full.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchListUpdate(step, total int, key stats.Key) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching %s...", step, total, key),
		Data:    key,
	}
}

func exportCompletedUpdate(step, total int, res ListExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s %s (%d items)", step, total, res.Tab, res.TimeRange, res.Items),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res ListExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s %s: %v", step, total, res.Tab, res.TimeRange, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: "Manifest written to " + path,
		Data:    path,
	}
}
