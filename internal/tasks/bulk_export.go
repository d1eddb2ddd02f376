package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundslate/internal/formatter"
	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/desertthunder/soundslate/internal/stats"
)

const (
	defaultWorkers = 3
	maxWorkers     = 6
	manifestName   = "manifest.json"
)

// BulkExportOpts contains configuration for snapshot exports.
type BulkExportOpts struct {
	Format     formatter.Format // default png
	Layout     models.Layout    // default card
	Limit      int              // default 10
	Owner      string           // shown on PNG exports
	OutputDir  string           // default soundslate_export_{epoch}
	NumWorkers int              // default 3, at most 6
	Logger     *log.Logger
	Now        func() time.Time
}

// ListExportJob is one list to export.
type ListExportJob struct {
	Key stats.Key
	Tab models.Tab
}

// ListExportResult is the outcome of one [ListExportJob].
type ListExportResult struct {
	Tab       models.Tab       `json:"tab"`
	TimeRange models.TimeRange `json:"time_range"`
	File      string           `json:"file,omitempty"`
	Items     int              `json:"items"`
	Success   bool             `json:"success"`
	Message   string           `json:"error,omitempty"`
	Error     error            `json:"-"`
}

// BulkExportResult summarizes a snapshot export and is written as the manifest.
type BulkExportResult struct {
	Generated         time.Time          `json:"generated"`
	Format            formatter.Format   `json:"format"`
	TotalLists        int                `json:"total_lists"`
	SuccessfulExports int                `json:"successful_exports"`
	FailedExports     int                `json:"failed_exports"`
	OutputDirectory   string             `json:"output_directory"`
	ManifestPath      string             `json:"-"`
	Results           []ListExportResult `json:"results"`
}

// Jobs returns one job per tab and time range, in display order.
func Jobs(limit int) []ListExportJob {
	jobs := make([]ListExportJob, 0, len(models.Tabs)*len(models.TimeRanges))
	for _, tab := range models.Tabs {
		for _, r := range models.TimeRanges {
			jobs = append(jobs, ListExportJob{
				Tab: tab,
				Key: stats.Key{Resource: stats.ResourceFor(tab), TimeRange: r, Limit: limit},
			})
		}
	}
	return jobs
}

// BulkExport exports every tab and time range of sess concurrently.
//
// Files go to <OutputDir>/<time_range>/ under the usual export names. The
// returned error wraps [shared.ErrTokenExpired] when the token was rejected;
// the partial result is still returned.
func BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	src stats.Source,
	sess *session.Session,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}
	if !sess.Valid() {
		return nil, shared.ErrNotAuthenticated
	}

	opts = withDefaults(opts)
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	all := Jobs(opts.Limit)
	result := &BulkExportResult{
		Generated:       opts.Now(),
		Format:          opts.Format,
		TotalLists:      len(all),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ListExportResult, 0, len(all)),
	}

	jobs := make(chan ListExportJob, len(all))
	results := make(chan ListExportResult, len(all))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go exportWorker(ctx, &wg, jobs, results, src, sess, opts)
	}

	for i, j := range all {
		sendProgress(prog, fetchListUpdate(i+1, len(all), j.Key))
		jobs <- j
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var expired error
	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(all), res))
			continue
		}

		result.FailedExports++
		sendProgress(prog, exportFailedUpdate(completed, len(all), res))
		if errors.Is(res.Error, shared.ErrTokenExpired) && expired == nil {
			expired = res.Error
			cancel()
		}
	}

	slices.SortStableFunc(result.Results, func(a, b ListExportResult) int {
		return position(a) - position(b)
	})

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))

	if expired != nil {
		return result, expired
	}
	return result, nil
}

func withDefaults(opts BulkExportOpts) BulkExportOpts {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatPNG
	}
	if !opts.Layout.Valid() {
		opts.Layout = models.CardLayout
	}
	if !models.ValidLimit(opts.Limit) {
		opts.Limit = models.DefaultLimit
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("soundslate_export_%d", opts.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	return opts
}

// exportWorker is a worker goroutine that exports lists from the jobs channel.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan ListExportJob,
	results chan<- ListExportResult,
	src stats.Source,
	sess *session.Session,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- failed(job, fmt.Errorf("skipped: %w", err))
			continue
		}
		results <- exportList(ctx, job, src, sess, opts)
	}
}

// exportList fetches and writes a single list.
func exportList(ctx context.Context, j ListExportJob, src stats.Source, sess *session.Session, opts BulkExportOpts) ListExportResult {
	res := stats.NewLoader(src, sess, opts.Logger).Load(ctx, j.Key)
	switch res.Status {
	case stats.StatusOK:
	case stats.StatusExpired:
		return failed(j, fmt.Errorf("%w: %s", shared.ErrTokenExpired, res.Message()))
	default:
		return failed(j, fmt.Errorf("%s: %w", res.Message(), res.Err))
	}

	list := formatter.List{
		Tab:       j.Tab,
		TimeRange: j.Key.TimeRange,
		Owner:     opts.Owner,
		Items:     res.Items(),
		Generated: opts.Now(),
	}
	dir := filepath.Join(opts.OutputDir, string(j.Key.TimeRange))
	path, err := formatter.WriteExport(list, opts.Format, formatter.LayoutFor(opts.Layout), dir)
	if err != nil {
		return failed(j, err)
	}

	return ListExportResult{
		Tab:       j.Tab,
		TimeRange: j.Key.TimeRange,
		File:      path,
		Items:     len(list.Items),
		Success:   true,
	}
}

// position orders results like [Jobs].
func position(r ListExportResult) int {
	return slices.Index(models.Tabs, r.Tab)*len(models.TimeRanges) + slices.Index(models.TimeRanges, r.TimeRange)
}

func failed(j ListExportJob, err error) ListExportResult {
	return ListExportResult{
		Tab:       j.Tab,
		TimeRange: j.Key.TimeRange,
		Message:   err.Error(),
		Error:     err,
	}
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
