package stats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/shared"
)

// Resource names a remote read.
type Resource string

const (
	ProfileResource Resource = "profile"
	TracksResource  Resource = "tracks"
	ArtistsResource Resource = "artists"
)

// ResourceFor maps a tab to the list it shows.
func ResourceFor(t models.Tab) Resource {
	if t == models.ArtistsTab {
		return ArtistsResource
	}
	return TracksResource
}

// ParseResource validates a list resource name.
func ParseResource(s string) (Resource, error) {
	switch Resource(s) {
	case TracksResource, ArtistsResource:
		return Resource(s), nil
	default:
		return "", fmt.Errorf("%w: unknown resource %q", shared.ErrInvalidArgument, s)
	}
}

// Key identifies one fetch: the resource and its query parameters.
type Key struct {
	Resource  Resource
	TimeRange models.TimeRange
	Limit     int
}

// ProfileKey is the key of the profile read, which takes no parameters.
func ProfileKey() Key {
	return Key{Resource: ProfileResource}
}

func (k Key) String() string {
	if k.Resource == ProfileResource {
		return string(k.Resource)
	}
	q := url.Values{"time_range": {string(k.TimeRange)}, "limit": {strconv.Itoa(k.Limit)}}
	return string(k.Resource) + "?" + q.Encode()
}

// Status is the outcome of a load.
type Status int

const (
	StatusOK Status = iota
	// StatusExpired means the API rejected the token.
	StatusExpired
	// StatusFailed covers transport, status and decode failures.
	StatusFailed
	// StatusSuperseded means a newer load for the same resource replaced this one.
	StatusSuperseded
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusExpired:
		return "expired"
	case StatusFailed:
		return "failed"
	case StatusSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Result is what a load produced. Exactly one of Profile, Tracks or Artists
// is set when Status is [StatusOK].
type Result struct {
	Key     Key
	Status  Status
	Profile *models.Profile
	Tracks  []models.Track
	Artists []models.Artist
	Err     error
}

// Items projects a list result into display rows.
func (r Result) Items() []models.Item {
	switch r.Key.Resource {
	case TracksResource:
		return models.TrackItems(r.Tracks)
	case ArtistsResource:
		return models.ArtistItems(r.Artists)
	default:
		return nil
	}
}

// Message is the inline error text for a failed list load, "" otherwise.
func (r Result) Message() string {
	switch r.Status {
	case StatusExpired:
		return "Session expired. Please login again."
	case StatusFailed:
		return fmt.Sprintf("Failed to fetch %s", r.Key.Resource)
	default:
		return ""
	}
}

// Source performs the remote reads. [services.Reader] satisfies it.
type Source interface {
	Profile(ctx context.Context, token string) (*models.Profile, error)
	TopTracks(ctx context.Context, token string, r models.TimeRange, limit int) ([]models.Track, error)
	TopArtists(ctx context.Context, token string, r models.TimeRange, limit int) ([]models.Artist, error)
}

type slot struct {
	id     uint64
	key    Key
	cancel context.CancelFunc
}

// Loader fetches profile and list data for one session.
type Loader struct {
	src    Source
	sess   *session.Session
	logger *log.Logger

	mu    sync.Mutex
	seq   uint64
	slots map[Resource]*slot
}

// NewLoader creates a loader reading from src with the token of sess.
func NewLoader(src Source, sess *session.Session, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{
		src:    src,
		sess:   sess,
		logger: logger,
		slots:  make(map[Resource]*slot),
	}
}

// Session returns the session the loader reads with.
func (l *Loader) Session() *session.Session { return l.sess }

// Load fetches key. Any load of the same resource still in flight is canceled
// and reports [StatusSuperseded].
func (l *Loader) Load(ctx context.Context, key Key) Result {
	ctx, cancel := context.WithCancel(ctx)
	id := l.begin(key, cancel)

	start := time.Now()
	res := l.fetch(ctx, key)

	if !l.finish(key.Resource, id) {
		l.logger.Debug("dropped superseded load", "key", key, "elapsed", time.Since(start))
		return Result{Key: key, Status: StatusSuperseded, Err: shared.ErrSuperseded}
	}

	switch res.Status {
	case StatusOK:
		l.logger.Debug("loaded", "key", key, "elapsed", time.Since(start))
	default:
		l.logger.Warn("load failed", "key", key, "status", res.Status, "err", res.Err)
	}
	return res
}

// Pending returns the keys currently in flight.
func (l *Loader) Pending() []Key {
	l.mu.Lock()
	defer l.mu.Unlock()
	keys := make([]Key, 0, len(l.slots))
	for _, s := range l.slots {
		keys = append(keys, s.key)
	}
	return keys
}

// CancelAll aborts every load in flight. Used when the session ends.
func (l *Loader) CancelAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for r, s := range l.slots {
		s.cancel()
		delete(l.slots, r)
	}
}

func (l *Loader) begin(key Key, cancel context.CancelFunc) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.slots[key.Resource]; ok {
		l.logger.Debug("superseding load", "old", prev.key, "new", key)
		prev.cancel()
	}
	l.seq++
	l.slots[key.Resource] = &slot{id: l.seq, key: key, cancel: cancel}
	return l.seq
}

// finish releases the slot and reports whether id still owned it.
func (l *Loader) finish(r Resource, id uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[r]
	if !ok || s.id != id {
		return false
	}
	s.cancel()
	delete(l.slots, r)
	return true
}

func (l *Loader) fetch(ctx context.Context, key Key) Result {
	res := Result{Key: key}
	if !l.sess.Valid() {
		res.Status, res.Err = StatusExpired, shared.ErrNotAuthenticated
		return res
	}
	token := l.sess.Token()

	var err error
	switch key.Resource {
	case ProfileResource:
		res.Profile, err = l.src.Profile(ctx, token)
	case TracksResource:
		res.Tracks, err = l.src.TopTracks(ctx, token, key.TimeRange, key.Limit)
	case ArtistsResource:
		res.Artists, err = l.src.TopArtists(ctx, token, key.TimeRange, key.Limit)
	default:
		err = fmt.Errorf("%w: unknown resource %q", shared.ErrInvalidArgument, key.Resource)
	}

	switch {
	case err == nil:
		res.Status = StatusOK
	case errors.Is(err, shared.ErrTokenExpired), errors.Is(err, shared.ErrNotAuthenticated):
		res.Status, res.Err = StatusExpired, err
	default:
		res.Status, res.Err = StatusFailed, err
	}
	return res
}
