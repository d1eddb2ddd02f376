package testing

import (
	"context"
	"sync"

	"github.com/desertthunder/soundslate/internal/models"
)

// Call is one read made through [FakeReader].
type Call struct {
	Resource  string
	Token     string
	TimeRange models.TimeRange
	Limit     int
}

// FakeReader is an in-memory reader of profiles and top items.
//
// When Gate is set, top item reads block until it is closed or their context
// is done. Started receives the resource name of every call when set.
type FakeReader struct {
	mu    sync.Mutex
	calls []Call

	User    *models.Profile
	Tracks  []models.Track
	Artists []models.Artist
	Errs    map[string]error

	Gate    chan struct{}
	Started chan string
}

// NewFakeReader returns a reader serving the sample fixtures.
func NewFakeReader() *FakeReader {
	p := SampleProfile
	return &FakeReader{
		User:    &p,
		Tracks:  SampleTracks(20),
		Artists: SampleArtists(20),
		Errs:    make(map[string]error),
	}
}

// SetErr makes reads of resource fail with err, or succeed again when err is nil.
func (f *FakeReader) SetErr(resource string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.Errs, resource)
		return
	}
	f.Errs[resource] = err
}

// Calls returns a copy of the recorded calls.
func (f *FakeReader) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsFor returns the recorded calls for resource.
func (f *FakeReader) CallsFor(resource string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Resource == resource {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeReader) begin(c Call) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	err := f.Errs[c.Resource]
	f.mu.Unlock()

	if f.Started != nil {
		f.Started <- c.Resource
	}
	return err
}

func (f *FakeReader) wait(ctx context.Context) error {
	if f.Gate == nil {
		return ctx.Err()
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeReader) Profile(ctx context.Context, token string) (*models.Profile, error) {
	if err := f.begin(Call{Resource: "profile", Token: token}); err != nil {
		return nil, err
	}
	p := *f.User
	return &p, nil
}

func (f *FakeReader) TopTracks(ctx context.Context, token string, r models.TimeRange, limit int) ([]models.Track, error) {
	if err := f.begin(Call{Resource: "tracks", Token: token, TimeRange: r, Limit: limit}); err != nil {
		return nil, err
	}
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.Tracks[:min(limit, len(f.Tracks))], nil
}

func (f *FakeReader) TopArtists(ctx context.Context, token string, r models.TimeRange, limit int) ([]models.Artist, error) {
	if err := f.begin(Call{Resource: "artists", Token: token, TimeRange: r, Limit: limit}); err != nil {
		return nil, err
	}
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.Artists[:min(limit, len(f.Artists))], nil
}
