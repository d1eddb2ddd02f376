package stats

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/shared"
	tu "github.com/desertthunder/soundslate/internal/testing"
	"github.com/go-test/deep"
)

func TestFilters(t *testing.T) {
	t.Run("ParseFilters", func(t *testing.T) {
		t.Run("defaults", func(t *testing.T) {
			f, err := ParseFilters(url.Values{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if diff := deep.Equal(f, DefaultFilters()); diff != nil {
				t.Error(diff)
			}
		})

		t.Run("all values", func(t *testing.T) {
			q := url.Values{"tab": {"artists"}, "time_range": {"long_term"}, "limit": {"20"}, "view": {"simple"}}
			f, err := ParseFilters(q)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			want := Filters{Tab: models.ArtistsTab, TimeRange: models.LongTerm, Limit: 20, Layout: models.SimpleLayout}
			if diff := deep.Equal(f, want); diff != nil {
				t.Error(diff)
			}

			back, _ := ParseFilters(f.Query())
			if diff := deep.Equal(back, f); diff != nil {
				t.Errorf("Query should round trip: %v", diff)
			}
		})

		t.Run("invalid values fall back", func(t *testing.T) {
			q := url.Values{"time_range": {"forever"}, "limit": {"7"}, "tab": {"tracks"}}
			f, err := ParseFilters(q)
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if f.TimeRange != models.MediumTerm || f.Limit != 10 {
				t.Errorf("invalid fields should keep defaults, got %+v", f)
			}
		})
	})

	t.Run("Key", func(t *testing.T) {
		f := DefaultFilters().WithTab(models.ArtistsTab)
		k := f.Key()
		if k.Resource != ArtistsResource || k.TimeRange != models.MediumTerm || k.Limit != 10 {
			t.Errorf("unexpected key %+v", k)
		}
		if k.String() != "artists?limit=10&time_range=medium_term" {
			t.Errorf("unexpected key string %s", k)
		}
		if ProfileKey().String() != "profile" {
			t.Errorf("unexpected profile key %s", ProfileKey())
		}
	})
}

func TestView(t *testing.T) {
	t.Run("starts at defaults", func(t *testing.T) {
		v := NewView(Filters{})
		if diff := deep.Equal(v.Filters(), DefaultFilters()); diff != nil {
			t.Error(diff)
		}
	})

	t.Run("SetTimeRange", func(t *testing.T) {
		v := NewView(DefaultFilters())

		key, changed, err := v.SetTimeRange(models.ShortTerm)
		if err != nil || !changed {
			t.Fatalf("expected change, got %v %v", changed, err)
		}
		if key.TimeRange != models.ShortTerm || key.Resource != TracksResource {
			t.Errorf("unexpected key %+v", key)
		}

		if _, changed, _ := v.SetTimeRange(models.ShortTerm); changed {
			t.Error("selecting the current range should not require a fetch")
		}

		if _, _, err := v.SetTimeRange("forever"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if v.Filters().TimeRange != models.ShortTerm {
			t.Error("invalid input must not change state")
		}
	})

	t.Run("SetLimit", func(t *testing.T) {
		v := NewView(DefaultFilters())
		key, changed, err := v.SetLimit(5)
		if err != nil || !changed || key.Limit != 5 {
			t.Errorf("unexpected result %+v %v %v", key, changed, err)
		}
		if _, changed, _ := v.SetLimit(5); changed {
			t.Error("same limit should not require a fetch")
		}
		if _, _, err := v.SetLimit(7); err == nil {
			t.Error("expected error for limit 7")
		}
	})

	t.Run("SelectTab", func(t *testing.T) {
		v := NewView(DefaultFilters())
		key, changed, err := v.SelectTab(models.ArtistsTab)
		if err != nil || !changed || key.Resource != ArtistsResource {
			t.Errorf("unexpected result %+v %v %v", key, changed, err)
		}
		if _, changed, _ := v.SelectTab(models.ArtistsTab); changed {
			t.Error("reselecting the tab should not require a fetch")
		}
	})

	t.Run("SetLayout keeps key", func(t *testing.T) {
		v := NewView(DefaultFilters())
		before := v.Key()
		if err := v.SetLayout(models.SimpleLayout); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if v.Key() != before {
			t.Error("layout change must not alter the fetch key")
		}
		if v.Filters().Layout != models.SimpleLayout {
			t.Error("layout not applied")
		}
	})

	t.Run("Reset", func(t *testing.T) {
		v := NewView(Filters{Tab: models.ArtistsTab, TimeRange: models.LongTerm, Limit: 20, Layout: models.SimpleLayout})
		v.Reset()
		if diff := deep.Equal(v.Filters(), DefaultFilters()); diff != nil {
			t.Error(diff)
		}
	})
}

func TestLoader(t *testing.T) {
	ctx := context.Background()
	sess := &session.Session{AccessToken: tu.FakeToken}

	t.Run("loads list with token and params", func(t *testing.T) {
		src := tu.NewFakeReader()
		l := NewLoader(src, sess, nil)

		res := l.Load(ctx, Key{Resource: TracksResource, TimeRange: models.LongTerm, Limit: 15})
		if res.Status != StatusOK || len(res.Tracks) != 15 {
			t.Fatalf("unexpected result %+v", res)
		}
		if len(res.Items()) != 15 || res.Items()[0].Rank != 1 {
			t.Error("expected ranked items")
		}

		calls := src.Calls()
		want := []tu.Call{{Resource: "tracks", Token: tu.FakeToken, TimeRange: models.LongTerm, Limit: 15}}
		if diff := deep.Equal(calls, want); diff != nil {
			t.Error(diff)
		}
		if len(l.Pending()) != 0 {
			t.Error("no load should be pending")
		}
	})

	t.Run("profile", func(t *testing.T) {
		l := NewLoader(tu.NewFakeReader(), sess, nil)
		res := l.Load(ctx, ProfileKey())
		if res.Status != StatusOK || res.Profile.Name() != "Test Listener" {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		src := tu.NewFakeReader()
		src.SetErr("artists", shared.ErrTokenExpired)
		l := NewLoader(src, sess, nil)

		res := l.Load(ctx, Key{Resource: ArtistsResource, TimeRange: models.MediumTerm, Limit: 10})
		if res.Status != StatusExpired {
			t.Errorf("expected expired, got %v", res.Status)
		}
		if res.Message() != "Session expired. Please login again." {
			t.Errorf("unexpected message %q", res.Message())
		}
	})

	t.Run("failure", func(t *testing.T) {
		src := tu.NewFakeReader()
		src.SetErr("tracks", shared.ErrAPIRequest)
		l := NewLoader(src, sess, nil)

		res := l.Load(ctx, DefaultFilters().Key())
		if res.Status != StatusFailed || res.Message() != "Failed to fetch tracks" {
			t.Errorf("unexpected result %v %q", res.Status, res.Message())
		}
	})

	t.Run("no session", func(t *testing.T) {
		src := tu.NewFakeReader()
		l := NewLoader(src, nil, nil)

		res := l.Load(ctx, ProfileKey())
		if res.Status != StatusExpired || !errors.Is(res.Err, shared.ErrNotAuthenticated) {
			t.Errorf("unexpected result %+v", res)
		}
		if len(src.Calls()) != 0 {
			t.Error("no read should be made without a token")
		}
	})

	t.Run("newer load supersedes older", func(t *testing.T) {
		src := tu.NewFakeReader()
		src.Gate = make(chan struct{})
		src.Started = make(chan string, 4)
		l := NewLoader(src, sess, nil)

		older := make(chan Result, 1)
		go func() {
			older <- l.Load(ctx, Key{Resource: TracksResource, TimeRange: models.ShortTerm, Limit: 10})
		}()
		<-src.Started

		newer := make(chan Result, 1)
		go func() {
			newer <- l.Load(ctx, Key{Resource: TracksResource, TimeRange: models.LongTerm, Limit: 10})
		}()
		<-src.Started

		select {
		case res := <-older:
			if res.Status != StatusSuperseded || res.Tracks != nil {
				t.Errorf("older load should be superseded without data, got %+v", res)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("older load was not canceled")
		}

		close(src.Gate)
		res := <-newer
		if res.Status != StatusOK || res.Key.TimeRange != models.LongTerm {
			t.Errorf("newer load should win, got %+v", res)
		}
	})

	t.Run("different resources do not interfere", func(t *testing.T) {
		src := tu.NewFakeReader()
		src.Gate = make(chan struct{})
		src.Started = make(chan string, 4)
		l := NewLoader(src, sess, nil)

		tracks := make(chan Result, 1)
		go func() { tracks <- l.Load(ctx, DefaultFilters().Key()) }()
		<-src.Started

		artists := make(chan Result, 1)
		go func() { artists <- l.Load(ctx, DefaultFilters().WithTab(models.ArtistsTab).Key()) }()
		<-src.Started

		if len(l.Pending()) != 2 {
			t.Errorf("expected two pending loads, got %v", l.Pending())
		}

		close(src.Gate)
		if res := <-tracks; res.Status != StatusOK {
			t.Errorf("tracks load should succeed, got %v", res.Status)
		}
		if res := <-artists; res.Status != StatusOK {
			t.Errorf("artists load should succeed, got %v", res.Status)
		}
	})

	t.Run("CancelAll", func(t *testing.T) {
		src := tu.NewFakeReader()
		src.Gate = make(chan struct{})
		src.Started = make(chan string, 1)
		l := NewLoader(src, sess, nil)

		done := make(chan Result, 1)
		go func() { done <- l.Load(ctx, DefaultFilters().Key()) }()
		<-src.Started

		l.CancelAll()
		select {
		case res := <-done:
			if res.Status != StatusSuperseded {
				t.Errorf("expected canceled load to be dropped, got %v", res.Status)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("load was not canceled")
		}
	})
}
