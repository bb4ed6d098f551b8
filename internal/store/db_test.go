package store

import (
	"errors"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	if s.DB() == nil {
		t.Error("DB() should return a connection")
	}
}

func TestCreateSchemaIdempotent(t *testing.T) {
	s := setupTestStore(t)
	if err := s.CreateSchema(); err != nil {
		t.Errorf("second CreateSchema() failed: %v", err)
	}
}

func TestNotInitialized(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	if _, err := s.ListReleases(""); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ListReleases() error = %v, want ErrNotInitialized", err)
	}
	if err := s.InsertEvent(&Event{Token: "clearvox", Action: ActionInstall}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("InsertEvent() error = %v, want ErrNotInitialized", err)
	}
}

func TestReleases(t *testing.T) {
	s := setupTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, v := range []string{"1.0.0", "1.1.0", "1.2.0"} {
		r := &Release{
			Token:       "clearvox",
			Version:     v,
			URL:         "https://example.com/v" + v + "/ClearVox.dmg",
			SHA256:      ":no_check",
			ArchivePath: "/tmp/clearvox-" + v + ".rb",
			RecordedAt:  base.Add(time.Duration(i) * time.Hour),
		}
		id, err := s.InsertRelease(r)
		if err != nil {
			t.Fatalf("InsertRelease(%s) failed: %v", v, err)
		}
		if id == 0 || r.ID != id {
			t.Errorf("InsertRelease(%s) id = %d, r.ID = %d", v, id, r.ID)
		}
	}

	if _, err := s.InsertRelease(&Release{Token: "clearvox", Version: "1.1.0", URL: "u", SHA256: "s", ArchivePath: "p"}); !errors.Is(err, ErrReleaseExists) {
		t.Errorf("duplicate InsertRelease() error = %v, want ErrReleaseExists", err)
	}

	latest, err := s.LatestRelease("clearvox")
	if err != nil {
		t.Fatalf("LatestRelease() failed: %v", err)
	}
	if latest.Version != "1.2.0" {
		t.Errorf("LatestRelease().Version = %q, want 1.2.0", latest.Version)
	}
	if !latest.RecordedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("RecordedAt = %v", latest.RecordedAt)
	}

	got, err := s.GetRelease("clearvox", "1.0.0")
	if err != nil {
		t.Fatalf("GetRelease() failed: %v", err)
	}
	if got.URL != "https://example.com/v1.0.0/ClearVox.dmg" {
		t.Errorf("GetRelease().URL = %q", got.URL)
	}

	if _, err := s.GetRelease("clearvox", "9.9.9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRelease(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.LatestRelease("other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestRelease(other) error = %v, want ErrNotFound", err)
	}

	list, err := s.ListReleases("clearvox")
	if err != nil {
		t.Fatalf("ListReleases() failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("ListReleases() returned %d rows, want 3", len(list))
	}
	if list[0].Version != "1.2.0" || list[2].Version != "1.0.0" {
		t.Errorf("ListReleases() not newest first: %s..%s", list[0].Version, list[2].Version)
	}
}

func TestEvents(t *testing.T) {
	s := setupTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	events := []*Event{
		{Token: "clearvox", Version: "1.0.0", Action: ActionInstall, CreatedAt: base},
		{Token: "clearvox", Version: "1.0.0", Action: ActionZap, Detail: "3 paths", CreatedAt: base.Add(time.Minute)},
		{Token: "other", Action: ActionUninstall, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		if err := s.InsertEvent(e); err != nil {
			t.Fatalf("InsertEvent() failed: %v", err)
		}
		if e.ID == "" {
			t.Error("InsertEvent() should assign an ID")
		}
	}

	all, err := s.ListEvents("", 0)
	if err != nil {
		t.Fatalf("ListEvents() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListEvents() returned %d, want 3", len(all))
	}
	if all[0].Token != "other" {
		t.Errorf("ListEvents() not newest first, got %s", all[0].Token)
	}

	cv, err := s.ListEvents("clearvox", 1)
	if err != nil {
		t.Fatalf("ListEvents(clearvox) failed: %v", err)
	}
	if len(cv) != 1 || cv[0].Action != ActionZap || cv[0].Detail != "3 paths" {
		t.Errorf("ListEvents(clearvox, 1) = %+v", cv)
	}
}

func TestSubSecondOrdering(t *testing.T) {
	s := setupTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// .1 and .123 compare the wrong way round as trimmed fractions.
	older := base.Add(100 * time.Millisecond)
	newer := base.Add(123 * time.Millisecond)

	for _, e := range []*Event{
		{Token: "clearvox", Action: ActionInstall, Detail: "older", CreatedAt: older},
		{Token: "clearvox", Action: ActionZap, Detail: "newer", CreatedAt: newer},
	} {
		if err := s.InsertEvent(e); err != nil {
			t.Fatalf("InsertEvent() failed: %v", err)
		}
	}
	events, err := s.ListEvents("clearvox", 0)
	if err != nil {
		t.Fatalf("ListEvents() failed: %v", err)
	}
	if len(events) != 2 || events[0].Detail != "newer" {
		t.Fatalf("ListEvents() not newest first: %+v", events)
	}
	if !events[0].CreatedAt.Equal(newer) || !events[1].CreatedAt.Equal(older) {
		t.Errorf("timestamps not preserved: %v, %v", events[0].CreatedAt, events[1].CreatedAt)
	}

	for _, r := range []*Release{
		{Token: "clearvox", Version: "1.0.0", URL: "u", SHA256: "s", ArchivePath: "a", RecordedAt: older},
		{Token: "clearvox", Version: "1.1.0", URL: "u", SHA256: "s", ArchivePath: "b", RecordedAt: newer},
	} {
		if _, err := s.InsertRelease(r); err != nil {
			t.Fatalf("InsertRelease() failed: %v", err)
		}
	}
	latest, err := s.LatestRelease("clearvox")
	if err != nil {
		t.Fatalf("LatestRelease() failed: %v", err)
	}
	if latest.Version != "1.1.0" {
		t.Errorf("LatestRelease().Version = %q, want 1.1.0", latest.Version)
	}
	list, err := s.ListReleases("clearvox")
	if err != nil {
		t.Fatalf("ListReleases() failed: %v", err)
	}
	if len(list) != 2 || list[0].Version != "1.1.0" {
		t.Errorf("ListReleases() not newest first: %s", list[0].Version)
	}
}
