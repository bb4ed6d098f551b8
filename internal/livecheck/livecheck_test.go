package livecheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blackwell-systems/caskkit/internal/cask"
)

func clearvox() *cask.Descriptor {
	return &cask.Descriptor{
		Token:     "clearvox",
		Version:   "1.0.0",
		URL:       "https://github.com/errakhaoui/noise-canceling/releases/download/v#{version}/ClearVox-Installer.dmg",
		Homepage:  "https://github.com/errakhaoui/noise-canceling",
		Livecheck: &cask.Livecheck{URL: ":url", Strategy: "github_latest"},
	}
}

func newGitHubServer(t *testing.T) (*httptest.Server, *string) {
	t.Helper()
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/repos/errakhaoui/noise-canceling/releases/latest":
			w.Write([]byte(`{"tag_name": "v1.2.0", "draft": false, "prerelease": false}`))
		case "/repos/errakhaoui/noise-canceling/releases":
			w.Write([]byte(`[
				{"tag_name": "v2.0.0-rc1", "prerelease": true},
				{"tag_name": "v1.10.0"},
				{"tag_name": "v1.9.3"},
				{"tag_name": "v3.0.0", "draft": true}
			]`))
		case "/downloads":
			w.Write([]byte(`<a href="ClearVox-1.3.0.dmg">1.3.0</a> <a href="ClearVox-1.12.1.dmg">1.12.1</a>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &auth
}

func TestLatestGitHubLatest(t *testing.T) {
	srv, auth := newGitHubServer(t)
	ch := New(WithAPIBase(srv.URL), WithToken("tkn"))

	res, err := ch.Latest(context.Background(), clearvox())
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if res.Latest != "1.2.0" {
		t.Errorf("Latest = %q, want 1.2.0", res.Latest)
	}
	if !res.Outdated {
		t.Error("1.0.0 should be outdated against 1.2.0")
	}
	if !strings.Contains(res.Source, "/v1.0.0/") {
		t.Errorf("Source = %q, want the rendered download url", res.Source)
	}
	if *auth != "Bearer tkn" {
		t.Errorf("Authorization = %q", *auth)
	}
}

func TestLatestGitHubReleasesSkipsPrereleases(t *testing.T) {
	srv, _ := newGitHubServer(t)
	d := clearvox()
	d.Livecheck = &cask.Livecheck{URL: ":homepage", Strategy: "github_releases"}

	res, err := New(WithAPIBase(srv.URL)).Latest(context.Background(), d)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if res.Latest != "1.10.0" {
		t.Errorf("Latest = %q, want 1.10.0", res.Latest)
	}
}

func TestLatestPageMatch(t *testing.T) {
	srv, _ := newGitHubServer(t)
	d := clearvox()
	d.Version = "1.12.1"
	d.Livecheck = &cask.Livecheck{
		URL:      srv.URL + "/downloads",
		Strategy: "page_match",
		Regex:    `(?i)ClearVox-(\d+(?:\.\d+)+)\.dmg`,
	}

	res, err := New().Latest(context.Background(), d)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if res.Latest != "1.12.1" {
		t.Errorf("Latest = %q, want 1.12.1", res.Latest)
	}
	if res.Outdated {
		t.Error("current version should not be outdated")
	}
}

func TestLatestErrors(t *testing.T) {
	srv, _ := newGitHubServer(t)
	ch := New(WithAPIBase(srv.URL))

	d := clearvox()
	d.Livecheck.Strategy = "sparkle"
	if _, err := ch.Latest(context.Background(), d); !errors.Is(err, ErrUnsupportedStrategy) {
		t.Errorf("Latest(sparkle) = %v, want ErrUnsupportedStrategy", err)
	}

	d = clearvox()
	d.URL = "https://example.com/#{version}/a.dmg"
	if _, err := ch.Latest(context.Background(), d); err == nil {
		t.Error("github_latest should fail for a non-GitHub url")
	}

	d = clearvox()
	d.Livecheck = &cask.Livecheck{URL: srv.URL + "/downloads", Strategy: "page_match", Regex: `nothing-(\d+)`}
	if _, err := ch.Latest(context.Background(), d); !errors.Is(err, ErrNoMatch) {
		t.Errorf("Latest(no match) = %v, want ErrNoMatch", err)
	}

	d = clearvox()
	d.Homepage = "https://github.com/errakhaoui/missing"
	d.Livecheck = &cask.Livecheck{URL: ":homepage", Strategy: "github_latest"}
	if _, err := ch.Latest(context.Background(), d); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Latest(missing repo) = %v, want 404 error", err)
	}
}

func TestLatestDefaultsWithoutBlock(t *testing.T) {
	srv, _ := newGitHubServer(t)
	d := clearvox()
	d.Livecheck = nil

	res, err := New(WithAPIBase(srv.URL)).Latest(context.Background(), d)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if res.Strategy != "github_latest" {
		t.Errorf("Strategy = %q, want github_latest", res.Strategy)
	}
}

func TestVersionFromTag(t *testing.T) {
	tests := map[string]string{
		"v1.0.0":  "1.0.0",
		"V2.1":    "2.1",
		"1.0.0":   "1.0.0",
		"version": "version",
		" v3 ":    "3",
	}
	for tag, want := range tests {
		if got := VersionFromTag(tag); got != want {
			t.Errorf("VersionFromTag(%q) = %q, want %q", tag, got, want)
		}
	}
}
