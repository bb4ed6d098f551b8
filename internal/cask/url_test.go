package cask

import (
	"strings"
	"testing"
)

func TestExpandTemplate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		version string
		want    string
		wantErr bool
	}{
		{name: "ruby interpolation", tmpl: "v#{version}/a.dmg", version: "1.0.0", want: "v1.0.0/a.dmg"},
		{name: "brace shorthand", tmpl: "v{version}/a.dmg", version: "1.0.0", want: "v1.0.0/a.dmg"},
		{name: "repeated", tmpl: "#{version}/a-#{version}.dmg", version: "2.3", want: "2.3/a-2.3.dmg"},
		{name: "major", tmpl: "#{version.major}", version: "4.5.6", want: "4"},
		{name: "minor", tmpl: "#{version.minor}", version: "4.5.6", want: "5"},
		{name: "patch", tmpl: "#{version.patch}", version: "4.5.6", want: "6"},
		{name: "major_minor", tmpl: "#{version.major_minor}", version: "4.5.6", want: "4.5"},
		{name: "no_dots", tmpl: "#{version.no_dots}", version: "4.5.6", want: "456"},
		{name: "dots_to_underscores", tmpl: "#{version.dots_to_underscores}", version: "4.5.6", want: "4_5_6"},
		{name: "dots_to_hyphens", tmpl: "#{version.dots_to_hyphens}", version: "4.5.6", want: "4-5-6"},
		{name: "chained", tmpl: "#{version.major_minor.no_dots}", version: "4.5.6", want: "45"},
		{name: "no placeholder", tmpl: "static.dmg", version: "1.0.0", want: "static.dmg"},
		{name: "missing patch", tmpl: "#{version.patch}", version: "4.5", wantErr: true},
		{name: "unknown method", tmpl: "#{version.csv}", version: "4.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandTemplate(tt.tmpl, tt.version)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ExpandTemplate() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpandTemplate() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveURLClearVox(t *testing.T) {
	d := clearvox()

	if !HasVersionPlaceholder(d.URL) {
		t.Fatal("ClearVox url should contain a version placeholder")
	}

	got, err := ResolveURLFor(d.URL, SampleVersion)
	if err != nil {
		t.Fatalf("ResolveURLFor() failed: %v", err)
	}
	want := "https://github.com/errakhaoui/noise-canceling/releases/download/v1.0.0/ClearVox-Installer.dmg"
	if got != want {
		t.Errorf("ResolveURLFor() = %q, want %q", got, want)
	}

	d.Version = "1.4.2"
	got, err = d.ResolveURL()
	if err != nil {
		t.Fatalf("ResolveURL() failed: %v", err)
	}
	if !strings.Contains(got, "/v1.4.2/") {
		t.Errorf("ResolveURL() = %q, want version 1.4.2 substituted", got)
	}
}

func TestResolveURLRejectsMalformed(t *testing.T) {
	for _, tmpl := range []string{"", "file:///tmp/#{version}", "https:///#{version}", "https://example.com/a b/#{version}"} {
		if got, err := ResolveURLFor(tmpl, "1.0.0"); err == nil {
			t.Errorf("ResolveURLFor(%q) = %q, want error", tmpl, got)
		}
	}
}

func TestGitHubRepo(t *testing.T) {
	tests := []struct {
		raw   string
		owner string
		repo  string
		ok    bool
	}{
		{"https://github.com/errakhaoui/noise-canceling", "errakhaoui", "noise-canceling", true},
		{"https://github.com/errakhaoui/noise-canceling/releases/download/v1.0.0/x.dmg", "errakhaoui", "noise-canceling", true},
		{"https://github.com/owner/repo.git", "owner", "repo", true},
		{"https://github.com/owner", "", "", false},
		{"https://gitlab.com/owner/repo", "", "", false},
	}
	for _, tt := range tests {
		owner, repo, ok := GitHubRepo(tt.raw)
		if owner != tt.owner || repo != tt.repo || ok != tt.ok {
			t.Errorf("GitHubRepo(%q) = %q, %q, %v; want %q, %q, %v", tt.raw, owner, repo, ok, tt.owner, tt.repo, tt.ok)
		}
	}
}
