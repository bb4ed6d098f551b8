package brew

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeBrew installs a shell script as Bin that records its arguments and
// prints canned output for the subcommand.
func fakeBrew(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake brew needs a POSIX shell")
	}
	dir := t.TempDir()
	logPath := filepath.Join(dir, "args.log")
	body := "#!/bin/sh\necho \"$@\" >> " + logPath + "\n" + script + "\n"
	bin := filepath.Join(dir, "brew")
	if err := os.WriteFile(bin, []byte(body), 0755); err != nil {
		t.Fatalf("failed to write fake brew: %v", err)
	}
	old := Bin
	Bin = bin
	t.Cleanup(func() { Bin = old })
	return logPath
}

func readArgs(t *testing.T, logPath string) []string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read brew args: %v", err)
	}
	return parseLines(string(data))
}

func TestInstallArgs(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		opts InstallOptions
		want []string
	}{
		{
			name: "plain token",
			ref:  "clearvox",
			want: []string{"install", "--cask", "clearvox"},
		},
		{
			name: "tap qualified",
			ref:  "errakhaoui/tap/clearvox",
			want: []string{"install", "--cask", "errakhaoui/tap/clearvox"},
		},
		{
			name: "force without quarantine",
			ref:  "Casks/clearvox.rb",
			opts: InstallOptions{Force: true, NoQuarantine: true},
			want: []string{"install", "--cask", "--force", "--no-quarantine", "Casks/clearvox.rb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, installArgs(tt.ref, tt.opts)); diff != "" {
				t.Errorf("installArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUninstallArgs(t *testing.T) {
	if diff := cmp.Diff([]string{"uninstall", "--cask", "clearvox"}, uninstallArgs("clearvox", false)); diff != "" {
		t.Errorf("uninstallArgs(false) mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"uninstall", "--cask", "--zap", "clearvox"}, uninstallArgs("clearvox", true)); diff != "" {
		t.Errorf("uninstallArgs(true) mismatch:\n%s", diff)
	}
}

func TestAuditArgs(t *testing.T) {
	got := auditArgs("clearvox", AuditOptions{Strict: true, Online: true, New: true})
	want := []string{"audit", "--cask", "--strict", "--online", "--new", "clearvox"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("auditArgs() mismatch (-want +got):\n%s", diff)
	}
}

func TestInstallCaskRunsBrew(t *testing.T) {
	logPath := fakeBrew(t, "exit 0")

	if err := InstallCask(context.Background(), "clearvox", InstallOptions{}); err != nil {
		t.Fatalf("InstallCask() failed: %v", err)
	}
	if err := UninstallCask(context.Background(), "clearvox", true); err != nil {
		t.Fatalf("UninstallCask() failed: %v", err)
	}

	want := []string{"install --cask clearvox", "uninstall --cask --zap clearvox"}
	if diff := cmp.Diff(want, readArgs(t, logPath)); diff != "" {
		t.Errorf("brew invocations mismatch (-want +got):\n%s", diff)
	}
}

func TestInstallCaskFailureIncludesOutput(t *testing.T) {
	fakeBrew(t, "echo 'Error: Cask clearvox is unreadable'; exit 1")

	err := InstallCask(context.Background(), "clearvox", InstallOptions{})
	if err == nil {
		t.Fatal("InstallCask() should fail when brew exits non-zero")
	}
	if !strings.Contains(err.Error(), "unreadable") {
		t.Errorf("error %q should include brew output", err)
	}
}

func TestAuditReturnsReport(t *testing.T) {
	fakeBrew(t, "echo 'audit for clearvox: passed'")

	report, err := Audit(context.Background(), "clearvox", AuditOptions{Strict: true})
	if err != nil {
		t.Fatalf("Audit() failed: %v", err)
	}
	if report != "audit for clearvox: passed" {
		t.Errorf("Audit() report = %q", report)
	}
}

func TestTapExists(t *testing.T) {
	fakeBrew(t, `if [ "$1" = "tap" ] && [ -z "$2" ]; then
  printf '  homebrew/core\nhomebrew/cask\nerrakhaoui/tap  \n'
fi`)

	tests := []struct {
		tap  string
		want bool
	}{
		{"errakhaoui/tap", true},
		{"homebrew/core", true},
		{"user/other", false},
	}
	for _, tt := range tests {
		t.Run(tt.tap, func(t *testing.T) {
			got, err := TapExists(context.Background(), tt.tap)
			if err != nil {
				t.Fatalf("TapExists() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("TapExists(%s) = %v, want %v", tt.tap, got, tt.want)
			}
		})
	}
}

func TestAddTapSkipsExisting(t *testing.T) {
	logPath := fakeBrew(t, `if [ "$1" = "tap" ] && [ -z "$2" ]; then echo errakhaoui/tap; fi`)

	if err := AddTap(context.Background(), "errakhaoui/tap"); err != nil {
		t.Fatalf("AddTap() failed: %v", err)
	}
	if err := AddTap(context.Background(), "user/new"); err != nil {
		t.Fatalf("AddTap() failed: %v", err)
	}

	want := []string{"tap", "tap", "tap user/new"}
	if diff := cmp.Diff(want, readArgs(t, logPath)); diff != "" {
		t.Errorf("brew invocations mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInfo(t *testing.T) {
	data := []byte(`{
  "formulae": [],
  "casks": [
    {
      "token": "clearvox",
      "full_token": "errakhaoui/tap/clearvox",
      "tap": "errakhaoui/tap",
      "name": ["ClearVox"],
      "desc": "Real-time noise cancellation",
      "homepage": "https://github.com/errakhaoui/noise-canceling",
      "url": "https://github.com/errakhaoui/noise-canceling/releases/download/v1.0.0/ClearVox-Installer.dmg",
      "version": "1.0.0",
      "installed": "1.0.0",
      "outdated": false,
      "caveats": "ClearVox requires microphone access."
    }
  ]
}`)

	info, err := parseInfo(data, "errakhaoui/tap/clearvox")
	if err != nil {
		t.Fatalf("parseInfo() failed: %v", err)
	}
	if info.Token != "clearvox" || info.Version != "1.0.0" || !info.IsInstalled() {
		t.Errorf("parseInfo() = %+v", info)
	}

	if _, err := parseInfo(data, "other"); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("parseInfo(other) error = %v, want ErrNotInstalled", err)
	}
	if _, err := parseInfo([]byte("not json"), "clearvox"); err == nil {
		t.Error("parseInfo() should fail on invalid JSON")
	}
}

func TestInstalledVersion(t *testing.T) {
	fakeBrew(t, `if [ "$4" = "clearvox" ]; then echo "clearvox 1.0.0"; else exit 1; fi`)

	if v := InstalledVersion(context.Background(), "clearvox"); v != "1.0.0" {
		t.Errorf("InstalledVersion(clearvox) = %q, want 1.0.0", v)
	}
	if v := InstalledVersion(context.Background(), "missing"); v != "" {
		t.Errorf("InstalledVersion(missing) = %q, want empty", v)
	}
}

func TestVersion(t *testing.T) {
	fakeBrew(t, `echo "Homebrew 4.4.2"; echo "Homebrew/homebrew-core (git revision abc)"`)

	v, err := Version(context.Background())
	if err != nil {
		t.Fatalf("Version() failed: %v", err)
	}
	if v != "4.4.2" {
		t.Errorf("Version() = %q, want 4.4.2", v)
	}
}

func TestParseLines(t *testing.T) {
	got := parseLines("  homebrew/core\n\nhomebrew/cask\nuser/tap  \n")
	want := []string{"homebrew/core", "homebrew/cask", "user/tap"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseLines() mismatch (-want +got):\n%s", diff)
	}
	if got := parseLines(""); len(got) != 0 {
		t.Errorf("parseLines(\"\") = %v, want empty", got)
	}
}
