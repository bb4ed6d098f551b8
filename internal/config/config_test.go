package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FileNotFound(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(filepath.Join(home, "missing.yaml"), home)
	if err != nil {
		t.Fatalf("Load() returned error for missing file: %v", err)
	}
	if cfg.DataDir != filepath.Join(home, ".caskkit") {
		t.Errorf("DataDir = %q, want default", cfg.DataDir)
	}
	if cfg.GitHub.API != "https://api.github.com" {
		t.Errorf("GitHub.API = %q, want default", cfg.GitHub.API)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path, home)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_OverridesAndHomeExpansion(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.yaml")
	content := `data_dir: ~/casks-data
tap: errakhaoui/tap
github:
  api: http://127.0.0.1:9999
log:
  level: debug
  format: json
download:
  timeout_seconds: 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path, home)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"data_dir", cfg.DataDir, filepath.Join(home, "casks-data")},
		{"tap", cfg.Tap, "errakhaoui/tap"},
		{"github.api", cfg.GitHub.API, "http://127.0.0.1:9999"},
		{"github.token_env default kept", cfg.GitHub.TokenEnv, "GITHUB_TOKEN"},
		{"log.level", cfg.Log.Level, "debug"},
		{"log.format", cfg.Log.Format, "json"},
		{"trash_dir default kept", cfg.TrashDir, filepath.Join(home, ".Trash")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if cfg.Download.TimeoutSeconds != 10 {
		t.Errorf("Download.TimeoutSeconds = %d, want 10", cfg.Download.TimeoutSeconds)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.yaml")
	if err := os.WriteFile(path, []byte("datadir: /tmp\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path, home); err == nil {
		t.Error("Load() should reject unknown keys")
	}
}

func TestGitHubToken(t *testing.T) {
	cfg := Defaults(t.TempDir())
	cfg.GitHub.TokenEnv = "CASKKIT_TEST_TOKEN"
	t.Setenv("CASKKIT_TEST_TOKEN", "secret")
	if got := cfg.GitHubToken(); got != "secret" {
		t.Errorf("GitHubToken() = %q, want secret", got)
	}
	cfg.GitHub.TokenEnv = ""
	if got := cfg.GitHubToken(); got != "" {
		t.Errorf("GitHubToken() = %q, want empty", got)
	}
}

func TestDir_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "caskkit") {
		t.Errorf("Dir() = %q", dir)
	}
}
