// Package cleanup plans and performs the full-uninstall cleanup a cask's
// zap stanza declares.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/caskkit/internal/cask"
)

// Directive is the zap directive a target came from.
type Directive string

const (
	DirectiveTrash Directive = "trash"
	DirectiveRmdir Directive = "rmdir"
)

// Target is one zap path resolved against the filesystem.
type Target struct {
	Path      string // as written in the cask
	Expanded  string
	Directive Directive
	Exists    bool
	IsDir     bool
	SizeBytes int64
}

// Plan resolves every zap path of d under home. Paths are stat'ed
// concurrently; the result keeps the cask's order.
func Plan(ctx context.Context, d *cask.Descriptor, home string) ([]Target, error) {
	var targets []Target
	for _, p := range d.Zap.Trash {
		targets = append(targets, Target{Path: p, Directive: DirectiveTrash})
	}
	for _, p := range d.Zap.Rmdir {
		targets = append(targets, Target{Path: p, Directive: DirectiveRmdir})
	}

	for i := range targets {
		expanded, err := Expand(targets[i].Path, home)
		if err != nil {
			return nil, err
		}
		targets[i].Expanded = expanded
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range targets {
		t := &targets[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := os.Lstat(t.Expanded)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", t.Expanded, err)
			}
			t.Exists = true
			t.IsDir = info.IsDir()
			t.SizeBytes = diskUsage(t.Expanded, info)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return targets, nil
}

// Expand turns a cask path into an absolute path. Only ~/ and absolute
// paths are accepted. A ~/ path must stay inside home, and no path may be
// home, / or an ancestor of home.
func Expand(p, home string) (string, error) {
	home = filepath.Clean(home)
	var out string
	switch {
	case strings.HasPrefix(p, "~/"):
		out = filepath.Join(home, p[2:])
		if !within(out, home) {
			return "", fmt.Errorf("zap path %q escapes the home directory", p)
		}
	case filepath.IsAbs(p):
		out = filepath.Clean(p)
	default:
		return "", fmt.Errorf("zap path %q must be absolute or start with ~/", p)
	}
	if out == string(filepath.Separator) || out == home || within(home, out) {
		return "", fmt.Errorf("zap path %q resolves to a protected directory", p)
	}
	return out, nil
}

// within reports whether path lies strictly below dir.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func diskUsage(path string, info fs.FileInfo) int64 {
	if !info.IsDir() {
		return info.Size()
	}
	var total int64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if fi, err := d.Info(); err == nil {
				total += fi.Size()
			}
		}
		return nil
	})
	return total
}

// Options configures Execute.
type Options struct {
	// TrashDir receives trash targets. Empty removes them outright.
	TrashDir string
	DryRun   bool
	// OnTarget is called after each target is handled.
	OnTarget func(Target)
}

// Report summarizes an Execute run.
type Report struct {
	Trashed    []string
	Removed    []string
	Skipped    []string
	FreedBytes int64
}

// Execute carries out a plan. Trash targets move into the trash directory;
// rmdir targets are removed only when empty. Missing paths are skipped.
func Execute(ctx context.Context, plan []Target, opts Options) (*Report, error) {
	report := &Report{}

	if opts.TrashDir != "" && !opts.DryRun {
		if err := os.MkdirAll(opts.TrashDir, 0755); err != nil {
			return report, fmt.Errorf("failed to create trash directory: %w", err)
		}
	}

	for _, t := range plan {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := execute(t, opts, report); err != nil {
			return report, err
		}
		if opts.OnTarget != nil {
			opts.OnTarget(t)
		}
	}
	return report, nil
}

func execute(t Target, opts Options, report *Report) error {
	logger := zap.L().Sugar()

	if !t.Exists {
		report.Skipped = append(report.Skipped, t.Expanded)
		return nil
	}

	switch t.Directive {
	case DirectiveTrash:
		if !opts.DryRun {
			if err := moveToTrash(t.Expanded, opts.TrashDir); err != nil {
				return err
			}
			logger.Infof("zap: trashed %s", t.Expanded)
		}
		report.Trashed = append(report.Trashed, t.Expanded)
		report.FreedBytes += t.SizeBytes

	case DirectiveRmdir:
		if !t.IsDir {
			report.Skipped = append(report.Skipped, t.Expanded)
			return nil
		}
		empty, err := isEmptyDir(t.Expanded)
		if err != nil {
			return err
		}
		if !empty {
			logger.Infof("zap: keeping non-empty directory %s", t.Expanded)
			report.Skipped = append(report.Skipped, t.Expanded)
			return nil
		}
		if !opts.DryRun {
			if err := os.Remove(t.Expanded); err != nil {
				return fmt.Errorf("failed to remove %s: %w", t.Expanded, err)
			}
			logger.Infof("zap: removed %s", t.Expanded)
		}
		report.Removed = append(report.Removed, t.Expanded)

	default:
		return fmt.Errorf("unknown zap directive %q", t.Directive)
	}
	return nil
}

func moveToTrash(path, trashDir string) error {
	if trashDir == "" {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return nil
	}
	dest := filepath.Join(trashDir, filepath.Base(path))
	if _, err := os.Lstat(dest); err == nil {
		dest = fmt.Sprintf("%s %s", dest, time.Now().Format("15.04.05.000000000"))
	}
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("failed to move %s to trash: %w", path, err)
	}
	return nil
}

func isEmptyDir(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return len(entries) == 0, nil
}

// Existing returns the targets present on disk.
func Existing(plan []Target) []Target {
	var out []Target
	for _, t := range plan {
		if t.Exists {
			out = append(out, t)
		}
	}
	return out
}
