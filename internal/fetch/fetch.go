// Package fetch downloads cask payloads and checks them against the
// descriptor's checksum policy.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/blackwell-systems/caskkit/internal/cask"
)

// ErrChecksumMismatch is returned when a payload does not match its digest.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Options configures Download.
type Options struct {
	// Client defaults to a client with a five minute timeout.
	Client *http.Client
	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer
	// UserAgent is sent with the request.
	UserAgent string
}

// Result describes a completed download.
type Result struct {
	URL    string
	Path   string
	Size   int64
	SHA256 string
}

// Download fetches url into dir, naming the file after the last URL path
// segment. The file is written atomically; a failed download leaves
// nothing behind.
func Download(ctx context.Context, url, dir string, opts Options) (*Result, error) {
	logger := zap.L().Sugar()

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	name := path.Base(url)
	if name == "" || name == "/" || name == "." {
		return nil, fmt.Errorf("cannot derive a file name from %s", url)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	dest := filepath.Join(dir, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}

	logger.Debugf("downloading %s to %s", url, dest)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s failed: bad status: %s", url, resp.Status)
	}

	out, err := renameio.NewPendingFile(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Cleanup()

	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("downloading "+name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
	)

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, hasher, bar), resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s failed: %w", url, err)
	}
	_ = bar.Finish()

	if err := out.CloseAtomicallyReplace(); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", dest, err)
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	logger.Infof("downloaded %s (%d bytes, sha256 %s)", name, n, sum)

	return &Result{URL: url, Path: dest, Size: n, SHA256: sum}, nil
}

// DownloadDescriptor resolves d's URL and downloads it into dir.
func DownloadDescriptor(ctx context.Context, d *cask.Descriptor, dir string, opts Options) (*Result, error) {
	url, err := d.ResolveURL()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve url for %s: %w", d.Token, err)
	}
	return Download(ctx, url, dir, opts)
}

// SHA256File returns the hex digest of the file at path.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify checks the file at path against sum. It reports false without an
// error when sum is :no_check and verification was skipped.
func Verify(sum cask.Checksum, path string) (bool, error) {
	if sum.NoCheck {
		zap.L().Sugar().Warnf("checksum verification skipped for %s (sha256 :no_check)", filepath.Base(path))
		return false, nil
	}
	got, err := SHA256File(path)
	if err != nil {
		return false, err
	}
	if got != sum.Hex {
		return false, fmt.Errorf("%s: expected %s, got %s: %w", filepath.Base(path), sum.Hex, got, ErrChecksumMismatch)
	}
	return true, nil
}
