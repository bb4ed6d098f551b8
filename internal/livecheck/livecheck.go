// Package livecheck detects newer upstream releases for a cask using the
// strategy named in its livecheck block.
package livecheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/blackwell-systems/caskkit/internal/cask"
)

// ErrUnsupportedStrategy is returned for strategies caskkit cannot run.
var ErrUnsupportedStrategy = errors.New("unsupported livecheck strategy")

// ErrNoMatch is returned when a strategy finds no version.
var ErrNoMatch = errors.New("no version found")

// Result is the outcome of a check.
type Result struct {
	Token    string `json:"token"`
	Current  string `json:"current"`
	Latest   string `json:"latest"`
	Strategy string `json:"strategy"`
	Source   string `json:"source"`
	Outdated bool   `json:"outdated"`
}

// Checker runs livecheck strategies over HTTP.
type Checker struct {
	client  *http.Client
	apiBase string
	token   string
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) { ch.client = c }
}

// WithAPIBase points the GitHub strategies at a different API root.
func WithAPIBase(base string) Option {
	return func(ch *Checker) { ch.apiBase = strings.TrimRight(base, "/") }
}

// WithToken authenticates GitHub API requests.
func WithToken(token string) Option {
	return func(ch *Checker) { ch.token = token }
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	ch := &Checker{
		client:  &http.Client{Timeout: 30 * time.Second},
		apiBase: "https://api.github.com",
	}
	for _, o := range opts {
		o(ch)
	}
	return ch
}

// Latest runs d's livecheck strategy. Descriptors without a livecheck block
// default to github_latest against the download URL.
func (ch *Checker) Latest(ctx context.Context, d *cask.Descriptor) (*Result, error) {
	lc := cask.Livecheck{URL: ":url", Strategy: "github_latest"}
	if d.Livecheck != nil {
		lc = *d.Livecheck
	}

	source, err := checkURL(d, lc.URL)
	if err != nil {
		return nil, err
	}

	var latest string
	switch lc.Strategy {
	case "github_latest":
		latest, err = ch.githubLatest(ctx, source)
	case "github_releases":
		latest, err = ch.githubReleases(ctx, source, lc.Regex)
	case "page_match":
		latest, err = ch.pageMatch(ctx, source, lc.Regex)
	default:
		return nil, fmt.Errorf("%s: %w: %q", d.Token, ErrUnsupportedStrategy, lc.Strategy)
	}
	if err != nil {
		return nil, fmt.Errorf("livecheck %s (%s): %w", d.Token, lc.Strategy, err)
	}

	zap.L().Sugar().Debugf("livecheck %s: %s found %s via %s", d.Token, lc.Strategy, latest, source)

	return &Result{
		Token:    d.Token,
		Current:  d.Version,
		Latest:   latest,
		Strategy: lc.Strategy,
		Source:   source,
		Outdated: d.Version != cask.LatestVersion && cask.CompareVersions(latest, d.Version) > 0,
	}, nil
}

// checkURL resolves the livecheck url: symbols to a concrete URL.
func checkURL(d *cask.Descriptor, u string) (string, error) {
	switch u {
	case "", ":url":
		resolved, err := d.ResolveURL()
		if err != nil {
			return "", fmt.Errorf("livecheck %s: %w", d.Token, err)
		}
		return resolved, nil
	case ":homepage":
		if d.Homepage == "" {
			return "", fmt.Errorf("livecheck %s: homepage is empty", d.Token)
		}
		return d.Homepage, nil
	default:
		return u, nil
	}
}

// VersionFromTag strips the conventional v prefix from a release tag.
func VersionFromTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if len(tag) > 1 && (tag[0] == 'v' || tag[0] == 'V') && tag[1] >= '0' && tag[1] <= '9' {
		return tag[1:]
	}
	return tag
}

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

func (ch *Checker) githubLatest(ctx context.Context, source string) (string, error) {
	owner, repo, ok := cask.GitHubRepo(source)
	if !ok {
		return "", fmt.Errorf("%s is not a GitHub repository url", source)
	}
	var rel githubRelease
	if err := ch.getJSON(ctx, fmt.Sprintf("%s/repos/%s/%s/releases/latest", ch.apiBase, owner, repo), &rel); err != nil {
		return "", err
	}
	if rel.TagName == "" {
		return "", ErrNoMatch
	}
	return VersionFromTag(rel.TagName), nil
}

func (ch *Checker) githubReleases(ctx context.Context, source, pattern string) (string, error) {
	owner, repo, ok := cask.GitHubRepo(source)
	if !ok {
		return "", fmt.Errorf("%s is not a GitHub repository url", source)
	}
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		if re, err = regexp.Compile(pattern); err != nil {
			return "", fmt.Errorf("invalid regex: %w", err)
		}
	}

	var rels []githubRelease
	if err := ch.getJSON(ctx, fmt.Sprintf("%s/repos/%s/%s/releases", ch.apiBase, owner, repo), &rels); err != nil {
		return "", err
	}

	var versions []string
	for _, rel := range rels {
		if rel.Draft || rel.Prerelease {
			continue
		}
		v := VersionFromTag(rel.TagName)
		if re != nil {
			m := re.FindStringSubmatch(rel.TagName)
			if m == nil {
				continue
			}
			if len(m) > 1 {
				v = m[1]
			}
		}
		if v != "" {
			versions = append(versions, v)
		}
	}
	return newest(versions)
}

func (ch *Checker) pageMatch(ctx context.Context, source, pattern string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("page_match requires a regex")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regex: %w", err)
	}
	body, err := ch.get(ctx, source, "")
	if err != nil {
		return "", err
	}

	var versions []string
	for _, m := range re.FindAllStringSubmatch(string(body), -1) {
		if len(m) > 1 {
			versions = append(versions, m[1])
		} else {
			versions = append(versions, m[0])
		}
	}
	return newest(versions)
}

func newest(versions []string) (string, error) {
	if len(versions) == 0 {
		return "", ErrNoMatch
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return cask.CompareVersions(versions[i], versions[j]) > 0
	})
	return versions[0], nil
}

func (ch *Checker) getJSON(ctx context.Context, url string, v any) error {
	body, err := ch.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", url, err)
	}
	return nil
}

func (ch *Checker) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
		if ch.token != "" {
			req.Header.Set("Authorization", "Bearer "+ch.token)
		}
	}
	resp, err := ch.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s failed: bad status: %s", url, resp.Status)
	}
	return body, nil
}
