package cask

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// placeholderRe matches Ruby interpolation of the version, optionally
// followed by a method chain, plus the bare {version} shorthand.
var placeholderRe = regexp.MustCompile(`#?\{version((?:\.[a-z_]+)*)\}`)

// HasVersionPlaceholder reports whether tmpl references the version.
func HasVersionPlaceholder(tmpl string) bool {
	return placeholderRe.MatchString(tmpl)
}

// ExpandTemplate substitutes every version placeholder in tmpl.
func ExpandTemplate(tmpl, version string) (string, error) {
	var expandErr error
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := placeholderRe.FindStringSubmatch(m)
		v, err := applyVersionMethods(version, sub[1])
		if err != nil && expandErr == nil {
			expandErr = err
		}
		return v
	})
	if expandErr != nil {
		return "", expandErr
	}
	return out, nil
}

func applyVersionMethods(version, chain string) (string, error) {
	v := version
	if chain == "" {
		return v, nil
	}
	for _, method := range strings.Split(strings.TrimPrefix(chain, "."), ".") {
		parts := strings.Split(v, ".")
		switch method {
		case "major":
			v = parts[0]
		case "minor":
			if len(parts) < 2 {
				return "", fmt.Errorf("version %q has no minor component", version)
			}
			v = parts[1]
		case "patch":
			if len(parts) < 3 {
				return "", fmt.Errorf("version %q has no patch component", version)
			}
			v = parts[2]
		case "major_minor":
			if len(parts) < 2 {
				return "", fmt.Errorf("version %q has no minor component", version)
			}
			v = parts[0] + "." + parts[1]
		case "no_dots":
			v = strings.ReplaceAll(v, ".", "")
		case "dots_to_underscores":
			v = strings.ReplaceAll(v, ".", "_")
		case "dots_to_hyphens":
			v = strings.ReplaceAll(v, ".", "-")
		default:
			return "", fmt.Errorf("unsupported version method %q", method)
		}
	}
	return v, nil
}

// ResolveURL renders the download URL for the descriptor's own version.
func (d *Descriptor) ResolveURL() (string, error) {
	return ResolveURLFor(d.URL, d.Version)
}

// ResolveURLFor renders tmpl for version and checks that the result is an
// absolute http(s) URL.
func ResolveURLFor(tmpl, version string) (string, error) {
	if tmpl == "" {
		return "", fmt.Errorf("url is empty")
	}
	raw, err := ExpandTemplate(tmpl, version)
	if err != nil {
		return "", fmt.Errorf("failed to expand url: %w", err)
	}
	if err := checkHTTPURL(raw); err != nil {
		return "", err
	}
	return raw, nil
}

func checkHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed url %q: %w", raw, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	if strings.ContainsAny(raw, " {}") {
		return fmt.Errorf("url %q contains unexpanded or invalid characters", raw)
	}
	return nil
}

// GitHubRepo extracts owner and repository from a github.com URL.
func GitHubRepo(raw string) (owner, repo string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Host, "github.com") {
		return "", "", false
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) < 2 || segs[0] == "" || segs[1] == "" {
		return "", "", false
	}
	return segs[0], strings.TrimSuffix(segs[1], ".git"), true
}
