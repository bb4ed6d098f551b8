package cask

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Severity classifies an audit finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one audit finding against a descriptor field.
type Issue struct {
	Field    string
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Field, i.Message)
}

// Issues is the result of Validate.
type Issues []Issue

// Errors returns only error-severity findings.
func (is Issues) Errors() Issues {
	var out Issues
	for _, i := range is {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Warnings returns only warning-severity findings.
func (is Issues) Warnings() Issues {
	var out Issues
	for _, i := range is {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// Err returns a *ValidationError when any error-severity finding exists.
func (is Issues) Err() error {
	if errs := is.Errors(); len(errs) > 0 {
		return &ValidationError{Issues: errs}
	}
	return nil
}

// ValidationError wraps the error-severity findings of an audit.
type ValidationError struct {
	Issues Issues
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid cask: " + e.Issues[0].Field + ": " + e.Issues[0].Message
	}
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		msgs[i] = is.Field + ": " + is.Message
	}
	return fmt.Sprintf("invalid cask (%d errors): %s", len(e.Issues), strings.Join(msgs, "; "))
}

var (
	tokenRe  = regexp.MustCompile(`^[a-z0-9][a-z0-9@+.-]*$`)
	hexRe    = regexp.MustCompile(`^[0-9a-f]{64}$`)
	semverRe = regexp.MustCompile(`^\d+(\.\d+){1,3}([-+][0-9A-Za-z.-]+)?$`)
)

// SampleVersion is the version every URL template must render for.
const SampleVersion = "1.0.0"

// KnownStrategies lists livecheck strategies caskkit can execute.
var KnownStrategies = map[string]bool{
	"github_latest":   true,
	"github_releases": true,
	"page_match":      true,
}

// Validate audits d. It never stops at the first problem.
func Validate(d *Descriptor) Issues {
	var is Issues
	add := func(field string, sev Severity, format string, args ...any) {
		is = append(is, Issue{Field: field, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	switch {
	case d.Token == "":
		add("token", SeverityError, "must not be empty")
	case !tokenRe.MatchString(d.Token):
		add("token", SeverityError, "%q must be lowercase letters, digits, and -@+.", d.Token)
	}

	switch {
	case d.Version == "":
		add("version", SeverityError, "must not be empty")
	case d.Version == LatestVersion:
		if !d.SHA256.NoCheck {
			add("sha256", SeverityError, "version :latest requires sha256 :no_check")
		}
	case !semverRe.MatchString(d.Version):
		add("version", SeverityWarning, "%q is not a dotted numeric version", d.Version)
	}

	switch {
	case d.SHA256.NoCheck && d.SHA256.Hex != "":
		add("sha256", SeverityError, "cannot be both :no_check and a digest")
	case d.SHA256.NoCheck:
		if d.Version != LatestVersion {
			add("sha256", SeverityWarning, "checksum verification is skipped for a versioned release")
		}
	case d.SHA256.Hex == "":
		add("sha256", SeverityError, "must be a digest or :no_check")
	case !hexRe.MatchString(d.SHA256.Hex):
		add("sha256", SeverityError, "%q is not a 64-character lowercase hex digest", d.SHA256.Hex)
	}

	validateURL(d, add)

	if len(d.Name) == 0 {
		add("name", SeverityError, "at least one name is required")
	}
	validateDesc(d.Desc, add)
	if d.Homepage == "" {
		add("homepage", SeverityError, "must not be empty")
	} else if err := checkHTTPURL(d.Homepage); err != nil {
		add("homepage", SeverityError, "%v", err)
	}

	if lc := d.Livecheck; lc != nil {
		if lc.Strategy == "" {
			add("livecheck", SeverityError, "strategy is required")
		} else if !KnownStrategies[lc.Strategy] {
			add("livecheck", SeverityWarning, "strategy %q cannot be run by caskkit", lc.Strategy)
		}
		if lc.Strategy == "page_match" && lc.Regex == "" {
			add("livecheck", SeverityError, "page_match requires a regex")
		}
		if lc.Regex != "" {
			if _, err := regexp.Compile(lc.Regex); err != nil {
				add("livecheck", SeverityError, "regex does not compile: %v", err)
			}
		}
		switch {
		case lc.URL == "" || lc.URL == ":url" || lc.URL == ":homepage":
		case strings.HasPrefix(lc.URL, ":"):
			add("livecheck", SeverityError, "unknown url symbol %s", lc.URL)
		default:
			if err := checkHTTPURL(lc.URL); err != nil {
				add("livecheck", SeverityError, "%v", err)
			}
		}
	}

	action, ok := d.InstallAction()
	switch {
	case len(d.Artifacts) == 0:
		add("artifacts", SeverityError, "exactly one install action is required, found none")
	case !ok:
		kinds := make([]string, len(d.Artifacts))
		for i, a := range d.Artifacts {
			kinds[i] = string(a.Kind)
		}
		add("artifacts", SeverityError, "exactly one install action is required, found %s", strings.Join(kinds, ", "))
	default:
		validateArtifact(action, add)
		if action.Kind.WritesOutsidePayload() && len(d.Zap.Trash) == 0 && len(d.Zap.Rmdir) == 0 {
			add("zap", SeverityError, "%s writes outside the payload; zap paths are required", action.Kind)
		}
	}

	for _, p := range d.Zap.Paths() {
		if !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "/") {
			add("zap", SeverityError, "path %q must be absolute or start with ~/", p)
		}
		if p == "~/" || p == "/" || p == "~" {
			add("zap", SeverityError, "path %q would remove a root directory", p)
		}
		if hasDotDot(p) {
			add("zap", SeverityError, "path %q must not contain .. segments", p)
		}
	}

	return is
}

func hasDotDot(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

func validateURL(d *Descriptor, add func(string, Severity, string, ...any)) {
	if d.URL == "" {
		add("url", SeverityError, "must not be empty")
		return
	}
	if d.Version != LatestVersion && !HasVersionPlaceholder(d.URL) {
		add("url", SeverityError, "must contain a version placeholder such as #{version}")
	}
	if _, err := ResolveURLFor(d.URL, SampleVersion); err != nil {
		add("url", SeverityError, "does not render for version %s: %v", SampleVersion, err)
	}
	if d.Version != "" && d.Version != LatestVersion {
		if _, err := d.ResolveURL(); err != nil {
			add("url", SeverityError, "does not render for version %s: %v", d.Version, err)
		}
	}
	if d.URLVerified != "" {
		resolved, err := ExpandTemplate(d.URL, SampleVersion)
		if err == nil {
			u, perr := url.Parse(resolved)
			if perr == nil && !strings.HasPrefix(u.Host+u.Path, d.URLVerified) {
				add("url", SeverityError, "verified %q is not a prefix of the url", d.URLVerified)
			}
		}
	}
}

func validateDesc(desc string, add func(string, Severity, string, ...any)) {
	if desc == "" {
		add("desc", SeverityWarning, "a one-line description is recommended")
		return
	}
	if len(desc) > 80 {
		add("desc", SeverityWarning, "is %d characters; keep it under 80", len(desc))
	}
	lower := strings.ToLower(desc)
	if strings.HasPrefix(lower, "a ") || strings.HasPrefix(lower, "an ") || strings.HasPrefix(lower, "the ") {
		add("desc", SeverityWarning, "should not start with an article")
	}
	if strings.HasSuffix(desc, ".") {
		add("desc", SeverityWarning, "should not end with a period")
	}
	if strings.Contains(desc, "\n") {
		add("desc", SeverityError, "must be a single line")
	}
}

func validateArtifact(a Artifact, add func(string, Severity, string, ...any)) {
	if a.Source == "" {
		add("artifacts", SeverityError, "%s source must not be empty", a.Kind)
		return
	}
	switch a.Kind {
	case KindApp:
		if !strings.HasSuffix(a.Source, ".app") {
			add("artifacts", SeverityError, "app %q must end in .app", a.Source)
		}
	case KindInstallerManual, KindPkg:
		if !strings.HasSuffix(a.Source, ".pkg") && !strings.HasSuffix(a.Source, ".mpkg") {
			add("artifacts", SeverityWarning, "%s %q is not a .pkg", a.Kind, a.Source)
		}
	default:
		add("artifacts", SeverityError, "unknown install action %q", a.Kind)
	}
}
