// Package output provides terminal output utilities for caskkit.
//
// This package includes:
//   - Table rendering for descriptors, audit findings, release history,
//     lifecycle events, zap plans and livecheck results
//   - Progress bars and spinners for long-running operations
//   - Human-readable formatting for sizes and dates
//
// Color is only emitted when stdout is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/caskkit/internal/cask"
	"github.com/blackwell-systems/caskkit/internal/cleanup"
	"github.com/blackwell-systems/caskkit/internal/livecheck"
	"github.com/blackwell-systems/caskkit/internal/store"
)

// ANSI color codes for severity and status display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderDescriptor renders a descriptor as an aligned field listing. url is
// the rendered download URL, or empty when it could not be resolved.
func RenderDescriptor(d *cask.Descriptor, url string) string {
	var sb strings.Builder
	row := func(k, v string) {
		if v == "" {
			return
		}
		sb.WriteString(fmt.Sprintf("%-12s %s\n", k+":", v))
	}

	row("Token", d.Token)
	row("Name", strings.Join(d.Name, ", "))
	row("Version", d.Version)
	row("SHA256", d.SHA256.String())
	row("URL", d.URL)
	row("Resolved", url)
	row("Verified", d.URLVerified)
	row("Homepage", d.Homepage)
	row("Desc", d.Desc)
	if d.Livecheck != nil {
		row("Livecheck", strings.TrimSpace(d.Livecheck.Strategy+" "+d.Livecheck.URL))
	}
	row("macOS", d.DependsOn.MacOS)
	for _, a := range d.Artifacts {
		row("Install", a.String())
	}
	for _, p := range d.Zap.Trash {
		row("Zap trash", p)
	}
	for _, p := range d.Zap.Rmdir {
		row("Zap rmdir", p)
	}
	if d.Caveats != "" {
		row("Caveats", fmt.Sprintf("%d lines (caskkit caveats %s)", strings.Count(d.Caveats, "\n")+1, d.Token))
	}
	return sb.String()
}

// RenderIssues renders audit findings, errors first.
func RenderIssues(issues cask.Issues) string {
	if len(issues) == 0 {
		return colorize(colorGreen, "✓") + " no findings\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-8s %-12s %s\n", "Level", "Field", "Finding"))
	sb.WriteString(strings.Repeat("─", 70))
	sb.WriteString("\n")

	for _, group := range []cask.Issues{issues.Errors(), issues.Warnings()} {
		for _, i := range group {
			level := fmt.Sprintf("%-8s", i.Severity)
			if i.Severity == cask.SeverityError {
				level = colorize(colorRed, level)
			} else {
				level = colorize(colorYellow, level)
			}
			sb.WriteString(fmt.Sprintf("%s %-12s %s\n", level, i.Field, i.Message))
		}
	}

	sb.WriteString(fmt.Sprintf("\n%d errors, %d warnings\n", len(issues.Errors()), len(issues.Warnings())))
	return sb.String()
}

// RenderReleases renders recorded releases in the order given.
func RenderReleases(releases []*store.Release) string {
	if len(releases) == 0 {
		return "No releases recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-16s %-10s %-14s %-10s %s\n",
		"Cask", "Version", "Recorded", "SHA256", "URL"))
	sb.WriteString(strings.Repeat("─", 90))
	sb.WriteString("\n")

	for _, r := range releases {
		sb.WriteString(fmt.Sprintf("%-16s %-10s %-14s %-10s %s\n",
			truncate(r.Token, 16),
			truncate(r.Version, 10),
			formatRelativeTime(r.RecordedAt),
			truncate(r.SHA256, 10),
			r.URL))
	}
	return sb.String()
}

// RenderEvents renders lifecycle events in the order given.
func RenderEvents(events []*store.Event) string {
	if len(events) == 0 {
		return "No events recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-16s %-10s %-10s %s\n",
		"Time", "Cask", "Action", "Version", "Detail"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, e := range events {
		sb.WriteString(fmt.Sprintf("%-20s %-16s %-10s %-10s %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(e.Token, 16),
			e.Action,
			truncate(e.Version, 10),
			e.Detail))
	}
	return sb.String()
}

// RenderZapPlan renders resolved zap targets with their on-disk status.
func RenderZapPlan(targets []cleanup.Target) string {
	if len(targets) == 0 {
		return "No zap paths declared.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-7s %-9s %-8s %s\n", "Action", "Status", "Size", "Path"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	var total int64
	for _, t := range targets {
		status := colorize(colorGray, fmt.Sprintf("%-9s", "missing"))
		size := "-"
		if t.Exists {
			status = colorize(colorYellow, fmt.Sprintf("%-9s", "present"))
			size = formatSize(t.SizeBytes)
			total += t.SizeBytes
		}
		sb.WriteString(fmt.Sprintf("%-7s %s %-8s %s\n", t.Directive, status, size, t.Path))
	}

	existing := len(cleanup.Existing(targets))
	sb.WriteString(fmt.Sprintf("\n%d of %d paths present (%s)\n", existing, len(targets), formatSize(total)))
	return sb.String()
}

// RenderCleanupReport summarizes an executed zap.
func RenderCleanupReport(r *cleanup.Report, dryRun bool) string {
	verb := "Freed"
	if dryRun {
		verb = "Would free"
	}
	return fmt.Sprintf("Trashed %d, removed %d, skipped %d. %s %s.\n",
		len(r.Trashed), len(r.Removed), len(r.Skipped), verb, formatSize(r.FreedBytes))
}

// RenderLivecheck renders livecheck results.
func RenderLivecheck(results []*livecheck.Result) string {
	if len(results) == 0 {
		return "No casks checked.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-16s %-10s %-10s %-16s %s\n",
		"Cask", "Current", "Latest", "Strategy", "Status"))
	sb.WriteString(strings.Repeat("─", 70))
	sb.WriteString("\n")

	for _, r := range results {
		status := colorize(colorGreen, "up to date")
		if r.Outdated {
			status = colorize(colorYellow, "outdated")
		}
		sb.WriteString(fmt.Sprintf("%-16s %-10s %-10s %-16s %s\n",
			truncate(r.Token, 16),
			truncate(r.Current, 10),
			truncate(r.Latest, 10),
			r.Strategy,
			status))
	}
	return sb.String()
}

// formatSize converts bytes to human-readable format.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.0f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.0f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
