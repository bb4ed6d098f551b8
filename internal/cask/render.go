package cask

import (
	"fmt"
	"strings"
)

// Render writes d as a cask file in Homebrew's canonical stanza order.
func Render(d *Descriptor) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cask %s do\n", quote(d.Token))

	if d.Version == LatestVersion {
		sb.WriteString("  version :latest\n")
	} else {
		fmt.Fprintf(&sb, "  version %s\n", quote(d.Version))
	}
	if d.SHA256.NoCheck {
		sb.WriteString("  sha256 :no_check\n")
	} else {
		fmt.Fprintf(&sb, "  sha256 %s\n", quote(d.SHA256.Hex))
	}
	sb.WriteString("\n")

	if d.URLVerified != "" {
		fmt.Fprintf(&sb, "  url %s,\n      verified: %s\n", quote(d.URL), quote(d.URLVerified))
	} else {
		fmt.Fprintf(&sb, "  url %s\n", quote(d.URL))
	}
	for _, n := range d.Name {
		fmt.Fprintf(&sb, "  name %s\n", quote(n))
	}
	if d.Desc != "" {
		fmt.Fprintf(&sb, "  desc %s\n", quote(d.Desc))
	}
	if d.Homepage != "" {
		fmt.Fprintf(&sb, "  homepage %s\n", quote(d.Homepage))
	}

	if lc := d.Livecheck; lc != nil {
		sb.WriteString("\n  livecheck do\n")
		if lc.URL != "" {
			fmt.Fprintf(&sb, "    url %s\n", symbolOrString(lc.URL))
		}
		if lc.Regex != "" {
			fmt.Fprintf(&sb, "    regex(%s)\n", regexLiteral(lc.Regex))
		}
		if lc.Strategy != "" {
			fmt.Fprintf(&sb, "    strategy :%s\n", lc.Strategy)
		}
		sb.WriteString("  end\n")
	}

	if !d.DependsOn.IsZero() {
		fmt.Fprintf(&sb, "\n  depends_on macos: %s\n", symbolOrString(d.DependsOn.MacOS))
	}

	if len(d.Artifacts) > 0 {
		sb.WriteString("\n")
		for _, a := range d.Artifacts {
			fmt.Fprintf(&sb, "  %s\n", a.String())
		}
	}

	if !d.Zap.IsZero() {
		sb.WriteString("\n")
		var parts []string
		if len(d.Zap.Trash) > 0 {
			parts = append(parts, "trash: "+pathList(d.Zap.Trash, "  "))
		}
		if len(d.Zap.Rmdir) > 0 {
			parts = append(parts, "rmdir: "+pathList(d.Zap.Rmdir, "  "))
		}
		fmt.Fprintf(&sb, "  zap %s\n", strings.Join(parts, ",\n      "))
	}

	if d.Caveats != "" {
		renderCaveats(&sb, d.Caveats)
	}

	sb.WriteString("end\n")
	return []byte(sb.String())
}

// renderCaveats writes a <<~ heredoc when the text survives dedenting, and
// a quoted string otherwise.
func renderCaveats(sb *strings.Builder, caveats string) {
	lines := strings.Split(caveats, "\n")
	if !heredocSafe(lines) {
		fmt.Fprintf(sb, "\n  caveats %s\n", quote(caveats))
		return
	}
	term := heredocTerminator(lines)
	fmt.Fprintf(sb, "\n  caveats <<~%s\n", term)
	for _, line := range lines {
		if line == "" {
			sb.WriteString("\n")
			continue
		}
		fmt.Fprintf(sb, "    %s\n", line)
	}
	fmt.Fprintf(sb, "  %s\n", term)
}

// heredocSafe reports whether lines come back unchanged from a <<~ body:
// no trailing whitespace, no carriage returns, and no indentation shared
// by every non-blank line.
func heredocSafe(lines []string) bool {
	indented := true
	for _, l := range lines {
		if strings.ContainsRune(l, '\r') || strings.TrimRight(l, " \t") != l {
			return false
		}
		if l != "" && !strings.HasPrefix(l, " ") && !strings.HasPrefix(l, "\t") {
			indented = false
		}
	}
	return !indented
}

// heredocTerminator picks a terminator no body line could be mistaken for.
func heredocTerminator(lines []string) string {
	used := make(map[string]bool, len(lines))
	for _, l := range lines {
		used[strings.TrimSpace(l)] = true
	}
	term := "EOS"
	for i := 2; used[term]; i++ {
		term = fmt.Sprintf("EOS%d", i)
	}
	return term
}

func pathList(paths []string, indent string) string {
	if len(paths) == 1 {
		return quote(paths[0])
	}
	var sb strings.Builder
	sb.WriteString("[\n")
	for _, p := range paths {
		fmt.Fprintf(&sb, "%s  %s,\n", indent, quote(p))
	}
	sb.WriteString(indent + "]")
	return sb.String()
}

func symbolOrString(v string) string {
	if strings.HasPrefix(v, ":") && !strings.ContainsAny(v, " ") {
		return v
	}
	return quote(v)
}

func regexLiteral(pattern string) string {
	flags := ""
	if strings.HasPrefix(pattern, "(?i)") {
		pattern = strings.TrimPrefix(pattern, "(?i)")
		flags = "i"
	}
	return "/" + strings.ReplaceAll(pattern, "/", `\/`) + "/" + flags
}

// quote produces a double-quoted Ruby literal. Interpolations are kept.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}
