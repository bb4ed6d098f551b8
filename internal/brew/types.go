// Package brew bridges caskkit to the Homebrew command line. Real installs,
// uninstalls and audits are delegated to `brew`; this package only builds the
// argument lists and interprets the output.
package brew

// Bin is the Homebrew executable invoked by this package.
var Bin = "brew"

// InstallOptions tune `brew install --cask`.
type InstallOptions struct {
	Force        bool
	NoQuarantine bool
}

// AuditOptions tune `brew audit --cask`.
type AuditOptions struct {
	Strict bool
	Online bool
	New    bool
}

// CaskInfo is the subset of `brew info --json=v2 --cask` caskkit reports.
type CaskInfo struct {
	Token     string   `json:"token"`
	FullToken string   `json:"full_token"`
	Tap       string   `json:"tap"`
	Version   string   `json:"version"`
	Installed string   `json:"installed"`
	Outdated  bool     `json:"outdated"`
	URL       string   `json:"url"`
	Homepage  string   `json:"homepage"`
	Desc      string   `json:"desc"`
	Name      []string `json:"name"`
	Caveats   string   `json:"caveats"`
}

// IsInstalled reports whether Homebrew has the cask installed.
func (c *CaskInfo) IsInstalled() bool {
	return c.Installed != ""
}

// brewInfoOutput represents the structure of `brew info --json=v2` output
type brewInfoOutput struct {
	Casks []*CaskInfo `json:"casks"`
}
