// Package cask models Homebrew cask descriptors.
//
// A Descriptor is the data carried by a cask file: where to download the
// payload, how to verify it, how the host installs it, which paths a full
// uninstall removes, and the caveats shown after install. The package parses
// the Ruby cask DSL, renders it back in canonical stanza order, converts to
// and from YAML/JSON, and audits descriptors for the invariants Homebrew
// enforces.
package cask

import "fmt"

// NoCheck is the literal Homebrew uses to opt out of checksum verification.
const NoCheck = ":no_check"

// LatestVersion marks a cask whose URL always points at the newest upstream build.
const LatestVersion = "latest"

// Descriptor is a single cask. Descriptors are authored once per release and
// superseded on every version bump; see Bump.
type Descriptor struct {
	Token       string     `json:"token" yaml:"token"`
	Version     string     `json:"version" yaml:"version"`
	SHA256      Checksum   `json:"sha256" yaml:"sha256"`
	URL         string     `json:"url" yaml:"url"`
	URLVerified string     `json:"url_verified,omitempty" yaml:"url_verified,omitempty"`
	Name        []string   `json:"name,omitempty" yaml:"name,omitempty"`
	Desc        string     `json:"desc,omitempty" yaml:"desc,omitempty"`
	Homepage    string     `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Livecheck   *Livecheck `json:"livecheck,omitempty" yaml:"livecheck,omitempty"`
	DependsOn   DependsOn  `json:"depends_on,omitzero" yaml:"depends_on,omitempty"`
	Artifacts   []Artifact `json:"artifacts" yaml:"artifacts"`
	Zap         Zap        `json:"zap,omitzero" yaml:"zap,omitempty"`
	Caveats     string     `json:"caveats,omitempty" yaml:"caveats,omitempty"`
}

// Checksum is either a hex SHA-256 digest or the :no_check opt-out.
// It encodes as a single scalar in YAML and JSON.
type Checksum struct {
	NoCheck bool
	Hex     string
}

// String returns the checksum the way a cask file spells it.
func (c Checksum) String() string {
	if c.NoCheck {
		return NoCheck
	}
	return c.Hex
}

// Livecheck describes how to detect newer upstream releases.
type Livecheck struct {
	// URL is ":url", ":homepage" or a literal URL.
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Regex    string `json:"regex,omitempty" yaml:"regex,omitempty"`
}

// DependsOn holds the subset of depends_on constraints caskkit understands.
type DependsOn struct {
	MacOS string `json:"macos,omitempty" yaml:"macos,omitempty"`
}

// IsZero reports whether no dependency is declared.
func (d DependsOn) IsZero() bool {
	return d.MacOS == ""
}

// ArtifactKind names an install action variant.
type ArtifactKind string

const (
	// KindApp moves an .app bundle into /Applications.
	KindApp ArtifactKind = "app"
	// KindInstallerManual opens an installer package for the user.
	KindInstallerManual ArtifactKind = "installer_manual"
	// KindPkg runs an installer package non-interactively.
	KindPkg ArtifactKind = "pkg"
)

// WritesOutsidePayload reports whether the variant leaves state outside the
// installed bundle. Installer packages do; app bundles do not.
func (k ArtifactKind) WritesOutsidePayload() bool {
	return k == KindInstallerManual || k == KindPkg
}

// Artifact is one install action stanza.
type Artifact struct {
	Kind ArtifactKind `json:"kind" yaml:"kind"`
	// Source is the bundle or package path inside the download.
	Source string `json:"source" yaml:"source"`
}

// String renders the artifact as its cask stanza.
func (a Artifact) String() string {
	switch a.Kind {
	case KindApp:
		return fmt.Sprintf("app %q", a.Source)
	case KindInstallerManual:
		return fmt.Sprintf("installer manual: %q", a.Source)
	case KindPkg:
		return fmt.Sprintf("pkg %q", a.Source)
	default:
		return fmt.Sprintf("%s %q", a.Kind, a.Source)
	}
}

// Zap lists paths removed by a full uninstall.
type Zap struct {
	Trash []string `json:"trash,omitempty" yaml:"trash,omitempty"`
	Rmdir []string `json:"rmdir,omitempty" yaml:"rmdir,omitempty"`
}

// IsZero reports whether the zap stanza is empty.
func (z Zap) IsZero() bool {
	return len(z.Trash) == 0 && len(z.Rmdir) == 0
}

// Paths returns trash paths followed by rmdir paths.
func (z Zap) Paths() []string {
	out := make([]string, 0, len(z.Trash)+len(z.Rmdir))
	out = append(out, z.Trash...)
	out = append(out, z.Rmdir...)
	return out
}

// InstallAction returns the single install artifact. It returns false when
// the descriptor declares none or more than one.
func (d *Descriptor) InstallAction() (Artifact, bool) {
	if len(d.Artifacts) != 1 {
		return Artifact{}, false
	}
	return d.Artifacts[0], true
}

// DisplayName returns the first name stanza, falling back to the token.
func (d *Descriptor) DisplayName() string {
	if len(d.Name) > 0 && d.Name[0] != "" {
		return d.Name[0]
	}
	return d.Token
}

// Clone returns a deep copy.
func (d *Descriptor) Clone() *Descriptor {
	c := *d
	c.Name = append([]string(nil), d.Name...)
	c.Artifacts = append([]Artifact(nil), d.Artifacts...)
	c.Zap.Trash = append([]string(nil), d.Zap.Trash...)
	c.Zap.Rmdir = append([]string(nil), d.Zap.Rmdir...)
	if d.Livecheck != nil {
		lc := *d.Livecheck
		c.Livecheck = &lc
	}
	return &c
}
