package cask

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSameVersion is returned when a bump would not change the version.
var ErrSameVersion = errors.New("version is unchanged")

// Bump returns a descriptor superseding d at version. d is not modified.
// The new URL must still resolve; the checksum is replaced by sha, which
// may be the :no_check opt-out.
func Bump(d *Descriptor, version string, sha Checksum) (*Descriptor, error) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	if version == "" {
		return nil, fmt.Errorf("new version must not be empty")
	}
	if version == d.Version {
		return nil, fmt.Errorf("bump %s to %s: %w", d.Token, version, ErrSameVersion)
	}
	next := d.Clone()
	next.Version = version
	next.SHA256 = sha
	if version != LatestVersion {
		if _, err := next.ResolveURL(); err != nil {
			return nil, fmt.Errorf("bump %s to %s: %w", d.Token, version, err)
		}
	}
	return next, nil
}

// CompareVersions orders dotted versions numerically, falling back to a
// string comparison for non-numeric segments. It returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	as := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bs := strings.Split(strings.TrimPrefix(b, "v"), ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y string
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}
		xn, xerr := strconv.Atoi(orZero(x))
		yn, yerr := strconv.Atoi(orZero(y))
		switch {
		case xerr == nil && yerr == nil:
			if xn != yn {
				return sign(xn - yn)
			}
		default:
			if c := strings.Compare(x, y); c != 0 {
				return c
			}
		}
	}
	return 0
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
