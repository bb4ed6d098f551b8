package watcher

import "path/filepath"

// matchesTarget reports whether an fsnotify event name refers to target,
// either directly or through a symlink.
func matchesTarget(name, target string) bool {
	if filepath.Clean(name) == target {
		return true
	}
	resolved, err := filepath.EvalSymlinks(name)
	if err != nil {
		return false
	}
	want, err := filepath.EvalSymlinks(target)
	if err != nil {
		return false
	}
	return resolved == want
}
