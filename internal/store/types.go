package store

import "time"

// Release records one published descriptor version. Releases are never
// updated; a new version supersedes the previous row.
type Release struct {
	ID          int64
	Token       string
	Version     string
	URL         string // rendered download url
	SHA256      string // digest or :no_check
	ArchivePath string // rendered cask file kept for this version
	RecordedAt  time.Time
}

// Action is a lifecycle event kind.
type Action string

const (
	ActionBump      Action = "bump"
	ActionInstall   Action = "install"
	ActionUninstall Action = "uninstall"
	ActionZap       Action = "zap"
	ActionFetch     Action = "fetch"
)

// Event records a lifecycle operation performed through caskkit.
type Event struct {
	ID        string
	Token     string
	Version   string
	Action    Action
	Detail    string
	CreatedAt time.Time
}
