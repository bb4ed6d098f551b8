// Package releases keeps the version history of cask descriptors. Every
// recorded release archives the rendered cask file next to a row in the
// history database, so a superseded descriptor can be restored later.
package releases

import (
	"github.com/blackwell-systems/caskkit/internal/store"
)

// Manager records and restores descriptor releases.
type Manager struct {
	store      *store.Store
	archiveDir string
}

// New creates a new release Manager archiving into archiveDir.
func New(store *store.Store, archiveDir string) *Manager {
	return &Manager{
		store:      store,
		archiveDir: archiveDir,
	}
}
