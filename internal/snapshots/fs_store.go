package snapshots

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/virtualtd/league-engine/internal/driver"
)

// Store defines how snapshots are loaded.
type Store interface {
	LoadSeason(season int) (driver.SeasonReport, error)
}

// FSStore loads snapshots from the filesystem.
type FSStore struct {
	basePath string
}

// NewFSStore constructs an FS-backed snapshot store rooted at basePath.
func NewFSStore(basePath string) *FSStore {
	return &FSStore{basePath: basePath}
}

// LoadSeason reads the snapshot for one season from disk. Files live at
// {basePath}/seasons/season-NNNN.json with a SeasonReport payload.
func (s *FSStore) LoadSeason(season int) (driver.SeasonReport, error) {
	if s == nil {
		return driver.SeasonReport{}, errors.New("snapshot store not configured")
	}
	if season < 1 {
		return driver.SeasonReport{}, errors.New("season must be positive")
	}

	f, err := os.Open(SeasonSnapshotPath(s.basePath, season))
	if err != nil {
		return driver.SeasonReport{}, err
	}
	defer f.Close()

	var report driver.SeasonReport
	if err := json.NewDecoder(f).Decode(&report); err != nil {
		return driver.SeasonReport{}, err
	}
	return report, nil
}
