package snapshots

import (
	"fmt"
	"path/filepath"
)

// SeasonSnapshotPath builds the path to a season snapshot.
func SeasonSnapshotPath(basePath string, season int) string {
	return filepath.Join(basePath, "seasons", fmt.Sprintf("season-%04d.json", season))
}
