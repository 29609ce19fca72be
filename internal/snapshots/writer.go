// Package snapshots persists per-season JSON snapshots with a manifest and
// rolling retention, so a run's history survives restarts and can be
// inspected with ordinary tools.
package snapshots

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/virtualtd/league-engine/internal/driver"
)

var errNotConfigured = errors.New("snapshot writer not configured")

// Writer persists season snapshots and the manifest with pruning.
type Writer struct {
	basePath  string
	retention int
}

// NewWriter constructs a writer rooted at basePath keeping the most recent
// retention seasons on disk.
func NewWriter(basePath string, retention int) *Writer {
	if retention <= 0 {
		retention = 20
	}
	return &Writer{
		basePath:  basePath,
		retention: retention,
	}
}

// BasePath exposes the writer root path (primarily for testing).
func (w *Writer) BasePath() string {
	if w == nil {
		return ""
	}
	return w.basePath
}

// WriteSeasonSnapshot writes the snapshot for one completed season and prunes
// snapshots older than the retention window. Writes go through a temp file so
// a crash never leaves a torn snapshot behind.
func (w *Writer) WriteSeasonSnapshot(report driver.SeasonReport) error {
	if w == nil {
		return errNotConfigured
	}

	target := SeasonSnapshotPath(w.basePath, report.Season)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return w.updateManifest(report.Season)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		return err
	}

	return w.updateManifest(report.Season)
}

func (w *Writer) updateManifest(season int) error {
	manifestPath := filepath.Join(w.basePath, "manifest.json")
	m, _ := readManifest(manifestPath, w.retention)

	seasons, err := w.listSeasons()
	if err != nil {
		return err
	}
	if !containsSeason(seasons, season) {
		seasons = append(seasons, season)
		sort.Ints(seasons)
	}
	kept, err := w.pruneOldSnapshots(seasons)
	if err != nil {
		return err
	}

	m.Seasons.Numbers = kept
	m.Seasons.LastRefreshed = time.Now().UTC()
	m.Retention.Seasons = w.retention

	return writeManifest(w.basePath, m)
}

func containsSeason(seasons []int, season int) bool {
	for _, s := range seasons {
		if s == season {
			return true
		}
	}
	return false
}

func (w *Writer) listSeasons() ([]int, error) {
	dir := filepath.Join(w.basePath, "seasons")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []int{}, nil
		}
		return nil, err
	}
	var seasons []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(e.Name(), "season-%d.json", &n); err != nil {
			continue
		}
		seasons = append(seasons, n)
	}
	sort.Ints(seasons)
	return seasons, nil
}

// pruneOldSnapshots keeps only the newest retention seasons.
func (w *Writer) pruneOldSnapshots(seasons []int) ([]int, error) {
	if len(seasons) <= w.retention {
		return seasons, nil
	}
	drop := seasons[:len(seasons)-w.retention]
	for _, s := range drop {
		_ = os.Remove(SeasonSnapshotPath(w.basePath, s))
	}
	return seasons[len(seasons)-w.retention:], nil
}
