// Package sqlite archives season reports in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/virtualtd/league-engine/internal/driver"
	"github.com/virtualtd/league-engine/internal/market"
	"github.com/virtualtd/league-engine/internal/store/sqlite/migrations"
	"github.com/virtualtd/league-engine/internal/store/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// ErrSeasonNotFound is returned when no archived report exists for a season.
var ErrSeasonNotFound = errors.New("season not found")

// Store provides SQLite-backed persistence for completed seasons.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the archive at the provided path, creating it if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveSeason archives one season report with its transfers, atomically.
// Saving the same season twice replaces the earlier archive.
func (s *Store) SaveSeason(ctx context.Context, report driver.SeasonReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode season %d: %w", report.Season, err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO seasons (season, report, created_at) VALUES (?, ?, ?)",
		report.Season, string(payload), time.Now().UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert season %d: %w", report.Season, err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM transfers WHERE season = ?", report.Season,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear transfers for season %d: %w", report.Season, err)
	}

	for _, tr := range report.Transfers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transfers (season, window, player_id, player_name, from_team, to_team, fee)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tr.Season, tr.WindowName, tr.PlayerID, tr.PlayerName, tr.FromTeamID, tr.ToTeamID, tr.Fee,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert transfer %s: %w", tr.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit season %d: %w", report.Season, err)
	}
	return nil
}

// Season loads one archived season report.
func (s *Store) Season(ctx context.Context, seasonN int) (driver.SeasonReport, error) {
	if s == nil || s.sqlDB == nil {
		return driver.SeasonReport{}, fmt.Errorf("storage is not configured")
	}

	var payload string
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT report FROM seasons WHERE season = ?", seasonN,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return driver.SeasonReport{}, ErrSeasonNotFound
		}
		return driver.SeasonReport{}, fmt.Errorf("query season %d: %w", seasonN, err)
	}

	var report driver.SeasonReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return driver.SeasonReport{}, fmt.Errorf("decode season %d: %w", seasonN, err)
	}
	return report, nil
}

// Seasons returns the archived season numbers in ascending order.
func (s *Store) Seasons(ctx context.Context) ([]int, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, "SELECT season FROM seasons ORDER BY season")
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	var seasons []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		seasons = append(seasons, n)
	}
	return seasons, rows.Err()
}

// PlayerTransfers returns every archived transfer involving the player,
// oldest season first.
func (s *Store) PlayerTransfers(ctx context.Context, playerID string) ([]market.Transfer, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT season, window, player_id, player_name, from_team, to_team, fee
		 FROM transfers WHERE player_id = ? ORDER BY season, id`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query transfers for %s: %w", playerID, err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

// SeasonTransfers returns every archived transfer for one season.
func (s *Store) SeasonTransfers(ctx context.Context, seasonN int) ([]market.Transfer, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT season, window, player_id, player_name, from_team, to_team, fee
		 FROM transfers WHERE season = ? ORDER BY id`, seasonN)
	if err != nil {
		return nil, fmt.Errorf("query transfers for season %d: %w", seasonN, err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

func scanTransfers(rows *sql.Rows) ([]market.Transfer, error) {
	var transfers []market.Transfer
	for rows.Next() {
		var tr market.Transfer
		if err := rows.Scan(&tr.Season, &tr.WindowName, &tr.PlayerID, &tr.PlayerName,
			&tr.FromTeamID, &tr.ToTeamID, &tr.Fee); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, tr)
	}
	return transfers, rows.Err()
}
