// Package sqlite provides a SQLite-backed matchmaking storage
// implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sqlitemigrate "github.com/duskhaven/duskhaven/internal/platform/storage/sqlitemigrate"
	"github.com/duskhaven/duskhaven/internal/services/matchmaking/storage"
	"github.com/duskhaven/duskhaven/internal/services/matchmaking/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store reads the matchmaking static tables from SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite matchmaking store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// DB exposes the underlying handle for seeding in tests and tooling.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

// ListContent returns every content row in identifier order.
func (s *Store) ListContent(ctx context.Context) ([]storage.ContentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, category, difficulty, group_size,
		        min_level, max_level, expansion,
		        map_id, entrance_x, entrance_y, entrance_z, entrance_facing,
		        min_gear_score, max_gear_score
		   FROM content
		  ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var out []storage.ContentRecord
	for rows.Next() {
		var record storage.ContentRecord
		if err := rows.Scan(
			&record.ID,
			&record.Name,
			&record.Category,
			&record.Difficulty,
			&record.GroupSize,
			&record.MinLevel,
			&record.MaxLevel,
			&record.Expansion,
			&record.MapID,
			&record.EntranceX,
			&record.EntranceY,
			&record.EntranceZ,
			&record.EntranceFacing,
			&record.MinGearScore,
			&record.MaxGearScore,
		); err != nil {
			return nil, fmt.Errorf("list content: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return out, nil
}

// ContentByID returns one content row, or storage.ErrNotFound.
func (s *Store) ContentByID(ctx context.Context, id string) (storage.ContentRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ContentRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ContentRecord{}, fmt.Errorf("storage is not configured")
	}

	var record storage.ContentRecord
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, category, difficulty, group_size,
		        min_level, max_level, expansion,
		        map_id, entrance_x, entrance_y, entrance_z, entrance_facing,
		        min_gear_score, max_gear_score
		   FROM content
		  WHERE id = ?`,
		id,
	).Scan(
		&record.ID,
		&record.Name,
		&record.Category,
		&record.Difficulty,
		&record.GroupSize,
		&record.MinLevel,
		&record.MaxLevel,
		&record.Expansion,
		&record.MapID,
		&record.EntranceX,
		&record.EntranceY,
		&record.EntranceZ,
		&record.EntranceFacing,
		&record.MinGearScore,
		&record.MaxGearScore,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ContentRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.ContentRecord{}, fmt.Errorf("get content %s: %w", id, err)
	}
	return record, nil
}

// PutContent inserts or replaces a content row.
func (s *Store) PutContent(ctx context.Context, record storage.ContentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO content (
		   id, name, category, difficulty, group_size,
		   min_level, max_level, expansion,
		   map_id, entrance_x, entrance_y, entrance_z, entrance_facing,
		   min_gear_score, max_gear_score
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Name,
		record.Category,
		record.Difficulty,
		record.GroupSize,
		record.MinLevel,
		record.MaxLevel,
		record.Expansion,
		record.MapID,
		record.EntranceX,
		record.EntranceY,
		record.EntranceZ,
		record.EntranceFacing,
		record.MinGearScore,
		record.MaxGearScore,
	)
	if err != nil {
		return fmt.Errorf("put content %s: %w", record.ID, err)
	}
	return nil
}

// PutReward inserts or replaces a reward row.
func (s *Store) PutReward(ctx context.Context, record storage.RewardRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO rewards (
		   content_id, max_level,
		   first_quest_ref, first_money, first_experience,
		   repeat_quest_ref, repeat_money, repeat_experience
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ContentID,
		record.MaxLevel,
		record.FirstQuestRef,
		record.FirstMoney,
		record.FirstExperience,
		record.RepeatQuestRef,
		record.RepeatMoney,
		record.RepeatExperience,
	)
	if err != nil {
		return fmt.Errorf("put reward %s/%d: %w", record.ContentID, record.MaxLevel, err)
	}
	return nil
}

// ListRewards returns every reward row ordered by content identifier and
// ascending level bound, the order the reward table loader relies on.
func (s *Store) ListRewards(ctx context.Context) ([]storage.RewardRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT content_id, max_level,
		        first_quest_ref, first_money, first_experience,
		        repeat_quest_ref, repeat_money, repeat_experience
		   FROM rewards
		  ORDER BY content_id ASC, max_level ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var out []storage.RewardRecord
	for rows.Next() {
		var record storage.RewardRecord
		if err := rows.Scan(
			&record.ContentID,
			&record.MaxLevel,
			&record.FirstQuestRef,
			&record.FirstMoney,
			&record.FirstExperience,
			&record.RepeatQuestRef,
			&record.RepeatMoney,
			&record.RepeatExperience,
		); err != nil {
			return nil, fmt.Errorf("list rewards: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return out, nil
}

var _ storage.Store = (*Store)(nil)
