// Package seed imports matchmaking content and reward rows from a JSON
// fixture file into the service database.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/duskhaven/duskhaven/internal/platform/config"
	"github.com/duskhaven/duskhaven/internal/services/matchmaking/storage"
	matchsqlite "github.com/duskhaven/duskhaven/internal/services/matchmaking/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath string `env:"DUSKHAVEN_MATCHMAKER_DB_PATH"`
	File   string
	Force  bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the matchmaking SQLite database")
	fs.StringVar(&cfg.File, "file", "", "JSON file with content and reward rows")
	fs.BoolVar(&cfg.Force, "force", false, "Replace content rows that already exist")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Tables is the fixture document layout.
type Tables struct {
	Content []storage.ContentRecord `json:"content"`
	Rewards []storage.RewardRecord  `json:"rewards"`
}

// Run imports the fixture file into the database. Existing content rows
// are kept unless force is set; reward rows are always replaced.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if cfg.File == "" {
		return fmt.Errorf("a fixture file is required")
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("a database path is required")
	}

	raw, err := os.ReadFile(cfg.File)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}
	var tables Tables
	if err := json.Unmarshal(raw, &tables); err != nil {
		return fmt.Errorf("decode fixture: %w", err)
	}

	store, err := matchsqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	imported, kept := 0, 0
	for _, record := range tables.Content {
		if !cfg.Force {
			_, err := store.ContentByID(ctx, record.ID)
			if err == nil {
				kept++
				continue
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
		}
		if err := store.PutContent(ctx, record); err != nil {
			return err
		}
		imported++
	}
	for _, record := range tables.Rewards {
		if err := store.PutReward(ctx, record); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "content: %d imported, %d kept; rewards: %d imported\n",
		imported, kept, len(tables.Rewards))
	return nil
}
