// Package matchmaker parses matchmaker command flags and starts the
// matchmaking runtime.
package matchmaker

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/duskhaven/duskhaven/internal/platform/cmd"
	server "github.com/duskhaven/duskhaven/internal/services/matchmaking/app"
	"github.com/duskhaven/duskhaven/internal/services/matchmaking/domain"
)

// Config holds matchmaker command configuration.
type Config struct {
	Port   int    `env:"DUSKHAVEN_MATCHMAKER_PORT" envDefault:"8090"`
	Addr   string `env:"DUSKHAVEN_MATCHMAKER_ADDR"`
	DBPath string `env:"DUSKHAVEN_MATCHMAKER_DB_PATH"`

	Tick time.Duration `env:"DUSKHAVEN_MATCHMAKER_TICK" envDefault:"1s"`

	QueueEnabled      bool `env:"DUSKHAVEN_MATCHMAKER_QUEUE_ENABLED" envDefault:"true"`
	RaidExtendEnabled bool `env:"DUSKHAVEN_MATCHMAKER_RAID_EXTEND" envDefault:"false"`
	Debug             bool `env:"DUSKHAVEN_MATCHMAKER_DEBUG" envDefault:"false"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The matchmaker server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The matchmaker listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the matchmaking SQLite database")
	fs.DurationVar(&cfg.Tick, "tick", cfg.Tick, "Engine update cadence")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Relax group size and role minimums")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the matchmaking service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMatchmaker, func(context.Context) error {
		engineCfg := domain.DefaultConfig()
		engineCfg.QueueEnabled = cfg.QueueEnabled
		engineCfg.RaidExtendEnabled = cfg.RaidExtendEnabled
		engineCfg.Debug = cfg.Debug

		addr := cfg.Addr
		if addr == "" {
			addr = fmt.Sprintf(":%d", cfg.Port)
		}
		srv, err := server.NewWithOptions(server.Options{
			Addr:   addr,
			DBPath: cfg.DBPath,
			Tick:   cfg.Tick,
			Engine: engineCfg,
		})
		if err != nil {
			return err
		}
		return srv.Serve(ctx)
	})
}
