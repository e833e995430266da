// Package server wires the matchmaking runtime: storage, engine, tick loop
// and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/duskhaven/duskhaven/internal/platform/config"
	"github.com/duskhaven/duskhaven/internal/services/matchmaking/domain"
	"github.com/duskhaven/duskhaven/internal/services/matchmaking/memworld"
	matchsqlite "github.com/duskhaven/duskhaven/internal/services/matchmaking/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type serverEnv struct {
	DBPath string `env:"DUSKHAVEN_MATCHMAKER_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "matchmaking.db")
	}
	return cfg
}

// Options configures a matchmaking server. Zero-value collaborators default
// to the in-memory world directory.
type Options struct {
	Addr   string
	DBPath string

	// Tick is the engine update cadence.
	Tick time.Duration

	Engine domain.Config

	World     domain.World
	Transport domain.Transporter
	Notifier  domain.Notifier
}

// Server hosts the matchmaking engine, its tick loop, and the gRPC health
// endpoint.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *matchsqlite.Store
	engine     *domain.Engine
	tick       time.Duration
}

// New creates a configured matchmaking server listening on the provided
// port.
func New(port int) (*Server, error) {
	return NewWithOptions(Options{Addr: fmt.Sprintf(":%d", port), Engine: domain.DefaultConfig()})
}

// NewWithOptions creates a configured matchmaking server.
func NewWithOptions(opts Options) (*Server, error) {
	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", opts.Addr, err)
	}

	dbPath := opts.DBPath
	if strings.TrimSpace(dbPath) == "" {
		dbPath = loadServerEnv().DBPath
	}
	store, err := openMatchmakingStore(dbPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	catalog, rewards, err := loadTables(context.Background(), store, opts.Engine.MaxPlayerLevel)
	if err != nil {
		_ = store.Close()
		_ = listener.Close()
		return nil, err
	}

	world := opts.World
	if world == nil {
		world = memworld.NewDirectory()
	}
	transport := opts.Transport
	if transport == nil {
		transport = memworld.NewTransport()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = memworld.NewRecorder()
	}

	engine, err := domain.NewEngine(domain.Deps{
		World:     world,
		Transport: transport,
		Notifier:  notifier,
		Catalog:   catalog,
		Rewards:   rewards,
	}, opts.Engine)
	if err != nil {
		_ = store.Close()
		_ = listener.Close()
		return nil, fmt.Errorf("build engine: %w", err)
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("duskhaven.matchmaking", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		engine:     engine,
		tick:       tick,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Engine exposes the matchmaking engine for in-process callers.
func (s *Server) Engine() *domain.Engine {
	if s == nil {
		return nil
	}
	return s.engine
}

// Run creates and serves a matchmaking server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the tick loop and the gRPC server until context
// cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("matchmaking server listening at %v", s.listener.Addr())
	tickCtx, stopTicks := context.WithCancel(ctx)
	defer stopTicks()
	go s.runTicks(tickCtx)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// runTicks drives the engine on a fixed cadence, one span per tick.
func (s *Server) runTicks(ctx context.Context) {
	tracer := otel.Tracer("duskhaven.matchmaking")
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			_, span := tracer.Start(ctx, "engine.update")
			s.engine.Update(now.Sub(last))
			span.End()
			last = now
		}
	}
}

// Close releases matchmaking server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close matchmaking store: %v", err)
		}
	}
}

func openMatchmakingStore(path string) (*matchsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := matchsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matchmaking sqlite store: %w", err)
	}
	return store, nil
}
