package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/pathgen/internal/battleground"
	"github.com/udisondev/pathgen/internal/chat"
	"github.com/udisondev/pathgen/internal/config"
	"github.com/udisondev/pathgen/internal/data"
	"github.com/udisondev/pathgen/internal/db"
	"github.com/udisondev/pathgen/internal/logging"
	"github.com/udisondev/pathgen/internal/monitor"
	"github.com/udisondev/pathgen/internal/movement"
	"github.com/udisondev/pathgen/internal/script"
	"github.com/udisondev/pathgen/internal/spawn"
	"github.com/udisondev/pathgen/internal/taxi"
	"github.com/udisondev/pathgen/internal/unit"
	"github.com/udisondev/pathgen/internal/waypoint"
	"github.com/udisondev/pathgen/internal/world"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default $"+config.EnvPath+" or "+config.DefaultPath+")")
	seedDB := flag.Bool("seed-db", false, "import YAML data files into the database and exit")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, config.Path(*cfgPath), *seedDB); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// sources bundles where the world's data comes from.
type sources struct {
	paths  waypoint.Source
	taxi   taxi.Source
	spawns spawn.SpawnRepository
}

func run(ctx context.Context, cfgPath string, seedDB bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logCloser := logging.Setup(cfg.LogLevel, cfg.Log)
	defer logCloser.Close()
	movement.EnableDebugLogging(cfg.World.DebugMotion || logging.ParseLevel(cfg.LogLevel) == slog.LevelDebug)

	slog.Info("path server starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"data_source", cfg.Data.Source)

	if seedDB {
		return seedDatabase(ctx, cfg)
	}

	src := sources{
		paths:  data.WaypointDir(cfg.Data.WaypointDir),
		taxi:   data.TaxiFile(cfg.Data.TaxiFile),
		spawns: data.SpawnFile(cfg.Data.SpawnFile),
	}
	if cfg.Data.Source == config.SourceDatabase {
		database, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close()
		src = sources{paths: database.Waypoints(), taxi: database.Taxi(), spawns: database.Spawns()}
	}

	// Data
	store := waypoint.NewStore(src.paths)
	if err := store.Reload(ctx); err != nil {
		return fmt.Errorf("loading waypoint paths: %w", err)
	}

	dispatcher := script.NewDispatcher(cfg.Data.ScriptDir)
	if err := dispatcher.Reload(ctx); err != nil {
		slog.Warn("event scripts not loaded, only Go handlers will run", "error", err)
	}

	// World
	w := world.NewManager(cfg.World.TickInterval, cfg.World.Maps...)
	w.CreateMap(battleground.NagrandArenaMapID)
	slog.Info("world initialized", "maps", w.MapIDs())

	taxiSvc := taxi.NewService(src.taxi, w, dispatcher)
	if err := taxiSvc.Reload(ctx); err != nil {
		return fmt.Errorf("loading taxi tables: %w", err)
	}

	arena := battleground.NewNagrandArena()
	if err := arena.SetupBattleground(); err != nil {
		return fmt.Errorf("setting up %s: %w", arena.Name(), err)
	}

	// Monitor + chat
	var (
		hub      *monitor.Hub
		observer unit.Observer
	)
	spawns := spawn.NewManager(src.spawns, w, store, dispatcher)
	respawnMgr := spawn.NewRespawnTaskManager(spawns, w)
	table := chat.NewTable(chat.Deps{
		World:   w,
		Taxi:    taxiSvc,
		Spawns:  spawns,
		Respawn: respawnMgr,
		Arena:   arena,
	})
	if cfg.Monitor.Enabled {
		locale := chat.Locale(cfg.Monitor.Locale)
		hub = monitor.NewHub(monitor.DefaultQueueSize, func(ctx context.Context, out io.Writer, line string) error {
			return table.Execute(ctx, chat.NewHandler(out, locale, cfg.Monitor.PlayerGUID), line)
		})
		observer = hub.Publish
		spawns.SetObserver(observer)
	}

	// Spawns
	if err := spawns.LoadSpawns(ctx); err != nil {
		return fmt.Errorf("loading spawns: %w", err)
	}
	if err := spawns.SpawnAll(); err != nil {
		slog.Warn("some creatures were not spawned", "error", err)
	}
	if set, err := data.LoadSpawnFile(cfg.Data.SpawnFile); err == nil {
		n := spawn.NewPlayerSpawner(w, observer).SpawnAll(set.Players)
		slog.Info("players spawned", "count", n)
	} else {
		slog.Warn("no test players spawned", "file", cfg.Data.SpawnFile, "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := w.Start(gctx); err != nil {
			return fmt.Errorf("world: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := respawnMgr.Start(gctx); err != nil {
			return fmt.Errorf("respawn task manager: %w", err)
		}
		return nil
	})

	if cfg.Data.Watch {
		if cfg.Data.Source == config.SourceYAML {
			g.Go(func() error {
				if err := store.Watch(gctx, cfg.Data.WaypointDir); err != nil {
					return fmt.Errorf("waypoint watcher: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				if err := taxiSvc.Watch(gctx, cfg.Data.TaxiFile); err != nil {
					return fmt.Errorf("taxi watcher: %w", err)
				}
				return nil
			})
		}
		if cfg.Data.ScriptDir != "" {
			g.Go(func() error {
				if err := dispatcher.Watch(gctx); err != nil {
					// нет каталога скриптов: сервер работает без горячей перезагрузки
					slog.Warn("script watcher stopped", "error", err)
				}
				return nil
			})
		}
	}

	if hub != nil {
		g.Go(func() error {
			if err := monitor.Run(gctx, cfg.Monitor.Addr(), hub); err != nil {
				return fmt.Errorf("monitor: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}

	fired, failed := dispatcher.Stats()
	slog.Info("path server stopped",
		"ticks", w.TickCount(),
		"events_fired", fired,
		"events_failed", failed)
	return nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*db.DB, error) {
	database, err := db.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.DSN()); err != nil {
		database.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	version, err := db.SchemaVersion(ctx, cfg.DSN())
	if err != nil {
		database.Close()
		return nil, err
	}
	slog.Info("database migrations applied", "version", version)
	return database, nil
}

// seedDatabase copies the YAML data files into the database.
func seedDatabase(ctx context.Context, cfg config.Server) error {
	database, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	paths, err := data.LoadWaypointDir(cfg.Data.WaypointDir)
	if err != nil {
		return fmt.Errorf("loading waypoint dir: %w", err)
	}
	if err := database.Waypoints().SavePaths(ctx, paths); err != nil {
		return fmt.Errorf("saving waypoint paths: %w", err)
	}

	stations, legs, err := data.TaxiFile(cfg.Data.TaxiFile).LoadTaxi(ctx)
	if err != nil {
		return fmt.Errorf("loading taxi file: %w", err)
	}
	if err := database.Taxi().SaveTaxi(ctx, stations, legs); err != nil {
		return fmt.Errorf("saving taxi tables: %w", err)
	}

	set, err := data.LoadSpawnFile(cfg.Data.SpawnFile)
	if err != nil {
		return fmt.Errorf("loading spawn file: %w", err)
	}
	for _, s := range set.Creatures {
		if err := database.Spawns().Save(ctx, s); err != nil {
			return fmt.Errorf("saving spawn %d: %w", s.ID, err)
		}
	}

	slog.Info("database seeded",
		"paths", len(paths),
		"stations", len(stations),
		"legs", len(legs),
		"spawns", len(set.Creatures))
	return nil
}
