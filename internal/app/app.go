// Package app wires the schematic runtime into a running process: config,
// logging, assets, the tick loop and the HTTP surface.
package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	server "blockstead/server"
	"blockstead/server/internal/debug"
	"blockstead/server/internal/engine"
	servernet "blockstead/server/internal/net"
	"blockstead/server/internal/observability"
	"blockstead/server/internal/sched"
	"blockstead/server/logging"
	loggingSinks "blockstead/server/logging/sinks"
)

// Config carries the process-level options for Run.
type Config struct {
	Logger     *log.Logger
	ConfigPath string
}

// Run boots the server and blocks until the HTTP listener fails or the
// context is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	path := cfg.ConfigPath
	if path == "" {
		path = "config.yaml"
	}
	fileCfg, err := LoadFileConfig(path)
	if err != nil {
		return err
	}
	fileCfg.applyEnv(logger)

	router, err := buildRouter(fileCfg.Log)
	if err != nil {
		return errors.Wrap(err, "failed to construct logging router")
	}
	defer func() {
		if cerr := router.Close(ctx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	collector, err := observability.NewCollector(nil)
	if err != nil {
		return errors.Wrap(err, "failed to register metrics")
	}

	scene := engine.NewScene()
	library := engine.NewLibrary(scene)
	loadAssets(library, fileCfg.Assets)

	rooms := make([]engine.Room, 0, len(fileCfg.Rooms))
	for _, rc := range fileCfg.Rooms {
		rooms = append(rooms, rc.room())
	}

	registry := engine.NewRegistry()
	gateway := servernet.NewSpawnGateway(logger)
	registry.AddListener(gateway)

	clock := sched.SystemClock{}
	manager := server.NewManager(server.Deps{
		Scene:     scene,
		Library:   library,
		Network:   registry,
		Rooms:     engine.NewRoomTable(rooms, fileCfg.Seed),
		Runner:    sched.NewRunner(clock),
		Clock:     clock,
		Publisher: router,
		Telemetry: collector,
		Config: server.Config{
			Dir:             fileCfg.SchematicDir,
			SpawnDelay:      fileCfg.spawnDelay(),
			PatchResetDelay: fileCfg.patchResetDelay(),
		},
	})

	for _, sc := range fileCfg.Spawn {
		pos := mgl64.Vec3{sc.Position[0], sc.Position[1], sc.Position[2]}
		if _, err := manager.SpawnSchematic(sc.Name, pos, quatOrIdentity(sc.Rotation)); err != nil {
			logger.Printf("failed to spawn %q: %v", sc.Name, err)
		}
	}

	if os.Getenv("DEBUG_SCHEMATICS") == "1" {
		debug.DumpInstances(os.Stderr, manager)
	}

	var snapshot atomic.Value
	snapshot.Store(manager.DiagnosticsSnapshot())

	stop := make(chan struct{})
	go runTicks(manager, &snapshot, fileCfg.tickInterval(), stop)
	defer close(stop)

	var accessLog *os.File
	if fileCfg.AccessLog {
		accessLog = os.Stdout
	}
	handler := servernet.NewHandler(servernet.HandlerConfig{
		Logger:    logger,
		AccessLog: accessLog,
		Metrics:   collector.Handler(),
		Gateway:   gateway,
		Diagnostics: func() any {
			return snapshot.Load()
		},
	})

	srv := &http.Server{Addr: fileCfg.Listen, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "server failed")
	}
	return nil
}

// runTicks drives the manager's cooperative scheduler at the configured rate
// and refreshes the diagnostics snapshot HTTP handlers read from.
func runTicks(manager *server.Manager, snapshot *atomic.Value, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			manager.Update()
			snapshot.Store(manager.DiagnosticsSnapshot())
		case <-stop:
			return
		}
	}
}

func buildRouter(cfg LogConfig) (*logging.Router, error) {
	logCfg := logging.DefaultConfig()
	if len(cfg.Sinks) > 0 {
		logCfg.EnabledSinks = cfg.Sinks
	}

	var named []logging.NamedSink
	if logCfg.HasSink("console") {
		named = append(named, logging.NamedSink{
			Name: "console",
			Sink: loggingSinks.NewConsoleSink(os.Stdout, logCfg.Console),
		})
	}
	if logCfg.HasSink("json") {
		path := cfg.JSONPath
		if path == "" {
			path = "events.log"
		}
		sink, err := loggingSinks.NewJSONSink(path)
		if err != nil {
			return nil, err
		}
		named = append(named, logging.NamedSink{Name: "json", Sink: sink})
	}

	return logging.NewRouter(logging.SystemClock{}, logCfg, named)
}

func loadAssets(library *engine.Library, assets AssetConfig) {
	for _, tpl := range assets.Templates {
		library.AddTemplate(engine.Template{Name: tpl.Name, NetIdentity: tpl.NetIdentity})
	}
	for _, name := range assets.Animators {
		library.AddAnimator(name)
	}
	for _, item := range assets.Items {
		library.AddItem(item)
	}
}
