package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/OCAP2/airfight/internal/airfight"
	"github.com/OCAP2/airfight/internal/config"
	"github.com/OCAP2/airfight/internal/dispatcher"
	"github.com/OCAP2/airfight/internal/equip"
	"github.com/OCAP2/airfight/internal/geo"
	"github.com/OCAP2/airfight/internal/influx"
	"github.com/OCAP2/airfight/internal/item"
	"github.com/OCAP2/airfight/internal/logging"
	"github.com/OCAP2/airfight/internal/message"
	"github.com/OCAP2/airfight/internal/monitor"
	intOtel "github.com/OCAP2/airfight/internal/otel"
	"github.com/OCAP2/airfight/internal/queue"
	"github.com/OCAP2/airfight/internal/savegame"
	"github.com/OCAP2/airfight/internal/session"
	"github.com/OCAP2/airfight/internal/storage"
	wsstorage "github.com/OCAP2/airfight/internal/storage/websocket"
	"github.com/OCAP2/airfight/internal/worker"
	"github.com/OCAP2/airfight/pkg/core"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// BuildDate and Version can be set at build time via ldflags
var (
	Version   = "0.0.1"
	BuildDate = "unknown"
)

const binaryName = "airfight"

// app holds the running services of one campaign.
type app struct {
	start      time.Time
	slog       *logging.SlogManager
	logger     *slog.Logger
	zlog       zerolog.Logger
	logFile    *os.File
	otelFile   *os.File
	otel       *intOtel.Provider
	events     *queue.Queue[core.CombatEvent]
	backend    storage.Backend
	influx     *influx.Manager
	engine     *airfight.Engine
	worker     *worker.Manager
	monitor    *monitor.Service
	dispatcher *dispatcher.Dispatcher
	session    *session.Context
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "run" {
		if err := runCLI(args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(configDir())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := a.run(ctx, os.Stdin, os.Stdout); err != nil {
		a.logger.Error("Campaign stopped with error", "error", err)
	}
	a.shutdown()
}

// configDir is where airfight.cfg.json is looked up.
func configDir() string {
	if dir := os.Getenv("AIRFIGHT_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "."
}

func newApp(dir string) (*app, error) {
	a := &app{start: time.Now(), slog: logging.NewSlogManager(), session: session.NewContext()}
	a.slog.Setup(nil, "info", nil)
	a.logger = a.slog.Logger()

	if err := config.Load(dir); err != nil {
		a.logger.Warn("Failed to load config, using defaults!", "error", err)
	}

	if err := a.setupLogging(); err != nil {
		return nil, err
	}
	if err := a.setupCampaign(); err != nil {
		return nil, err
	}
	if err := a.setupStorage(); err != nil {
		return nil, err
	}
	a.setupInflux()
	if err := a.setupServices(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) setupLogging() error {
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}

	path := logging.LogFilePath(logsDir, binaryName, a.start)
	if _, err := os.Stat(path); err == nil {
		_ = os.Rename(path, path+".old")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	a.logFile = f

	otelSettings := config.GetOTelConfig()
	var otelLog io.Writer
	if otelSettings.Enabled {
		otelPath := logging.LogFilePath(logsDir, binaryName+".otel", a.start)
		a.otelFile, err = os.OpenFile(otelPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open OTel log file: %w", err)
		}
		otelLog = a.otelFile
	}
	otelCfg := intOtel.FromSettings(otelSettings, otelLog)
	otelCfg.ServiceVersion = Version
	a.otel, err = intOtel.New(otelCfg)
	if err != nil {
		a.logger.Warn("Failed to initialize OpenTelemetry, continuing without it", "error", err)
		a.otel, _ = intOtel.New(intOtel.Config{})
	}

	a.slog.SetContext(logging.CampaignProvider(a.session.Campaign))
	a.slog.Setup(f, viper.GetString("logLevel"), a.otel.LoggerProvider())
	a.logger = a.slog.Logger()
	a.zlog = zerolog.New(f).With().Timestamp().Str("service", binaryName).Logger()

	a.logger.Info("Logging initialized", "path", path, "version", Version, "build", BuildDate)
	return nil
}

func (a *app) setupCampaign() error {
	catalog, err := item.LoadCatalog("items")
	if err != nil {
		return fmt.Errorf("failed to load item catalog: %w", err)
	}
	snap, err := savegame.LoadScenario("scenario")
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	combat := config.GetCombatConfig()
	loader := &savegame.Loader{Catalog: catalog, MaxProjectiles: combat.MaxProjectiles, Log: a.logger}
	state, err := loader.Load(snap)
	if err != nil {
		return fmt.Errorf("failed to build campaign %s: %w", snap.Name, err)
	}
	a.session.SetCampaign(state.Name, state.Clock)

	var terrain geo.Terrain
	if land := viper.GetStringSlice("terrain.land"); len(land) > 0 {
		mask, err := geo.NewLandMask(land...)
		if err != nil {
			return fmt.Errorf("failed to parse land mask: %w", err)
		}
		terrain = mask
	}

	seed := combat.Seed
	if seed == 0 {
		seed = uint64(a.start.UnixNano())
	}
	msgs := message.NewLogMessenger(a.logger)
	reload := equip.ReloadDelays{
		Aircraft:     combat.ReloadDelay.Aircraft,
		UFO:          combat.ReloadDelay.UFO,
		Base:         combat.ReloadDelay.Base,
		Installation: combat.ReloadDelay.Installation,
	}

	a.events = queue.New[core.CombatEvent]()
	a.engine, err = airfight.New(airfight.Dependencies{
		State:     state,
		Equip:     equip.New(state, msgs, reload, a.logger),
		Rand:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Messenger: msgs,
		Terrain:   terrain,
		Logger:    a.logger,
		Meter:     a.otel.Meter("github.com/OCAP2/airfight/internal/airfight"),
		Events:    a.events,
	})
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	a.logger.Info("Campaign loaded",
		"campaign", state.Name,
		"clock", state.Clock,
		"items", catalog.Len(),
		"aircraft", len(state.PhalanxAircraft()),
		"ufos", len(state.UFOs()),
		"bases", state.Bases.Len(),
		"seed", seed)
	return nil
}

func (a *app) setupInflux() {
	backupPath := filepath.Join(viper.GetString("logsDir"),
		fmt.Sprintf("influx_backup.%s.lp.gz", a.start.Format("20060102_150405")))
	m := influx.NewManager(a.zlog, backupPath)
	if err := m.Connect(); err != nil {
		a.logger.Debug("InfluxDB telemetry disabled", "reason", err)
		return
	}
	a.influx = m
}

func (a *app) setupServices() error {
	var err error
	a.dispatcher, err = dispatcher.New(logging.NewDispatcherLogger(a.zlog))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	deps := worker.Dependencies{
		Events:     a.events,
		Backend:    a.backend,
		Engine:     a.engine,
		LogManager: a.slog,
	}
	monDeps := monitor.Dependencies{
		Engine:     a.engine,
		LogManager: a.slog,
	}
	if a.influx != nil {
		deps.Sink = a.influx
		monDeps.Points = a.influx
	}
	a.worker = worker.NewManager(deps)
	a.worker.RegisterHandlers(a.dispatcher)

	mc := config.GetMonitorConfig()
	monDeps.Worker = a.worker
	monDeps.StatusPath = mc.StatusFile
	monDeps.Interval = mc.Interval
	a.monitor = monitor.NewService(monDeps)
	a.monitor.RegisterHandlers(a.dispatcher)

	a.registerCommands(a.dispatcher)
	return nil
}

// run ticks the campaign and serves console commands until ctx ends or
// the console asks to quit.
func (a *app) run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.worker.Start()
	a.monitor.Start()

	combat := config.GetCombatConfig()
	interval := combat.TickInterval
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		if a.console(ctx, in, out) {
			cancel()
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	a.logger.Info("Campaign running", "tickSeconds", combat.TickSeconds, "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.engine.Tick(combat.TickSeconds)
			a.engine.Do(func() {
				a.session.SetCampaign(a.engine.State().Name, a.engine.State().Clock)
			})
		}
	}
}

func (a *app) shutdown() {
	a.logger.Info("Shutting down")
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.worker != nil {
		a.worker.Stop()
		a.logger.Info("Event pipeline drained",
			"processed", a.worker.Processed(),
			"failed", a.worker.Failed(),
			"uptime", a.session.Uptime().Round(time.Second))
	}
	if a.backend != nil {
		if ws, ok := a.backend.(*wsstorage.Backend); ok {
			if err := ws.EndCampaign(); err != nil {
				a.logger.Warn("Live feed did not acknowledge the end of the campaign", "error", err)
			}
			a.logger.Info("Live feed closed", "dropped", ws.Dropped())
		}
		if err := a.backend.Close(); err != nil {
			a.logger.Error("Failed to close storage backend", "error", err)
		}
		a.uploadExport()
	}
	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.logger.Error("Failed to close InfluxDB", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.slog.Flush(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "failed to flush logs:", err)
	}
	if a.otel != nil {
		_ = a.otel.Shutdown(ctx)
	}
	if a.otelFile != nil {
		_ = a.otelFile.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
