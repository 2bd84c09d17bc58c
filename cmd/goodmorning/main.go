package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/goodmorning/internal/app"
	"github.com/sandeepkv93/goodmorning/internal/config"
	"github.com/sandeepkv93/goodmorning/internal/health"
	"github.com/sandeepkv93/goodmorning/internal/logging"
	"github.com/sandeepkv93/goodmorning/internal/notify"
	"github.com/sandeepkv93/goodmorning/internal/scheduler"
	"github.com/sandeepkv93/goodmorning/internal/storage"
	"github.com/sandeepkv93/goodmorning/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "goodmorning failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg := config.RuntimeConfigFromEnv(config.DefaultRuntimeConfig())
	if err := config.LoadDotEnv(filepath.Join(cfg.DataDir, ".env")); err != nil {
		return fmt.Errorf("load data dir .env: %w", err)
	}
	cfg = config.RuntimeConfigFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return err
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Warnw("close storage", "error", err)
		}
	}()

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()
	notifier := notify.NewLocalNotifier(engine, cfg.Notifications, time.Now)

	svc := app.NewService(app.Options{
		KV:         kv,
		Notifier:   notifier,
		Health:     healthSource(cfg, log),
		Logger:     log,
		Now:        time.Now,
		MarkMissed: cfg.MarkMissed,
	})
	if err := svc.Load(ctx); err != nil {
		return err
	}
	defer svc.WaitEnrichment()

	if cfg.NightlySchedule != "" {
		c, err := svc.StartNightly(cfg.NightlySchedule)
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	var desktop update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotifications {
		desktop = update.ExecDesktopNotifier{}
	}
	program := tea.NewProgram(update.NewModel(update.Options{
		Context:        ctx,
		Service:        svc,
		Logger:         log.Named("tui"),
		Now:            time.Now,
		DesktopEnabled: cfg.DesktopNotifications,
		Notifier:       desktop,
	}), tea.WithContext(ctx))

	go notifier.Run(ctx, func(f notify.Fired, ev scheduler.AlarmEvent) {
		program.Send(update.AlarmFiredMsg{Fired: f, Title: ev.Title, Body: ev.Body})
	})

	log.Infow("goodmorning started", "storage", cfg.StorageBackend, "notifications", cfg.Notifications)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func healthSource(cfg config.RuntimeConfig, log *zap.SugaredLogger) health.Source {
	if !cfg.FitbitEnabled() {
		return health.NoopSource{}
	}
	src, err := health.NewFitbitSource(health.FitbitOptions{
		ClientID:     cfg.FitbitClientID,
		ClientSecret: cfg.FitbitClientSecret,
		TokenFile:    cfg.FitbitTokenFile,
		Location:     time.Local,
		Logger:       log.Named("fitbit"),
	})
	if err != nil {
		log.Warnw("fitbit disabled", "error", err)
		return health.NoopSource{}
	}
	return src
}
