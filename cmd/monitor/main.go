package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/oofcrazy123/futbin-price-monitor/internal/alert"
	"github.com/oofcrazy123/futbin-price-monitor/internal/config"
	"github.com/oofcrazy123/futbin-price-monitor/internal/httpapi"
	"github.com/oofcrazy123/futbin-price-monitor/internal/httpapi/middleware"
	"github.com/oofcrazy123/futbin-price-monitor/internal/logging"
	"github.com/oofcrazy123/futbin-price-monitor/internal/notify"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo/memory"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo/sqlite"
	"github.com/oofcrazy123/futbin-price-monitor/internal/scheduler"
	"github.com/oofcrazy123/futbin-price-monitor/internal/scraper"
)

// stores groups the three ports one backend satisfies.
type stores struct {
	cards   repo.CardStore
	history repo.HistoryStore
	state   repo.AlertStateStore
}

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_open_error", zap.Error(err))
	}
	defer closeStore()

	engine := alert.NewEngine(alert.Config{Cooldown: cfg.AlertCooldown})
	if records, err := st.state.Load(ctx); err != nil {
		logger.Warn("alert_state_load_error", zap.Error(err))
	} else if len(records) > 0 {
		engine.Restore(records)
		logger.Info("alert_state_loaded", zap.Int("records", len(records)))
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		logger.Fatal("notifier_error", zap.Error(err))
	}

	client := scraper.NewClient(scraper.DefaultBaseURL, cfg.ScrapeTimeout, cfg.ScrapeRPS, logger)
	checker := &scraper.RetryChecker{Inner: client, Attempts: 3, Backoff: 2 * time.Second}

	if !cfg.SkipScraping {
		if _, err := scheduler.SeedCatalog(ctx, logger, st.cards, client, cfg.MaxPages); err != nil {
			logger.Warn("seed_error", zap.Error(err))
		}
	}

	count, _ := st.cards.Count(ctx)
	startupMsg := fmt.Sprintf(
		"Monitoring %d cards.\nCycle every %s, alert cooldown %s.",
		count, cfg.CycleInterval, cfg.AlertCooldown,
	)
	if err := notifier.SendMessage(ctx, "Extinct card monitor started", startupMsg); err != nil {
		logger.Warn("startup_notice_error", zap.Error(err))
	}

	monitor := scheduler.NewMonitor(logger, st.cards, st.history, st.state, checker, engine, notifier,
		scheduler.MonitorConfig{
			Interval:      cfg.CycleInterval,
			CardsPerCycle: cfg.CardsPerCycle,
			SendSummaries: cfg.SendSummaries,
		})
	go monitor.Run(ctx)

	api := httpapi.NewServer(logger, st.cards, st.history, engine, checker, monitor)
	api.Keys = middleware.Keys{Viewer: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	api.PublicRPM = cfg.PublicRPM
	api.PublicBurst = cfg.PublicBurst

	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	logger.Info("dashboard_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen_error", zap.Error(err))
	}

	// Final snapshot so a restart keeps cooldowns.
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.state.Save(saveCtx, engine.Snapshot()); err != nil {
		logger.Warn("alert_state_save_error", zap.Error(err))
	}
	logger.Info("shutdown_complete")
}

func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (stores, func(), error) {
	if cfg.DatabasePath == "" {
		m := memory.New()
		logger.Info("store_memory")
		return stores{cards: m, history: m, state: m}, func() {}, nil
	}
	db, err := sqlite.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return stores{}, nil, err
	}
	logger.Info("store_sqlite", zap.String("path", cfg.DatabasePath))
	return stores{cards: db, history: db, state: db}, func() { _ = db.Close() }, nil
}

func buildNotifier(cfg config.Config) (notify.Notifier, error) {
	tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	multi := notify.Multi{tg}
	if d := notify.NewDiscord(cfg.DiscordWebhookURL); d != nil {
		multi = append(multi, d)
	}
	return multi, nil
}
