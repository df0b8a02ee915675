package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"weekly-planner/internal/broadcast"
	"weekly-planner/internal/config"
	"weekly-planner/internal/grid"
	"weekly-planner/internal/logging"
	"weekly-planner/internal/notify"
	"weekly-planner/internal/server"
	"weekly-planner/internal/service"
	"weekly-planner/internal/storage"
	"weekly-planner/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := storage.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}
	slot := storage.NewSQLiteSlot(db, cfg.SlotKey)

	// The sync channel is best effort: without Redis the planner runs
	// as a single instance, exactly like a lone browser tab.
	var channel broadcast.Channel
	if cfg.RedisAddr != "" {
		redisCh, err := broadcast.NewRedisChannel(ctx, cfg.RedisAddr, cfg.SyncChannel, logger)
		if err != nil {
			logger.Warn("sync channel unavailable, running single-instance", zap.Error(err))
		} else {
			channel = redisCh
			defer redisCh.Close()
		}
	}

	st := store.New(slot, channel, logger)
	defer st.Close()

	g := grid.New(cfg.HoursStart, cfg.HoursLength, cfg.SlotHeightPx)
	planner := service.NewPlannerService(st, g, cfg.WeekStart)
	reminder := service.NewReminderService(st)

	var notifier notify.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn("telegram notifier unavailable, digests go to the log", zap.Error(err))
		} else {
			notifier = tg
		}
	}

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.DigestInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.DigestInterval, func() {
			digest, ok := reminder.Digest(time.Now())
			if !ok {
				return
			}
			if notifier == nil {
				logger.Info("reminder digest", zap.String("digest", digest))
				return
			}
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := notifier.Send(jobCtx, digest); err != nil {
				logger.Warn("send digest", zap.Error(err))
			}
		}); err != nil {
			logger.Fatal("schedule digest", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := server.New(st, planner, logger)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("weekly planner started", zap.String("addr", cfg.HTTPAddr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
