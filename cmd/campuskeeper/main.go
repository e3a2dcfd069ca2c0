package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campuskeeper/internal/bot"
	"campuskeeper/internal/config"
	"campuskeeper/internal/fun"
	"campuskeeper/internal/moderation"
	"campuskeeper/internal/reminder"
	"campuskeeper/internal/storage"
	"campuskeeper/internal/verification"
	"campuskeeper/internal/wordlist"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatal("data dir init failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store *storage.Store
	if cfg.DatabaseURL != "" {
		store, err = storage.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("storage init failed", zap.Error(err))
		}
		defer store.Close()
	} else {
		logger.Warn("DATABASE_URL not set, verification and event reminders disabled")
	}

	classifier := moderation.NewClassifier(wordlist.Banned, wordlist.Allowed, wordlist.Spam)

	var tokenStore verification.TokenStore
	if store != nil {
		tokenStore = store
	}
	issuer := verification.NewIssuer(tokenStore, cfg.Verification.BaseURL, time.Duration(cfg.Verification.TokenTTLMinutes)*time.Minute)

	botSvc, err := bot.New(cfg, logger, store, classifier, issuer, fun.NewClient())
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	if store != nil && cfg.Channels.Announce != "" {
		offsets, err := reminder.ParseOffsets(cfg.Reminders.Offsets)
		if err != nil {
			logger.Fatal("bad reminder offsets", zap.Error(err))
		}
		scheduler := reminder.New(store, botSvc.ReminderPoster(), reminder.Config{
			Offsets:   offsets,
			Interval:  time.Duration(cfg.Reminders.PollMinutes) * time.Minute,
			Tolerance: time.Duration(cfg.Reminders.ToleranceMinutes) * time.Minute,
			Horizon:   time.Duration(cfg.Reminders.HorizonDays) * 24 * time.Hour,
		}, logger)
		go scheduler.Run(ctx)
		logger.Info("reminder scheduler started", zap.Strings("offsets", cfg.Reminders.Offsets))
	} else {
		logger.Warn("reminder scheduler disabled", zap.Bool("store", store != nil), zap.String("announce_channel", cfg.Channels.Announce))
	}

	var server *http.Server
	if cfg.Health.Enabled {
		server = &http.Server{Addr: cfg.Health.Addr}
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		go func() {
			logger.Info("health endpoint enabled", zap.String("addr", cfg.Health.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if server != nil {
		_ = server.Shutdown(shutdownCtx)
	}
	botSvc.Close(shutdownCtx)
}
