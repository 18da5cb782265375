package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/config"
	"github.com/aliskhannn/quran-reader-bot/internal/delivery/telegram"
	"github.com/aliskhannn/quran-reader-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/quran-reader-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/quran-reader-bot/internal/infra/quranapi"
	"github.com/aliskhannn/quran-reader-bot/internal/logger"
	"github.com/aliskhannn/quran-reader-bot/internal/repository"
	"github.com/aliskhannn/quran-reader-bot/internal/service"
	"github.com/aliskhannn/quran-reader-bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Démarrer"},
		{Command: "surahs", Description: "Liste des sourates"},
		{Command: "read", Description: "Lire une sourate (utilisation : /read 18)"},
		{Command: "search", Description: "Chercher une sourate"},
		{Command: "continue", Description: "Reprendre la lecture"},
		{Command: "reset", Description: "Effacer la progression"},
		{Command: "help", Description: "Aide"},
	}

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	bot.Debug = cfg.Env == "local"
	lg.Info("authorized on account", zap.String("username", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage.
	dsn, err := cfg.DB.DSN()
	if err != nil {
		lg.Fatal("invalid database config", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:          int32(cfg.DB.MaxConnections),
		MinConns:          int32(cfg.DB.MinConnections),
		MaxConnLifetime:   cfg.DB.MaxConnLifetime,
		HealthCheckPeriod: cfg.DB.HealthCheck,
		ApplicationName:   cfg.QuranAPI.UserAgent,
	})
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		lg.Fatal("failed to migrate database", zap.Error(err))
	}
	if len(applied) > 0 {
		lg.Info("migrations applied", zap.Strings("versions", applied))
	}

	surahRepo, err := repository.NewSurahRepository(cfg.SurahsJSONPath)
	if err != nil {
		lg.Fatal("failed to load surahs", zap.Error(err))
	}
	userRepo := pgrepo.NewUserRepository(pool)

	verseCache := storage.NewVerseCache(cfg.Cache.VerseTTL)
	sessions := storage.NewSessionStorage()

	apiClient := quranapi.NewClient(nil, quranapi.Options{
		BaseURL:       cfg.QuranAPI.BaseURL,
		TranslationID: cfg.QuranAPI.TranslationID,
		RecitationID:  cfg.QuranAPI.RecitationID,
		PerPage:       cfg.QuranAPI.PerPage,
		Timeout:       cfg.QuranAPI.Timeout,
		UserAgent:     cfg.QuranAPI.UserAgent,
	})

	// Initialize services.
	userService := service.NewUserService(userRepo)
	surahService := service.NewSurahService(surahRepo)
	verseLoader := service.NewVerseLoader(apiClient, verseCache, cfg.QuranAPI.AudioBaseURL, lg)
	readingService := service.NewReadingService(surahRepo, verseLoader, sessions, lg)
	playbackService := service.NewPlaybackService(sessions, lg)
	progressService := service.NewProgressService(userRepo, sessions, lg)
	janitor := service.NewJanitor(verseCache, sessions, cfg.Cache.SessionTTL, cfg.Cache.PurgeSchedule, lg)

	handler := telegram.NewHandler(
		bot,
		lg,
		userService,
		surahService,
		readingService,
		playbackService,
		progressService,
		storage.NewPlayerStorage(),
		cfg.MaxConcurrent,
	)
	playbackService.SetSurface(telegram.NewAudioSender(bot, lg))

	go janitor.Start(ctx)

	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("handler stopped", zap.Error(err))
	}

	lg.Info("shutdown signal received")
}
