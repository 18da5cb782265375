package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-reader-bot/internal/config"
	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-reader-bot/internal/infra/quranapi"
	"github.com/aliskhannn/quran-reader-bot/internal/infra/sqlite"
	"github.com/aliskhannn/quran-reader-bot/internal/logger"
	"github.com/aliskhannn/quran-reader-bot/internal/repository"
	"github.com/aliskhannn/quran-reader-bot/internal/service"
	"github.com/aliskhannn/quran-reader-bot/internal/storage"
	"github.com/aliskhannn/quran-reader-bot/internal/tui"
)

func main() {
	cfg, err := config.LoadReader()
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Reader.LogPath), 0o755); err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(cfg.Env, cfg.LogLevel, cfg.Reader.LogPath)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage.
	store, err := sqlite.Open(cfg.Reader.DBPath)
	if err != nil {
		lg.Fatal("failed to open local database", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	var user *entities.User
	if cfg.Reader.UserName != "" {
		user, err = store.FindOrCreateByUsername(ctx, cfg.Reader.UserName)
		if err != nil {
			lg.Fatal("failed to load profile", zap.String("user_name", cfg.Reader.UserName), zap.Error(err))
		}
	}

	surahRepo, err := repository.NewSurahRepository(cfg.SurahsJSONPath)
	if err != nil {
		lg.Fatal("failed to load surahs", zap.Error(err))
	}

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
	verseLoader := service.NewVerseLoader(apiClient, verseCache, cfg.QuranAPI.AudioBaseURL, lg)
	playbackService := service.NewPlaybackService(sessions, lg)
	// the single reading session lives as long as the reader
	janitor := service.NewJanitor(verseCache, sessions, 0, cfg.Cache.PurgeSchedule, lg)

	player := tui.NewExternalPlayer(cfg.Reader.PlayerCommand, lg)
	playbackService.SetSurface(player)

	go janitor.Start(ctx)

	err = tui.Run(ctx, tui.Deps{
		Surahs:   service.NewSurahService(surahRepo),
		Reading:  service.NewReadingService(surahRepo, verseLoader, sessions, lg),
		Playback: playbackService,
		Progress: service.NewProgressService(store, sessions, lg),
		Users:    service.NewUserService(store),
		User:     user,
		Logger:   lg,
	}, player)
	if err != nil {
		lg.Error("reader stopped", zap.Error(err))
	}

	lg.Info("reader closed")
}
