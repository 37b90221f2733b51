package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/awhatson15/nutrition-bot/bot"
	"github.com/awhatson15/nutrition-bot/config"
	"github.com/awhatson15/nutrition-bot/db"
	"github.com/awhatson15/nutrition-bot/dialog"
	"github.com/awhatson15/nutrition-bot/food"
	"github.com/awhatson15/nutrition-bot/handlers"
	"github.com/awhatson15/nutrition-bot/telemetry"
	"github.com/awhatson15/nutrition-bot/weather"
)

const shutdownTimeout = 5 * time.Second

func runServe(cmd *cobra.Command, envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("Запуск nutrition-bot", "version", version)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("Ошибка при остановке телеметрии", "error", err)
		}
	}()

	store, err := db.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("ошибка при инициализации базы данных: %w", err)
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("ошибка при создании схемы базы данных: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	weatherClient := weather.NewClient(cfg.WeatherURL, cfg.WeatherAPIKey, httpClient, logger)

	searcher, closeSearcher, err := newFoodSearcher(ctx, cfg, httpClient, logger)
	if err != nil {
		return err
	}
	defer closeSearcher()

	instruments, err := telemetry.NewGlobalInstruments()
	if err != nil {
		return fmt.Errorf("ошибка при создании метрик: %w", err)
	}

	handler := handlers.New(handlers.Deps{
		Store:       store,
		Weather:     weatherClient,
		Searcher:    searcher,
		Dialogs:     dialog.NewStore(),
		Instruments: instruments,
		Tracer:      telemetry.Tracer(),
		PlotDays:    cfg.PlotDays,
		Logger:      logger,
	})

	telegramBot, err := bot.NewBot(cfg.BotToken, handler, store, logger)
	if err != nil {
		return err
	}

	scheduler, err := telegramBot.NewScheduler(ctx, bot.Schedule{
		DialogTTL:       cfg.DialogTTL,
		DialogSweepCron: cfg.DialogSweepCron,
		ReminderEnabled: cfg.ReminderEnabled,
		ReminderCron:    cfg.ReminderCron,
	})
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	logger.Info("Бот успешно запущен")
	err = telegramBot.Start(ctx)
	logger.Info("Бот остановлен")
	return err
}

// newFoodSearcher выбирает локальный Parquet-дамп, если он указан, иначе API OpenFoodFacts
func newFoodSearcher(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (food.Searcher, func(), error) {
	if cfg.FoodParquetPath == "" {
		client := food.NewOpenFoodFactsClient(cfg.FoodSearchURL, cfg.FoodSearchPageSize, httpClient, logger)
		return client, func() {}, nil
	}

	searcher, err := food.NewParquetSearcher(cfg.FoodParquetPath, cfg.FoodSearchPageSize, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := searcher.TestConnection(ctx); err != nil {
		_ = searcher.Close()
		return nil, nil, err
	}
	logger.Info("Поиск продуктов по локальному дампу", "path", cfg.FoodParquetPath)
	return searcher, func() { _ = searcher.Close() }, nil
}

func runMigrate(cmd *cobra.Command, envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	store, err := db.Open(cmd.Context(), cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("ошибка при инициализации базы данных: %w", err)
	}
	defer store.Close()

	if err := store.InitSchema(cmd.Context()); err != nil {
		return fmt.Errorf("ошибка при создании схемы базы данных: %w", err)
	}

	logger.Info("Схема базы данных создана")
	return nil
}
