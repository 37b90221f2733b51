package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/awhatson15/nutrition-bot/telemetry"
)

// MaxPlotDays наибольшее окно графиков в днях
const MaxPlotDays = 90

// Config содержит настройки приложения
type Config struct {
	BotToken    string `env:"BOT_TOKEN"`
	DatabaseURL string `env:"DATABASE_URL,default=sqlite:///users.db"`

	WeatherAPIKey string `env:"OPENWEATHERMAP_API_KEY"`
	WeatherURL    string `env:"OPENWEATHERMAP_URL,default=https://api.openweathermap.org/data/2.5/weather"`

	FoodSearchURL      string `env:"OPENFOODFACTS_SEARCH_URL,default=https://world.openfoodfacts.org/cgi/search.pl"`
	FoodParquetPath    string `env:"FOOD_PARQUET_PATH"`
	FoodSearchPageSize int    `env:"FOOD_SEARCH_PAGE_SIZE,default=10"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,default=10s"`

	DialogTTL       time.Duration `env:"DIALOG_TTL,default=30m"`
	DialogSweepCron string        `env:"DIALOG_SWEEP_CRON,default=*/5 * * * *"`

	ReminderEnabled bool   `env:"REMINDER_ENABLED,default=true"`
	ReminderCron    string `env:"REMINDER_CRON,default=0 18 * * *"`

	PlotDays int `env:"PLOT_DAYS,default=7"`

	LogLevel  string `env:"LOG_LEVEL,default=INFO"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	Telemetry telemetry.Config
}

// Load читает .env (если есть) и переменные окружения.
// При пустом envFile ищется .env в текущей директории, его отсутствие не ошибка.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("не удалось загрузить %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("не удалось загрузить .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения, не зависящие от запускаемой команды
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL не может быть пустым")
	}
	if c.PlotDays < 1 || c.PlotDays > MaxPlotDays {
		return fmt.Errorf("PLOT_DAYS должен быть от 1 до %d", MaxPlotDays)
	}
	if c.FoodSearchPageSize < 1 {
		return errors.New("FOOD_SEARCH_PAGE_SIZE должен быть положительным")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT должен быть положительным")
	}
	if c.DialogTTL <= 0 {
		return errors.New("DIALOG_TTL должен быть положительным")
	}
	return nil
}

// ValidateServe дополнительные проверки для запуска бота
func (c *Config) ValidateServe() error {
	if c.BotToken == "" {
		return errors.New("BOT_TOKEN не указан")
	}
	if c.WeatherAPIKey == "" {
		return errors.New("OPENWEATHERMAP_API_KEY не указан")
	}
	return nil
}
