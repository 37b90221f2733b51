package db

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/awhatson15/nutrition-bot/models"
)

// Store хранилище профилей и журналов воды, еды и тренировок
type Store interface {
	InitSchema(ctx context.Context) error
	Close() error

	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error
	ListProfiles(ctx context.Context) ([]*models.Profile, error)

	AppendWater(ctx context.Context, event *models.WaterEvent) (int64, error)
	AppendFood(ctx context.Context, event *models.FoodEvent) (int64, error)
	AppendWorkout(ctx context.Context, event *models.WorkoutEvent) (int64, error)

	SumWaterSince(ctx context.Context, userID int64, since time.Time) (float64, error)
	SumFoodCaloriesSince(ctx context.Context, userID int64, since time.Time) (float64, error)
	SumWorkoutCaloriesSince(ctx context.Context, userID int64, since time.Time) (float64, error)

	// Суммы по дням (ключ YYYY-MM-DD, UTC); дни без записей отсутствуют
	DailyWater(ctx context.Context, userID int64, since time.Time) (map[string]float64, error)
	DailyFoodCalories(ctx context.Context, userID int64, since time.Time) (map[string]float64, error)
	DailyWorkoutCalories(ctx context.Context, userID int64, since time.Time) (map[string]float64, error)
}

// Open открывает хранилище по DATABASE_URL:
// postgres:// и postgresql:// открывают PostgreSQL, иначе это путь к файлу SQLite (допускается префикс sqlite:///).
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (Store, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return NewPostgres(ctx, databaseURL, logger)
	}

	path := strings.TrimPrefix(databaseURL, "sqlite:///")
	path = strings.TrimPrefix(path, "sqlite://")
	return NewDB(path, logger)
}
