package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/awhatson15/nutrition-bot/models"
)

// DB представляет экземпляр базы данных SQLite
type DB struct {
	*sql.DB
	log *slog.Logger
}

var _ Store = (*DB)(nil)

// NewDB инициализирует соединение с базой данных
func NewDB(dbPath string, logger *slog.Logger) (*DB, error) {
	// Создаем директорию для БД, если она не существует
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для БД: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть базу данных: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	return &DB{DB: db, log: logger}, nil
}

// InitSchema инициализирует схему базы данных
func (db *DB) InitSchema(ctx context.Context) error {
	statements := []struct {
		name  string
		query string
	}{
		{"profiles", `
		CREATE TABLE IF NOT EXISTS profiles (
			user_id INTEGER PRIMARY KEY,
			weight REAL NOT NULL,
			height REAL NOT NULL,
			age INTEGER NOT NULL,
			activity INTEGER NOT NULL,
			city TEXT NOT NULL,
			sex TEXT NOT NULL,
			calorie_goal REAL NOT NULL,
			updated_at INTEGER NOT NULL
		)`},
		{"water_logs", `
		CREATE TABLE IF NOT EXISTS water_logs (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			amount REAL NOT NULL,
			created_at INTEGER NOT NULL
		)`},
		{"food_logs", `
		CREATE TABLE IF NOT EXISTS food_logs (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			product_name TEXT NOT NULL,
			amount REAL NOT NULL,
			calories REAL NOT NULL,
			created_at INTEGER NOT NULL
		)`},
		{"workout_logs", `
		CREATE TABLE IF NOT EXISTS workout_logs (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			workout_type TEXT NOT NULL,
			duration INTEGER NOT NULL,
			calories_burned REAL NOT NULL,
			water_consumed REAL NOT NULL,
			created_at INTEGER NOT NULL
		)`},
		{"water_logs index", `CREATE INDEX IF NOT EXISTS idx_water_logs_user ON water_logs (user_id, created_at)`},
		{"food_logs index", `CREATE INDEX IF NOT EXISTS idx_food_logs_user ON food_logs (user_id, created_at)`},
		{"workout_logs index", `CREATE INDEX IF NOT EXISTS idx_workout_logs_user ON workout_logs (user_id, created_at)`},
	}

	for _, s := range statements {
		if _, err := db.ExecContext(ctx, s.query); err != nil {
			return fmt.Errorf("не удалось создать %s: %w", s.name, err)
		}
	}

	db.log.Info("Схема базы данных успешно инициализирована", "driver", "sqlite3")
	return nil
}

// GetProfile получает профиль пользователя; nil, если профиля нет
func (db *DB) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	p := &models.Profile{}
	var sex string
	var updatedAt int64

	err := db.QueryRowContext(ctx,
		"SELECT user_id, weight, height, age, activity, city, sex, calorie_goal, updated_at FROM profiles WHERE user_id = ?",
		userID,
	).Scan(&p.UserID, &p.Weight, &p.Height, &p.Age, &p.ActivityMinutes, &p.City, &sex, &p.CalorieGoal, &updatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при получении профиля: %w", err)
	}

	p.Sex = models.Sex(sex)
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return p, nil
}

// UpsertProfile создает или полностью перезаписывает профиль
func (db *DB) UpsertProfile(ctx context.Context, p *models.Profile) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, weight, height, age, activity, city, sex, calorie_goal, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			weight = excluded.weight,
			height = excluded.height,
			age = excluded.age,
			activity = excluded.activity,
			city = excluded.city,
			sex = excluded.sex,
			calorie_goal = excluded.calorie_goal,
			updated_at = excluded.updated_at`,
		p.UserID, p.Weight, p.Height, p.Age, p.ActivityMinutes, p.City, string(p.Sex), p.CalorieGoal, p.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении профиля: %w", err)
	}
	return nil
}

// ListProfiles возвращает все профили
func (db *DB) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT user_id, weight, height, age, activity, city, sex, calorie_goal, updated_at FROM profiles ORDER BY user_id",
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении профилей: %w", err)
	}
	defer rows.Close()

	profiles := []*models.Profile{}
	for rows.Next() {
		p := &models.Profile{}
		var sex string
		var updatedAt int64
		if err := rows.Scan(&p.UserID, &p.Weight, &p.Height, &p.Age, &p.ActivityMinutes, &p.City, &sex, &p.CalorieGoal, &updatedAt); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании профиля: %w", err)
		}
		p.Sex = models.Sex(sex)
		p.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		profiles = append(profiles, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по профилям: %w", err)
	}

	return profiles, nil
}

// AppendWater добавляет запись о воде
func (db *DB) AppendWater(ctx context.Context, e *models.WaterEvent) (int64, error) {
	result, err := db.ExecContext(ctx,
		"INSERT INTO water_logs (user_id, amount, created_at) VALUES (?, ?, ?)",
		e.UserID, e.AmountML, e.CreatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("ошибка при записи воды: %w", err)
	}
	return lastInsertID(result)
}

// AppendFood добавляет запись о еде
func (db *DB) AppendFood(ctx context.Context, e *models.FoodEvent) (int64, error) {
	result, err := db.ExecContext(ctx,
		"INSERT INTO food_logs (user_id, product_name, amount, calories, created_at) VALUES (?, ?, ?, ?, ?)",
		e.UserID, e.ProductName, e.Grams, e.Calories, e.CreatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("ошибка при записи еды: %w", err)
	}
	return lastInsertID(result)
}

// AppendWorkout добавляет запись о тренировке
func (db *DB) AppendWorkout(ctx context.Context, e *models.WorkoutEvent) (int64, error) {
	result, err := db.ExecContext(ctx,
		"INSERT INTO workout_logs (user_id, workout_type, duration, calories_burned, water_consumed, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.UserID, e.WorkoutType, e.DurationMinutes, e.CaloriesBurned, e.WaterML, e.CreatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("ошибка при записи тренировки: %w", err)
	}
	return lastInsertID(result)
}

func lastInsertID(result sql.Result) (int64, error) {
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка при получении ID новой записи: %w", err)
	}
	return id, nil
}

// SumWaterSince суммирует выпитую воду начиная с момента since
func (db *DB) SumWaterSince(ctx context.Context, userID int64, since time.Time) (float64, error) {
	return db.sumSince(ctx, "water_logs", "amount", userID, since)
}

// SumFoodCaloriesSince суммирует полученные калории
func (db *DB) SumFoodCaloriesSince(ctx context.Context, userID int64, since time.Time) (float64, error) {
	return db.sumSince(ctx, "food_logs", "calories", userID, since)
}

// SumWorkoutCaloriesSince суммирует сожженные калории
func (db *DB) SumWorkoutCaloriesSince(ctx context.Context, userID int64, since time.Time) (float64, error) {
	return db.sumSince(ctx, "workout_logs", "calories_burned", userID, since)
}

// DailyWater суммы воды по дням
func (db *DB) DailyWater(ctx context.Context, userID int64, since time.Time) (map[string]float64, error) {
	return db.daily(ctx, "water_logs", "amount", userID, since)
}

// DailyFoodCalories суммы полученных калорий по дням
func (db *DB) DailyFoodCalories(ctx context.Context, userID int64, since time.Time) (map[string]float64, error) {
	return db.daily(ctx, "food_logs", "calories", userID, since)
}

// DailyWorkoutCalories суммы сожженных калорий по дням
func (db *DB) DailyWorkoutCalories(ctx context.Context, userID int64, since time.Time) (map[string]float64, error) {
	return db.daily(ctx, "workout_logs", "calories_burned", userID, since)
}

// table и column передаются только из констант этого пакета
func (db *DB) sumSince(ctx context.Context, table, column string, userID int64, since time.Time) (float64, error) {
	var total float64
	query := fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) FROM %s WHERE user_id = ? AND created_at >= ?", column, table)
	if err := db.QueryRowContext(ctx, query, userID, since.Unix()).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка при подсчете %s: %w", table, err)
	}
	return total, nil
}

func (db *DB) daily(ctx context.Context, table, column string, userID int64, since time.Time) (map[string]float64, error) {
	query := fmt.Sprintf(`
		SELECT date(created_at, 'unixepoch') AS day, SUM(%s)
		FROM %s
		WHERE user_id = ? AND created_at >= ?
		GROUP BY day
		ORDER BY day`, column, table)

	rows, err := db.QueryContext(ctx, query, userID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении %s по дням: %w", table, err)
	}
	defer rows.Close()

	totals := map[string]float64{}
	for rows.Next() {
		var day string
		var total float64
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании %s: %w", table, err)
		}
		totals[day] = total
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по %s: %w", table, err)
	}

	return totals, nil
}
