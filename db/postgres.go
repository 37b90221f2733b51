package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/awhatson15/nutrition-bot/models"
)

// Postgres хранилище на PostgreSQL
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

var _ Store = (*Postgres)(nil)

// NewPostgres подключается к PostgreSQL по строке подключения
func NewPostgres(ctx context.Context, dbURL string, logger *slog.Logger) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать строку подключения: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("не удалось проверить подключение к базе данных: %w", err)
	}

	logger.Info("Подключение к PostgreSQL установлено")
	return &Postgres{pool: pool, log: logger}, nil
}

// Close закрывает пул соединений
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// InitSchema создает таблицы, если их нет
func (p *Postgres) InitSchema(ctx context.Context) error {
	statements := []struct {
		name  string
		query string
	}{
		{"profiles", `
		CREATE TABLE IF NOT EXISTS profiles (
			user_id BIGINT PRIMARY KEY,
			weight DOUBLE PRECISION NOT NULL,
			height DOUBLE PRECISION NOT NULL,
			age INTEGER NOT NULL,
			activity INTEGER NOT NULL,
			city TEXT NOT NULL,
			sex TEXT NOT NULL,
			calorie_goal DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`},
		{"water_logs", `
		CREATE TABLE IF NOT EXISTS water_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`},
		{"food_logs", `
		CREATE TABLE IF NOT EXISTS food_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			product_name TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			calories DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`},
		{"workout_logs", `
		CREATE TABLE IF NOT EXISTS workout_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			workout_type TEXT NOT NULL,
			duration INTEGER NOT NULL,
			calories_burned DOUBLE PRECISION NOT NULL,
			water_consumed DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`},
		{"water_logs index", `CREATE INDEX IF NOT EXISTS idx_water_logs_user ON water_logs (user_id, created_at)`},
		{"food_logs index", `CREATE INDEX IF NOT EXISTS idx_food_logs_user ON food_logs (user_id, created_at)`},
		{"workout_logs index", `CREATE INDEX IF NOT EXISTS idx_workout_logs_user ON workout_logs (user_id, created_at)`},
	}

	for _, s := range statements {
		if _, err := p.pool.Exec(ctx, s.query); err != nil {
			return fmt.Errorf("не удалось создать %s: %w", s.name, err)
		}
	}

	p.log.Info("Схема базы данных успешно инициализирована", "driver", "pgx")
	return nil
}

const profileColumns = "user_id, weight, height, age, activity, city, sex, calorie_goal, updated_at"

func scanProfile(row pgx.Row) (*models.Profile, error) {
	pr := &models.Profile{}
	var sex string
	if err := row.Scan(&pr.UserID, &pr.Weight, &pr.Height, &pr.Age, &pr.ActivityMinutes, &pr.City, &sex, &pr.CalorieGoal, &pr.UpdatedAt); err != nil {
		return nil, err
	}
	pr.Sex = models.Sex(sex)
	pr.UpdatedAt = pr.UpdatedAt.UTC()
	return pr, nil
}

// GetProfile получает профиль пользователя; nil, если профиля нет
func (p *Postgres) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	row := p.pool.QueryRow(ctx, "SELECT "+profileColumns+" FROM profiles WHERE user_id = $1", userID)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при получении профиля: %w", err)
	}
	return profile, nil
}

// UpsertProfile создает или полностью перезаписывает профиль
func (p *Postgres) UpsertProfile(ctx context.Context, pr *models.Profile) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			weight = EXCLUDED.weight,
			height = EXCLUDED.height,
			age = EXCLUDED.age,
			activity = EXCLUDED.activity,
			city = EXCLUDED.city,
			sex = EXCLUDED.sex,
			calorie_goal = EXCLUDED.calorie_goal,
			updated_at = EXCLUDED.updated_at`,
		pr.UserID, pr.Weight, pr.Height, pr.Age, pr.ActivityMinutes, pr.City, string(pr.Sex), pr.CalorieGoal, pr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении профиля: %w", err)
	}
	return nil
}

// ListProfiles возвращает все профили
func (p *Postgres) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+profileColumns+" FROM profiles ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении профилей: %w", err)
	}
	defer rows.Close()

	profiles := []*models.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании профиля: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по профилям: %w", err)
	}
	return profiles, nil
}

// AppendWater добавляет запись о воде
func (p *Postgres) AppendWater(ctx context.Context, e *models.WaterEvent) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		"INSERT INTO water_logs (user_id, amount, created_at) VALUES ($1, $2, $3) RETURNING id",
		e.UserID, e.AmountML, e.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка при записи воды: %w", err)
	}
	return id, nil
}

// AppendFood добавляет запись о еде
func (p *Postgres) AppendFood(ctx context.Context, e *models.FoodEvent) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		"INSERT INTO food_logs (user_id, product_name, amount, calories, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		e.UserID, e.ProductName, e.Grams, e.Calories, e.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка при записи еды: %w", err)
	}
	return id, nil
}

// AppendWorkout добавляет запись о тренировке
func (p *Postgres) AppendWorkout(ctx context.Context, e *models.WorkoutEvent) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		"INSERT INTO workout_logs (user_id, workout_type, duration, calories_burned, water_consumed, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
		e.UserID, e.WorkoutType, e.DurationMinutes, e.CaloriesBurned, e.WaterML, e.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка при записи тренировки: %w", err)
	}
	return id, nil
}

// SumWaterSince суммирует выпитую воду начиная с момента since
func (p *Postgres) SumWaterSince(ctx context.Context, userID int64, since time.Time) (float64, error) {
	return p.sumSince(ctx, "water_logs", "amount", userID, since)
}

// SumFoodCaloriesSince суммирует полученные калории
func (p *Postgres) SumFoodCaloriesSince(ctx context.Context, userID int64, since time.Time) (float64, error) {
	return p.sumSince(ctx, "food_logs", "calories", userID, since)
}

// SumWorkoutCaloriesSince суммирует сожженные калории
func (p *Postgres) SumWorkoutCaloriesSince(ctx context.Context, userID int64, since time.Time) (float64, error) {
	return p.sumSince(ctx, "workout_logs", "calories_burned", userID, since)
}

// DailyWater суммы воды по дням
func (p *Postgres) DailyWater(ctx context.Context, userID int64, since time.Time) (map[string]float64, error) {
	return p.daily(ctx, "water_logs", "amount", userID, since)
}

// DailyFoodCalories суммы полученных калорий по дням
func (p *Postgres) DailyFoodCalories(ctx context.Context, userID int64, since time.Time) (map[string]float64, error) {
	return p.daily(ctx, "food_logs", "calories", userID, since)
}

// DailyWorkoutCalories суммы сожженных калорий по дням
func (p *Postgres) DailyWorkoutCalories(ctx context.Context, userID int64, since time.Time) (map[string]float64, error) {
	return p.daily(ctx, "workout_logs", "calories_burned", userID, since)
}

func (p *Postgres) sumSince(ctx context.Context, table, column string, userID int64, since time.Time) (float64, error) {
	var total float64
	query := fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) FROM %s WHERE user_id = $1 AND created_at >= $2", column, table)
	if err := p.pool.QueryRow(ctx, query, userID, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка при подсчете %s: %w", table, err)
	}
	return total, nil
}

func (p *Postgres) daily(ctx context.Context, table, column string, userID int64, since time.Time) (map[string]float64, error) {
	query := fmt.Sprintf(`
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, SUM(%s)
		FROM %s
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY day
		ORDER BY day`, column, table)

	rows, err := p.pool.Query(ctx, query, userID, since)
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

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по %s: %w", table, err)
	}
	return totals, nil
}
