package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/awhatson15/nutrition-bot/goals"
	"github.com/awhatson15/nutrition-bot/models"
)

// EventStore чтение журналов, нужное для подсчета итогов
type EventStore interface {
	SumWaterSince(ctx context.Context, userID int64, since time.Time) (float64, error)
	SumFoodCaloriesSince(ctx context.Context, userID int64, since time.Time) (float64, error)
	SumWorkoutCaloriesSince(ctx context.Context, userID int64, since time.Time) (float64, error)
	DailyWater(ctx context.Context, userID int64, since time.Time) (map[string]float64, error)
	DailyFoodCalories(ctx context.Context, userID int64, since time.Time) (map[string]float64, error)
	DailyWorkoutCalories(ctx context.Context, userID int64, since time.Time) (map[string]float64, error)
}

// WeatherLookup источник текущей температуры
type WeatherLookup interface {
	Temperature(ctx context.Context, city string) (float64, error)
}

// Today итоги за текущие сутки (UTC)
type Today struct {
	Water    float64
	Consumed float64
	Burned   float64
	Balance  float64
}

// Window плотные ряды за последние дни, по одному значению на день
type Window struct {
	Days     []string
	Water    []float64
	Consumed []float64
	Burned   []float64
	Net      []float64
}

// Empty true, если за все дни окна нет ни одной записи
func (w Window) Empty() bool {
	for _, series := range [][]float64{w.Water, w.Consumed, w.Burned} {
		for _, v := range series {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

// Report итоги дня вместе с целями и остатками
type Report struct {
	Today

	WaterGoal      float64
	WaterRemaining float64

	CalorieGoal      float64
	CalorieRemaining float64
	// CalorieKnown false, если цель по калориям не задана
	CalorieKnown bool

	// TemperatureKnown false, если погоду получить не удалось и надбавка за жару не учтена
	TemperatureKnown bool
}

// Aggregator считает итоги по журналам пользователя
type Aggregator struct {
	store   EventStore
	weather WeatherLookup
	log     *slog.Logger
	now     func() time.Time
}

// NewAggregator создает агрегатор
func NewAggregator(store EventStore, weather WeatherLookup, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		store:   store,
		weather: weather,
		log:     logger,
		now:     time.Now,
	}
}

// Today возвращает итоги пользователя с полуночи UTC
func (a *Aggregator) Today(ctx context.Context, userID int64) (Today, error) {
	since := StartOfDay(a.now())

	water, err := a.store.SumWaterSince(ctx, userID, since)
	if err != nil {
		return Today{}, fmt.Errorf("ошибка при подсчете воды: %w", err)
	}
	consumed, err := a.store.SumFoodCaloriesSince(ctx, userID, since)
	if err != nil {
		return Today{}, fmt.Errorf("ошибка при подсчете калорий: %w", err)
	}
	burned, err := a.store.SumWorkoutCaloriesSince(ctx, userID, since)
	if err != nil {
		return Today{}, fmt.Errorf("ошибка при подсчете тренировок: %w", err)
	}

	return Today{
		Water:    water,
		Consumed: consumed,
		Burned:   burned,
		Balance:  consumed - burned,
	}, nil
}

// Window возвращает ряды за days дней, включая сегодня
func (a *Aggregator) Window(ctx context.Context, userID int64, days int) (Window, error) {
	if days <= 0 {
		return Window{}, fmt.Errorf("%w: число дней должно быть положительным", models.ErrValidation)
	}

	today := a.now()
	since := WindowStart(today, days)

	water, err := a.store.DailyWater(ctx, userID, since)
	if err != nil {
		return Window{}, fmt.Errorf("ошибка при получении воды по дням: %w", err)
	}
	consumed, err := a.store.DailyFoodCalories(ctx, userID, since)
	if err != nil {
		return Window{}, fmt.Errorf("ошибка при получении калорий по дням: %w", err)
	}
	burned, err := a.store.DailyWorkoutCalories(ctx, userID, since)
	if err != nil {
		return Window{}, fmt.Errorf("ошибка при получении тренировок по дням: %w", err)
	}

	w := Window{
		Days:     Days(today, days),
		Water:    GapFill(water, today, days),
		Consumed: GapFill(consumed, today, days),
		Burned:   GapFill(burned, today, days),
	}
	w.Net = Net(w.Consumed, w.Burned)
	return w, nil
}

// WaterGoal норма воды с учетом текущей погоды.
// Ошибка погоды не прерывает расчет: надбавка за жару просто не начисляется.
func (a *Aggregator) WaterGoal(ctx context.Context, profile *models.Profile) (float64, bool) {
	temp, err := a.weather.Temperature(ctx, profile.City)
	if err != nil {
		a.log.Warn("Не удалось получить погоду, норма воды без надбавки", "city", profile.City, "error", err)
		return goals.WaterGoal(profile.Weight, profile.ActivityMinutes, nil), false
	}
	return goals.WaterGoal(profile.Weight, profile.ActivityMinutes, &temp), true
}

// Progress собирает итоги дня, цели и остатки для профиля
func (a *Aggregator) Progress(ctx context.Context, profile *models.Profile) (Report, error) {
	today, err := a.Today(ctx, profile.UserID)
	if err != nil {
		return Report{}, err
	}

	waterGoal, known := a.WaterGoal(ctx, profile)
	calorieRemaining, calorieKnown := CalorieRemaining(profile.CalorieGoal, today.Balance)

	return Report{
		Today:            today,
		WaterGoal:        waterGoal,
		WaterRemaining:   Remaining(waterGoal, today.Water),
		CalorieGoal:      profile.CalorieGoal,
		CalorieRemaining: calorieRemaining,
		CalorieKnown:     calorieKnown,
		TemperatureKnown: known,
	}, nil
}
