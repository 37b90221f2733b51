// Package goals рассчитывает дневные нормы калорий и воды, а также расход
// калорий и воды на тренировках.
package goals

import (
	"strings"

	"github.com/awhatson15/nutrition-bot/models"
)

// 45 минут активности считаются за 300 ккал
const activityKcalPerMinute = 300.0 / 45.0

// CalorieGoal рассчитывает дневную норму калорий: BMR по Миффлину-Сан Жеору
// плюс линейная добавка за минуты активности.
func CalorieGoal(weight, height float64, age, activityMinutes int, sex models.Sex) float64 {
	bmr := 10*weight + 6.25*height - 5*float64(age)
	if sex == models.SexMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr + activityKcalPerMinute*float64(activityMinutes)
}

// Константы нормы воды
const (
	waterPerKg         = 30.0
	waterPerBlock      = 500.0
	activityBlockMin   = 30
	hotWeatherBonus    = 500.0
	hotWeatherAboveC   = 25.0
	workoutWaterPerBlk = 200.0
)

// WaterGoal рассчитывает дневную норму воды в мл.
// Бонус за активность начисляется за каждые полные 30 минут.
// Если температура неизвестна (nil), бонус за жару не начисляется.
func WaterGoal(weight float64, activityMinutes int, temperature *float64) float64 {
	water := weight * waterPerKg
	water += float64(activityMinutes/activityBlockMin) * waterPerBlock
	if temperature != nil && *temperature > hotWeatherAboveC {
		water += hotWeatherBonus
	}
	return water
}

// DefaultWorkoutKcalPerMinute расход для неизвестного типа тренировки
const DefaultWorkoutKcalPerMinute = 7.0

var workoutKcalPerMinute = map[string]float64{
	"бег":       10,
	"running":   10,
	"йога":      8,
	"yoga":      8,
	"плавание":  9,
	"swimming":  9,
	"велоспорт": 11,
	"cycling":   11,
}

// WorkoutCalories рассчитывает сожжённые за тренировку калории
func WorkoutCalories(workoutType string, minutes int) float64 {
	rate, ok := workoutKcalPerMinute[strings.ToLower(strings.TrimSpace(workoutType))]
	if !ok {
		rate = DefaultWorkoutKcalPerMinute
	}
	return rate * float64(minutes)
}

// WorkoutWater рассчитывает дополнительную воду: 200 мл за каждые полные 30 минут
func WorkoutWater(minutes int) float64 {
	return float64(minutes/activityBlockMin) * workoutWaterPerBlk
}
