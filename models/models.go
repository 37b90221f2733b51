package models

import (
	"fmt"
	"strings"
	"time"
)

// Sex биологический пол пользователя
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ParseSex разбирает пол из пользовательского ввода
func ParseSex(s string) (Sex, error) {
	switch Sex(strings.ToLower(strings.TrimSpace(s))) {
	case SexMale:
		return SexMale, nil
	case SexFemale:
		return SexFemale, nil
	}
	return "", fmt.Errorf("%w: пол должен быть male или female", ErrValidation)
}

// Profile представляет физиологический профиль пользователя.
// Профиль либо заполнен полностью, либо отсутствует.
type Profile struct {
	UserID          int64
	Weight          float64 // кг
	Height          float64 // см
	Age             int
	ActivityMinutes int
	City            string
	Sex             Sex
	CalorieGoal     float64 // ккал
	UpdatedAt       time.Time
}

// WaterEvent запись о выпитой воде
type WaterEvent struct {
	ID        int64
	UserID    int64
	AmountML  float64
	CreatedAt time.Time
}

// FoodEvent запись о съеденном продукте
type FoodEvent struct {
	ID          int64
	UserID      int64
	ProductName string
	Grams       float64
	Calories    float64
	CreatedAt   time.Time
}

// WorkoutEvent запись о тренировке
type WorkoutEvent struct {
	ID              int64
	UserID          int64
	WorkoutType     string
	DurationMinutes int
	CaloriesBurned  float64
	WaterML         float64 // дополнительная вода
	CreatedAt       time.Time
}

// Допустимые границы пользовательского ввода
const (
	MaxWeight          = 500.0
	MaxHeight          = 300.0
	MaxAge             = 150
	MaxActivityMinutes = 1440
	MaxCalorieGoal     = 10000.0
	MaxWaterML         = 10000.0
	MaxFoodGrams       = 10000.0
	MaxWorkoutMinutes  = 1440
)
