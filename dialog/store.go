// Package dialog ведет многошаговые диалоги: настройку профиля и ввод количества съеденного.
package dialog

import (
	"sync"
	"time"

	"github.com/awhatson15/nutrition-bot/food"
	"github.com/awhatson15/nutrition-bot/models"
)

// Kind вид открытого диалога
type Kind int

const (
	KindProfile Kind = iota + 1
	KindFood
)

func (k Kind) String() string {
	switch k {
	case KindProfile:
		return "profile"
	case KindFood:
		return "food"
	default:
		return "unknown"
	}
}

// Step текущий шаг диалога
type Step string

const (
	StepWeight      Step = "weight"
	StepHeight      Step = "height"
	StepAge         Step = "age"
	StepActivity    Step = "activity"
	StepCity        Step = "city"
	StepSex         Step = "sex"
	StepCalorieGoal Step = "calorie_goal"
	StepFoodAmount  Step = "food_amount"
)

// ProfileDraft ответы, собранные до сохранения профиля
type ProfileDraft struct {
	Weight          float64
	Height          float64
	Age             int
	ActivityMinutes int
	City            string
	Sex             models.Sex
}

// State состояние диалога одного пользователя
type State struct {
	Kind  Kind
	Step  Step
	Draft ProfileDraft
	// Food продукт, найденный командой /log_food
	Food      *food.Match
	UpdatedAt time.Time
}

// Store хранит состояния диалогов в памяти процесса
type Store struct {
	states map[int64]State
	mu     sync.RWMutex
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{states: make(map[int64]State)}
}

// Get возвращает копию состояния пользователя
func (s *Store) Get(userID int64) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	return state, ok
}

// Put сохраняет состояние пользователя
func (s *Store) Put(userID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[userID] = state
}

// Clear удаляет состояние; возвращает true, если оно было
func (s *Store) Clear(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.states[userID]
	delete(s.states, userID)
	return ok
}

// Expire удаляет состояния, не обновлявшиеся с момента olderThan.
// Возвращает идентификаторы пользователей, чьи диалоги были закрыты.
func (s *Store) Expire(olderThan time.Time) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []int64
	for userID, state := range s.states {
		if state.UpdatedAt.Before(olderThan) {
			delete(s.states, userID)
			expired = append(expired, userID)
		}
	}
	return expired
}

// Len количество открытых диалогов
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.states)
}
