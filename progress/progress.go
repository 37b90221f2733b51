// Package progress считает дневные итоги по воде и калориям и плотные ряды за несколько дней.
package progress

import (
	"math"
	"time"
)

// DayLayout формат ключа дня в рядах и в ответах хранилища
const DayLayout = "2006-01-02"

// Entry одна запись журнала: момент и количество (мл или ккал)
type Entry struct {
	At     time.Time
	Amount float64
}

// StartOfDay полночь по UTC того дня, в который попадает t
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Remaining сколько осталось до цели; никогда не бывает отрицательным
func Remaining(goal, actual float64) float64 {
	return math.Max(0, goal-actual)
}

// CalorieRemaining остаток по калориям; false, если цель не задана
func CalorieRemaining(goal, balance float64) (float64, bool) {
	if goal <= 0 {
		return 0, false
	}
	return Remaining(goal, balance), true
}

// Total сумма записей начиная с since включительно
func Total(entries []Entry, since time.Time) float64 {
	var total float64
	for _, e := range entries {
		if !e.At.Before(since) {
			total += e.Amount
		}
	}
	return total
}

// WindowStart первый день окна из days дней, заканчивающегося сегодня
func WindowStart(today time.Time, days int) time.Time {
	return StartOfDay(today).AddDate(0, 0, -(days - 1))
}

// Days ключи дней окна по возрастанию, последний день сегодняшний
func Days(today time.Time, days int) []string {
	if days <= 0 {
		return []string{}
	}
	start := WindowStart(today, days)
	keys := make([]string, days)
	for i := range keys {
		keys[i] = start.AddDate(0, 0, i).Format(DayLayout)
	}
	return keys
}

// GapFill разворачивает суммы по дням в ряд длиной days; дни без записей дают ноль
func GapFill(buckets map[string]float64, today time.Time, days int) []float64 {
	keys := Days(today, days)
	values := make([]float64, len(keys))
	for i, key := range keys {
		values[i] = buckets[key]
	}
	return values
}

// Series суммирует записи по дням и возвращает плотный ряд окна
func Series(entries []Entry, today time.Time, days int) []float64 {
	start := WindowStart(today, days)
	buckets := map[string]float64{}
	for _, e := range entries {
		if e.At.Before(start) {
			continue
		}
		buckets[e.At.UTC().Format(DayLayout)] += e.Amount
	}
	return GapFill(buckets, today, days)
}

// Net поэлементная разница consumed - burned
func Net(consumed, burned []float64) []float64 {
	net := make([]float64, len(consumed))
	for i := range consumed {
		net[i] = consumed[i]
		if i < len(burned) {
			net[i] -= burned[i]
		}
	}
	return net
}
