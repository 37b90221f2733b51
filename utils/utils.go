package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/awhatson15/nutrition-bot/models"
)

// ParsePositiveFloat разбирает число из интервала (0, max].
// Допускается десятичная запятая.
func ParsePositiveFloat(text string, max float64) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: ожидается число", models.ErrValidation)
	}
	if value <= 0 || value > max {
		return 0, fmt.Errorf("%w: значение должно быть больше 0 и не больше %g", models.ErrValidation, max)
	}
	return value, nil
}

// ParseIntInRange разбирает целое число из отрезка [min, max]
func ParseIntInRange(text string, min, max int) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: ожидается целое число", models.ErrValidation)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("%w: значение должно быть от %d до %d", models.ErrValidation, min, max)
	}
	return value, nil
}

// FormatDisplayDate форматирует дату для отображения пользователю
func FormatDisplayDate(dbDate string) string {
	if dbDate == "" {
		return ""
	}

	// Преобразуем из YYYY-MM-DD в ДД.ММ
	date, err := time.Parse("2006-01-02", dbDate)
	if err != nil {
		return dbDate // Возвращаем как есть, если не смогли распарсить
	}

	return date.Format("02.01")
}

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// Capitalize делает первую букву заглавной, остальные строчными
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return upper.String(string(r)) + lower.String(s[size:])
}
