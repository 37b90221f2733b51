// Package food выбирает продукт из результатов поиска по базе продуктов
// и определяет его калорийность на 100 г.
package food

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/awhatson15/nutrition-bot/models"
	"github.com/awhatson15/nutrition-bot/utils"
)

// ErrNotFound подходящий продукт не найден или у него нет данных о калорийности
var ErrNotFound = fmt.Errorf("продукт не найден: %w", models.ErrExternalUnavailable)

// kJ в 1 ккал
const kJPerKcal = 4.184

// Nutriments пищевая ценность на 100 г; nil означает отсутствие поля
type Nutriments struct {
	Fat           *float64
	Proteins      *float64
	Carbohydrates *float64
	EnergyKcal    *float64
	EnergyKJ      *float64
}

// Candidate продукт из результатов поиска
type Candidate struct {
	Name       string
	Nutriments Nutriments
}

// Match выбранный продукт
type Match struct {
	Name            string
	CaloriesPer100g float64
}

// Searcher ищет продукты во внешней базе
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// Similarity возвращает коэффициент похожести строк в [0, 1]:
// удвоенное число совпавших символов, делённое на суммарную длину строк.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Resolve выбирает кандидата, наиболее похожего на запрос, и считает его калорийность.
// При равенстве побеждает первый кандидат, то есть более высокий в выдаче поиска.
func Resolve(query string, candidates []Candidate) (Match, error) {
	q := strings.ToLower(query)

	var best *Candidate
	bestRatio := 0.0
	for i := range candidates {
		name := candidates[i].Name
		if strings.TrimSpace(name) == "" {
			continue
		}
		ratio := Similarity(q, strings.ToLower(name))
		if ratio > bestRatio {
			bestRatio = ratio
			best = &candidates[i]
		}
	}
	if best == nil {
		return Match{}, ErrNotFound
	}

	calories, ok := CaloriesPer100g(best.Nutriments)
	if !ok {
		return Match{}, ErrNotFound
	}

	return Match{
		Name:            utils.Capitalize(strings.TrimSpace(best.Name)),
		CaloriesPer100g: calories,
	}, nil
}

// CaloriesPer100g определяет калорийность по цепочке:
// макронутриенты (9*жиры + 4*(белки+углеводы)), затем energy-kcal, затем energy в кДж.
func CaloriesPer100g(n Nutriments) (float64, bool) {
	fat, proteins, carbs := value(n.Fat), value(n.Proteins), value(n.Carbohydrates)
	if fat != 0 || proteins != 0 || carbs != 0 {
		if kcal := 9*fat + 4*(proteins+carbs); kcal > 0 {
			return kcal, true
		}
	}

	if n.EnergyKcal != nil {
		return *n.EnergyKcal, true
	}

	if n.EnergyKJ != nil && *n.EnergyKJ != 0 {
		return *n.EnergyKJ / kJPerKcal, true
	}

	return 0, false
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Lookup ищет продукт и выбирает лучший результат
func Lookup(ctx context.Context, searcher Searcher, query string) (Match, error) {
	candidates, err := searcher.Search(ctx, query)
	if err != nil {
		return Match{}, err
	}
	return Resolve(query, candidates)
}
