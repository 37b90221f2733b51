package food

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Ключи пищевой ценности OpenFoodFacts
const (
	keyFat           = "fat_100g"
	keyProteins      = "proteins_100g"
	keyCarbohydrates = "carbohydrates_100g"
	keyEnergyKcal    = "energy-kcal_100g"
	keyEnergyKJ      = "energy_100g"
)

// ParseNutriments извлекает поля на 100 г из словаря nutriments OpenFoodFacts.
// База хранит значения то числами, то строками; нечисловые значения считаются отсутствующими.
func ParseNutriments(m map[string]any) Nutriments {
	return Nutriments{
		Fat:           number(m[keyFat]),
		Proteins:      number(m[keyProteins]),
		Carbohydrates: number(m[keyCarbohydrates]),
		EnergyKcal:    number(m[keyEnergyKcal]),
		EnergyKJ:      number(m[keyEnergyKJ]),
	}
}

func number(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}
