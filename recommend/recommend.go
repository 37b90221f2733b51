// Package recommend выбирает рекомендации по калориям и воде по итогам дня.
package recommend

import (
	"fmt"
	"math"
	"strings"
)

// CalorieBand положение баланса калорий относительно цели
type CalorieBand int

const (
	CalorieOnTarget CalorieBand = iota
	CalorieOver
	CalorieUnder
)

func (b CalorieBand) String() string {
	switch b {
	case CalorieOver:
		return "over"
	case CalorieUnder:
		return "under"
	default:
		return "on_target"
	}
}

// WaterBand выполнена ли норма воды
type WaterBand int

const (
	WaterDrinkMore WaterBand = iota
	WaterGoalMet
)

func (b WaterBand) String() string {
	if b == WaterGoalMet {
		return "goal_met"
	}
	return "drink_more"
}

// Допуск ±10% от цели по калориям
const (
	overFactor  = 1.1
	underFactor = 0.9
)

// Inputs итоги дня, по которым строятся рекомендации
type Inputs struct {
	NetCalories float64
	CalorieGoal float64
	TotalWater  float64
	WaterGoal   float64
}

// Result итог классификации
type Result struct {
	Calorie CalorieBand
	Water   WaterBand
	// DiffPercent отклонение баланса от цели в процентах; 0, если цель не задана
	DiffPercent float64
}

// Classify раскладывает итоги дня по диапазонам
func Classify(in Inputs) Result {
	var r Result

	if in.CalorieGoal > 0 {
		r.DiffPercent = (in.NetCalories - in.CalorieGoal) / in.CalorieGoal * 100
	}

	switch {
	case in.CalorieGoal <= 0:
		r.Calorie = CalorieOnTarget
	case in.NetCalories > in.CalorieGoal*overFactor:
		r.Calorie = CalorieOver
	case in.NetCalories < in.CalorieGoal*underFactor:
		r.Calorie = CalorieUnder
	default:
		r.Calorie = CalorieOnTarget
	}

	if in.WaterGoal-in.TotalWater > 0 {
		r.Water = WaterDrinkMore
	} else {
		r.Water = WaterGoalMet
	}

	return r
}

const header = "🔍 <b>Рекомендации для вас на сегодня:</b>"

// Render текст рекомендаций в HTML-разметке Telegram
func Render(r Result, in Inputs) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(calorieText(r, in))
	b.WriteString("\n\n")
	b.WriteString(waterText(r, in))
	return b.String()
}

func calorieText(r Result, in Inputs) string {
	switch r.Calorie {
	case CalorieOver:
		return fmt.Sprintf(
			"• <b>Калории:</b> Ваш баланс превышает целевую норму на %.0f ккал (%.1f%% выше цели).\n"+
				"  Рекомендуем снизить потребление высококалорийных продуктов. Попробуйте добавить в рацион:\n"+
				"  – свежие овощные салаты (огурцы, брокколи, помидоры),\n"+
				"  – легкие белковые блюда (куриная грудка, рыба, тофу),\n"+
				"  – избегайте жареной и сильно обработанной пищи.\n"+
				"  Также выполните кардио-тренировку (например, бег, плавание или велоспорт) для сжигания лишних калорий.",
			in.NetCalories-in.CalorieGoal, r.DiffPercent,
		)
	case CalorieUnder:
		return fmt.Sprintf(
			"• <b>Калории:</b> Ваш баланс ниже целевой нормы на %.0f ккал (%.1f%% ниже цели).\n"+
				"  Возможно, вам не хватает энергии для активного дня. Рекомендуем добавить в рацион:\n"+
				"  – питательные перекусы: орехи, авокадо, цельнозерновой хлеб, натуральный йогурт,\n"+
				"  – продукты с полезными жирами и белком.\n"+
				"  Также можно рассмотреть силовые тренировки для набора мышечной массы.",
			in.CalorieGoal-in.NetCalories, math.Abs(r.DiffPercent),
		)
	default:
		return "• <b>Калории:</b> Ваш баланс в пределах нормы. Продолжайте поддерживать сбалансированное питание " +
			"и умеренную физическую активность."
	}
}

func waterText(r Result, in Inputs) string {
	if r.Water == WaterGoalMet {
		return "• <b>Вода:</b> Отлично, вы достигли или превысили норму потребления воды!"
	}
	return fmt.Sprintf(
		"• <b>Вода:</b> Вы выпили %.0f мл, а ваша норма составляет %.0f мл.\n"+
			"  Рекомендуем увеличить потребление воды:\n"+
			"  – пейте стакан воды каждые 30-60 минут,\n"+
			"  – держите рядом бутылку с водой и устанавливайте напоминания.",
		in.TotalWater, in.WaterGoal,
	)
}
