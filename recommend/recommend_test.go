package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Calories(t *testing.T) {
	tests := []struct {
		name string
		net  float64
		goal float64
		want CalorieBand
	}{
		{"over the upper bound", 1200, 1000, CalorieOver},
		{"within ten percent above", 1050, 1000, CalorieOnTarget},
		{"exactly at upper bound", 1100, 1000, CalorieOnTarget},
		{"exactly at lower bound", 900, 1000, CalorieOnTarget},
		{"under the lower bound", 850, 1000, CalorieUnder},
		{"negative balance", -200, 1000, CalorieUnder},
		{"goal not set", 5000, 0, CalorieOnTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(Inputs{NetCalories: tt.net, CalorieGoal: tt.goal})
			assert.Equal(t, tt.want, r.Calorie)
		})
	}
}

func TestClassify_DiffPercent(t *testing.T) {
	assert.InDelta(t, 20.0, Classify(Inputs{NetCalories: 1200, CalorieGoal: 1000}).DiffPercent, 1e-9)
	assert.InDelta(t, -15.0, Classify(Inputs{NetCalories: 850, CalorieGoal: 1000}).DiffPercent, 1e-9)
	assert.Zero(t, Classify(Inputs{NetCalories: 850}).DiffPercent)
}

func TestClassify_Water(t *testing.T) {
	assert.Equal(t, WaterDrinkMore, Classify(Inputs{TotalWater: 1000, WaterGoal: 2100}).Water)
	assert.Equal(t, WaterGoalMet, Classify(Inputs{TotalWater: 2100, WaterGoal: 2100}).Water)
	assert.Equal(t, WaterGoalMet, Classify(Inputs{TotalWater: 3000, WaterGoal: 2100}).Water)
}

func TestRender(t *testing.T) {
	in := Inputs{NetCalories: 1200, CalorieGoal: 1000, TotalWater: 500, WaterGoal: 2100}
	text := Render(Classify(in), in)

	assert.Contains(t, text, "Рекомендации для вас на сегодня")
	assert.Contains(t, text, "превышает целевую норму на 200 ккал (20.0% выше цели)")
	assert.Contains(t, text, "Вы выпили 500 мл, а ваша норма составляет 2100 мл")

	in = Inputs{NetCalories: 700, CalorieGoal: 1000, TotalWater: 2500, WaterGoal: 2100}
	text = Render(Classify(in), in)
	assert.Contains(t, text, "ниже целевой нормы на 300 ккал (30.0% ниже цели)")
	assert.Contains(t, text, "достигли или превысили норму")

	in = Inputs{NetCalories: 1000, CalorieGoal: 1000, TotalWater: 2100, WaterGoal: 2100}
	assert.Contains(t, Render(Classify(in), in), "в пределах нормы")
}

func TestBandStrings(t *testing.T) {
	assert.Equal(t, "over", CalorieOver.String())
	assert.Equal(t, "under", CalorieUnder.String())
	assert.Equal(t, "on_target", CalorieOnTarget.String())
	assert.Equal(t, "drink_more", WaterDrinkMore.String())
	assert.Equal(t, "goal_met", WaterGoalMet.String())
}
