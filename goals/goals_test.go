package goals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awhatson15/nutrition-bot/models"
)

func temp(c float64) *float64 { return &c }

func TestCalorieGoal(t *testing.T) {
	// 10*80 + 6.25*180 - 5*30 + 5 = 1780
	assert.InDelta(t, 1780.0, CalorieGoal(80, 180, 30, 0, models.SexMale), 1e-9)
	// 45 минут активности = 300 ккал
	assert.InDelta(t, 2080.0, CalorieGoal(80, 180, 30, 45, models.SexMale), 1e-9)
	assert.InDelta(t, 1614.0, CalorieGoal(80, 180, 30, 0, models.SexFemale), 1e-9)
}

func TestCalorieGoal_SexDifference(t *testing.T) {
	for _, in := range []struct {
		weight, height float64
		age, activity  int
	}{
		{50, 160, 20, 0},
		{80, 180, 35, 60},
		{120, 200, 70, 1440},
	} {
		male := CalorieGoal(in.weight, in.height, in.age, in.activity, models.SexMale)
		female := CalorieGoal(in.weight, in.height, in.age, in.activity, models.SexFemale)
		assert.InDelta(t, 166.0, male-female, 1e-9)
	}
}

func TestCalorieGoal_Monotonic(t *testing.T) {
	base := CalorieGoal(70, 170, 30, 30, models.SexFemale)
	assert.Greater(t, CalorieGoal(71, 170, 30, 30, models.SexFemale), base)
	assert.Greater(t, CalorieGoal(70, 171, 30, 30, models.SexFemale), base)
	assert.Greater(t, CalorieGoal(70, 170, 30, 31, models.SexFemale), base)
	assert.Less(t, CalorieGoal(70, 170, 31, 30, models.SexFemale), base)
}

func TestWaterGoal(t *testing.T) {
	tests := []struct {
		name        string
		weight      float64
		activity    int
		temperature *float64
		want        float64
	}{
		{name: "no activity no weather", weight: 70, activity: 0, want: 2100},
		{name: "partial block rounds down", weight: 70, activity: 45, want: 2600},
		{name: "29 minutes gives nothing", weight: 70, activity: 29, want: 2100},
		{name: "two blocks and heat", weight: 70, activity: 60, temperature: temp(30), want: 3600},
		{name: "exactly 25 is not hot", weight: 70, activity: 0, temperature: temp(25), want: 2100},
		{name: "cold", weight: 70, activity: 0, temperature: temp(-10), want: 2100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WaterGoal(tt.weight, tt.activity, tt.temperature), 1e-9)
		})
	}
}

func TestWorkoutCalories(t *testing.T) {
	assert.Equal(t, 300.0, WorkoutCalories("Бег", 30))
	assert.Equal(t, 240.0, WorkoutCalories("йога", 30))
	assert.Equal(t, 270.0, WorkoutCalories("Swimming", 30))
	assert.Equal(t, 330.0, WorkoutCalories("Велоспорт", 30))
	assert.Equal(t, 210.0, WorkoutCalories("Бокс", 30))
}

func TestWorkoutWater(t *testing.T) {
	assert.Equal(t, 0.0, WorkoutWater(29))
	assert.Equal(t, 200.0, WorkoutWater(30))
	assert.Equal(t, 400.0, WorkoutWater(75))
}
