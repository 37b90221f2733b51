package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func sampleProgress() Progress {
	return Progress{
		Days:        []string{"2024-06-01", "2024-06-02", "2024-06-03"},
		Water:       []float64{1500, 0, 2300},
		WaterGoal:   2100,
		Net:         []float64{1800, 0, -200},
		CalorieGoal: 2000,
	}
}

func TestWaterPNG(t *testing.T) {
	data, err := WaterPNG(sampleProgress())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngSignature))
}

func TestCaloriesPNG(t *testing.T) {
	data, err := CaloriesPNG(sampleProgress())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngSignature))
}

func TestPNG_MismatchedSeries(t *testing.T) {
	p := sampleProgress()
	p.Water = p.Water[:1]

	_, err := WaterPNG(p)
	assert.Error(t, err)
}

func TestInteractiveHTML(t *testing.T) {
	data, err := InteractiveHTML(sampleProgress())
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, WaterTitle)
	assert.Contains(t, html, CaloriesTitle)
	assert.Contains(t, html, "2024-06-02")
}
