// Package charts рисует графики прогресса: PNG для отправки фото и интерактивную HTML-страницу.
package charts

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/awhatson15/nutrition-bot/utils"
)

const (
	WaterTitle    = "Прогресс по воде"
	CaloriesTitle = "Прогресс по калориям"

	waterLabel       = "Выпито воды (мл)"
	waterGoalLabel   = "Норма воды (мл)"
	balanceLabel     = "Баланс калорий (ккал)"
	calorieGoalLabel = "Целевая норма калорий (ккал)"
	dateAxis         = "Дата"
	waterAxis        = "Вода (мл)"
	caloriesAxis     = "Калории (ккал)"
)

// Progress ряды за окно дней и цели, с которыми они сравниваются
type Progress struct {
	Days        []string // YYYY-MM-DD
	Water       []float64
	WaterGoal   float64
	Net         []float64
	CalorieGoal float64
}

// WaterPNG график выпитой воды против нормы
func WaterPNG(p Progress) ([]byte, error) {
	return linePNG(WaterTitle, waterAxis, p.Days, p.Water, waterLabel, p.WaterGoal, waterGoalLabel)
}

// CaloriesPNG график баланса калорий против цели
func CaloriesPNG(p Progress) ([]byte, error) {
	return linePNG(CaloriesTitle, caloriesAxis, p.Days, p.Net, balanceLabel, p.CalorieGoal, calorieGoalLabel)
}

func linePNG(title, yLabel string, days []string, values []float64, valuesLabel string, goal float64, goalLabel string) ([]byte, error) {
	if len(days) != len(values) {
		return nil, fmt.Errorf("длины рядов не совпадают: %d дней, %d значений", len(days), len(values))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = dateAxis
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(values))
	goalPts := make(plotter.XYs, len(values))
	labels := make([]string, len(days))
	for i := range values {
		pts[i].X, pts[i].Y = float64(i), values[i]
		goalPts[i].X, goalPts[i].Y = float64(i), goal
		labels[i] = utils.FormatDisplayDate(days[i])
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("ошибка построения ряда: %w", err)
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	points.Color = line.Color

	goalLine, err := plotter.NewLine(goalPts)
	if err != nil {
		return nil, fmt.Errorf("ошибка построения линии цели: %w", err)
	}
	goalLine.Color = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	goalLine.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}

	p.Add(line, points, goalLine)
	p.Legend.Add(valuesLabel, line, points)
	p.Legend.Add(goalLabel, goalLine)
	p.Legend.Top = true
	p.NominalX(labels...)

	w, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("ошибка рендеринга графика: %w", err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("ошибка записи PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// InteractiveHTML страница с двумя интерактивными графиками
func InteractiveHTML(p Progress) ([]byte, error) {
	page := components.NewPage()
	page.AddCharts(
		lineChart(WaterTitle, waterAxis, p.Days, p.Water, waterLabel, p.WaterGoal, waterGoalLabel),
		lineChart(CaloriesTitle, caloriesAxis, p.Days, p.Net, balanceLabel, p.CalorieGoal, calorieGoalLabel),
	)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("ошибка рендеринга HTML: %w", err)
	}
	return buf.Bytes(), nil
}

func lineChart(title, yLabel string, days []string, values []float64, valuesLabel string, goal float64, goalLabel string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: dateAxis}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel}),
	)

	data := make([]opts.LineData, len(values))
	goalData := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
		goalData[i] = opts.LineData{Value: goal}
	}

	line.SetXAxis(days).
		AddSeries(valuesLabel, data).
		AddSeries(goalLabel, goalData, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	return line
}
