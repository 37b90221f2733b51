package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/awhatson15/nutrition-bot/charts"
	"github.com/awhatson15/nutrition-bot/config"
	"github.com/awhatson15/nutrition-bot/dialog"
	"github.com/awhatson15/nutrition-bot/food"
	"github.com/awhatson15/nutrition-bot/goals"
	"github.com/awhatson15/nutrition-bot/models"
	"github.com/awhatson15/nutrition-bot/progress"
	"github.com/awhatson15/nutrition-bot/recommend"
	"github.com/awhatson15/nutrition-bot/telemetry"
	"github.com/awhatson15/nutrition-bot/utils"
)

// Store хранилище, с которым работают обработчики
type Store interface {
	dialog.ProfileStore
	dialog.FoodLog
	progress.EventStore
	AppendWater(ctx context.Context, event *models.WaterEvent) (int64, error)
	AppendWorkout(ctx context.Context, event *models.WorkoutEvent) (int64, error)
}

// WeatherLookup источник текущей температуры
type WeatherLookup interface {
	Temperature(ctx context.Context, city string) (float64, error)
}

// Deps зависимости обработчиков
type Deps struct {
	Store       Store
	Weather     WeatherLookup
	Searcher    food.Searcher
	Dialogs     *dialog.Store
	Instruments *telemetry.Instruments
	Tracer      trace.Tracer
	PlotDays    int
	Logger      *slog.Logger
}

// Handler обрабатывает команды и ответы пользователей
type Handler struct {
	store       Store
	searcher    food.Searcher
	machine     *dialog.Machine
	aggregator  *progress.Aggregator
	instruments *telemetry.Instruments
	tracer      trace.Tracer
	plotDays    int
	log         *slog.Logger
	now         func() time.Time
}

// New создает обработчик; Tracer и Instruments по умолчанию берутся из глобальных провайдеров
func New(d Deps) *Handler {
	if d.Tracer == nil {
		d.Tracer = telemetry.Tracer()
	}
	if d.Instruments == nil {
		d.Instruments, _ = telemetry.NewGlobalInstruments()
	}
	return &Handler{
		store:       d.Store,
		searcher:    d.Searcher,
		machine:     dialog.NewMachine(d.Dialogs, d.Store, d.Store, d.Weather, d.Logger),
		aggregator:  progress.NewAggregator(d.Store, d.Weather, d.Logger),
		instruments: d.Instruments,
		tracer:      d.Tracer,
		plotDays:    d.PlotDays,
		log:         d.Logger,
		now:         time.Now,
	}
}

// Machine машина диалогов, общая с планировщиком
func (h *Handler) Machine() *dialog.Machine {
	return h.machine
}

// Aggregator агрегатор итогов, общий с планировщиком
func (h *Handler) Aggregator() *progress.Aggregator {
	return h.aggregator
}

const (
	msgSetProfileFirst = "Пожалуйста, сначала настройте ваш профиль с помощью /set_profile."
	msgInternalError   = "❌ Произошла ошибка. Попробуйте позже."
	msgUnknownCommand  = "Неизвестная команда. Используйте /help для списка доступных команд."
	msgNotUnderstood   = "Я не понимаю это сообщение. Используйте /help для списка доступных команд."
)

const helpText = "Я могу помочь вам рассчитать дневные нормы воды и калорий, " +
	"а также отслеживать тренировки и питание.\n\n" +
	"Доступные команды:\n" +
	"/start - Начать работу с ботом\n" +
	"/help - Получить справку\n" +
	"/set_profile - Настроить ваш профиль\n" +
	"/log_water &lt;количество&gt; - Записать количество выпитой воды (в мл)\n" +
	"/log_food &lt;название продукта (на англ. языке)&gt; - Записать потреблённую еду\n" +
	"/log_workout &lt;тип тренировки&gt; &lt;время (мин)&gt; - Записать тренировку\n" +
	"/check_progress - Проверить прогресс по воде и калориям\n" +
	"/plot_progress [дней] - Получить графики прогресса по воде и калориям\n" +
	"/recommendations - Получить персональные рекомендации по питанию и тренировкам\n" +
	"/cancel - Отменить текущий диалог"

// HandleMessage обрабатывает команду или ответ в открытом диалоге
func (h *Handler) HandleMessage(ctx context.Context, msg Message) []Response {
	if msg.Command != "" {
		return h.handleCommand(ctx, msg)
	}

	reply, ok := h.machine.Handle(ctx, msg.UserID, dialog.Input{Text: msg.Text})
	if !ok {
		return []Response{text(msgNotUnderstood)}
	}
	h.recordReply(ctx, reply)
	return []Response{fromReply(reply)}
}

// HandleCallback обрабатывает нажатие inline-кнопки
func (h *Handler) HandleCallback(ctx context.Context, userID int64, data string) []Response {
	var in dialog.Input
	switch {
	case data == CallbackCalorieDefault:
		in.UseDefault = true
	case strings.HasPrefix(data, CallbackSexPrefix):
		in.Text = strings.TrimPrefix(data, CallbackSexPrefix)
	default:
		h.logger(ctx).Warn("Неизвестный callback", "data", data)
		return nil
	}

	reply, ok := h.machine.Handle(ctx, userID, in)
	if !ok {
		return []Response{text("Этот диалог уже завершен. Начните заново: /set_profile")}
	}
	h.recordReply(ctx, reply)
	return []Response{fromReply(reply)}
}

func (h *Handler) recordReply(ctx context.Context, reply dialog.Reply) {
	switch reply.Outcome {
	case dialog.Committed:
		h.instruments.DialogCompleted(ctx, reply.Kind.String())
		if reply.FoodEvent != nil {
			h.instruments.EventLogged(ctx, "food")
		}
	case dialog.Aborted:
		switch {
		case errors.Is(reply.Err, models.ErrExternalUnavailable):
			h.instruments.ExternalFailure(ctx, "weather")
		case errors.Is(reply.Err, models.ErrMissingProfile), errors.Is(reply.Err, models.ErrStateCorruption):
			// не сбой зависимостей
		default:
			h.instruments.ExternalFailure(ctx, "store")
		}
		h.logger(ctx).Info("Диалог прерван", "kind", reply.Kind.String(), "step", reply.Step, "error", reply.Err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg Message) []Response {
	ctx, span := h.tracer.Start(ctx, "command."+msg.Command)
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", msg.UserID))

	args := strings.TrimSpace(msg.Args)

	switch msg.Command {
	case "start":
		return []Response{text("Добро пожаловать! Я ваш бот для расчёта норм воды и калорий.\n" +
			"Используйте /set_profile для настройки профиля.")}

	case "help":
		return []Response{{Text: helpText, ParseMode: ParseModeHTML}}

	case "set_profile":
		return []Response{fromReply(h.machine.StartProfile(msg.UserID))}

	case "cancel":
		if h.machine.Cancel(msg.UserID) {
			return []Response{text("Текущий диалог отменен.")}
		}
		return []Response{text("Нет активного диалога.")}

	case "log_water":
		return h.logWater(ctx, span, msg.UserID, args)

	case "log_food":
		return h.logFood(ctx, span, msg.UserID, args)

	case "log_workout":
		return h.logWorkout(ctx, span, msg.UserID, args)

	case "check_progress":
		return h.checkProgress(ctx, span, msg.UserID)

	case "plot_progress":
		return h.plotProgress(ctx, span, msg.UserID, args)

	case "recommendations":
		return h.recommendations(ctx, span, msg.UserID)

	default:
		return []Response{text(msgUnknownCommand)}
	}
}

// requireProfile возвращает профиль или готовый ответ об ошибке
func (h *Handler) requireProfile(ctx context.Context, span trace.Span, userID int64) (*models.Profile, []Response) {
	profile, err := h.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, h.internalError(ctx, span, "Ошибка при получении профиля", err)
	}
	if profile == nil {
		return nil, []Response{text(msgSetProfileFirst)}
	}
	return profile, nil
}

func (h *Handler) internalError(ctx context.Context, span trace.Span, message string, err error) []Response {
	h.logger(ctx).Error(message, "error", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, message)
	h.instruments.ExternalFailure(ctx, "store")
	return []Response{text(msgInternalError)}
}

func (h *Handler) waterGoal(ctx context.Context, profile *models.Profile) float64 {
	goal, known := h.aggregator.WaterGoal(ctx, profile)
	if !known {
		h.instruments.ExternalFailure(ctx, "weather")
	}
	return goal
}

func (h *Handler) logWater(ctx context.Context, span trace.Span, userID int64, args string) []Response {
	if args == "" {
		return []Response{text("Пожалуйста, укажите количество воды в мл. Пример: /log_water 500")}
	}
	amount, err := utils.ParsePositiveFloat(args, models.MaxWaterML)
	if err != nil {
		return []Response{text("Пожалуйста, введите корректное числовое значение для количества воды в мл.")}
	}

	profile, resp := h.requireProfile(ctx, span, userID)
	if profile == nil {
		return resp
	}

	event := &models.WaterEvent{UserID: userID, AmountML: amount, CreatedAt: h.now().UTC()}
	if _, err := h.store.AppendWater(ctx, event); err != nil {
		return h.internalError(ctx, span, "Ошибка при записи воды", err)
	}
	h.instruments.EventLogged(ctx, "water")

	today, err := h.aggregator.Today(ctx, userID)
	if err != nil {
		return h.internalError(ctx, span, "Ошибка при подсчете воды", err)
	}
	goal := h.waterGoal(ctx, profile)

	return []Response{text(fmt.Sprintf(
		"Записано: %.0f мл.\nВсего сегодня выпито: %.0f мл.\nОсталось до нормы: %.0f мл.",
		amount, today.Water, progress.Remaining(goal, today.Water),
	))}
}

func (h *Handler) logFood(ctx context.Context, span trace.Span, userID int64, args string) []Response {
	if args == "" {
		return []Response{text("Пожалуйста, укажите название продукта. Пример: /log_food apple")}
	}

	profile, resp := h.requireProfile(ctx, span, userID)
	if profile == nil {
		return resp
	}

	match, err := food.Lookup(ctx, h.searcher, strings.ToLower(args))
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, food.ErrNotFound) {
			return []Response{text("Не удалось найти информацию о продукте. Попробуйте другой запрос.")}
		}
		h.logger(ctx).Warn("Поиск продукта недоступен", "query", args, "error", err)
		h.instruments.ExternalFailure(ctx, "food_search")
		return []Response{text("Сервис поиска продуктов сейчас недоступен. Попробуйте позже.")}
	}

	return []Response{fromReply(h.machine.StartFood(userID, match))}
}

func (h *Handler) logWorkout(ctx context.Context, span trace.Span, userID int64, args string) []Response {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return []Response{text("Пожалуйста, укажите тип тренировки и время в минутах. Пример: /log_workout бег 30")}
	}

	workoutType := utils.Capitalize(fields[0])
	duration, err := utils.ParseIntInRange(strings.Join(fields[1:], " "), 1, models.MaxWorkoutMinutes)
	if err != nil {
		return []Response{text("Пожалуйста, введите корректное число (в минутах) для длительности тренировки.")}
	}

	profile, resp := h.requireProfile(ctx, span, userID)
	if profile == nil {
		return resp
	}

	event := &models.WorkoutEvent{
		UserID:          userID,
		WorkoutType:     workoutType,
		DurationMinutes: duration,
		CaloriesBurned:  goals.WorkoutCalories(workoutType, duration),
		WaterML:         goals.WorkoutWater(duration),
		CreatedAt:       h.now().UTC(),
	}
	if _, err := h.store.AppendWorkout(ctx, event); err != nil {
		return h.internalError(ctx, span, "Ошибка при записи тренировки", err)
	}
	h.instruments.EventLogged(ctx, "workout")

	return []Response{text(fmt.Sprintf(
		"🏃‍♂️ %s %d мин — %.0f ккал.\nДополнительно: выпейте %.0f мл воды.",
		workoutType, duration, event.CaloriesBurned, event.WaterML,
	))}
}

func (h *Handler) checkProgress(ctx context.Context, span trace.Span, userID int64) []Response {
	profile, resp := h.requireProfile(ctx, span, userID)
	if profile == nil {
		return resp
	}

	report, err := h.aggregator.Progress(ctx, profile)
	if err != nil {
		return h.internalError(ctx, span, "Ошибка при подсчете прогресса", err)
	}
	if !report.TemperatureKnown {
		h.instruments.ExternalFailure(ctx, "weather")
	}

	return []Response{text(FormatProgress(report))}
}

// FormatProgress текст отчета /check_progress
func FormatProgress(r progress.Report) string {
	goal, remaining := "—", "—"
	if r.CalorieKnown {
		goal = fmt.Sprintf("%.0f", r.CalorieGoal)
		remaining = fmt.Sprintf("%.1f", r.CalorieRemaining)
	}

	return "📊 Прогресс за сегодня:\n\n" +
		"💧 Вода:\n" +
		fmt.Sprintf(" • Выпито: %d мл из %d мл\n", int(r.Water), int(r.WaterGoal)) +
		fmt.Sprintf(" • Осталось: %d мл\n\n", int(r.WaterRemaining)) +
		"🔥 Калории:\n" +
		fmt.Sprintf(" • Потреблено: %.1f ккал\n", r.Consumed) +
		fmt.Sprintf(" • Сожжено: %.1f ккал\n", r.Burned) +
		fmt.Sprintf(" • Баланс: %.1f ккал\n", r.Balance) +
		fmt.Sprintf(" • Целевая норма: %s ккал\n", goal) +
		fmt.Sprintf(" • Осталось до цели: %s ккал", remaining)
}

func (h *Handler) plotProgress(ctx context.Context, span trace.Span, userID int64, args string) []Response {
	days := h.plotDays
	if args != "" {
		var err error
		days, err = utils.ParseIntInRange(args, 1, config.MaxPlotDays)
		if err != nil {
			return []Response{text(fmt.Sprintf("Укажите число дней от 1 до %d. Пример: /plot_progress 14", config.MaxPlotDays))}
		}
	}

	profile, resp := h.requireProfile(ctx, span, userID)
	if profile == nil {
		return resp
	}

	window, err := h.aggregator.Window(ctx, userID, days)
	if err != nil {
		return h.internalError(ctx, span, "Ошибка при получении данных для графиков", err)
	}
	if window.Empty() {
		return []Response{text("Нет данных для построения графиков. Введите логи и попробуйте снова.")}
	}

	data := charts.Progress{
		Days:        window.Days,
		Water:       window.Water,
		WaterGoal:   h.waterGoal(ctx, profile),
		Net:         window.Net,
		CalorieGoal: profile.CalorieGoal,
	}

	waterPNG, err := charts.WaterPNG(data)
	if err != nil {
		return h.internalError(ctx, span, "Ошибка при построении графика воды", err)
	}
	caloriesPNG, err := charts.CaloriesPNG(data)
	if err != nil {
		return h.internalError(ctx, span, "Ошибка при построении графика калорий", err)
	}
	html, err := charts.InteractiveHTML(data)
	if err != nil {
		return h.internalError(ctx, span, "Ошибка при построении интерактивного графика", err)
	}

	return []Response{
		{File: &File{Kind: FilePhoto, Name: "progress_water.png", Caption: "График прогресса по воде", Data: waterPNG}},
		{File: &File{Kind: FilePhoto, Name: "progress_calories.png", Caption: "График прогресса по калориям", Data: caloriesPNG}},
		{File: &File{Kind: FileDocument, Name: "progress_interactive.html", Caption: "Интерактивный график прогресса (откройте в браузере)", Data: html}},
	}
}

func (h *Handler) recommendations(ctx context.Context, span trace.Span, userID int64) []Response {
	profile, resp := h.requireProfile(ctx, span, userID)
	if profile == nil {
		return resp
	}

	today, err := h.aggregator.Today(ctx, userID)
	if err != nil {
		return h.internalError(ctx, span, "Ошибка при подсчете итогов дня", err)
	}

	in := recommend.Inputs{
		NetCalories: today.Balance,
		CalorieGoal: profile.CalorieGoal,
		TotalWater:  today.Water,
		WaterGoal:   h.waterGoal(ctx, profile),
	}
	result := recommend.Classify(in)
	span.SetAttributes(
		attribute.String("calorie_band", result.Calorie.String()),
		attribute.String("water_band", result.Water.String()),
	)

	return []Response{{Text: recommend.Render(result, in), ParseMode: ParseModeHTML}}
}
