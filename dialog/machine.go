package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/awhatson15/nutrition-bot/food"
	"github.com/awhatson15/nutrition-bot/goals"
	"github.com/awhatson15/nutrition-bot/models"
	"github.com/awhatson15/nutrition-bot/utils"
)

// ProfileStore чтение и сохранение профилей
type ProfileStore interface {
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error
}

// FoodLog журнал еды
type FoodLog interface {
	AppendFood(ctx context.Context, event *models.FoodEvent) (int64, error)
}

// WeatherLookup источник текущей температуры
type WeatherLookup interface {
	Temperature(ctx context.Context, city string) (float64, error)
}

// Input ответ пользователя на текущем шаге
type Input struct {
	Text string
	// UseDefault пользователь выбрал расчетную норму калорий кнопкой
	UseDefault bool
}

// Outcome чем закончилась обработка ответа
type Outcome int

const (
	Advanced Outcome = iota
	Reprompt
	Committed
	Aborted
)

// Keyboard какую клавиатуру показать вместе с ответом
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardSex
	KeyboardCalorieGoal
)

// Reply ответ пользователю
type Reply struct {
	Text     string
	Outcome  Outcome
	Kind     Kind
	Step     Step
	Keyboard Keyboard

	// Заполняются при Committed
	Profile   *models.Profile
	WaterGoal float64
	FoodEvent *models.FoodEvent

	// Err причина Aborted
	Err error
}

var prompts = map[Step]string{
	StepWeight:      "Введите ваш вес в кг:",
	StepHeight:      "Введите ваш рост в см:",
	StepAge:         "Введите ваш возраст:",
	StepActivity:    "Сколько минут активности у вас в день?",
	StepCity:        "В каком городе вы находитесь?",
	StepSex:         "Введите ваш пол (male/female):",
	StepCalorieGoal: "Введите вашу целевую норму калорий или нажмите «По умолчанию»:",
	StepFoodAmount:  "Сколько граммов вы съели?",
}

var corrections = map[Step]string{
	StepWeight:      "Пожалуйста, введите корректное числовое значение для веса.",
	StepHeight:      "Пожалуйста, введите корректное числовое значение для роста.",
	StepAge:         "Пожалуйста, введите корректное целое число для возраста.",
	StepActivity:    "Пожалуйста, введите корректное целое число для активности (в минутах).",
	StepCity:        "Город не может быть пустым.",
	StepSex:         "Пожалуйста, введите 'male' или 'female' для пола.",
	StepCalorieGoal: "Пожалуйста, введите корректное числовое значение для цели калорий.",
	StepFoodAmount:  "Пожалуйста, введите корректное числовое значение для количества в граммах.",
}

var keyboards = map[Step]Keyboard{
	StepSex:         KeyboardSex,
	StepCalorieGoal: KeyboardCalorieGoal,
}

// Machine ведет диалоги пользователей
type Machine struct {
	store    *Store
	profiles ProfileStore
	foods    FoodLog
	weather  WeatherLookup
	log      *slog.Logger
	now      func() time.Time
}

// NewMachine создает машину диалогов
func NewMachine(store *Store, profiles ProfileStore, foods FoodLog, weather WeatherLookup, logger *slog.Logger) *Machine {
	return &Machine{
		store:    store,
		profiles: profiles,
		foods:    foods,
		weather:  weather,
		log:      logger,
		now:      time.Now,
	}
}

// StartProfile начинает настройку профиля заново, отбрасывая открытый диалог
func (m *Machine) StartProfile(userID int64) Reply {
	m.store.Put(userID, State{Kind: KindProfile, Step: StepWeight, UpdatedAt: m.now()})
	return m.prompt(KindProfile, StepWeight, Advanced, "")
}

// StartFood запоминает найденный продукт и спрашивает количество
func (m *Machine) StartFood(userID int64, match food.Match) Reply {
	m.store.Put(userID, State{Kind: KindFood, Step: StepFoodAmount, Food: &match, UpdatedAt: m.now()})

	reply := m.prompt(KindFood, StepFoodAmount, Advanced, "")
	reply.Text = fmt.Sprintf("🍎 %s — %.1f ккал на 100 г.\n%s", match.Name, match.CaloriesPer100g, reply.Text)
	return reply
}

// Cancel закрывает открытый диалог; false, если диалога не было
func (m *Machine) Cancel(userID int64) bool {
	return m.store.Clear(userID)
}

// Active вид открытого диалога пользователя
func (m *Machine) Active(userID int64) (Kind, bool) {
	state, ok := m.store.Get(userID)
	return state.Kind, ok
}

// ExpireIdle закрывает диалоги, простаивающие дольше ttl
func (m *Machine) ExpireIdle(ttl time.Duration) []int64 {
	return m.store.Expire(m.now().Add(-ttl))
}

// Handle обрабатывает ответ пользователя; false, если открытого диалога нет
func (m *Machine) Handle(ctx context.Context, userID int64, in Input) (Reply, bool) {
	state, ok := m.store.Get(userID)
	if !ok {
		return Reply{}, false
	}

	switch state.Kind {
	case KindProfile:
		return m.handleProfile(ctx, userID, state, in), true
	case KindFood:
		return m.handleFood(ctx, userID, state, in), true
	default:
		m.store.Clear(userID)
		return m.abort(state, fmt.Errorf("%w: неизвестный вид диалога %d", models.ErrStateCorruption, state.Kind),
			"Произошла ошибка. Начните заново."), true
	}
}

var profileSteps = []Step{StepWeight, StepHeight, StepAge, StepActivity, StepCity, StepSex, StepCalorieGoal}

func nextStep(step Step) Step {
	for i, s := range profileSteps {
		if s == step && i+1 < len(profileSteps) {
			return profileSteps[i+1]
		}
	}
	return ""
}

func (m *Machine) handleProfile(ctx context.Context, userID int64, state State, in Input) Reply {
	text := strings.TrimSpace(in.Text)
	draft := &state.Draft

	if in.UseDefault && state.Step != StepCalorieGoal {
		return m.reprompt(state)
	}

	var err error
	switch state.Step {
	case StepWeight:
		draft.Weight, err = utils.ParsePositiveFloat(text, models.MaxWeight)
	case StepHeight:
		draft.Height, err = utils.ParsePositiveFloat(text, models.MaxHeight)
	case StepAge:
		draft.Age, err = utils.ParseIntInRange(text, 1, models.MaxAge)
	case StepActivity:
		draft.ActivityMinutes, err = utils.ParseIntInRange(text, 0, models.MaxActivityMinutes)
	case StepCity:
		if text == "" {
			err = fmt.Errorf("%w: пустой город", models.ErrValidation)
		}
		draft.City = text
	case StepSex:
		draft.Sex, err = models.ParseSex(text)
	case StepCalorieGoal:
		var goal float64
		if in.UseDefault {
			goal = goals.CalorieGoal(draft.Weight, draft.Height, draft.Age, draft.ActivityMinutes, draft.Sex)
		} else if goal, err = utils.ParsePositiveFloat(text, models.MaxCalorieGoal); err != nil {
			return m.reprompt(state)
		}
		return m.commitProfile(ctx, userID, state, goal)
	default:
		m.store.Clear(userID)
		return m.abort(state, fmt.Errorf("%w: неизвестный шаг %q", models.ErrStateCorruption, state.Step),
			"Произошла ошибка. Начните настройку профиля заново: /set_profile")
	}

	if err != nil {
		m.log.Debug("Некорректный ответ в диалоге", "user_id", userID, "step", state.Step, "error", err)
		return m.reprompt(state)
	}

	state.Step = nextStep(state.Step)
	state.UpdatedAt = m.now()
	m.store.Put(userID, state)
	return m.prompt(KindProfile, state.Step, Advanced, "")
}

func (m *Machine) commitProfile(ctx context.Context, userID int64, state State, calorieGoal float64) Reply {
	draft := state.Draft

	temp, err := m.weather.Temperature(ctx, draft.City)
	if err != nil {
		m.store.Clear(userID)
		m.log.Warn("Погода недоступна, профиль не сохранен", "user_id", userID, "city", draft.City, "error", err)
		return m.abort(state, err,
			"Не удалось получить данные о погоде. Убедитесь, что город указан правильно, и начните заново: /set_profile")
	}

	profile := &models.Profile{
		UserID:          userID,
		Weight:          draft.Weight,
		Height:          draft.Height,
		Age:             draft.Age,
		ActivityMinutes: draft.ActivityMinutes,
		City:            draft.City,
		Sex:             draft.Sex,
		CalorieGoal:     calorieGoal,
		UpdatedAt:       m.now().UTC(),
	}

	if err := m.profiles.UpsertProfile(ctx, profile); err != nil {
		m.store.Clear(userID)
		m.log.Error("Ошибка при сохранении профиля", "user_id", userID, "error", err)
		return m.abort(state, err, "Не удалось сохранить профиль. Попробуйте позже: /set_profile")
	}

	m.store.Clear(userID)
	waterGoal := goals.WaterGoal(draft.Weight, draft.ActivityMinutes, &temp)
	m.log.Info("Профиль сохранен", "user_id", userID, "calorie_goal", calorieGoal, "water_goal", waterGoal)

	return Reply{
		Text: fmt.Sprintf("Ваш профиль успешно настроен!\nНорма калорий: %.2f ккал.\nНорма воды (на сегодня): %.0f мл.",
			calorieGoal, waterGoal),
		Outcome:   Committed,
		Kind:      KindProfile,
		Step:      StepCalorieGoal,
		Profile:   profile,
		WaterGoal: waterGoal,
	}
}

func (m *Machine) handleFood(ctx context.Context, userID int64, state State, in Input) Reply {
	if state.Food == nil {
		m.store.Clear(userID)
		return m.abort(state, fmt.Errorf("%w: нет данных о продукте", models.ErrStateCorruption),
			"Произошла ошибка при получении данных о продукте. Попробуйте снова.")
	}

	grams, err := utils.ParsePositiveFloat(in.Text, models.MaxFoodGrams)
	if err != nil || in.UseDefault {
		return m.reprompt(state)
	}

	profile, err := m.profiles.GetProfile(ctx, userID)
	if err != nil {
		m.store.Clear(userID)
		m.log.Error("Ошибка при получении профиля", "user_id", userID, "error", err)
		return m.abort(state, err, "Не удалось записать еду. Попробуйте позже.")
	}
	if profile == nil {
		m.store.Clear(userID)
		return m.abort(state, models.ErrMissingProfile, "Пожалуйста, сначала настройте ваш профиль с помощью /set_profile.")
	}

	event := &models.FoodEvent{
		UserID:      userID,
		ProductName: state.Food.Name,
		Grams:       grams,
		Calories:    state.Food.CaloriesPer100g * grams / 100,
		CreatedAt:   m.now().UTC(),
	}

	id, err := m.foods.AppendFood(ctx, event)
	m.store.Clear(userID)
	if err != nil {
		m.log.Error("Ошибка при записи еды", "user_id", userID, "error", err)
		return m.abort(state, err, "Не удалось записать еду. Попробуйте позже.")
	}
	event.ID = id

	return Reply{
		Text:      fmt.Sprintf("Записано: %.1f ккал (%.0f г).", event.Calories, grams),
		Outcome:   Committed,
		Kind:      KindFood,
		Step:      StepFoodAmount,
		FoodEvent: event,
	}
}

func (m *Machine) prompt(kind Kind, step Step, outcome Outcome, prefix string) Reply {
	text := prompts[step]
	if prefix != "" {
		text = prefix + "\n" + text
	}
	return Reply{
		Text:     text,
		Outcome:  outcome,
		Kind:     kind,
		Step:     step,
		Keyboard: keyboards[step],
	}
}

// reprompt повторяет вопрос текущего шага, состояние не меняется
func (m *Machine) reprompt(state State) Reply {
	return m.prompt(state.Kind, state.Step, Reprompt, corrections[state.Step])
}

func (m *Machine) abort(state State, err error, text string) Reply {
	return Reply{
		Text:    text,
		Outcome: Aborted,
		Kind:    state.Kind,
		Step:    state.Step,
		Err:     err,
	}
}
