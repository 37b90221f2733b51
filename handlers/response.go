package handlers

import (
	"context"
	"log/slog"

	"github.com/awhatson15/nutrition-bot/dialog"
)

const (
	ParseModeHTML = "HTML"

	CallbackCalorieDefault = "calorie_goal:default"
	CallbackSexPrefix      = "sex:"
)

// Message входящее сообщение пользователя
type Message struct {
	UserID int64
	// Command команда без слеша; пусто для обычного текста
	Command string
	Args    string
	Text    string
}

// Button inline-кнопка
type Button struct {
	Text string
	Data string
}

// FileKind как отправить файл
type FileKind int

const (
	FilePhoto FileKind = iota
	FileDocument
)

// File вложение ответа
type File struct {
	Kind    FileKind
	Name    string
	Caption string
	Data    []byte
}

// Response одно исходящее сообщение
type Response struct {
	Text      string
	ParseMode string
	Buttons   [][]Button
	File      *File
}

func text(s string) Response {
	return Response{Text: s}
}

func keyboardFor(k dialog.Keyboard) [][]Button {
	switch k {
	case dialog.KeyboardSex:
		return [][]Button{{
			{Text: "Мужской", Data: CallbackSexPrefix + "male"},
			{Text: "Женский", Data: CallbackSexPrefix + "female"},
		}}
	case dialog.KeyboardCalorieGoal:
		return [][]Button{{
			{Text: "По умолчанию", Data: CallbackCalorieDefault},
		}}
	default:
		return nil
	}
}

func fromReply(r dialog.Reply) Response {
	return Response{Text: r.Text, Buttons: keyboardFor(r.Keyboard)}
}

type loggerKey struct{}

// ContextWithLogger кладет в контекст логгер запроса
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func (h *Handler) logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return h.log
}
