package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/awhatson15/nutrition-bot/handlers"
	"github.com/awhatson15/nutrition-bot/models"
)

// Sender часть Telegram API, через которую бот отвечает
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ProfileLister источник профилей для рассылки напоминаний
type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
}

// Bot представляет Telegram бота
type Bot struct {
	API      *tgbotapi.BotAPI
	sender   Sender
	handler  *handlers.Handler
	profiles ProfileLister
	locks    *userLocks
	log      *slog.Logger
	wg       sync.WaitGroup
}

// NewBot создает нового бота
func NewBot(token string, handler *handlers.Handler, profiles ProfileLister, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании бота: %w", err)
	}

	b := newBot(api, handler, profiles, logger)
	b.API = api
	return b, nil
}

func newBot(sender Sender, handler *handlers.Handler, profiles ProfileLister, logger *slog.Logger) *Bot {
	return &Bot{
		sender:   sender,
		handler:  handler,
		profiles: profiles,
		locks:    newUserLocks(),
		log:      logger,
	}
}

// Start запускает long polling и блокируется до отмены ctx.
// Обновления одного пользователя обрабатываются по очереди.
func (b *Bot) Start(ctx context.Context) error {
	b.log.Info("Авторизован", "username", b.API.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.API.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.API.StopReceivingUpdates()
			b.wg.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

// requestContext добавляет в контекст логгер с идентификатором запроса
func (b *Bot) requestContext(ctx context.Context, userID int64) (context.Context, *slog.Logger) {
	logger := b.log.With("request_id", uuid.NewString(), "user_id", userID)
	return handlers.ContextWithLogger(ctx, logger), logger
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	userID := message.From.ID
	chatID := message.Chat.ID

	unlock := b.locks.lock(userID)
	defer unlock()

	ctx, logger := b.requestContext(ctx, userID)

	msg := handlers.Message{UserID: userID, Text: message.Text}
	if message.IsCommand() {
		msg.Command = message.Command()
		msg.Args = message.CommandArguments()
		logger.Debug("Получена команда", "command", msg.Command)
	}

	b.reply(logger, chatID, b.handler.HandleMessage(ctx, msg))
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}
	userID := query.From.ID
	chatID := userID
	if query.Message != nil {
		chatID = query.Message.Chat.ID
	}

	unlock := b.locks.lock(userID)
	defer unlock()

	ctx, logger := b.requestContext(ctx, userID)

	if _, err := b.sender.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.Warn("Ошибка при ответе на callback", "error", err)
	}

	b.reply(logger, chatID, b.handler.HandleCallback(ctx, userID, query.Data))
}

func (b *Bot) reply(logger *slog.Logger, chatID int64, responses []handlers.Response) {
	for _, r := range responses {
		if err := b.send(chatID, r); err != nil {
			logger.Error("Ошибка при отправке ответа", "error", err)
		}
	}
}

// send переводит ответ обработчика в сообщение Telegram
func (b *Bot) send(chatID int64, r handlers.Response) error {
	var c tgbotapi.Chattable

	if r.File != nil {
		file := tgbotapi.FileBytes{Name: r.File.Name, Bytes: r.File.Data}
		switch r.File.Kind {
		case handlers.FileDocument:
			doc := tgbotapi.NewDocument(chatID, file)
			doc.Caption = r.File.Caption
			c = doc
		default:
			photo := tgbotapi.NewPhoto(chatID, file)
			photo.Caption = r.File.Caption
			c = photo
		}
	} else {
		msg := tgbotapi.NewMessage(chatID, r.Text)
		msg.ParseMode = r.ParseMode
		if len(r.Buttons) > 0 {
			msg.ReplyMarkup = inlineKeyboard(r.Buttons)
		}
		c = msg
	}

	if _, err := b.sender.Send(c); err != nil {
		return fmt.Errorf("ошибка при отправке сообщения: %w", err)
	}
	return nil
}

func inlineKeyboard(buttons [][]handlers.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		keys := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			keys = append(keys, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(keys...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
