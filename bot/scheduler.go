package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"github.com/awhatson15/nutrition-bot/progress"
)

const msgDialogExpired = "⌛ Диалог отменен из-за бездействия. Начните заново командой /set_profile или /log_food."

// Schedule расписание фоновых задач
type Schedule struct {
	DialogTTL       time.Duration
	DialogSweepCron string
	ReminderEnabled bool
	ReminderCron    string
}

// NewScheduler создает планировщик с очисткой диалогов и напоминанием о воде.
// Запуск и остановка остаются за вызывающим.
func (b *Bot) NewScheduler(ctx context.Context, s Schedule) (*cron.Cron, error) {
	cronLog := cron.PrintfLogger(slog.NewLogLogger(b.log.Handler(), slog.LevelDebug))
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	if _, err := scheduler.AddFunc(s.DialogSweepCron, func() {
		b.SweepDialogs(s.DialogTTL)
	}); err != nil {
		return nil, fmt.Errorf("ошибка при настройке очистки диалогов: %w", err)
	}

	if s.ReminderEnabled {
		if _, err := scheduler.AddFunc(s.ReminderCron, func() {
			b.SendHydrationReminders(ctx)
		}); err != nil {
			return nil, fmt.Errorf("ошибка при настройке напоминаний: %w", err)
		}
	}

	return scheduler, nil
}

// SweepDialogs закрывает диалоги без ответа дольше ttl и сообщает об этом пользователям
func (b *Bot) SweepDialogs(ttl time.Duration) {
	expired := b.handler.Machine().ExpireIdle(ttl)
	if len(expired) == 0 {
		return
	}
	b.log.Info("Закрыты неактивные диалоги", "count", len(expired))

	for _, userID := range expired {
		if _, err := b.sender.Send(tgbotapi.NewMessage(userID, msgDialogExpired)); err != nil {
			b.log.Warn("Ошибка при уведомлении о закрытии диалога", "user_id", userID, "error", err)
		}
	}
}

// SendHydrationReminders напоминает о воде всем, кто не выпил дневную норму.
// Возвращает число отправленных напоминаний.
func (b *Bot) SendHydrationReminders(ctx context.Context) int {
	profiles, err := b.profiles.ListProfiles(ctx)
	if err != nil {
		b.log.Error("Ошибка при получении профилей для напоминаний", "error", err)
		return 0
	}

	aggregator := b.handler.Aggregator()
	sent := 0
	for _, profile := range profiles {
		today, err := aggregator.Today(ctx, profile.UserID)
		if err != nil {
			b.log.Error("Ошибка при подсчете итогов дня", "user_id", profile.UserID, "error", err)
			continue
		}

		goal, _ := aggregator.WaterGoal(ctx, profile)
		remaining := progress.Remaining(goal, today.Water)
		if remaining <= 0 {
			continue
		}

		text := reminderText(today.Water, goal, remaining)
		if _, err := b.sender.Send(tgbotapi.NewMessage(profile.UserID, text)); err != nil {
			b.log.Warn("Ошибка при отправке напоминания", "user_id", profile.UserID, "error", err)
			continue
		}
		sent++
	}

	b.log.Info("Напоминания о воде отправлены", "sent", sent, "profiles", len(profiles))
	return sent
}

func reminderText(drunk, goal, remaining float64) string {
	return fmt.Sprintf("💧 Напоминание: сегодня выпито %.0f мл из %.0f мл.\nОсталось выпить: %.0f мл. Записать: /log_water <мл>",
		drunk, goal, remaining)
}
