// Package cli команды запуска бота.
package cli

import (
	"github.com/spf13/cobra"
)

// Заполняются через -ldflags при сборке
var (
	version = "dev"
	commit  = "none"
)

// newRootCmd собирает дерево команд; без подкоманды запускается бот
func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "nutrition-bot",
		Short: "Telegram-бот для учета воды, калорий и тренировок",
		Long: `Telegram-бот для учета воды, калорий и тренировок.

Без подкоманды запускает бота (то же, что serve).
Настройки читаются из переменных окружения и файла .env.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, envFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "путь к файлу с переменными окружения (по умолчанию .env, если есть)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Запустить бота",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd, envFile)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Создать схему базы данных и выйти",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd, envFile)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Показать версию",
			Run: func(cmd *cobra.Command, args []string) {
				cmd.Printf("nutrition-bot %s (%s)\n", version, commit)
			},
		},
	)

	return rootCmd
}

// Execute разбирает аргументы и выполняет команду
func Execute() error {
	return newRootCmd().Execute()
}
