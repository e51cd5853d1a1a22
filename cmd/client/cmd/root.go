package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"storysync/internal/app/client"
	"storysync/internal/app/client/config"
	"storysync/internal/utils/logger"
)

var (
	envFile    string
	serverAddr string
	debug      bool
	jsonOutput bool

	cfg *config.Config
	log *slog.Logger
	app *client.App
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

var rootCmd = &cobra.Command{
	Use:   "syncctl",
	Short: "syncctl - клиент синхронизации Storymaster",
	Long: `syncctl сопрягает устройство с настольным Storymaster и обменивается
с ним изменениями сущностей: pull забирает изменения, push отправляет свои.

Состояние устройства (device_id, токен, метка последней синхронизации)
хранится в ~/.storysync/state.yaml.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(envFile)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if serverAddr != "" {
		cfg.ServerAddress = serverAddr
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	} else if level == "" {
		level = "warn"
	}
	log = logger.New(cfg.Env, logger.WithLevel(level), logger.WithOutput(os.Stderr))

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "файл с переменными окружения")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "адрес сервера (host:port или URL)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")

	rootCmd.AddCommand(pairCmd, pullCmd, pushCmd, statusCmd, devicesCmd)
}
