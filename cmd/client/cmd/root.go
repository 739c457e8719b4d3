package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"sampark/internal/app/client"
	"sampark/internal/app/client/config"
	envcfg "sampark/internal/config"
	"sampark/internal/utils/logger"
)

var (
	cfgFile   string
	cfg       *config.Config
	log       *slog.Logger
	app       *client.App
	debug     bool
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "sampark",
	Short: "Sampark - офлайн клиент панчаятских обследований",
	Long: `Sampark хранит обследования панчаятов на устройстве и выгружает их
на сервер, когда появляется сеть.

Все изменения сначала пишутся в локальную базу и ставятся в очередь,
поэтому работа в поле не зависит от связи.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: shutdownApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}

	// Логи CLI уходят в файл, чтобы не мешать выводу команд
	if debug {
		log = logger.New(envcfg.EnvLocal)
	} else {
		log = logger.NewWithFile(cfg.Env, cfg.LogFile)
	}

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(client.WithApp(cmd.Context(), app))
	return nil
}

func shutdownApp(_ *cobra.Command, _ []string) error {
	if app != nil {
		app.Shutdown()
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().Bool("json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера обследований")
}
