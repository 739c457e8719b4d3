package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sampark/cmd/client/cmd/output"
	"sampark/cmd/client/cmd/survey"
	"sampark/cmd/client/cmd/sync"
	domainsync "sampark/internal/domain/sync"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Инициализировать клиент Sampark",
	Long: `Команда init выполняет первоначальную настройку клиента:
	1. Создает директорию данных и локальную базу
	2. Сохраняет токен доступа к серверу
	3. Проверяет соединение с сервером`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("=== Инициализация Sampark ===")
		fmt.Println()
		fmt.Printf("Данные: %s\n", cfg.DataPath)

		token, err := readToken()
		if err != nil {
			return err
		}

		if token != "" {
			if err := app.SaveToken(token); err != nil {
				return fmt.Errorf("ошибка сохранения токена: %w", err)
			}
			output.Success("Токен сохранен в %s", cfg.TokenPath)
		} else if !app.IsAuthenticated() {
			output.Warn("Токен не задан, синхронизация потребует авторизации")
		}

		fmt.Println("Проверка соединения с сервером...")
		switch app.Monitor().Check(cmd.Context()) {
		case domainsync.ReachOnline:
			output.Success("Соединение с сервером установлено")
		case domainsync.ReachOffline:
			output.Warn("Нет сети. Можно работать офлайн, данные выгрузятся позже.")
		default:
			output.Warn("Сервер %s недоступен. Можно работать офлайн.", cfg.BaseURL())
		}

		fmt.Println()
		output.Success("Инициализация завершена")
		fmt.Println()
		fmt.Println("Что дальше:")
		fmt.Println("1. Создайте обследование: sampark survey create --village <название>")
		fmt.Println("2. Выгрузите очередь: sampark sync now")
		return nil
	},
}

// readToken спрашивает токен скрытым вводом; вне терминала читает строку из stdin.
func readToken() (string, error) {
	fmt.Print("Токен доступа (Enter чтобы пропустить): ")
	defer fmt.Println()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("ошибка чтения токена: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return strings.TrimSpace(line), nil
}

func init() {
	rootCmd.AddCommand(initCmd)

	rootCmd.AddCommand(survey.SurveyCmd)
	survey.SurveyCmd.AddCommand(survey.CreateCmd)
	survey.SurveyCmd.AddCommand(survey.ListCmd)
	survey.SurveyCmd.AddCommand(survey.GetCmd)
	survey.SurveyCmd.AddCommand(survey.DeleteCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	sync.SyncCmd.AddCommand(sync.NowCmd)
	sync.SyncCmd.AddCommand(sync.FullCmd)
	sync.SyncCmd.AddCommand(sync.StatusCmd)
	sync.SyncCmd.AddCommand(sync.LogsCmd)
	sync.SyncCmd.AddCommand(sync.ClearCmd)
}
