package sync

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sampark/cmd/client/cmd/output"
	"sampark/internal/domain/sync"
)

var (
	logsLimit  int
	clearLogs  bool
	clearForce bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Управление синхронизацией",
	Long: `Выгрузка очереди операций на сервер, загрузка серверных изменений
и просмотр журнала синхронизации.`,
}

var NowCmd = &cobra.Command{
	Use:   "now",
	Short: "Выгрузить очередь сейчас",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := output.App(cmd)
		if err != nil {
			return err
		}

		res, err := app.Sync().SyncNow(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка синхронизации: %w", err)
		}
		return output.Print(cmd, res, func() { printResult(res) })
	},
}

var FullCmd = &cobra.Command{
	Use:   "full",
	Short: "Загрузить изменения с сервера, обновить схемы и выгрузить очередь",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := output.App(cmd)
		if err != nil {
			return err
		}

		res, err := app.Sync().FullSync(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка синхронизации: %w", err)
		}
		return output.Print(cmd, res, func() {
			fmt.Printf("Загружено с сервера: %d\n", res.Pulled)
			printResult(res.Push)
		})
	},
}

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Показать статус синхронизации",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := output.App(cmd)
		if err != nil {
			return err
		}

		report, err := app.Sync().GetSyncStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения статуса: %w", err)
		}
		reach := app.Monitor().Check(cmd.Context())

		return output.Print(cmd, report, func() {
			fmt.Println("=== Статус синхронизации ===")
			fmt.Printf("Соединение:         %s\n", reach)
			fmt.Printf("Авторизация:        %v\n", app.IsAuthenticated())
			fmt.Printf("Ожидают выгрузки:   %d\n", report.PendingOperations)
			fmt.Printf("Обследований:       %d (не синхронизировано: %d)\n",
				report.Stats.TotalSurveys, report.Stats.UnsyncedSurveys)
			if report.LastSync != nil {
				fmt.Printf("Последняя попытка:  %s\n", report.LastSync.Local().Format("2006-01-02 15:04:05"))
			}
			if report.AuthPaused {
				output.Warn("Фоновая синхронизация приостановлена до обновления токена")
			}
		})
	},
}

var LogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Журнал синхронизации",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := output.App(cmd)
		if err != nil {
			return err
		}

		entries, err := app.Sync().GetSyncLogs(cmd.Context(), logsLimit)
		if err != nil {
			return fmt.Errorf("ошибка чтения журнала: %w", err)
		}

		return output.Print(cmd, entries, func() {
			if len(entries) == 0 {
				fmt.Println("Журнал пуст")
				return
			}
			for _, e := range entries {
				fmt.Printf("%s  %-8s %s\n", e.Timestamp.Local().Format(time.DateTime), e.Status, e.Message)
			}
		})
	},
}

var ClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Очистить очередь операций или журнал",
	Long: `Без флагов удаляет все невыгруженные операции. Несинхронизированные
обследования останутся на устройстве и снова попадут в очередь при следующей
синхронизации. С --logs очищает только журнал.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := output.App(cmd)
		if err != nil {
			return err
		}

		if clearLogs {
			if err := app.Sync().ClearSyncLogs(cmd.Context()); err != nil {
				return fmt.Errorf("ошибка очистки журнала: %w", err)
			}
			output.Success("Журнал синхронизации очищен")
			return nil
		}

		if !clearForce {
			return fmt.Errorf("очистка очереди необратима, повторите с --force")
		}

		n, err := app.Sync().ClearSyncQueue(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка очистки очереди: %w", err)
		}
		return output.Print(cmd, map[string]int64{"removed": n}, func() {
			output.Success("Удалено операций: %d", n)
		})
	},
}

func printResult(res *sync.Result) {
	if res == nil {
		return
	}

	switch res.Status {
	case sync.OutcomeSuccess:
		output.Success("%s", res.Message)
	case sync.OutcomeOffline, sync.OutcomeServerUnreachable, sync.OutcomeSkipped:
		output.Warn("%s", res.Message)
	default:
		output.Fail("%s", res.Message)
	}

	d := res.Details
	if d.Total > 0 {
		fmt.Printf("Всего: %d, успешно: %d, пропущено: %d, с ошибкой: %d\n", d.Total, d.Success, d.Skipped, d.Failed)
	}

	for i, e := range d.Errors {
		if i == 3 {
			fmt.Printf("  ... и еще %d ошибок\n", len(d.Errors)-3)
			break
		}
		fmt.Printf("  • %s %s: %s\n", e.Action, e.LocalID, e.Error)
	}

	if res.AuthRequired {
		output.Warn("Сервер отклонил токен. Выполните: sampark init")
	}
}

func init() {
	LogsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 20, "сколько записей показать")
	ClearCmd.Flags().BoolVar(&clearLogs, "logs", false, "очистить журнал вместо очереди")
	ClearCmd.Flags().BoolVar(&clearForce, "force", false, "подтвердить очистку очереди")
}
