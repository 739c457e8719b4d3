package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sampark/cmd/client/cmd/output"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Удалить все локальные данные",
	Long: `Команда reset удаляет с устройства обследования, черновики, очередь
операций, журнал синхронизации и кэш схем. Невыгруженные изменения будут
потеряны. Токен доступа и настройки сохраняются.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetForce {
			return fmt.Errorf("сброс необратим, повторите с --force")
		}

		status, err := app.Sync().GetSyncStatus(cmd.Context())
		if err == nil && status.PendingOperations > 0 {
			output.Warn("Будет потеряно невыгруженных операций: %d", status.PendingOperations)
		}

		if err := app.ClearLocalData(cmd.Context()); err != nil {
			return fmt.Errorf("ошибка сброса данных: %w", err)
		}
		output.Success("Локальные данные удалены")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "подтвердить удаление данных")
}
