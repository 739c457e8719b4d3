package survey

import (
	"fmt"

	"github.com/spf13/cobra"

	"sampark/cmd/client/cmd/output"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить обследование",
	Long:  `Скрывает обследование на устройстве. С сервера оно удаляется при следующей синхронизации.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := output.App(cmd)
		if err != nil {
			return err
		}

		if err := app.Surveys().Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("ошибка удаления: %w", err)
		}

		return output.Print(cmd, map[string]string{"status": "deleted", "id": args[0]}, func() {
			output.Success("Обследование %s удалено", args[0])
		})
	},
}
