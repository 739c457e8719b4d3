package survey

import (
	"fmt"

	"github.com/spf13/cobra"

	"sampark/cmd/client/cmd/output"
	"sampark/internal/domain/survey"
)

var GetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Показать обследование",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := output.App(cmd)
		if err != nil {
			return err
		}

		m, err := app.Surveys().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("ошибка получения обследования: %w", err)
		}

		return output.Print(cmd, m, func() { printSurvey(m) })
	},
}

func printSurvey(m *survey.Merged) {
	fmt.Printf("Local ID:    %s\n", m.LocalID)
	if m.ServerID != "" {
		fmt.Printf("Survey ID:   %s\n", m.ServerID)
	}
	fmt.Printf("Панчаят:     %s\n", m.PanchayatID)
	fmt.Printf("Деревня:     %s\n", m.VillageName)
	fmt.Printf("Заполнено:   %d%%\n", m.CompletionPercentage)
	fmt.Printf("Статус:      %s (источник: %s)\n", m.SyncStatus, m.Source)
	fmt.Printf("Изменено:    %s\n", m.UpdatedAt.Local().Format("2006-01-02 15:04:05"))

	modules := m.Modules.ByName()
	if len(modules) == 0 {
		return
	}
	fmt.Println("Модули:")
	for _, name := range survey.ModuleNames {
		if data, ok := modules[name]; ok {
			fmt.Printf("  %s: %d полей\n", name, len(data))
		}
	}
}
