package survey

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sampark/cmd/client/cmd/output"
	"sampark/internal/domain/survey"
)

var (
	listPanchayat string
	listUnsynced  bool
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список обследований",
	Long: `Показывает локальные обследования. При доступном сервере список
объединяется с серверным: несинхронизированные локальные правки всегда
имеют приоритет.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := output.App(cmd)
		if err != nil {
			return err
		}

		f := survey.Filter{PanchayatID: listPanchayat}
		if listUnsynced {
			unsynced := false
			f.Synced = &unsynced
		}

		list, err := app.Surveys().List(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("ошибка получения списка: %w", err)
		}

		return output.Print(cmd, list, func() { printTable(list) })
	},
}

func printTable(list []survey.Merged) {
	if len(list) == 0 {
		fmt.Println("Обследования не найдены")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOCAL ID\tSURVEY ID\tДЕРЕВНЯ\tЗАПОЛНЕНО\tСТАТУС\tИСТОЧНИК")
	for _, m := range list {
		serverID := m.ServerID
		if serverID == "" {
			serverID = "-"
		}
		status := string(m.SyncStatus)
		if m.IsDraft {
			status = "draft"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\t%s\n",
			m.LocalID, serverID, m.VillageName, m.CompletionPercentage, status, m.Source)
	}
	w.Flush()

	fmt.Printf("\nВсего: %d\n", len(list))
}

func init() {
	ListCmd.Flags().StringVar(&listPanchayat, "panchayat", "", "фильтр по панчаяту")
	ListCmd.Flags().BoolVar(&listUnsynced, "unsynced", false, "только несинхронизированные")
}
