package survey

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sampark/cmd/client/cmd/output"
	"sampark/internal/domain/survey"
)

var (
	createVillage    string
	createPanchayat  string
	createFile       string
	createCompletion int
	createDraft      bool
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать обследование",
	Long: `Создает обследование локально и ставит его в очередь на выгрузку.

Данные модулей можно передать JSON файлом (--file) в формате
{"basic_info": {...}, "sanitation": {...}, ...}. Флаги переопределяют
значения из файла.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := output.App(cmd)
		if err != nil {
			return err
		}

		var in survey.Input
		if createFile != "" {
			data, err := os.ReadFile(createFile)
			if err != nil {
				return fmt.Errorf("ошибка чтения файла: %w", err)
			}
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("ошибка разбора файла: %w", err)
			}
		}

		if createVillage != "" {
			in.VillageName = createVillage
		}
		if createPanchayat != "" {
			in.PanchayatID = createPanchayat
		}
		if cmd.Flags().Changed("completion") {
			in.CompletionPercentage = &createCompletion
		}
		if cmd.Flags().Changed("draft") {
			in.IsDraft = &createDraft
		}

		sv, err := app.Surveys().Create(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("ошибка создания обследования: %w", err)
		}

		return output.Print(cmd, sv, func() {
			output.Success("Обследование создано: %s", sv.LocalID)
			if sv.IsDraft {
				fmt.Println("Черновик не выгружается, пока не будет завершен.")
			}
		})
	},
}

func init() {
	CreateCmd.Flags().StringVar(&createVillage, "village", "", "название деревни")
	CreateCmd.Flags().StringVar(&createPanchayat, "panchayat", "", "идентификатор панчаята (по умолчанию из конфигурации)")
	CreateCmd.Flags().StringVarP(&createFile, "file", "f", "", "JSON файл с данными модулей")
	CreateCmd.Flags().IntVar(&createCompletion, "completion", 0, "процент заполнения 0..100")
	CreateCmd.Flags().BoolVar(&createDraft, "draft", false, "сохранить как черновик")
}
