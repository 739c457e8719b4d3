package survey

import (
	"github.com/spf13/cobra"
)

var SurveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Работа с обследованиями",
	Long: `Создание, просмотр и удаление обследований.

Изменения сохраняются на устройстве и выгружаются при синхронизации.`,
}
