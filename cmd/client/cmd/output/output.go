// Package output печатает результаты команд в текстовом виде или в JSON.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sampark/internal/app/client"
)

// App достает приложение, созданное в PersistentPreRunE
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := client.FromContext(cmd.Context())
	if !ok {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

func JSON(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("json")
	return err == nil && v
}

// Print выводит v как JSON при --json, иначе вызывает human
func Print(cmd *cobra.Command, v any, human func()) error {
	if !JSON(cmd) {
		human()
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func Success(format string, a ...any) {
	color.Green("✓ "+format, a...)
}

func Warn(format string, a ...any) {
	color.Yellow("⚠ "+format, a...)
}

func Fail(format string, a ...any) {
	color.Red("✗ "+format, a...)
}
