// internal/cli/chat.go
package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/poegate/poegate/internal/models"
	"github.com/poegate/poegate/internal/tui"
)

// chatCmd starts the interactive chat interface over the registered models.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long:  `Start the interactive terminal UI: pick a model from the Poe catalog, then converse with it. Text models stream their replies; media models return an artifact URL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		registrar := models.NewRegistrar(cfg)
		registered := registrar.Register(ctx)
		if len(registered) == 0 {
			color.Red("No models available.")
			return nil
		}

		tui.StartChat(ctx, cfg, registered, cancel)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
