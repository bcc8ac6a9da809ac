// internal/cli/list_models.go
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/poegate/poegate/internal/modality"
	"github.com/poegate/poegate/internal/models"
	"github.com/spf13/cobra"
)

// listCmd groups the enumeration subcommands.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List resources",
}

// modalityStyles tints each modality in listings.
var modalityStyles = map[modality.Modality]lipgloss.Style{
	modality.Text:  lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	modality.Image: lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
	modality.Video: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	modality.Audio: lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
}

// listModelsCmd implements 'list models', which registers the current catalog
// (cached, with fallback) and prints every model grouped by modality.
var listModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List all models the Poe API currently offers",
	Long:  `The 'models' subcommand fetches the remote model catalog (cached for the configured freshness window, with a static fallback when the fetch fails) and lists every model with its modality and registration key.`,
	Run: func(cmd *cobra.Command, args []string) {
		registrar := models.NewRegistrar(GetConfig())
		registered := registrar.Register(cmd.Context())
		if len(registered) == 0 {
			fmt.Println("No models available.")
			return
		}

		headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
		for _, mod := range modality.All() {
			var lines []string
			for _, m := range registered {
				if m.Modality() != mod {
					continue
				}
				lines = append(lines, modalityStyles[mod].Render(fmt.Sprintf("- %s  (%s)", m.Name(), m.ID())))
			}
			if len(lines) == 0 {
				continue
			}
			fmt.Println(headerStyle.Render(fmt.Sprintf("%s:", mod)))
			for _, line := range lines {
				fmt.Println("  " + line)
			}
			fmt.Println()
		}
	},
}

func init() {
	listCmd.AddCommand(listModelsCmd)
	rootCmd.AddCommand(listCmd)
}
