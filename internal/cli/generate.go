// internal/cli/generate.go
package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/poegate/poegate/internal/modality"
	"github.com/poegate/poegate/internal/models"
	"github.com/spf13/cobra"
)

var (
	genSize        string
	genQuality     string
	genDuration    int
	genAspectRatio string
	genVoice       string
	genSpeed       float64
)

// generateCmd implements 'generate', which drives an image, video, or audio
// model with modality-specific options and prints the resulting artifact URL.
var generateCmd = &cobra.Command{
	Use:   "generate <model> <prompt...>",
	Short: "Generate an image, video, or audio artifact",
	Long:  `The 'generate' command invokes a generation model with its modality-specific options (size/quality for image, duration/aspect-ratio for video, voice/speed for audio) and prints the artifact URL from the response.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registrar := models.NewRegistrar(GetConfig())
		registered := registrar.Register(cmd.Context())

		model, ok := models.Find(registered, args[0])
		if !ok {
			color.Red("Unknown model %q. Try 'poegate list models'.", args[0])
			return fmt.Errorf("unknown model %q", args[0])
		}
		if model.Modality() == modality.Text {
			color.Yellow("%s is a text model; use 'poegate run' instead.", model.Name())
			return fmt.Errorf("%s is not a generation model", model.Name())
		}

		options := map[string]any{}
		flagOptions := map[string]any{
			"size":         genSize,
			"quality":      genQuality,
			"duration":     genDuration,
			"aspect_ratio": genAspectRatio,
			"voice":        genVoice,
			"speed":        genSpeed,
		}
		flagNames := map[string]string{
			"size":         "size",
			"quality":      "quality",
			"duration":     "duration",
			"aspect_ratio": "aspect-ratio",
			"voice":        "voice",
			"speed":        "speed",
		}
		for key, value := range flagOptions {
			if cmd.Flags().Changed(flagNames[key]) {
				options[key] = value
			}
		}

		resp, err := model.Complete(cmd.Context(), models.Request{
			Prompt:  strings.Join(args[1:], " "),
			Options: options,
		})
		if err != nil {
			color.Red("Generation failed: %v", err)
			return err
		}
		fmt.Println(resp.Text)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&genSize, "size", "", `image size, e.g. "1024x1024"`)
	generateCmd.Flags().StringVar(&genQuality, "quality", "", `image quality: "standard" or "hd"`)
	generateCmd.Flags().IntVar(&genDuration, "duration", 0, "video duration in seconds")
	generateCmd.Flags().StringVar(&genAspectRatio, "aspect-ratio", "", `video aspect ratio, e.g. "16:9"`)
	generateCmd.Flags().StringVar(&genVoice, "voice", "", "audio voice identifier")
	generateCmd.Flags().Float64Var(&genSpeed, "speed", 0, "audio speed multiplier (0.5-2.0)")
	rootCmd.AddCommand(generateCmd)
}
