// internal/cli/run.go
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/poegate/poegate/internal/models"
	"github.com/spf13/cobra"
)

var (
	runSystem    string
	runNoStream  bool
	runTemp      float64
	runMaxTokens int
)

// runCmd implements 'run', a one-shot invocation of a single model. Text
// models stream fragments to stdout as they arrive unless --no-stream is set;
// image, video, and audio models print the generated artifact URL.
var runCmd = &cobra.Command{
	Use:   "run <model> <prompt...>",
	Short: "Run a single prompt against a model",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registrar := models.NewRegistrar(GetConfig())
		registered := registrar.Register(cmd.Context())

		model, ok := models.Find(registered, args[0])
		if !ok {
			color.Red("Unknown model %q. Try 'poegate list models'.", args[0])
			return fmt.Errorf("unknown model %q", args[0])
		}

		req := models.Request{
			Prompt:  strings.Join(args[1:], " "),
			System:  runSystem,
			Options: map[string]any{},
		}
		if cmd.Flags().Changed("temperature") {
			req.Options["temperature"] = runTemp
		}
		if cmd.Flags().Changed("max-tokens") {
			req.Options["max_tokens"] = runMaxTokens
		}

		if runNoStream || !model.CanStream() {
			resp, err := model.Complete(cmd.Context(), req)
			if err != nil {
				color.Red("Request failed: %v", err)
				return err
			}
			fmt.Println(resp.Text)
			return nil
		}

		err := model.Stream(cmd.Context(), req, models.Callbacks{
			OnChunk: func(chunk string) error {
				_, werr := fmt.Fprint(os.Stdout, chunk)
				return werr
			},
			OnComplete: func(meta models.Metadata) error {
				fmt.Println()
				return nil
			},
		})
		if err != nil {
			color.Red("Request failed: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runSystem, "system", "", "system prompt (text models only)")
	runCmd.Flags().BoolVar(&runNoStream, "no-stream", false, "wait for the complete response instead of streaming")
	runCmd.Flags().Float64Var(&runTemp, "temperature", 1.0, "sampling temperature (0-2)")
	runCmd.Flags().IntVar(&runMaxTokens, "max-tokens", 0, "maximum tokens to generate")
	rootCmd.AddCommand(runCmd)
}
