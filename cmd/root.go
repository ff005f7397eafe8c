package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sketchify",
		Short: "Turn photos into hand-drawn sketches with generative image models",
		Long: `Sketchify turns a photo into a hand-drawn pencil sketch on one of three
paper textures, with optional hand-lettered captions, using a generative
image model (Gemini or OpenAI).

Run "sketchify serve" for the web interface, or "sketchify sketch" to
generate a single sketch from the command line.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSketchCmd())
	cmd.AddCommand(newBatchCmd())

	return cmd
}
