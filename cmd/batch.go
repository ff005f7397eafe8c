package cmd

import (
	"fmt"
	"strings"

	"github.com/sketchworks/sketchify/internal/batch"
	"github.com/sketchworks/sketchify/internal/texture"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	var opts batch.Options

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Sketch every photo in a directory",
		Long: `Stylizes every image in a directory with a bounded worker pool and
writes a YAML summary of the run alongside the generated sketches.`,
		Example: `  # Sketch a folder of photos on kraft paper, four at a time
  sketchify batch --dir photos/ --texture kraft --concurrency 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := batch.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", "", "Directory of photos to sketch (required)")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "Output directory (default: same as --dir)")
	cmd.Flags().StringVarP(&opts.Texture, "texture", "t", texture.DefaultName, "Paper texture: "+strings.Join(texture.Names(), ", "))
	cmd.Flags().StringArrayVar(&opts.Captions, "caption", nil, "Caption text (repeatable)")
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "Provider: gemini or openai (default gemini)")
	cmd.Flags().StringVar(&opts.Model, "model", "", "Model name (default per provider)")
	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "API key (default: stored credential or environment)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "Maximum concurrent generations")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}
