package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sketchworks/sketchify/internal/config"
	"github.com/sketchworks/sketchify/internal/credential"
	"github.com/sketchworks/sketchify/internal/models"
	"github.com/sketchworks/sketchify/internal/sketch"
	"github.com/sketchworks/sketchify/internal/storage"
	"github.com/sketchworks/sketchify/internal/texture"
	"github.com/spf13/cobra"
)

func newSketchCmd() *cobra.Command {
	var (
		imagePath   string
		textureName string
		captions    []string
		outPath     string
		provider    string
		model       string
		apiKey      string
	)

	cmd := &cobra.Command{
		Use:   "sketch",
		Short: "Generate a single sketch from a photo",
		Example: `  # Sketch a photo on rough watercolor paper
  sketchify sketch --image photo.jpg --texture rough

  # Add hand-lettered captions and write to a specific file
  sketchify sketch --image photo.jpg --caption "Summer 2026" --out sketch.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()

			credStore, err := credential.NewStore()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			sessions := storage.New()
			now := time.Now()
			sessionID := fmt.Sprintf("cli_%d", now.UnixNano())
			sessions.Set(sessionID, &models.SketchSession{
				ID: sessionID,
				Source: &models.Image{
					Data:     data,
					MIMEType: models.DetectMIME(data),
					Filename: filepath.Base(imagePath),
				},
				CreatedAt: now,
				UpdatedAt: now,
			})

			service := sketch.NewService(cfg, sessions, credStore)
			session, err := service.Generate(cmd.Context(), sessionID, sketch.Params{
				Texture:  textureName,
				Captions: captions,
				Provider: provider,
				Model:    model,
				APIKey:   apiKey,
			})
			if err != nil {
				return err
			}
			if session.Error != "" {
				return fmt.Errorf("%s", session.Error)
			}

			if outPath == "" {
				base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
				outPath = base + "-sketch" + models.ExtensionForMIME(session.Generated.MIMEType)
			}
			if err := os.WriteFile(outPath, session.Generated.Data, 0644); err != nil {
				return fmt.Errorf("failed to write sketch: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to the source photo (required)")
	cmd.Flags().StringVarP(&textureName, "texture", "t", texture.DefaultName, "Paper texture: "+strings.Join(texture.Names(), ", "))
	cmd.Flags().StringArrayVar(&captions, "caption", nil, "Caption text (repeatable)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default <image>-sketch.<ext>)")
	cmd.Flags().StringVar(&provider, "provider", "", "Provider: gemini or openai (default gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (default per provider)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (default: stored credential or environment)")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}
