// Package batch stylizes every photo in a directory and writes a YAML
// summary of the run.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sketchworks/sketchify/internal/config"
	"github.com/sketchworks/sketchify/internal/credential"
	"github.com/sketchworks/sketchify/internal/models"
	"github.com/sketchworks/sketchify/internal/sketch"
	"github.com/sketchworks/sketchify/internal/storage"
)

// Options configure one batch run.
type Options struct {
	Dir         string
	OutDir      string
	Texture     string
	Captions    []string
	Provider    string
	Model       string
	APIKey      string
	Concurrency int
}

// RunConfig is the configuration section of the summary YAML.
type RunConfig struct {
	Dir       string `yaml:"dir"`
	Texture   string `yaml:"texture"`
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model,omitempty"`
	Timestamp string `yaml:"timestamp"`
}

// Result records the outcome for a single photo.
type Result struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output,omitempty"`
	Error    string `yaml:"error,omitempty"`
	Duration string `yaml:"duration"`
}

// Summary is the complete batch run report.
type Summary struct {
	Config    RunConfig `yaml:"config"`
	Succeeded int       `yaml:"succeeded"`
	Failed    int       `yaml:"failed"`
	Results   []Result  `yaml:"results"`
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// Run stylizes every image in opts.Dir with bounded concurrency, writes each
// sketch next to its source (or into opts.OutDir), and writes a YAML summary.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	entries, err := os.ReadDir(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			inputs = append(inputs, filepath.Join(opts.Dir, entry.Name()))
		}
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no images found in %s", opts.Dir)
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = opts.Dir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	cfg := config.Default()
	if opts.Concurrency > 0 {
		cfg.MaxConcurrent = opts.Concurrency
	}

	credStore, err := credential.NewStore()
	if err != nil {
		return nil, err
	}

	sessions := storage.New()
	service := sketch.NewService(cfg, sessions, credStore)

	slog.Info("Starting batch run", "dir", opts.Dir, "images", len(inputs), "concurrency", cfg.MaxConcurrent)

	var mu sync.Mutex
	results := make([]Result, 0, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrent)
	for _, input := range inputs {
		g.Go(func() error {
			result := processOne(gctx, service, sessions, outDir, input, opts)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Input < results[j].Input })

	summary := &Summary{
		Config: RunConfig{
			Dir:       opts.Dir,
			Texture:   opts.Texture,
			Provider:  opts.Provider,
			Model:     opts.Model,
			Timestamp: time.Now().Format("2006-01-02_15-04-05"),
		},
		Results: results,
	}
	for _, r := range results {
		if r.Error == "" {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	summaryPath := filepath.Join(outDir, "sketch-results.yaml")
	data, err := yaml.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(summaryPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}

	slog.Info("Batch run complete", "succeeded", summary.Succeeded, "failed", summary.Failed, "summary", summaryPath)
	return summary, nil
}

func processOne(ctx context.Context, service *sketch.Service, sessions *storage.SessionStore, outDir, input string, opts Options) Result {
	start := time.Now()
	result := Result{Input: input}

	data, err := os.ReadFile(input)
	if err != nil {
		result.Error = err.Error()
		result.Duration = time.Since(start).Round(time.Millisecond).String()
		return result
	}

	now := time.Now()
	sessionID := fmt.Sprintf("batch_%s_%d", filepath.Base(input), now.UnixNano())
	sessions.Set(sessionID, &models.SketchSession{
		ID: sessionID,
		Source: &models.Image{
			Data:     data,
			Filename: filepath.Base(input),
			MIMEType: models.DetectMIME(data),
		},
		CreatedAt: now,
		UpdatedAt: now,
	})

	session, err := service.Generate(ctx, sessionID, sketch.Params{
		Texture:  opts.Texture,
		Captions: opts.Captions,
		Provider: opts.Provider,
		Model:    opts.Model,
		APIKey:   opts.APIKey,
	})
	if err != nil {
		result.Error = err.Error()
	} else if session.Error != "" {
		result.Error = session.Error
	} else {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		outPath := filepath.Join(outDir, base+"-sketch"+models.ExtensionForMIME(session.Generated.MIMEType))
		if err := os.WriteFile(outPath, session.Generated.Data, 0644); err != nil {
			result.Error = err.Error()
		} else {
			result.Output = outPath
		}
	}

	result.Duration = time.Since(start).Round(time.Millisecond).String()
	return result
}
