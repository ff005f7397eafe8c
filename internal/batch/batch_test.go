package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

var pngBytes = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, []byte("fake image payload")...)

func setupDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), pngBytes, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func TestRunEmptyDirectory(t *testing.T) {
	isolateEnv(t)
	dir := setupDir(t, "notes.txt")

	if _, err := Run(context.Background(), Options{Dir: dir}); err == nil {
		t.Error("expected error for directory without images")
	}
}

func TestRunRecordsPerImageOutcomes(t *testing.T) {
	isolateEnv(t)
	dir := setupDir(t, "a.png", "b.jpg", "skip.txt")

	// No credential anywhere, so every attempt fails with the
	// missing-credential message and no network call is made.
	summary, err := Run(context.Background(), Options{Dir: dir, Texture: "kraft"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Succeeded != 0 || summary.Failed != 2 {
		t.Errorf("succeeded/failed = %d/%d, want 0/2", summary.Succeeded, summary.Failed)
	}
	if len(summary.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(summary.Results))
	}
	for _, result := range summary.Results {
		if !strings.Contains(result.Error, "No API key set") {
			t.Errorf("result for %s has error %q, want missing-credential message", result.Input, result.Error)
		}
		if result.Duration == "" {
			t.Errorf("result for %s has no duration", result.Input)
		}
	}

	// Results are sorted by input path for stable reports.
	if !strings.HasSuffix(summary.Results[0].Input, "a.png") {
		t.Errorf("first result = %s, want a.png", summary.Results[0].Input)
	}
}

func TestRunWritesYAMLSummary(t *testing.T) {
	isolateEnv(t)
	dir := setupDir(t, "photo.png")
	outDir := t.TempDir()

	if _, err := Run(context.Background(), Options{Dir: dir, OutDir: outDir, Texture: "rough"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "sketch-results.yaml"))
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}

	var summary Summary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		t.Fatalf("summary is not valid YAML: %v", err)
	}
	if summary.Config.Texture != "rough" {
		t.Errorf("summary texture = %q, want rough", summary.Config.Texture)
	}
	if summary.Config.Dir != dir {
		t.Errorf("summary dir = %q, want %q", summary.Config.Dir, dir)
	}
}

func TestRunMissingDirectory(t *testing.T) {
	isolateEnv(t)
	if _, err := Run(context.Background(), Options{Dir: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("expected error for missing directory")
	}
}
