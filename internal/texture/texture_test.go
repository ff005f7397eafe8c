package texture

import (
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name        string
		textureName string
		want        string
		wantErr     bool
	}{
		{name: "smooth", textureName: "smooth", want: Smooth},
		{name: "rough", textureName: "rough", want: Rough},
		{name: "kraft", textureName: "kraft", want: Kraft},
		{name: "empty resolves to default", textureName: "", want: DefaultName},
		{name: "unknown rejected", textureName: "velvet", wantErr: true},
		{name: "case sensitive", textureName: "Smooth", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lookup(tt.textureName)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got texture %q", tt.textureName, got.Name)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tt.want {
				t.Errorf("expected texture %q, got %q", tt.want, got.Name)
			}
			if got.Description == "" {
				t.Errorf("texture %q has no prompt description", got.Name)
			}
		})
	}
}

func TestAllReturnsThreeFixedVariants(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("expected 3 textures, got %d", len(all))
	}

	// Mutating the returned slice must not affect the package state.
	all[0].Name = "mutated"
	if All()[0].Name == "mutated" {
		t.Error("All returned a reference to internal state")
	}
}

func TestComposeInstruction(t *testing.T) {
	tex, err := Lookup(Kraft)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		captions    []string
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:        "no captions",
			captions:    nil,
			wantContain: []string{tex.Description, "pencil sketch"},
			wantAbsent:  []string{"caption"},
		},
		{
			name:        "single caption",
			captions:    []string{"Summer 2026"},
			wantContain: []string{`"Summer 2026"`, "hand-lettered"},
		},
		{
			name:        "multiple captions",
			captions:    []string{"one", "two"},
			wantContain: []string{`"one"`, `"two"`},
		},
		{
			name:        "blank captions skipped",
			captions:    []string{"  ", ""},
			wantAbsent:  []string{"caption"},
			wantContain: []string{tex.Description},
		},
		{
			name:        "caption whitespace trimmed",
			captions:    []string{"  hello  "},
			wantContain: []string{`"hello"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeInstruction(tex, tt.captions)
			for _, want := range tt.wantContain {
				if !strings.Contains(got, want) {
					t.Errorf("instruction missing %q:\n%s", want, got)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("instruction unexpectedly contains %q:\n%s", absent, got)
				}
			}
		})
	}
}
