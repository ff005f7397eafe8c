package texture

import (
	"fmt"
	"strings"
)

// Texture is one of the fixed paper backdrops a sketch can be rendered on.
// The backdrop is applied through the prompt, not computed locally.
type Texture struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

const (
	Smooth = "smooth"
	Rough  = "rough"
	Kraft  = "kraft"
)

// DefaultName is the texture used when a request leaves the field empty.
const DefaultName = Smooth

var textures = []Texture{
	{
		Name:        Smooth,
		Label:       "Smooth bristol",
		Description: "smooth white bristol paper with faint graphite shading",
	},
	{
		Name:        Rough,
		Label:       "Rough watercolor",
		Description: "rough cold-press watercolor paper with visible grain and deckled edges",
	},
	{
		Name:        Kraft,
		Label:       "Toned kraft",
		Description: "warm toned kraft paper with white chalk highlights",
	},
}

// All returns the fixed texture variants in display order.
func All() []Texture {
	out := make([]Texture, len(textures))
	copy(out, textures)
	return out
}

// Lookup finds a texture by name. An empty name resolves to the default.
func Lookup(name string) (Texture, error) {
	if name == "" {
		name = DefaultName
	}
	for _, t := range textures {
		if t.Name == name {
			return t, nil
		}
	}
	return Texture{}, fmt.Errorf("unknown texture %q (valid: %s)", name, strings.Join(Names(), ", "))
}

// Names returns the valid texture names.
func Names() []string {
	names := make([]string, len(textures))
	for i, t := range textures {
		names[i] = t.Name
	}
	return names
}

// ComposeInstruction builds the natural-language instruction sent alongside
// the source photo. The texture description and any captions are embedded in
// the prompt text; nothing is rendered locally.
func ComposeInstruction(t Texture, captions []string) string {
	var b strings.Builder
	b.WriteString("Redraw this photo as a hand-drawn pencil sketch on ")
	b.WriteString(t.Description)
	b.WriteString(". Keep the composition and subject of the original photo.")

	for _, caption := range captions {
		caption = strings.TrimSpace(caption)
		if caption == "" {
			continue
		}
		b.WriteString(" Add the caption \"")
		b.WriteString(caption)
		b.WriteString("\" in hand-lettered script below the sketch.")
	}

	b.WriteString(" Return only the finished sketch image.")
	return b.String()
}
