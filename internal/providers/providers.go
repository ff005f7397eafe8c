package providers

import (
	"context"
)

// Config represents a single stylization request to a generative provider.
type Config struct {
	Model       string
	APIKey      string
	Instruction string
	ImageData   []byte
	ImageMIME   string
	Temperature float64
}

// Result is the provider's response: at most one image, plus any text the
// model returned alongside (or instead of) the image.
type Result struct {
	ImageData []byte
	ImageMIME string
	Text      string
}

// HasImage reports whether the provider returned an image part.
func (r *Result) HasImage() bool {
	return r != nil && len(r.ImageData) > 0
}

// Provider defines the interface for a generative image provider.
type Provider interface {
	Stylize(ctx context.Context, config Config) (*Result, error)
}
