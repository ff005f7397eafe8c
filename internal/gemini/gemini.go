// Package gemini implements the sketch provider on Google's Gemini API,
// using the official Go SDK: https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"fmt"

	"github.com/sketchworks/sketchify/internal/providers"
	"google.golang.org/genai"
)

// DefaultModel is the image-output Gemini model used when none is requested.
const DefaultModel = "gemini-2.5-flash-image"

// Gemini is a provider for Google Gemini image-output models
type Gemini struct{}

// New returns a new Gemini provider
func New() *Gemini {
	return &Gemini{}
}

var _ providers.Provider = (*Gemini)(nil)

// Stylize sends the source photo and instruction to Gemini and returns the
// first image-bearing part of the response, along with any text parts.
func (g *Gemini) Stylize(ctx context.Context, config providers.Config) (*providers.Result, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						Data:     config.ImageData,
						MIMEType: config.ImageMIME,
					},
				},
				{Text: config.Instruction},
			},
		},
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if config.Temperature != 0 {
		genConfig.Temperature = genai.Ptr(float32(config.Temperature))
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, genConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	return parseResponse(resp), nil
}

// parseResponse extracts the first inline image from any candidate. Text
// parts accumulate so callers can classify image-less responses; thought
// parts are skipped.
func parseResponse(resp *genai.GenerateContentResponse) *providers.Result {
	result := &providers.Result{}
	if resp == nil {
		return result
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Thought {
				continue
			}
			if part.Text != "" {
				result.Text += part.Text
			}
			if !result.HasImage() && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				result.ImageData = part.InlineData.Data
				result.ImageMIME = part.InlineData.MIMEType
			}
		}
	}

	return result
}
