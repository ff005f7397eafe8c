package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sketchworks/sketchify/internal/providers"
)

// DefaultModel is the OpenAI image model used when none is requested.
const DefaultModel = openai.CreateImageModelDallE2

// OpenAI is a provider for OpenAI image editing
type OpenAI struct{}

// New returns a new OpenAI provider
func New() *OpenAI {
	return &OpenAI{}
}

var _ providers.Provider = (*OpenAI)(nil)

// Stylize sends the source photo through the image edit endpoint. The edit
// API only accepts PNG file uploads, so the image bytes are staged in a
// temporary file for the duration of the call.
func (o *OpenAI) Stylize(ctx context.Context, config providers.Config) (*providers.Result, error) {
	imageFile, err := stageImage(config.ImageData)
	if err != nil {
		return nil, err
	}
	defer func() {
		imageFile.Close()
		os.Remove(imageFile.Name())
	}()

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	client := openai.NewClient(config.APIKey)
	resp, err := client.CreateEditImage(ctx, openai.ImageEditRequest{
		Image:          imageFile,
		Prompt:         config.Instruction,
		Model:          model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit image: %w", err)
	}

	if len(resp.Data) == 0 {
		return &providers.Result{}, nil
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}

	return &providers.Result{
		ImageData: data,
		ImageMIME: "image/png",
	}, nil
}

func stageImage(data []byte) (*os.File, error) {
	f, err := os.CreateTemp("", "sketchify-source-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp image file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write temp image file: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to rewind temp image file: %w", err)
	}
	return f, nil
}
