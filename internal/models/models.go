package models

import (
	"net/http"
	"time"
)

// SketchSession represents one photo-to-sketch session
type SketchSession struct {
	ID        string    `json:"id"`
	Source    *Image    `json:"source,omitempty"`
	Generated *Image    `json:"generated,omitempty"`
	Captions  []string  `json:"captions,omitempty"`
	Texture   string    `json:"texture,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	Error     string    `json:"error,omitempty"`
	Busy      bool      `json:"busy"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Image holds image bytes together with their MIME type. Raw bytes are never
// serialized into session JSON; clients fetch them from the image endpoints.
type Image struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	Filename string `json:"filename,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// DetectMIME sniffs the image MIME type from the leading bytes.
func DetectMIME(data []byte) string {
	return http.DetectContentType(data)
}

// ExtensionForMIME maps an image MIME type to a file extension. Unknown
// types default to .png, the usual output format of the image models.
func ExtensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
