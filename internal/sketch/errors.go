package sketch

import (
	"errors"
	"strings"

	"google.golang.org/genai"
)

// Sentinel errors for generation outcomes that never reach the network.
var (
	// ErrMissingCredential is returned when no API key could be resolved.
	// The outbound call is never issued in that case.
	ErrMissingCredential = errors.New("no API key configured")

	// ErrNoImage is returned when the service answered with neither an
	// image nor text.
	ErrNoImage = errors.New("no image generated")
)

// CredentialError wraps a provider failure that indicates the API key was
// rejected.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return "API key rejected: " + e.Err.Error()
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// TextResponseError is returned when the service replied with text instead
// of an image, which is how safety refusals surface.
type TextResponseError struct {
	Text string
}

func (e *TextResponseError) Error() string {
	return "model returned text instead of an image: " + e.Text
}

// credentialPhrases are matched against provider error text to detect a
// rejected key. The Gemini and OpenAI APIs signal this in different words.
var credentialPhrases = []string{
	"api key not valid",
	"api_key_invalid",
	"invalid api key",
	"incorrect api key",
	"permission_denied",
	"unauthenticated",
}

// classifyProviderError maps a failed provider call onto a CredentialError
// when the message or status code points at the key; anything else (network,
// quota, billing) passes through for the generic fallback message.
func classifyProviderError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 401 || apiErr.Code == 403 {
			return &CredentialError{Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range credentialPhrases {
		if strings.Contains(msg, phrase) {
			return &CredentialError{Err: err}
		}
	}

	return err
}

// User-facing messages for each classified outcome.
const (
	msgMissingCredential = "No API key set. Add your API key before generating."
	msgInvalidCredential = "Your API key was rejected. Check that the key is valid and has access to the image model."
	msgNoImage           = "No image was generated. Try a different photo or caption."
	msgFallbackPrefix    = "Generation failed - this is often a quota or billing issue. Details: "
)

// Message renders a classified generation error as the text shown to the
// user. Unclassified failures get the generic quota/billing hint.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var credErr *CredentialError
	var textErr *TextResponseError

	switch {
	case errors.Is(err, ErrMissingCredential):
		return msgMissingCredential
	case errors.As(err, &credErr):
		return msgInvalidCredential
	case errors.As(err, &textErr):
		return "The model answered with text instead of a sketch: " + textErr.Text
	case errors.Is(err, ErrNoImage):
		return msgNoImage
	default:
		return msgFallbackPrefix + err.Error()
	}
}
