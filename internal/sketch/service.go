// Package sketch runs generation attempts: it composes the instruction,
// resolves the credential, issues the single outbound provider call, and
// records a classified outcome on the session.
package sketch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/sketchworks/sketchify/internal/config"
	"github.com/sketchworks/sketchify/internal/credential"
	"github.com/sketchworks/sketchify/internal/gemini"
	"github.com/sketchworks/sketchify/internal/models"
	"github.com/sketchworks/sketchify/internal/openai"
	"github.com/sketchworks/sketchify/internal/providers"
	"github.com/sketchworks/sketchify/internal/storage"
	"github.com/sketchworks/sketchify/internal/texture"
)

// Params are the per-attempt inputs supplied by the client.
type Params struct {
	Texture  string
	Captions []string
	Provider string
	Model    string
	APIKey   string
}

type Service struct {
	providers map[string]providers.Provider
	sessions  *storage.SessionStore
	creds     *credential.Store
	cfg       *config.Config
	cache     *expirable.LRU[string, models.Image]
	group     singleflight.Group
	pool      pond.ResultPool[*providers.Result]
	logger    *slog.Logger
}

// NewService wires the known providers, the result cache, and the worker
// pool that bounds concurrent outbound calls.
func NewService(cfg *config.Config, sessions *storage.SessionStore, creds *credential.Store) *Service {
	return &Service{
		providers: map[string]providers.Provider{
			"gemini": gemini.New(),
			"openai": openai.New(),
		},
		sessions: sessions,
		creds:    creds,
		cfg:      cfg,
		cache:    expirable.NewLRU[string, models.Image](cfg.CacheSize, nil, time.Duration(cfg.CacheTTL)),
		pool:     pond.NewResultPool[*providers.Result](cfg.MaxConcurrent),
		logger:   slog.Default(),
	}
}

// Generate runs one attempt for the session and records the outcome. A
// classified generation failure is part of the session state, not an error
// return; errors are reserved for requests that never become an attempt
// (unknown session, busy session, missing source, bad texture or provider).
func (s *Service) Generate(ctx context.Context, sessionID string, params Params) (*models.SketchSession, error) {
	tex, err := texture.Lookup(params.Texture)
	if err != nil {
		return nil, err
	}

	providerName := params.Provider
	if providerName == "" {
		providerName = s.cfg.Provider
	}
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", providerName)
	}
	if params.Model == "" {
		params.Model = s.cfg.Model
	}

	if err := s.sessions.BeginAttempt(sessionID); err != nil {
		return nil, err
	}

	if err := s.sessions.Update(sessionID, func(session *models.SketchSession) error {
		session.Texture = tex.Name
		session.Captions = params.Captions
		session.Provider = providerName
		session.Model = params.Model
		return nil
	}); err != nil {
		return nil, err
	}

	// The busy flag blocks source replacement, so the source image is
	// stable for the duration of the attempt.
	session, _ := s.sessions.Get(sessionID)

	img, genErr := s.run(ctx, session, provider, providerName, tex, params)
	if genErr != nil {
		msg := Message(genErr)
		s.logger.Warn("Generation attempt failed", "session_id", sessionID, "provider", providerName, "err", genErr)
		if err := s.sessions.CompleteAttempt(sessionID, nil, msg); err != nil {
			return nil, err
		}
	} else {
		s.logger.Info("Generation attempt succeeded", "session_id", sessionID, "provider", providerName, "bytes", len(img.Data))
		if err := s.sessions.CompleteAttempt(sessionID, img, ""); err != nil {
			return nil, err
		}
	}

	snapshot, _ := s.sessions.Snapshot(sessionID)
	return &snapshot, nil
}

// run performs the credential check and the single provider call. The
// returned error is already classified.
func (s *Service) run(ctx context.Context, session *models.SketchSession, provider providers.Provider, providerName string, tex texture.Texture, params Params) (*models.Image, error) {
	apiKey, err := s.resolveCredential(params.APIKey, providerName)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	instruction := texture.ComposeInstruction(tex, params.Captions)
	key := cacheKey(session.Source.Data, tex.Name, params.Captions, providerName, params.Model)

	if img, ok := s.cache.Get(key); ok {
		s.logger.Debug("Result cache hit", "session_id", session.ID)
		return &img, nil
	}

	// Identical concurrent requests share one outbound call; the pool caps
	// how many distinct calls are in flight at once.
	value, err, _ := s.group.Do(key, func() (any, error) {
		task := s.pool.SubmitErr(func() (*providers.Result, error) {
			return provider.Stylize(ctx, providers.Config{
				Model:       params.Model,
				APIKey:      apiKey,
				Instruction: instruction,
				ImageData:   session.Source.Data,
				ImageMIME:   session.Source.MIMEType,
			})
		})
		return task.Wait()
	})
	if err != nil {
		return nil, classifyProviderError(err)
	}

	result := value.(*providers.Result)
	if !result.HasImage() {
		if strings.TrimSpace(result.Text) != "" {
			return nil, &TextResponseError{Text: strings.TrimSpace(result.Text)}
		}
		return nil, ErrNoImage
	}

	img := models.Image{
		Data:     result.ImageData,
		MIMEType: result.ImageMIME,
	}
	s.cache.Add(key, img)
	return &img, nil
}

// resolveCredential picks the API key: per-request key first, then the
// persisted store, then the provider's environment variable.
func (s *Service) resolveCredential(requestKey, providerName string) (string, error) {
	if requestKey != "" {
		return requestKey, nil
	}

	if s.creds != nil {
		stored, err := s.creds.Load()
		if err != nil {
			return "", err
		}
		if stored != "" {
			return stored, nil
		}
	}

	switch providerName {
	case "openai":
		return os.Getenv("OPENAI_API_KEY"), nil
	default:
		return os.Getenv("GEMINI_API_KEY"), nil
	}
}

func cacheKey(imageData []byte, textureName string, captions []string, provider, model string) string {
	h := sha256.New()
	h.Write(imageData)
	fmt.Fprintf(h, "|%s|%s|%s|%s", textureName, strings.Join(captions, "\x00"), provider, model)
	return hex.EncodeToString(h.Sum(nil))
}
