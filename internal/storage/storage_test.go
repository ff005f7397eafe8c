package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/sketchworks/sketchify/internal/models"
)

func newSession(id string, withSource bool) *models.SketchSession {
	session := &models.SketchSession{
		ID:        id,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if withSource {
		session.Source = &models.Image{Data: []byte("photo"), MIMEType: "image/jpeg"}
	}
	return session
}

func TestGetSetDelete(t *testing.T) {
	store := New()

	if _, exists := store.Get("missing"); exists {
		t.Error("Get returned a session that was never stored")
	}

	store.Set("s1", newSession("s1", true))
	if _, exists := store.Get("s1"); !exists {
		t.Error("Get did not find stored session")
	}

	store.Delete("s1")
	if _, exists := store.Get("s1"); exists {
		t.Error("Get found session after Delete")
	}
}

func TestSetSourceClearsOutcome(t *testing.T) {
	store := New()
	session := newSession("s1", true)
	session.Generated = &models.Image{Data: []byte("old sketch"), MIMEType: "image/png"}
	session.Error = "old error"
	store.Set("s1", session)

	newImg := &models.Image{Data: []byte("new photo"), MIMEType: "image/png"}
	if err := store.SetSource("s1", newImg); err != nil {
		t.Fatalf("SetSource failed: %v", err)
	}

	if session.Source != newImg {
		t.Error("source image was not replaced")
	}
	if session.Generated != nil {
		t.Error("generated image survived a new source selection")
	}
	if session.Error != "" {
		t.Error("error message survived a new source selection")
	}
}

func TestSetSourceErrors(t *testing.T) {
	store := New()
	busy := newSession("busy", true)
	busy.Busy = true
	store.Set("busy", busy)

	tests := []struct {
		name      string
		sessionID string
		wantErr   error
	}{
		{name: "unknown session", sessionID: "missing", wantErr: ErrNotFound},
		{name: "busy session", sessionID: "busy", wantErr: ErrSessionBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SetSource(tt.sessionID, &models.Image{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetSource = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBeginAttempt(t *testing.T) {
	store := New()
	store.Set("ready", newSession("ready", true))
	store.Set("no-source", newSession("no-source", false))
	busy := newSession("busy", true)
	busy.Busy = true
	store.Set("busy", busy)

	tests := []struct {
		name      string
		sessionID string
		wantErr   error
	}{
		{name: "ready session", sessionID: "ready"},
		{name: "unknown session", sessionID: "missing", wantErr: ErrNotFound},
		{name: "busy session", sessionID: "busy", wantErr: ErrSessionBusy},
		{name: "no source", sessionID: "no-source", wantErr: ErrNoSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.BeginAttempt(tt.sessionID)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("BeginAttempt failed: %v", err)
				}
				if !store.IsBusy(tt.sessionID) {
					t.Error("session not busy after BeginAttempt")
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("BeginAttempt = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBeginAttemptRejectsSecondAttempt(t *testing.T) {
	store := New()
	store.Set("s1", newSession("s1", true))

	if err := store.BeginAttempt("s1"); err != nil {
		t.Fatal(err)
	}
	if err := store.BeginAttempt("s1"); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("second BeginAttempt = %v, want ErrSessionBusy", err)
	}
}

func TestCompleteAttemptInvariant(t *testing.T) {
	tests := []struct {
		name   string
		img    *models.Image
		errMsg string
	}{
		{name: "success", img: &models.Image{Data: []byte("sketch"), MIMEType: "image/png"}},
		{name: "failure", errMsg: "model returned text instead of an image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New()
			session := newSession("s1", true)
			// Seed both fields so the attempt outcome has to clear one.
			session.Generated = &models.Image{Data: []byte("stale")}
			session.Error = "stale"
			store.Set("s1", session)

			if err := store.BeginAttempt("s1"); err != nil {
				t.Fatal(err)
			}
			if err := store.CompleteAttempt("s1", tt.img, tt.errMsg); err != nil {
				t.Fatal(err)
			}

			if store.IsBusy("s1") {
				t.Error("session busy after CompleteAttempt")
			}

			// At most one of generated image and error is set.
			hasImage := session.Generated != nil
			hasError := session.Error != ""
			if hasImage && hasError {
				t.Fatal("both generated image and error are set after attempt")
			}
			if tt.img != nil && !hasImage {
				t.Error("successful attempt did not record image")
			}
			if tt.img == nil && session.Error != tt.errMsg {
				t.Errorf("failed attempt error = %q, want %q", session.Error, tt.errMsg)
			}
		})
	}
}

func TestCompleteAttemptUnknownSession(t *testing.T) {
	store := New()
	if err := store.CompleteAttempt("missing", nil, "boom"); !errors.Is(err, ErrNotFound) {
		t.Errorf("CompleteAttempt = %v, want ErrNotFound", err)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	store := New()
	store.Set("s1", newSession("s1", true))

	all := store.Snapshots()
	if len(all) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(all))
	}
	all[0].Error = "mutated"

	if session, _ := store.Get("s1"); session.Error != "" {
		t.Error("mutating a snapshot affected the stored session")
	}
}

func TestSnapshotUnknownSession(t *testing.T) {
	store := New()
	if _, exists := store.Snapshot("missing"); exists {
		t.Error("Snapshot reported an unknown session as existing")
	}
}

func TestUpdate(t *testing.T) {
	store := New()
	store.Set("s1", newSession("s1", true))

	if err := store.Update("missing", func(s *models.SketchSession) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update on unknown session = %v, want ErrNotFound", err)
	}

	if err := store.Update("s1", func(s *models.SketchSession) error {
		s.Texture = "kraft"
		return nil
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if session, _ := store.Get("s1"); session.Texture != "kraft" {
		t.Errorf("texture = %q, want kraft", session.Texture)
	}

	boom := errors.New("boom")
	if err := store.Update("s1", func(s *models.SketchSession) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Update did not propagate fn error: %v", err)
	}
}

func TestConcurrentSnapshotsAndUpdates(t *testing.T) {
	store := New()
	store.Set("s1", newSession("s1", true))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = store.Update("s1", func(s *models.SketchSession) error {
				s.Error = "attempt failed"
				s.Captions = []string{"new caption"}
				return nil
			})
		}
	}()

	for i := 0; i < 100; i++ {
		if snap, exists := store.Snapshot("s1"); exists {
			_ = snap.Error
			_ = snap.Captions
		}
		store.Snapshots()
	}
	<-done
}
