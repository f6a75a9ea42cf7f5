// Package dictation wires an optional speech-to-text capability into the
// note editor. Transcripts overwrite the draft content for the duration of
// a session; the capability itself is pluggable and absent by default.
package dictation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/notekeep/notekeep/internal/apperr"
)

// Recognizer is the platform speech-to-text capability.
type Recognizer interface {
	// Supported reports whether continuous recognition is available at all.
	Supported() bool
	// RequestPermission asks the environment for microphone access.
	RequestPermission(ctx context.Context) error
	// Start begins continuous transcription in the given spoken language.
	Start(ctx context.Context, language string) (Session, error)
}

// Session is one live transcription run.
type Session interface {
	// Transcripts yields incremental transcript updates. Each update is the
	// authoritative full text so far, not a delta. The channel closes when
	// the session ends.
	Transcripts() <-chan string
	// Stop ends transcription and closes the transcript channel.
	Stop()
}

// Config holds dictation settings.
type Config struct {
	// Language is the spoken language/locale tag passed to the recognizer.
	Language string
	// AutoStop force-stops a still-active session after this ceiling.
	// Zero disables the ceiling.
	AutoStop time.Duration
}

// Bridge manages the dictation lifecycle for the editor.
type Bridge struct {
	rec    Recognizer
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	active  bool
	gen     int // session generation; stale auto-stop timers check it
	session Session
}

// NewBridge creates a bridge over the given recognizer.
func NewBridge(rec Recognizer, cfg Config, logger *slog.Logger) *Bridge {
	if rec == nil {
		rec = Unsupported()
	}
	return &Bridge{rec: rec, cfg: cfg, logger: logger}
}

// Supported reports whether the control should be enabled at all.
func (b *Bridge) Supported() bool {
	return b.rec.Supported()
}

// Active reports whether a transcription session is running.
func (b *Bridge) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Start requests microphone permission and begins a transcription session.
// Every transcript update is delivered to sink (which overwrites the draft
// content). Starting while already active is a no-op. Denied permission and
// unsupported environments surface as sentinels and leave dictation
// inactive.
func (b *Bridge) Start(ctx context.Context, sink func(text string)) error {
	if !b.rec.Supported() {
		return apperr.ErrUnsupported
	}

	b.mu.Lock()
	if b.active {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	// Permission is requested outside the lock each session; denial must
	// not leave any session state behind.
	if err := b.rec.RequestPermission(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPermissionDenied, err)
	}

	sess, err := b.rec.Start(ctx, b.cfg.Language)
	if err != nil {
		return fmt.Errorf("dictation: start: %w", err)
	}

	b.mu.Lock()
	if b.active {
		// Lost the race to a concurrent Start; discard this session.
		b.mu.Unlock()
		sess.Stop()
		return nil
	}
	b.active = true
	b.gen++
	gen := b.gen
	b.session = sess
	b.mu.Unlock()

	go b.pump(sess, sink)

	if b.cfg.AutoStop > 0 {
		time.AfterFunc(b.cfg.AutoStop, func() {
			if b.stopGeneration(gen) {
				b.logger.Info("dictation: auto-stop ceiling reached",
					slog.Duration("ceiling", b.cfg.AutoStop))
			}
		})
	}

	return nil
}

// Stop ends the current session, leaving the last transcribed text in
// place. Stopping an inactive bridge is a no-op. The editor workflow calls
// this on every path that leaves the composing state.
func (b *Bridge) Stop() {
	b.mu.Lock()
	sess := b.session
	b.active = false
	b.session = nil
	b.mu.Unlock()

	if sess != nil {
		sess.Stop()
	}
}

// stopGeneration stops the session only if gen is still the live one, so a
// stale timer never kills a session started after it was armed.
func (b *Bridge) stopGeneration(gen int) bool {
	b.mu.Lock()
	if !b.active || b.gen != gen {
		b.mu.Unlock()
		return false
	}
	sess := b.session
	b.active = false
	b.session = nil
	b.mu.Unlock()

	if sess != nil {
		sess.Stop()
	}
	return true
}

func (b *Bridge) pump(sess Session, sink func(string)) {
	for text := range sess.Transcripts() {
		b.mu.Lock()
		deliver := b.active && b.session == sess
		b.mu.Unlock()
		if deliver {
			sink(text)
		}
	}
}

// unsupported is the default recognizer on platforms without speech input.
type unsupported struct{}

// Unsupported returns a recognizer that reports no capability; the
// dictation control degrades to permanently disabled.
func Unsupported() Recognizer {
	return unsupported{}
}

func (unsupported) Supported() bool { return false }

func (unsupported) RequestPermission(context.Context) error { return apperr.ErrUnsupported }

func (unsupported) Start(context.Context, string) (Session, error) {
	return nil, apperr.ErrUnsupported
}
