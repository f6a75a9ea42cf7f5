package internal

import "github.com/notekeep/notekeep/internal/dictation"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	recognizer dictation.Recognizer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithRecognizer sets the speech recognizer backing voice input. When
// unset, dictation reports itself as unsupported.
func WithRecognizer(rec dictation.Recognizer) Option {
	return func(a *application) {
		a.recognizer = rec
	}
}
