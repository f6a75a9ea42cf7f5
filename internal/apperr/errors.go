package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrEmptyDraft       = errors.New("empty draft")
	ErrNoDraft          = errors.New("no draft open")
	ErrDraftOpen        = errors.New("draft already open")
	ErrConfirmRequired  = errors.New("confirmation required")
	ErrUnsupported      = errors.New("dictation not supported")
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrUnknownTheme     = errors.New("unknown theme")
)
