package status

import "errors"

var (
	ErrInitialization   = errors.New("conference: session initialization failed")
	ErrDisposed         = errors.New("conference: session already disposed")
	ErrNotFound         = errors.New("record not found")
	ErrValidation       = errors.New("validation failed")
	ErrPermission       = errors.New("permission denied")
	ErrTableFull        = errors.New("virtual table: capacity reached")
	ErrRecordingTimeout = errors.New("recording: status change timed out")
)
