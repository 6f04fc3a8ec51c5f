package conversation

import "errors"

var (
	// ErrLogNotFound is returned by backends that require a log to exist
	// before it is appended to.
	ErrLogNotFound = errors.New("conversation log not found")

	// ErrPermissionDenied is returned when a device capability (location,
	// audio capture) was refused.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUploadFailed wraps blob storage failures. The message is not appended.
	ErrUploadFailed = errors.New("upload failed")

	// ErrInvalidMessage is returned for messages that violate the document shape.
	ErrInvalidMessage = errors.New("invalid message")
)
