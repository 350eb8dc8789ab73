package task

import (
	"errors"

	"github.com/Script-GH/Ai-tutor/internal/store"
)

var (
	// ErrJobNotFound is returned by Status for unknown job ids.
	ErrJobNotFound = store.ErrJobNotFound

	// ErrUnknownKind is returned by Enqueue when no Body is registered for the kind.
	ErrUnknownKind = errors.New("unknown job kind")

	// ErrRunnerStopped is returned by Enqueue after Stop.
	ErrRunnerStopped = errors.New("job runner is stopped")

	// ErrQueueClosed and ErrQueueFull are reported by the dispatch queue.
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")
)
