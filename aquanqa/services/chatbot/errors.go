package chatbot

import (
	"aquanqa/aquanqa/services/embedding"
	"errors"
)

// ErrInvalidQuestion rejects empty, too-short or letterless questions.
// It is the only pipeline error surfaced to the caller as a validation
// failure; matcher-level trouble degrades the cascade instead.
var ErrInvalidQuestion = errors.New("invalid question")

// Re-exported so callers can gate on the degraded-mode signals without
// importing the embedding package.
var (
	ErrModelUnavailable   = embedding.ErrModelUnavailable
	ErrNoKnowledgeIndexed = embedding.ErrNoKnowledgeIndexed
)
