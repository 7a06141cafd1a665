package output

import (
	"context"
	"errors"
)

// ErrEngineUnavailable marks hard backend unavailability: the generative
// engine cannot be created in this execution context at all, so retrying
// has no repair potential. Transient failures are ordinary errors.
var ErrEngineUnavailable = errors.New("generative engine unavailable")

// GenerativePort runs a single-turn completion against the generative
// backend. jsonSchema, when non-empty, constrains the response shape.
type GenerativePort interface {
	RunPrompt(ctx context.Context, systemPrompt, userPrompt, jsonSchema string) (string, error)
}
