package models

import (
	"context"
	"errors"
)

// GenerationError is the only failure type returned by Adapter.Generate.
// Message is the underlying error text, unmodified.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string { return e.Message }

func (e *GenerationError) Unwrap() error { return e.Err }

var errNoParts = errors.New("no content parts to generate from")

// Adapter is the boundary between the gateway and a provider. A single
// Adapter is shared by all requests; it holds no mutable state.
type Adapter struct {
	model Model
}

func NewAdapter(m Model) *Adapter {
	return &Adapter{model: m}
}

// Generate calls the provider once. Any failure comes back as a
// *GenerationError.
func (a *Adapter) Generate(ctx context.Context, parts []Part) (string, error) {
	if len(parts) == 0 {
		return "", &GenerationError{Message: errNoParts.Error(), Err: errNoParts}
	}
	text, err := a.model.Generate(ctx, parts)
	if err != nil {
		var ge *GenerationError
		if errors.As(err, &ge) {
			return "", ge
		}
		return "", &GenerationError{Message: err.Error(), Err: err}
	}
	return text, nil
}
