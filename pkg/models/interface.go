package models

import (
	"context"
)

// Part is one unit of model input: plain text, or inline binary data
// carried base64-encoded together with its media type.
type Part struct {
	Text   string
	Inline *InlineData
}

// InlineData holds a file's full content, standard base64.
type InlineData struct {
	Data      string
	MediaType string
}

// Text returns a text part.
func Text(s string) Part { return Part{Text: s} }

// Inline returns an inline binary part.
func Inline(data, mediaType string) Part {
	return Part{Inline: &InlineData{Data: data, MediaType: mediaType}}
}

// IsInline reports whether p carries binary data rather than text.
func (p Part) IsInline() bool { return p.Inline != nil }

// Model is implemented by every provider. It turns an ordered list of
// parts into the model's textual answer.
type Model interface {
	Generate(context.Context, []Part) (string, error)
}
