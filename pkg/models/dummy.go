package models

import (
	"context"
	"fmt"
	"strings"
)

// DummyLLM is a lightweight model implementation useful for local testing without API calls.
type DummyLLM struct {
	Prefix string
}

func NewDummyLLM(prefix string) *DummyLLM {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy response:"
	}
	return &DummyLLM{Prefix: prefix}
}

// Generate echoes the last non-empty text line and lists attachments by media type.
func (d *DummyLLM) Generate(_ context.Context, parts []Part) (string, error) {
	lines := strings.Split(joinText(parts), "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(lines[i])
		if candidate != "" {
			last = candidate
			break
		}
	}
	if last == "" {
		last = "<empty prompt>"
	}

	out := fmt.Sprintf("%s %s", d.Prefix, last)
	for _, p := range parts {
		if p.IsInline() {
			out += fmt.Sprintf(" [%s]", p.Inline.MediaType)
		}
	}
	return out, nil
}

var _ Model = (*DummyLLM)(nil)
