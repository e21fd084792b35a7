package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// ---------------------------- Ollama -----------------------------------------

type OllamaLLM struct {
	Client *ollama.Client
	Model  string
}

func NewOllamaLLM(host, model string) (*OllamaLLM, error) {
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "llava"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	c := ollama.NewClient(u, http.DefaultClient)
	return &OllamaLLM{Client: c, Model: model}, nil
}

func (o *OllamaLLM) Generate(ctx context.Context, parts []Part) (string, error) {
	var images []ollama.ImageData
	for _, p := range parts {
		if !p.IsInline() {
			continue
		}
		if !isImageMIME(p.Inline.MediaType) {
			return "", unsupportedMediaError{provider: "ollama", mediaType: p.Inline.MediaType}
		}
		raw, err := decodeInline(p.Inline)
		if err != nil {
			return "", err
		}
		images = append(images, ollama.ImageData(raw))
	}

	stream := false
	req := &ollama.GenerateRequest{
		Model:  o.Model,
		Prompt: joinText(parts),
		Images: images,
		Stream: &stream,
	}

	var text strings.Builder
	if err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		return nil
	}); err != nil {
		return "", err
	}
	return text.String(), nil
}
