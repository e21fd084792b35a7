package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ---------------------------- Google Gemini ----------------------------------

const DefaultGeminiModel = "gemini-1.5-flash"

type GeminiLLM struct {
	Client *genai.Client
	Model  string
}

func NewGeminiLLM(ctx context.Context, apiKey, model string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiLLM{Client: client, Model: model}, nil
}

func (g *GeminiLLM) Generate(ctx context.Context, parts []Part) (string, error) {
	gparts, err := toGeminiParts(parts)
	if err != nil {
		return "", err
	}

	resp, err := g.Client.GenerativeModel(g.Model).GenerateContent(ctx, gparts...)
	if err != nil {
		return "", err
	}
	return geminiText(resp)
}

func (g *GeminiLLM) Close() error {
	return g.Client.Close()
}

// toGeminiParts keeps the media type exactly as given; Gemini receives
// what the route handler tagged.
func toGeminiParts(parts []Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if !p.IsInline() {
			out = append(out, genai.Text(p.Text))
			continue
		}
		raw, err := decodeInline(p.Inline)
		if err != nil {
			return nil, err
		}
		out = append(out, genai.Blob{MIMEType: p.Inline.MediaType, Data: raw})
	}
	return out, nil
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}
