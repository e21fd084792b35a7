package models

import (
	"context"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicLLM implements Model using Anthropic's Messages API.
type AnthropicLLM struct {
	Client    *anthropic.Client
	Model     string
	MaxTokens int
}

// NewAnthropicLLM constructs a client. An empty key falls back to ANTHROPIC_API_KEY.
func NewAnthropicLLM(apiKey, model string) *AnthropicLLM {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	cl := anthropic.NewClient(
		anthropicopt.WithAPIKey(apiKey),
	)
	return &AnthropicLLM{
		Client:    &cl,
		Model:     model,
		MaxTokens: 1024,
	}
}

// Generate performs a single-turn completion and returns concatenated text.
func (a *AnthropicLLM) Generate(ctx context.Context, parts []Part) (string, error) {
	blocks, err := toAnthropicBlocks(parts)
	if err != nil {
		return "", err
	}

	msg, err := a.Client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}

func toAnthropicBlocks(parts []Part) ([]anthropic.ContentBlockParamUnion, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(parts))
	for _, p := range parts {
		if !p.IsInline() {
			blocks = append(blocks, anthropic.NewTextBlock(p.Text))
			continue
		}
		mt := NormalizeMIME("", p.Inline.MediaType)
		switch {
		case strings.HasPrefix(mt, "image/"):
			blocks = append(blocks, anthropic.NewImageBlockBase64(mt, p.Inline.Data))
		case mt == "application/pdf":
			blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: p.Inline.Data}))
		default:
			return nil, unsupportedMediaError{provider: "anthropic", mediaType: p.Inline.MediaType}
		}
	}
	return blocks, nil
}
