package models

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

type OpenAILLM struct {
	Client *openai.Client
	Model  string
}

func NewOpenAILLM(apiKey, model string) *OpenAILLM {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAILLM{Client: openai.NewClient(apiKey), Model: model}
}

func (o *OpenAILLM) Generate(ctx context.Context, parts []Part) (string, error) {
	msg, err := toOpenAIMessage(parts)
	if err != nil {
		return "", err
	}

	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.Model,
		Messages: []openai.ChatCompletionMessage{msg},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// toOpenAIMessage sends text-only input as plain Content and switches to
// MultiContent once an image is attached.
func toOpenAIMessage(parts []Part) (openai.ChatCompletionMessage, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}

	var multi []openai.ChatMessagePart
	hasMedia := false
	for _, p := range parts {
		if !p.IsInline() {
			multi = append(multi, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
			continue
		}
		if !isImageMIME(p.Inline.MediaType) {
			return msg, unsupportedMediaError{provider: "openai", mediaType: p.Inline.MediaType}
		}
		hasMedia = true
		multi = append(multi, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:%s;base64,%s", NormalizeMIME("", p.Inline.MediaType), p.Inline.Data),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	if !hasMedia {
		msg.Content = joinText(parts)
		return msg, nil
	}
	msg.MultiContent = multi
	return msg, nil
}
