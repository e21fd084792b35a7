package models

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
)

type stubModel struct {
	text  string
	err   error
	calls int
	got   []Part
}

func (s *stubModel) Generate(_ context.Context, parts []Part) (string, error) {
	s.calls++
	s.got = parts
	return s.text, s.err
}

func TestNewDummyLLMDefaultPrefix(t *testing.T) {
	llm := NewDummyLLM("")
	got, err := llm.Generate(context.Background(), []Part{Text("line1\nline2")})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "Dummy response: line2" {
		t.Fatalf("unexpected response: %q", got)
	}
}

func TestDummyLLMHandlesEmptyPrompt(t *testing.T) {
	llm := NewDummyLLM("Prefix")
	got, err := llm.Generate(context.Background(), []Part{Text("\n\n\n")})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "Prefix <empty prompt>" {
		t.Fatalf("unexpected response: %q", got)
	}
}

func TestDummyLLMListsAttachments(t *testing.T) {
	llm := NewDummyLLM("PFX")
	got, err := llm.Generate(context.Background(), []Part{Text("Analyze this document"), Inline("AAAA", "application/pdf")})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "PFX Analyze this document [application/pdf]" {
		t.Fatalf("unexpected response: %q", got)
	}
}

func TestNewLLMProviderErrorsOnUnknownProvider(t *testing.T) {
	if _, err := NewLLMProvider(context.Background(), Options{Provider: "unknown"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestNewLLMProviderDummy(t *testing.T) {
	m, err := NewLLMProvider(context.Background(), Options{Provider: "Dummy"})
	if err != nil {
		t.Fatalf("NewLLMProvider returned error: %v", err)
	}
	if _, ok := m.(*DummyLLM); !ok {
		t.Fatalf("expected *DummyLLM, got %T", m)
	}
}

func TestNewLLMProviderUsesProviderDefaultModel(t *testing.T) {
	ctx := context.Background()

	m, err := NewLLMProvider(ctx, Options{Provider: "openai", APIKey: "k"})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if o, ok := m.(*OpenAILLM); !ok || o.Model != openai.GPT4oMini {
		t.Fatalf("openai: got %T %+v", m, m)
	}

	m, err = NewLLMProvider(ctx, Options{Provider: "anthropic", APIKey: "k"})
	if err != nil {
		t.Fatalf("anthropic: %v", err)
	}
	if a, ok := m.(*AnthropicLLM); !ok || a.Model != "claude-3-5-haiku-latest" {
		t.Fatalf("anthropic: got %T", m)
	}

	m, err = NewLLMProvider(ctx, Options{Provider: "ollama", Host: "http://127.0.0.1:11434"})
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if o, ok := m.(*OllamaLLM); !ok || o.Model != "llava" {
		t.Fatalf("ollama: got %T", m)
	}
}

func TestAdapterReturnsText(t *testing.T) {
	stub := &stubModel{text: "hi there"}
	out, err := NewAdapter(stub).Generate(context.Background(), []Part{Text("hello")})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out != "hi there" {
		t.Fatalf("unexpected output: %q", out)
	}
	if stub.calls != 1 || stub.got[0].Text != "hello" {
		t.Fatalf("model not called with prompt: %+v", stub.got)
	}
}

func TestAdapterWrapsFailureVerbatim(t *testing.T) {
	cause := errors.New("quota exceeded")
	_, err := NewAdapter(&stubModel{err: cause}).Generate(context.Background(), []Part{Text("x")})

	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if ge.Message != "quota exceeded" {
		t.Fatalf("message altered: %q", ge.Message)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not unwrapped")
	}
}

func TestAdapterRejectsEmptyParts(t *testing.T) {
	stub := &stubModel{}
	_, err := NewAdapter(stub).Generate(context.Background(), nil)
	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GenerationError, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("model should not be called")
	}
}

func TestToGeminiPartsDecodesInlineAndKeepsMediaType(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	parts := []Part{
		Text("describe"),
		Inline(base64.StdEncoding.EncodeToString(payload), "image/jpg"),
	}
	out, err := toGeminiParts(parts)
	if err != nil {
		t.Fatalf("toGeminiParts returned error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(out))
	}
	if txt, ok := out[0].(genai.Text); !ok || string(txt) != "describe" {
		t.Fatalf("unexpected first part: %#v", out[0])
	}
	blob, ok := out[1].(genai.Blob)
	if !ok {
		t.Fatalf("expected genai.Blob, got %T", out[1])
	}
	if blob.MIMEType != "image/jpg" {
		t.Fatalf("media type rewritten: %q", blob.MIMEType)
	}
	if string(blob.Data) != string(payload) {
		t.Fatalf("payload not decoded")
	}
}

func TestToGeminiPartsRejectsBadBase64(t *testing.T) {
	if _, err := toGeminiParts([]Part{Inline("%%%", "audio/mp3")}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestGeminiTextConcatenatesTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("hi "), genai.Text("there")}},
		}},
	}
	got, err := geminiText(resp)
	if err != nil {
		t.Fatalf("geminiText returned error: %v", err)
	}
	if got != "hi there" {
		t.Fatalf("unexpected text: %q", got)
	}
	if _, err := geminiText(&genai.GenerateContentResponse{}); err == nil {
		t.Fatalf("expected error for empty response")
	}
}

func TestToOpenAIMessage(t *testing.T) {
	msg, err := toOpenAIMessage([]Part{Text("hello")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Content != "hello" || len(msg.MultiContent) != 0 {
		t.Fatalf("text-only message should use Content: %+v", msg)
	}

	msg, err = toOpenAIMessage([]Part{Text("what is this"), Inline("AAAA", "image/jpg")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msg.MultiContent) != 2 {
		t.Fatalf("expected 2 content parts, got %d", len(msg.MultiContent))
	}
	img := msg.MultiContent[1]
	if img.Type != openai.ChatMessagePartTypeImageURL || img.ImageURL.URL != "data:image/jpeg;base64,AAAA" {
		t.Fatalf("unexpected image part: %+v", img)
	}

	if _, err := toOpenAIMessage([]Part{Inline("AAAA", "audio/mp3")}); err == nil || !strings.Contains(err.Error(), "unsupported media type audio/mp3") {
		t.Fatalf("expected unsupported media error, got %v", err)
	}
}

func TestToAnthropicBlocks(t *testing.T) {
	blocks, err := toAnthropicBlocks([]Part{Text("Analyze this document"), Inline("AAAA", "application/pdf")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if _, err := toAnthropicBlocks([]Part{Inline("AAAA", "audio/ogg")}); err == nil {
		t.Fatalf("expected unsupported media error")
	}
}

func TestNormalizeMIME(t *testing.T) {
	tests := []struct {
		name, file, in, want string
	}{
		{"alias", "", "image/jpg", "image/jpeg"},
		{"params stripped", "", "text/plain; charset=utf-8", "text/plain"},
		{"empty uses extension", "report.pdf", "", "application/pdf"},
		{"malformed uses extension", "clip.mp3", "audio", "audio/mp3"},
		{"passthrough", "", "audio/webm", "audio/webm"},
		{"unknown empty", "noext", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeMIME(tc.file, tc.in); got != tc.want {
				t.Fatalf("NormalizeMIME(%q, %q) = %q, want %q", tc.file, tc.in, got, tc.want)
			}
		})
	}
}
