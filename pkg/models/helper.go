package models

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

var (
	mimeExtMap = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".heic": "image/heic",
		".pdf":  "application/pdf",
		".txt":  "text/plain",
		".md":   "text/markdown",
		".csv":  "text/csv",
		".wav":  "audio/wav",
		".mp3":  "audio/mp3",
		".aac":  "audio/aac",
		".ogg":  "audio/ogg",
		".flac": "audio/flac",
	}

	mimeAliasMap = map[string]string{
		"image/jpg":   "image/jpeg",
		"image/pjpeg": "image/jpeg",
		"image/x-png": "image/png",
		"audio/mpeg":  "audio/mp3",
		"audio/x-wav": "audio/wav",
	}
)

// Options selects and configures a provider.
type Options struct {
	Provider string
	Model    string
	APIKey   string
	Host     string // ollama only
}

// NewLLMProvider returns a concrete Model.
func NewLLMProvider(ctx context.Context, opts Options) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "gemini", "google", "":
		return NewGeminiLLM(ctx, opts.APIKey, opts.Model)
	case "openai":
		return NewOpenAILLM(opts.APIKey, opts.Model), nil
	case "anthropic", "claude":
		return NewAnthropicLLM(opts.APIKey, opts.Model), nil
	case "ollama":
		return NewOllamaLLM(opts.Host, opts.Model)
	case "dummy":
		return NewDummyLLM(""), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", opts.Provider)
	}
}

// NormalizeMIME fixes messy/alias MIMEs and falls back to file extension.
func NormalizeMIME(name, m string) string {
	strip := func(s string) string {
		if i := strings.IndexByte(s, ';'); i >= 0 {
			return strings.TrimSpace(s[:i])
		}
		return strings.TrimSpace(s)
	}

	fromExt := func() string {
		ext := strings.ToLower(filepath.Ext(name))
		if ext == "" {
			return ""
		}
		if mt, ok := mimeExtMap[ext]; ok {
			return mt
		}
		if mt := mime.TypeByExtension(ext); mt != "" {
			return strip(mt)
		}
		return ""
	}

	raw := strip(strings.ToLower(m))
	if raw == "" {
		return fromExt()
	}
	if normalized, ok := mimeAliasMap[raw]; ok {
		return normalized
	}
	// Malformed MIME -> use extension
	if !strings.Contains(raw, "/") || strings.HasSuffix(raw, "/") {
		if via := fromExt(); via != "" {
			return via
		}
	}
	return raw
}

func isImageMIME(m string) bool {
	return strings.HasPrefix(NormalizeMIME("", m), "image/")
}

// decodeInline returns the raw bytes of an inline part.
func decodeInline(d *InlineData) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(d.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", d.MediaType, err)
	}
	return raw, nil
}

// joinText concatenates the text parts in order, one per paragraph.
func joinText(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p.IsInline() {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

type unsupportedMediaError struct {
	provider  string
	mediaType string
}

func (e unsupportedMediaError) Error() string {
	return fmt.Sprintf("%s: unsupported media type %s", e.provider, e.mediaType)
}
