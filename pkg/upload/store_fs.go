package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DefaultMaxMemory is how much of a multipart body is held in memory
// before the parser spills to disk.
const DefaultMaxMemory = 32 << 20

type FSStore struct {
	BaseDir   string // e.g., "./uploads"
	MaxMemory int64
}

// Receive takes the single file under field from a multipart request and
// writes it to BaseDir under a generated name.
func (s FSStore) Receive(r *http.Request, field string) (*File, error) {
	maxMemory := s.MaxMemory
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, classifyParseError(err)
	}
	defer r.MultipartForm.RemoveAll()

	src, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ErrMissingFile
		}
		return nil, fmt.Errorf("open %s part: %w", field, err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(s.BaseDir, uuid.NewString())
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, err
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("store %s: %w", field, err)
	}

	mt := hdr.Header.Get("Content-Type")
	if mt == "" {
		mt = defaultMIME
	}
	return &File{Path: path, MIME: mt, Name: hdr.Filename, Size: n}, nil
}

func classifyParseError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, multipart.ErrMessageTooLarge):
		return ErrTooLarge
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		return ErrMissingFile
	default:
		// Anything else is broken framing in the client's body.
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
