package upload

import (
	"encoding/base64"
	"os"

	"github.com/Protocol-Lattice/gemini-gateway/pkg/models"
)

// Encode reads the whole file at path and returns it as an inline part
// tagged with mediaType.
func Encode(path, mediaType string) (models.Part, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Part{}, &ReadError{Path: path, Err: err}
	}
	return models.Inline(base64.StdEncoding.EncodeToString(data), mediaType), nil
}
