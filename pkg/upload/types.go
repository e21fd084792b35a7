package upload

import (
	"errors"
	"os"
)

var (
	// ErrMissingFile means the request carried no file under the expected field.
	ErrMissingFile = errors.New("upload: missing file")
	// ErrTooLarge means the request body exceeded the store's size limit.
	ErrTooLarge = errors.New("upload: request body too large")
	// ErrMalformed means the multipart body could not be parsed.
	ErrMalformed = errors.New("upload: malformed multipart body")
)

const defaultMIME = "application/octet-stream"

// File is a request-scoped upload written to temporary storage. The
// caller owns it and releases it with Remove.
type File struct {
	Path string // stored location, name generated by the store
	MIME string // declared by the client, not sniffed
	Name string // client filename (base name only), informational
	Size int64
}

// Remove deletes the stored file.
func (f *File) Remove() error {
	return os.Remove(f.Path)
}

// ReadError reports a stored upload that could not be read back.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return e.Err.Error() }

func (e *ReadError) Unwrap() error { return e.Err }
