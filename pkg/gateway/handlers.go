package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/Protocol-Lattice/gemini-gateway/pkg/models"
	"github.com/Protocol-Lattice/gemini-gateway/pkg/upload"
)

// Existing clients match on this text for every upload route.
const missingFileMessage = "No image file uploaded"

const tooLargeMessage = "upload exceeds size limit"

type textRoute struct {
	path       string
	field      string // preferred JSON field; the other one is accepted too
	missingKey string
	missingMsg string
}

var textRoutes = []textRoute{
	{path: "/api/chat", field: "message", missingKey: "reply", missingMsg: "Message is required"},
	{path: "/generate-text", field: "prompt", missingKey: "error", missingMsg: "Prompt is required"},
}

type fileRoute struct {
	path        string
	field       string
	instruction string // leading text part; empty means the "prompt" form value
	mediaType   string // replaces the declared type when set
	cleanup     bool
}

var fileRoutes = []fileRoute{
	// image/jpg regardless of the upload, and the stored image is kept.
	{path: "/generate-from-image", field: "image", mediaType: "image/jpg"},
	{path: "/generate-from-document", field: "document", instruction: "Analyze this document", cleanup: true},
	{path: "/generate-from-audio", field: "audio", instruction: "Transcribe or analyze the following audio:", cleanup: true},
}

type textRequest struct {
	Message string `json:"message"`
	Prompt  string `json:"prompt"`
}

func (t textRequest) value(preferred string) string {
	if preferred == "prompt" {
		if t.Prompt != "" {
			return t.Prompt
		}
		return t.Message
	}
	if t.Message != "" {
		return t.Message
	}
	return t.Prompt
}

func (s *Server) handleText(rt textRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

		var req textRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, r, http.StatusRequestEntityTooLarge, tooLargeMessage)
				return
			}
			writeError(w, r, http.StatusBadRequest, "invalid JSON body")
			return
		}

		prompt := req.value(rt.field)
		if prompt == "" {
			writeJSON(w, r, http.StatusBadRequest, map[string]string{rt.missingKey: rt.missingMsg})
			return
		}

		s.generate(w, r, rt.path, []models.Part{models.Text(prompt)})
	}
}

func (s *Server) handleFile(rt fileRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

		f, err := s.intake.Receive(r, rt.field)
		switch {
		case errors.Is(err, upload.ErrMissingFile):
			writeError(w, r, http.StatusBadRequest, missingFileMessage)
			return
		case errors.Is(err, upload.ErrTooLarge):
			writeError(w, r, http.StatusRequestEntityTooLarge, tooLargeMessage)
			return
		case errors.Is(err, upload.ErrMalformed):
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			s.log.WithError(err).WithField("route", rt.path).Error("upload intake failed")
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		case f == nil:
			writeError(w, r, http.StatusBadRequest, missingFileMessage)
			return
		}
		if rt.cleanup {
			defer s.release(rt.path, f)
		}

		mediaType := f.MIME
		if rt.mediaType != "" {
			mediaType = rt.mediaType
		}
		part, err := s.encode(f.Path, mediaType)
		if err != nil {
			s.log.WithError(err).WithField("route", rt.path).Error("encode upload failed")
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}

		lead := rt.instruction
		if lead == "" {
			lead = r.FormValue("prompt")
		}
		s.generate(w, r, rt.path, []models.Part{models.Text(lead), part})
	}
}

// generate runs the model to completion even if the client goes away.
func (s *Server) generate(w http.ResponseWriter, r *http.Request, route string, parts []models.Part) {
	ctx := context.WithoutCancel(r.Context())
	text, err := s.gen.Generate(ctx, parts)
	if err != nil {
		s.log.WithError(err).WithField("route", route).Error("generation failed")
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"output": text})
}

// release removes the stored upload; a failure is logged only.
func (s *Server) release(route string, f *upload.File) {
	if err := f.Remove(); err != nil {
		s.log.WithFields(logrus.Fields{"route": route, "path": f.Path}).WithError(err).Warn("remove upload failed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
