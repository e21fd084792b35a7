// Package gateway exposes the generation model over HTTP: a JSON chat
// route, a plain text route and three multipart upload routes.
package gateway

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/Protocol-Lattice/gemini-gateway/pkg/models"
	"github.com/Protocol-Lattice/gemini-gateway/pkg/upload"
)

//go:embed static/*
var staticFS embed.FS

const (
	// DefaultMaxUploadBytes caps any request body.
	DefaultMaxUploadBytes = 32 << 20

	ReadHeaderTimeout = 10 * time.Second
	IdleTimeout       = 60 * time.Second
	ShutdownTimeout   = 30 * time.Second
)

// Generator produces text from content parts. *models.Adapter satisfies it.
type Generator interface {
	Generate(ctx context.Context, parts []models.Part) (string, error)
}

// Intake stores the single uploaded file under field. upload.FSStore satisfies it.
type Intake interface {
	Receive(r *http.Request, field string) (*upload.File, error)
}

// EncodeFunc turns a stored upload into an inline part.
type EncodeFunc func(path, mediaType string) (models.Part, error)

// Server holds the collaborators shared read-only by every request.
type Server struct {
	gen            Generator
	intake         Intake
	encode         EncodeFunc
	log            *logrus.Logger
	maxUploadBytes int64
}

type Option func(*Server)

func WithLogger(l *logrus.Logger) Option { return func(s *Server) { s.log = l } }

func WithEncoder(fn EncodeFunc) Option { return func(s *Server) { s.encode = fn } }

func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

func NewServer(gen Generator, intake Intake, opts ...Option) *Server {
	s := &Server{
		gen:            gen,
		intake:         intake,
		encode:         upload.Encode,
		log:            logrus.StandardLogger(),
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	for _, rt := range textRoutes {
		r.Post(rt.path, s.handleText(rt))
	}
	for _, rt := range fileRoutes {
		r.Post(rt.path, s.handleFile(rt))
	}
	r.Get("/healthz", s.handleHealth)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Get("/*", http.FileServer(http.FS(static)).ServeHTTP)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("gateway listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"route":      r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request")
	})
}
