// File path: internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/animalert/animalert/internal/common"
	"github.com/animalert/animalert/internal/complaint"
	"github.com/animalert/animalert/internal/data/orchestrator"
	"github.com/animalert/animalert/internal/metadata"
	"github.com/animalert/animalert/internal/objectstore"
)

// Complaints runs the submission pipeline.
type Complaints interface {
	GenerateAndSend(ctx context.Context, sub complaint.Submission) (complaint.Result, error)
}

// Uploads issues presigned attachment uploads.
type Uploads interface {
	PresignUpload(ctx context.Context, fileName, contentType string) (objectstore.Upload, error)
}

type Server struct {
	router     chi.Router
	complaints Complaints
	metadata   metadata.Store
	uploads    Uploads
	cfg        Config
}

// Config controls request handling limits.
type Config struct {
	MaxBodyBytes int64
	LogLimit     int
}

// DefaultConfig returns the standard configuration used when no overrides are
// provided.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes: 1 << 20,
		LogLimit:     200,
	}
}

// Merge overlays positive values from the override onto the base
// configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if override.MaxBodyBytes > 0 {
		result.MaxBodyBytes = override.MaxBodyBytes
	}
	if override.LogLimit > 0 {
		result.LogLimit = override.LogLimit
	}
	return result
}

func NewServer(orch *orchestrator.Orchestrator, cfg *Config) (*Server, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator required")
	}
	complaints := orch.Complaints()
	if complaints == nil {
		return nil, fmt.Errorf("complaint service unavailable")
	}
	catalog := orch.Metadata()
	if catalog == nil {
		return nil, fmt.Errorf("metadata store unavailable")
	}
	var uploads Uploads
	if docs := orch.Documents(); docs != nil {
		uploads = docs
	}
	return newServer(complaints, catalog, uploads, cfg), nil
}

func newServer(complaints Complaints, catalog metadata.Store, uploads Uploads, cfg *Config) *Server {
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	srv := &Server{
		router:     chi.NewRouter(),
		complaints: complaints,
		metadata:   catalog,
		uploads:    uploads,
		cfg:        configuration,
	}
	srv.routes()
	common.Logger().Info("api: server ready", "uploads", uploads != nil)
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// MetadataStore returns the backing metadata catalog interface.
func (s *Server) MetadataStore() metadata.Store {
	if s == nil {
		return nil
	}
	return s.metadata
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle("/debug/vars", expvar.Handler())

	s.router.Post("/v1/complaints", s.handleSubmitComplaint)
	s.router.Get("/v1/complaints/{publicId}", s.handleComplaintStatus)
	s.router.Get("/v1/categories", s.handleCategories)
	s.router.Post("/v1/uploads", s.handleUpload)
	s.router.Get("/v1/logs", s.handleLogs)
}

// decodeJSON reads a bounded JSON body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer body.Close()
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError logs err and answers with its text, except for server errors
// whose cause stays in the log.
func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
		message = "internal server error"
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func statusFor(code complaint.Code) int {
	switch code {
	case complaint.CodeBadRequest:
		return http.StatusBadRequest
	case complaint.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
