// File path: internal/data/orchestrator/options.go
package orchestrator

import (
	"time"

	"github.com/animalert/animalert/internal/complaint"
	"github.com/animalert/animalert/internal/store"
)

type Option func(*options)

type options struct {
	store     *store.Store
	documents Documents
	renderer  complaint.Renderer
	mailer    complaint.Mailer
	noMailer  bool
	now       func() time.Time
}

// WithStore injects an opened database store. The orchestrator does not
// close injected stores.
func WithStore(st *store.Store) Option {
	return func(o *options) {
		o.store = st
	}
}

// WithDocuments injects the document store instead of building an S3 client
// from S3_* configuration.
func WithDocuments(documents Documents) Option {
	return func(o *options) {
		o.documents = documents
	}
}

// WithRenderer injects a PDF renderer.
func WithRenderer(renderer complaint.Renderer) Option {
	return func(o *options) {
		o.renderer = renderer
	}
}

// WithMailer injects the notification transport.
func WithMailer(m complaint.Mailer) Option {
	return func(o *options) {
		o.mailer = m
	}
}

// WithoutMailer disables notifications even when SMTP_* is configured.
func WithoutMailer() Option {
	return func(o *options) {
		o.noMailer = true
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
