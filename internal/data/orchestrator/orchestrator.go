// File path: internal/data/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/animalert/animalert/internal/common"
	"github.com/animalert/animalert/internal/complaint"
	"github.com/animalert/animalert/internal/mailer"
	"github.com/animalert/animalert/internal/metadata"
	"github.com/animalert/animalert/internal/objectstore"
	"github.com/animalert/animalert/internal/render"
	"github.com/animalert/animalert/internal/store"
)

type closer interface {
	Close() error
}

// Documents is the object store as used by the server: PDF and attachment
// access for the pipeline plus presigned uploads for clients.
type Documents interface {
	complaint.DocumentStore
	PresignUpload(ctx context.Context, fileName, contentType string) (objectstore.Upload, error)
}

// Orchestrator wires together the database, object store, renderer and
// mailer behind the complaint service and exposes accessors for the API
// layer.
type Orchestrator struct {
	cfg Config

	store     *store.Store
	documents Documents
	service   *complaint.Service

	closers []closer
}

// New constructs an orchestrator from the provided configuration and optional
// overrides. Clients that are not injected are built from their DB_*, S3_*,
// RENDER_* and SMTP_* configuration.
func New(ctx context.Context, cfg Config, opts ...Option) (*Orchestrator, error) {
	cfg = applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	settings := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	logger := common.Component("orchestrator")
	orch := &Orchestrator{cfg: cfg}

	st := settings.store
	if st == nil {
		opened, err := store.Open("")
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		st = opened
		orch.closers = append(orch.closers, opened)
	}
	orch.store = st

	documents := settings.documents
	if documents == nil {
		s3Cfg, err := objectstore.LoadConfig()
		if err != nil {
			orch.Close()
			return nil, fmt.Errorf("load object store config: %w", err)
		}
		client, err := objectstore.New(ctx, s3Cfg)
		if err != nil {
			orch.Close()
			return nil, fmt.Errorf("init object store: %w", err)
		}
		documents = client
	}
	orch.documents = documents

	renderer := settings.renderer
	if renderer == nil {
		renderCfg, err := render.LoadConfig()
		if err != nil {
			orch.Close()
			return nil, fmt.Errorf("load render config: %w", err)
		}
		renderer = render.New(renderCfg)
	}

	var notifier complaint.Mailer
	switch {
	case settings.noMailer:
	case settings.mailer != nil:
		notifier = settings.mailer
	default:
		smtpCfg, err := mailer.LoadConfig()
		if err != nil {
			orch.Close()
			return nil, fmt.Errorf("load smtp config: %w", err)
		}
		if smtpCfg.Enabled() {
			client, err := mailer.New(smtpCfg)
			if err != nil {
				orch.Close()
				return nil, fmt.Errorf("init mailer: %w", err)
			}
			notifier = client
		}
	}
	if notifier == nil {
		logger.Warn("orchestrator: notifications disabled, no smtp relay configured")
	}

	var serviceOpts []complaint.Option
	if settings.now != nil {
		serviceOpts = append(serviceOpts, complaint.WithClock(settings.now))
	}
	service, err := complaint.NewService(complaint.Dependencies{
		Catalog:   st,
		Counters:  st,
		Recorder:  st,
		Renderer:  renderer,
		Documents: documents,
		Mailer:    notifier,
	}, cfg.complaintConfig(), serviceOpts...)
	if err != nil {
		orch.Close()
		return nil, fmt.Errorf("init complaint service: %w", err)
	}
	orch.service = service
	logger.Info("orchestrator: ready", "driver", st.Driver(), "notifications", notifier != nil)
	return orch, nil
}

func (o *Orchestrator) Config() Config {
	if o == nil {
		return Config{}
	}
	return o.cfg
}

// Complaints exposes the complaint pipeline.
func (o *Orchestrator) Complaints() *complaint.Service {
	if o == nil {
		return nil
	}
	return o.service
}

// Metadata exposes the reference and status catalog.
func (o *Orchestrator) Metadata() metadata.Store {
	if o == nil || o.store == nil {
		return nil
	}
	return o.store
}

// Store exposes the database store for maintenance commands such as seeding.
func (o *Orchestrator) Store() *store.Store {
	if o == nil {
		return nil
	}
	return o.store
}

// Documents exposes the object store.
func (o *Orchestrator) Documents() Documents {
	if o == nil {
		return nil
	}
	return o.documents
}

// Close releases any resources associated with the orchestrator.
func (o *Orchestrator) Close() error {
	if o == nil {
		return nil
	}
	var err error
	for i := len(o.closers) - 1; i >= 0; i-- {
		closer := o.closers[i]
		if closer == nil {
			continue
		}
		if cerr := closer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	o.closers = nil
	return err
}
