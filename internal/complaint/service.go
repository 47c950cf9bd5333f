// File path: internal/complaint/service.go
package complaint

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/animalert/animalert/internal/common"
	"github.com/animalert/animalert/internal/common/telemetry"
	"github.com/animalert/animalert/internal/mailer"
	"github.com/animalert/animalert/internal/objectstore"
	"github.com/animalert/animalert/internal/store"
)

var errNoRecipient = errors.New("no notification recipient")

// Catalog resolves templates and reference data.
type Catalog interface {
	TemplateByIncidentType(ctx context.Context, incidentType int) (*store.Template, error)
	EnsureDocType(ctx context.Context, code, name, description string) (*store.DocType, error)
	InstitutionsForCategory(ctx context.Context, categoryID int64) ([]store.Institution, error)
}

// Recorder persists a complaint and its submitter atomically.
type Recorder interface {
	RecordComplaint(ctx context.Context, person store.PersonalData, complaint store.ComplaintContent) (store.Recorded, error)
}

type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// DocumentStore holds generated PDFs and user attachments.
type DocumentStore interface {
	UploadPDF(ctx context.Context, data []byte, publicID string) (string, error)
	Get(ctx context.Context, key string) (objectstore.Object, error)
	Delete(ctx context.Context, key string) error
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Config tunes the complaint pipeline.
type Config struct {
	DocTypeCode        string
	DocTypeName        string
	DocTypeDescription string

	// OversightEmail is copied on every petition.
	OversightEmail string
	// DefaultRecipient receives petitions whose category has no institution
	// with an email address.
	DefaultRecipient string

	MaxEmailBytes int
	RenderTimeout time.Duration
	EmailTimeout  time.Duration

	// RawPlaceholders are substituted without HTML escaping.
	RawPlaceholders []string
}

func DefaultConfig() Config {
	return Config{
		DocTypeCode:        "PET",
		DocTypeName:        "Petitie",
		DocTypeDescription: "Petitie generata automat din formularul AnimAlert",
		MaxEmailBytes:      20 << 20,
		RenderTimeout:      60 * time.Second,
		EmailTimeout:       30 * time.Second,
	}
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.DocTypeCode) != "" {
		result.DocTypeCode = strings.ToUpper(strings.TrimSpace(override.DocTypeCode))
	}
	if strings.TrimSpace(override.DocTypeName) != "" {
		result.DocTypeName = strings.TrimSpace(override.DocTypeName)
	}
	if strings.TrimSpace(override.DocTypeDescription) != "" {
		result.DocTypeDescription = strings.TrimSpace(override.DocTypeDescription)
	}
	if strings.TrimSpace(override.OversightEmail) != "" {
		result.OversightEmail = strings.TrimSpace(override.OversightEmail)
	}
	if strings.TrimSpace(override.DefaultRecipient) != "" {
		result.DefaultRecipient = strings.TrimSpace(override.DefaultRecipient)
	}
	if override.MaxEmailBytes > 0 {
		result.MaxEmailBytes = override.MaxEmailBytes
	}
	if override.RenderTimeout > 0 {
		result.RenderTimeout = override.RenderTimeout
	}
	if override.EmailTimeout > 0 {
		result.EmailTimeout = override.EmailTimeout
	}
	if len(override.RawPlaceholders) > 0 {
		result.RawPlaceholders = append([]string(nil), override.RawPlaceholders...)
	}
	return result
}

// Dependencies are the collaborators of the pipeline. Mailer may be nil, in
// which case notifications are skipped.
type Dependencies struct {
	Catalog   Catalog
	Counters  Counters
	Recorder  Recorder
	Renderer  Renderer
	Documents DocumentStore
	Mailer    Mailer
}

type Option func(*Service)

// WithClock overrides the processing clock used for identifiers.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRand overrides the source of genNo.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// Service runs the complaint pipeline.
type Service struct {
	catalog   Catalog
	counters  Counters
	recorder  Recorder
	renderer  Renderer
	documents DocumentStore
	mailer    Mailer

	cfg Config
	raw map[string]bool
	now func() time.Time
	rng *rand.Rand
}

func NewService(deps Dependencies, cfg Config, opts ...Option) (*Service, error) {
	switch {
	case deps.Catalog == nil:
		return nil, errors.New("complaint: catalog required")
	case deps.Counters == nil:
		return nil, errors.New("complaint: counters required")
	case deps.Recorder == nil:
		return nil, errors.New("complaint: recorder required")
	case deps.Renderer == nil:
		return nil, errors.New("complaint: renderer required")
	case deps.Documents == nil:
		return nil, errors.New("complaint: document store required")
	}
	cfg = DefaultConfig().Merge(cfg)
	s := &Service{
		catalog:   deps.Catalog,
		counters:  deps.Counters,
		recorder:  deps.Recorder,
		renderer:  deps.Renderer,
		documents: deps.Documents,
		mailer:    deps.Mailer,
		cfg:       cfg,
		raw:       make(map[string]bool, len(cfg.RawPlaceholders)),
		now:       time.Now,
		rng:       rand.New(&lockedSource{src: rand.NewPCG(rand.Uint64(), rand.Uint64())}),
	}
	for _, key := range cfg.RawPlaceholders {
		s.raw[strings.TrimSpace(key)] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Result is returned for a committed complaint.
type Result struct {
	PublicID       string `json:"publicId"`
	InternalID     string `json:"internalId"`
	ComplaintID    int64  `json:"-"`
	PersonalDataID int64  `json:"-"`
	DocumentKey    string `json:"-"`
}

// GenerateAndSend numbers, renders, stores and records a complaint, then
// emails it to the responsible institution. Only a committed complaint is
// reported as success; email delivery does not affect the result.
func (s *Service) GenerateAndSend(ctx context.Context, sub Submission) (Result, error) {
	logger := common.Component("complaint")
	if err := sub.Validate(); err != nil {
		telemetry.RecordComplaintFailed("validate")
		logger.Info("complaint: rejected submission", "incident_type", sub.IncidentType, "error", err)
		return Result{}, err
	}
	ctx, end := telemetry.StartSpan(ctx, "complaint.generate")
	defer end("incident_type", sub.IncidentType)

	fail := func(step string, err error) (Result, error) {
		telemetry.RecordComplaintFailed(step)
		logger.Error("complaint: step failed", "step", step, "incident_type", sub.IncidentType, "error", err)
		var ce *Error
		if errors.As(err, &ce) && ce.Code == CodeBadRequest {
			return Result{}, ce
		}
		if errors.Is(err, store.ErrCategoryRequired) || errors.Is(err, store.ErrUnknownScope) {
			return Result{}, badRequest("invalid numbering scope", err)
		}
		return Result{}, internal(fmt.Errorf("%s: %w", step, err))
	}

	tpl, err := s.catalog.TemplateByIncidentType(ctx, sub.IncidentType)
	if errors.Is(err, store.ErrNotFound) {
		return fail("template", badRequest("unknown incident type", err))
	}
	if err != nil {
		return fail("template", err)
	}
	if !tpl.CategoryID.Valid || strings.TrimSpace(tpl.CategoryCodeNumeric.String) == "" || strings.TrimSpace(tpl.CategoryCodeAlpha.String) == "" {
		return fail("template", badRequest("incident type is not linked to a complete category",
			fmt.Errorf("template %d has incomplete category linkage", tpl.IncidentType)))
	}
	categoryID := tpl.CategoryID.Int64

	docType, err := s.catalog.EnsureDocType(ctx, s.cfg.DocTypeCode, s.cfg.DocTypeName, s.cfg.DocTypeDescription)
	if err != nil {
		return fail("doc_type", err)
	}

	institutions, err := s.catalog.InstitutionsForCategory(ctx, categoryID)
	if err != nil {
		return fail("institutions", err)
	}

	numbers, err := ReserveNumbers(ctx, s.counters, categoryID, s.rng)
	if err != nil {
		return fail("numbering", err)
	}

	now := s.now()
	publicID := BuildPublicID(tpl.CategoryCodeNumeric.String, numbers.ObjNo, numbers.GenNo)
	internalID := BuildInternalID(InternalIDParams{
		DocTypeCode:       docType.Code,
		InstitutionCodes:  institutionCodes(institutions),
		CategoryCodeAlpha: tpl.CategoryCodeAlpha.String,
		ObjNo:             numbers.ObjNo,
		GenNo:             numbers.GenNo,
		TotalNo:           numbers.TotalNo,
		Title:             tpl.DisplayName,
		Date:              now,
	})
	destination := institutionNames(institutions)

	values := SubmissionValues(sub, documentValues(now, destination, publicID, internalID))
	document := InjectPublicID(FillTemplate(tpl.HTML, values, s.raw), publicID)

	renderCtx, cancel := context.WithTimeout(ctx, s.cfg.RenderTimeout)
	pdf, err := s.renderer.Render(renderCtx, document)
	cancel()
	if err != nil {
		return fail("render", err)
	}

	key, err := s.documents.UploadPDF(ctx, pdf, publicID)
	if err != nil {
		return fail("upload", err)
	}

	incidentDate, _ := sub.IncidentTime()
	var primaryInstitution *int64
	if len(institutions) > 0 {
		primaryInstitution = &institutions[0].ID
	}
	recorded, err := s.recorder.RecordComplaint(ctx, toStorePerson(sub.PersonalData), store.ComplaintContent{
		IncidentTypeID:       sub.IncidentType,
		CategoryID:           categoryID,
		DocTypeID:            docType.ID,
		PrimaryInstitutionID: primaryInstitution,
		IsPublic:             sub.IsPublic,
		ObjNo:                numbers.ObjNo,
		GenNo:                numbers.GenNo,
		TotalNo:              numbers.TotalNo,
		FullPublicRepNo:      publicID,
		FullInternalRepNo:    internalID,
		IncidentDate:         incidentDate,
		IncidentCounty:       strings.TrimSpace(sub.IncidentCounty),
		IncidentCity:         strings.TrimSpace(sub.IncidentCity),
		IncidentAddress:      strings.TrimSpace(sub.IncidentAddress),
		DestinationInstitute: destination,
		IncidentDescription:  strings.TrimSpace(sub.IncidentDescription),
		S3Key:                key,
		AttachmentsS3:        sub.Attachments,
	})
	if err != nil {
		s.discardDocument(ctx, key)
		return fail("persist", err)
	}

	telemetry.RecordComplaintSubmitted()
	logger.Info("complaint: recorded",
		"public_id", publicID,
		"internal_id", internalID,
		"complaint_id", recorded.ComplaintID,
		"personal_data_reused", !recorded.PersonalDataCreated)

	s.notify(ctx, NotificationInput{
		To:         s.recipients(institutions),
		Cc:         nonEmpty(s.cfg.OversightEmail),
		PublicID:   publicID,
		InternalID: internalID,
		Category:   tpl.CategoryName.String,
		Submission: sub,
		PDF:        pdf,
	}, sub.Attachments)

	return Result{
		PublicID:       publicID,
		InternalID:     internalID,
		ComplaintID:    recorded.ComplaintID,
		PersonalDataID: recorded.PersonalDataID,
		DocumentKey:    key,
	}, nil
}

// Preview fills and renders the template for an incident type with the
// given submission, without reserving numbers or storing anything.
func (s *Service) Preview(ctx context.Context, incidentType int, sub Submission) ([]byte, error) {
	tpl, err := s.catalog.TemplateByIncidentType(ctx, incidentType)
	if errors.Is(err, store.ErrNotFound) {
		return nil, badRequest("unknown incident type", err)
	}
	if err != nil {
		return nil, internal(err)
	}
	const previewID = "00-000-000"
	values := SubmissionValues(sub, documentValues(s.now(), "Institutie", previewID, "PREVIEW"))
	document := InjectPublicID(FillTemplate(tpl.HTML, values, s.raw), previewID)
	renderCtx, cancel := context.WithTimeout(ctx, s.cfg.RenderTimeout)
	defer cancel()
	pdf, err := s.renderer.Render(renderCtx, document)
	if err != nil {
		return nil, internal(fmt.Errorf("render preview: %w", err))
	}
	return pdf, nil
}

func (s *Service) discardDocument(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.documents.Delete(ctx, key); err != nil {
		common.Component("complaint").Warn("complaint: orphaned document", "key", key, "error", err)
	}
}

// recipients routes to the first linked institution with an email, falling
// back to the default recipient.
func (s *Service) recipients(institutions []store.Institution) []string {
	for _, inst := range institutions {
		if email := strings.TrimSpace(inst.Email); email != "" {
			return []string{email}
		}
	}
	return nonEmpty(s.cfg.DefaultRecipient)
}

func institutionCodes(institutions []store.Institution) []string {
	codes := make([]string, 0, len(institutions))
	for _, inst := range institutions {
		codes = append(codes, inst.Code)
	}
	return codes
}

func institutionNames(institutions []store.Institution) string {
	names := make([]string, 0, len(institutions))
	for _, inst := range institutions {
		names = append(names, inst.Name)
	}
	if len(names) == 0 {
		return "NA"
	}
	return strings.Join(names, "; ")
}

func toStorePerson(p PersonalData) store.PersonalData {
	return store.PersonalData{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Country:     p.Country,
		County:      p.County,
		City:        p.City,
		Street:      p.Street,
		HouseNumber: p.HouseNumber,
		Building:    p.Building,
		Staircase:   p.Staircase,
		Apartment:   p.Apartment,
		PhoneNumber: p.PhoneNumber,
	}
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// lockedSource lets one *rand.Rand serve concurrent requests.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (l *lockedSource) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Uint64()
}
