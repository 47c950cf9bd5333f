// File path: internal/data/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/animalert/animalert/internal/complaint"
	"github.com/animalert/animalert/internal/objectstore"
	"github.com/animalert/animalert/internal/store"
)

type stubDocuments struct{}

func (stubDocuments) UploadPDF(ctx context.Context, data []byte, publicID string) (string, error) {
	return "complaints/" + publicID + ".pdf", nil
}

func (stubDocuments) Get(ctx context.Context, key string) (objectstore.Object, error) {
	return objectstore.Object{}, objectstore.ErrNotFound
}

func (stubDocuments) Delete(ctx context.Context, key string) error { return nil }

func (stubDocuments) PresignUpload(ctx context.Context, fileName, contentType string) (objectstore.Upload, error) {
	return objectstore.Upload{Key: "attachments/" + fileName, Method: "PUT"}, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANIMALERT_LISTEN_ADDR", "ANIMALERT_OVERSIGHT_EMAIL", "ANIMALERT_DEFAULT_RECIPIENT",
		"ANIMALERT_MAX_EMAIL_BYTES", "ANIMALERT_EMAIL_TIMEOUT", "ANIMALERT_RENDER_TIMEOUT",
		"ANIMALERT_RAW_PLACEHOLDERS",
		"DB_CONFIG_FILE", "DB_DRIVER", "DB_PATH", "DB_DSN",
		"S3_CONFIG_FILE", "S3_BUCKET",
		"SMTP_CONFIG_FILE", "SMTP_HOST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	defaults := DefaultConfig()
	if !reflect.DeepEqual(cfg, defaults) {
		t.Fatalf("LoadConfig defaults mismatch: %#v", cfg)
	}
	if cfg.MaxEmailBytes != 20<<20 {
		t.Errorf("MaxEmailBytes = %d", cfg.MaxEmailBytes)
	}
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANIMALERT_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("ANIMALERT_OVERSIGHT_EMAIL", "oversight@animalert.ro")
	t.Setenv("ANIMALERT_DEFAULT_RECIPIENT", "dispecerat@animalert.ro")
	t.Setenv("ANIMALERT_MAX_EMAIL_BYTES", "1048576")
	t.Setenv("ANIMALERT_EMAIL_TIMEOUT", "5s")
	t.Setenv("ANIMALERT_RENDER_TIMEOUT", "45s")
	t.Setenv("ANIMALERT_RAW_PLACEHOLDERS", "signature, footer")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.OversightEmail != "oversight@animalert.ro" {
		t.Errorf("OversightEmail = %q", cfg.OversightEmail)
	}
	if cfg.DefaultRecipient != "dispecerat@animalert.ro" {
		t.Errorf("DefaultRecipient = %q", cfg.DefaultRecipient)
	}
	if cfg.MaxEmailBytes != 1<<20 {
		t.Errorf("MaxEmailBytes = %d", cfg.MaxEmailBytes)
	}
	if cfg.EmailTimeout != 5*time.Second {
		t.Errorf("EmailTimeout = %v", cfg.EmailTimeout)
	}
	if cfg.RenderTimeout != 45*time.Second {
		t.Errorf("RenderTimeout = %v", cfg.RenderTimeout)
	}
	if !reflect.DeepEqual(cfg.RawPlaceholders, []string{"signature", "footer"}) {
		t.Errorf("RawPlaceholders = %v", cfg.RawPlaceholders)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANIMALERT_EMAIL_TIMEOUT", "soon")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected duration parse error")
	}

	clearEnv(t)
	t.Setenv("ANIMALERT_OVERSIGHT_EMAIL", "not an address")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected invalid address error")
	}
}

func TestNewWiresComplaintService(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "animalert.db"))

	orch, err := New(context.Background(), Config{}, WithDocuments(stubDocuments{}), WithRenderer(stubRenderer{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = orch.Close() })

	if orch.Complaints() == nil {
		t.Fatal("complaint service not initialised")
	}
	if orch.Metadata() == nil {
		t.Fatal("metadata store not initialised")
	}
	if orch.Store() == nil || orch.Store().Driver() != store.DriverSQLite {
		t.Fatal("expected sqlite store")
	}
	if orch.Documents() == nil {
		t.Fatal("documents not initialised")
	}
	if orch.Config().ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", orch.Config().ListenAddr)
	}
}

func TestNewUsesInjectedStoreAndPipelineRuns(t *testing.T) {
	clearEnv(t)
	st, err := store.OpenWithConfig(store.Config{Driver: store.DriverSQLite, Path: filepath.Join(t.TempDir(), "animalert.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()
	if err := st.ApplySeed(ctx, store.Seed{
		Categories: []store.SeedCategory{{Category: store.Category{CodeAlpha: "BRC", CodeNumeric: "07", Name: "Braconaj"}}},
		Templates:  []store.SeedTemplate{{IncidentType: 1, Category: "BRC", DisplayName: "Braconaj", HTML: "<body>{{ fullName }}</body>"}},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	orch, err := New(ctx, Config{}, WithStore(st), WithDocuments(stubDocuments{}), WithRenderer(stubRenderer{}), WithoutMailer(),
		WithClock(func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := orch.Complaints().GenerateAndSend(ctx, complaint.Submission{
		PersonalData: complaint.PersonalData{
			FirstName: "Ana", LastName: "Pop", Email: "ana@example.org", PhoneNumber: "0722123456",
			Country: "Romania", County: "Brasov", City: "Brasov", Street: "Lunga", HouseNumber: "1",
		},
		IncidentType:        1,
		IncidentDate:        "2024-03-14",
		IncidentCounty:      "Brasov",
		IncidentDescription: "Capcane",
	})
	if err != nil {
		t.Fatalf("GenerateAndSend: %v", err)
	}
	if res.DocumentKey != "complaints/"+res.PublicID+".pdf" {
		t.Errorf("DocumentKey = %q", res.DocumentKey)
	}
	if err := orch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := st.ListCategories(ctx); err != nil {
		t.Fatalf("injected store closed by orchestrator: %v", err)
	}
}

func TestNewRequiresObjectStoreConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "animalert.db"))

	_, err := New(context.Background(), Config{}, WithRenderer(stubRenderer{}))
	if err == nil {
		t.Fatal("expected error without S3_BUCKET")
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error: %v", err)
	}
}
