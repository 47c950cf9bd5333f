// File path: cmd/animalert/preview.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/animalert/animalert/internal/complaint"
	"github.com/animalert/animalert/internal/objectstore"
	"github.com/animalert/animalert/internal/render"
	"github.com/animalert/animalert/internal/store"
)

var (
	previewIncidentType int
	previewOut          string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render an incident template with sample data",
	Long: `Fills the template of an incident type with a sample submission and
prints it to PDF. No numbers are reserved and nothing is stored or sent.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&previewIncidentType, "incident-type", 0, "incident type whose template is rendered")
	previewCmd.Flags().StringVar(&previewOut, "out", "preview.pdf", "output PDF path")
	previewCmd.MarkFlagRequired("incident-type")
}

// noDocuments satisfies the pipeline's document store for previews, which
// never upload.
type noDocuments struct{}

var errPreviewOnly = errors.New("preview: document store unavailable")

func (noDocuments) UploadPDF(context.Context, []byte, string) (string, error) {
	return "", errPreviewOnly
}

func (noDocuments) Get(context.Context, string) (objectstore.Object, error) {
	return objectstore.Object{}, errPreviewOnly
}

func (noDocuments) Delete(context.Context, string) error { return errPreviewOnly }

func runPreview(cmd *cobra.Command, args []string) error {
	st, err := store.Open("")
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	renderCfg, err := render.LoadConfig()
	if err != nil {
		return err
	}
	service, err := complaint.NewService(complaint.Dependencies{
		Catalog:   st,
		Counters:  st,
		Recorder:  st,
		Renderer:  render.New(renderCfg),
		Documents: noDocuments{},
	}, complaint.Config{})
	if err != nil {
		return err
	}

	pdf, err := service.Preview(cmd.Context(), previewIncidentType, sampleSubmission(previewIncidentType))
	if err != nil {
		return err
	}
	if err := os.WriteFile(previewOut, pdf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", previewOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", previewOut, len(pdf))
	return nil
}

func sampleSubmission(incidentType int) complaint.Submission {
	return complaint.Submission{
		PersonalData: complaint.PersonalData{
			FirstName:   "Ion",
			LastName:    "Popescu",
			Email:       "ion.popescu@example.org",
			PhoneNumber: "0700 000 000",
			Country:     "Romania",
			County:      "Brasov",
			City:        "Brasov",
			Street:      "Republicii",
			HouseNumber: "1",
		},
		IncidentType:        incidentType,
		IncidentDate:        time.Now().Format("2006-01-02"),
		IncidentCounty:      "Brasov",
		IncidentCity:        "Brasov",
		IncidentAddress:     "Padurea Noua",
		IncidentDescription: "Exemplu de descriere a incidentului.",
	}
}
