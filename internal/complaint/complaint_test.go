// File path: internal/complaint/complaint_test.go
package complaint

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animalert/animalert/internal/objectstore"
)

func validSubmission() Submission {
	return Submission{
		PersonalData: PersonalData{
			FirstName:   "Ana",
			LastName:    "Pop",
			Email:       "ana@example.org",
			PhoneNumber: "0722 123 456",
			Country:     "Romania",
			County:      "Brasov",
			City:        "Brasov",
			Street:      "Lunga",
			HouseNumber: "12",
			Apartment:   "4",
		},
		IncidentType:        1,
		IncidentDate:        "2024-03-14",
		IncidentCounty:      "Brasov",
		IncidentCity:        "Sacele",
		IncidentDescription: "Capcane pentru animale in padure",
		IsPublic:            true,
	}
}

func TestBuildPublicID(t *testing.T) {
	assert.Equal(t, "07-003-042", BuildPublicID("7", 3, 42))
	assert.Equal(t, "07-003-042", BuildPublicID("07", 3, 42))
	assert.Equal(t, "12-1234-100", BuildPublicID("12", 1234, 100))
	assert.Equal(t, "X1-001-999", BuildPublicID("X1", 1, 999))
}

func TestBuildInternalID(t *testing.T) {
	params := InternalIDParams{
		DocTypeCode:       "PET",
		InstitutionCodes:  []string{"PJ"},
		CategoryCodeAlpha: "BRC",
		ObjNo:             3,
		GenNo:             42,
		TotalNo:           128,
		Title:             "Braconaj",
		Date:              time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
	}
	assert.Equal(t, `PET-PJ [BRC-003-042]/128/15.03.2024 -- "Braconaj"`, BuildInternalID(params))

	params.InstitutionCodes = []string{"PJ", " ", "GNM"}
	assert.Equal(t, `PET-PJ+GNM [BRC-003-042]/128/15.03.2024 -- "Braconaj"`, BuildInternalID(params))

	params.InstitutionCodes = nil
	assert.Equal(t, `PET-NA [BRC-003-042]/128/15.03.2024 -- "Braconaj"`, BuildInternalID(params))
}

func TestFillTemplate(t *testing.T) {
	tpl := `<p>{{ fullName }}</p><p>{{incidentDescription}}</p><p>{{ unknown.key }}</p>`
	values := map[string]string{
		"fullName":            "Ana <b>Pop</b>",
		"incidentDescription": "<i>ok</i>",
	}

	out := FillTemplate(tpl, values, nil)
	assert.Equal(t, `<p>Ana &lt;b&gt;Pop&lt;/b&gt;</p><p>&lt;i&gt;ok&lt;/i&gt;</p><p>{{ unknown.key }}</p>`, out)

	out = FillTemplate(tpl, values, map[string]bool{"incidentDescription": true})
	assert.Contains(t, out, "<p><i>ok</i></p>")
	assert.Contains(t, out, "Ana &lt;b&gt;Pop&lt;/b&gt;")
}

func TestFillTemplateReplacesEveryOccurrence(t *testing.T) {
	out := FillTemplate("{{publicId}} / {{ publicId }}", map[string]string{"publicId": "07-001-100"}, nil)
	assert.Equal(t, "07-001-100 / 07-001-100", out)
}

func TestSubmissionValues(t *testing.T) {
	values := SubmissionValues(validSubmission(), map[string]string{"publicId": "07-001-100", "city": "override"})
	assert.Equal(t, "Ana Pop", values["fullName"])
	assert.Equal(t, "14.03.2024", values["incidentDate"])
	assert.Equal(t, "Str. Lunga nr. 12, ap. 4, Brasov, Brasov, Romania", values["address"])
	assert.Equal(t, "07-001-100", values["publicId"])
	assert.Equal(t, "override", values["city"])
}

func TestInjectPublicID(t *testing.T) {
	badge := `<div style="text-align:right;font-weight:bold;">ID public: 07-003-042</div>`

	out := InjectPublicID(`<html><BODY class="a"><p>x</p></BODY></html>`, "07-003-042")
	assert.Equal(t, `<html><BODY class="a">`+badge+`<p>x</p></BODY></html>`, out)

	out = InjectPublicID(`<p>no body</p>`, "07-003-042")
	assert.Equal(t, badge+`<p>no body</p>`, out)

	out = InjectPublicID(`<html><bodyguard></bodyguard><body></body></html>`, "07-003-042")
	assert.Equal(t, `<html><bodyguard></bodyguard><body>`+badge+`</body></html>`, out)

	assert.NotPanics(t, func() { InjectPublicID("", "") })
}

func TestSubmissionValidate(t *testing.T) {
	require.NoError(t, validSubmission().Validate())

	cases := map[string]func(*Submission){
		"missing first name": func(s *Submission) { s.PersonalData.FirstName = " " },
		"bad email":          func(s *Submission) { s.PersonalData.Email = "not-an-email" },
		"display name email": func(s *Submission) { s.PersonalData.Email = "Ana Pop <ana@example.org>" },
		"angle email":        func(s *Submission) { s.PersonalData.Email = "<ana@example.org>" },
		"zero incident":      func(s *Submission) { s.IncidentType = 0 },
		"bad date":           func(s *Submission) { s.IncidentDate = "14/03/2024" },
		"missing county":     func(s *Submission) { s.IncidentCounty = "" },
		"foreign key":        func(s *Submission) { s.Attachments = []string{"complaints/x.pdf"} },
		"traversal":          func(s *Submission) { s.Attachments = []string{"attachments/../complaints/x.pdf"} },
		"bare prefix":        func(s *Submission) { s.Attachments = []string{"attachments/"} },
		"too many": func(s *Submission) {
			for i := 0; i <= maxAttachments; i++ {
				s.Attachments = append(s.Attachments, "attachments/a.png")
			}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			sub := validSubmission()
			mutate(&sub)
			err := sub.Validate()
			require.Error(t, err)
			assert.Equal(t, CodeBadRequest, CodeOf(err))
		})
	}
}

func TestIncidentTimeAcceptsRFC3339(t *testing.T) {
	sub := validSubmission()
	sub.IncidentDate = "2024-03-14T18:20:00+02:00"
	got, err := sub.IncidentTime()
	require.NoError(t, err)
	assert.Equal(t, 14, got.Day())
}

func TestErrorHelpers(t *testing.T) {
	cause := errors.New("db down")
	err := internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "internal server error", MessageOf(err))

	bad := badRequest("incidentType must be a positive integer", nil)
	assert.Equal(t, "incidentType must be a positive integer", MessageOf(bad))
	assert.Equal(t, CodeInternal, CodeOf(cause))
}

type countersFunc func(ctx context.Context, categoryID int64) (int64, int64, error)

func (f countersFunc) ReserveCounters(ctx context.Context, categoryID int64) (int64, int64, error) {
	return f(ctx, categoryID)
}

func TestReserveNumbersDrawsGenNoInRange(t *testing.T) {
	counters := countersFunc(func(context.Context, int64) (int64, int64, error) { return 3, 128, nil })
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		n, err := ReserveNumbers(context.Background(), counters, 1, rng)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n.ObjNo)
		assert.Equal(t, int64(128), n.TotalNo)
		assert.GreaterOrEqual(t, n.GenNo, int64(100))
		assert.LessOrEqual(t, n.GenNo, int64(999))
	}
}

func TestReserveNumbersPropagatesError(t *testing.T) {
	boom := errors.New("locked")
	counters := countersFunc(func(context.Context, int64) (int64, int64, error) { return 0, 0, boom })
	_, err := ReserveNumbers(context.Background(), counters, 1, nil)
	assert.ErrorIs(t, err, boom)
}

func TestLockedSourceIsSafeForConcurrentUse(t *testing.T) {
	rng := rand.New(&lockedSource{src: rand.NewPCG(1, 2)})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = drawGenNo(rng)
			}
		}()
	}
	wg.Wait()
}

func TestBuildEmail(t *testing.T) {
	msg := BuildEmail(NotificationInput{
		To:         []string{"petitii@politia.example"},
		Cc:         []string{"oversight@animalert.ro"},
		PublicID:   "07-003-042",
		InternalID: `PET-PJ [BRC-003-042]/128/15.03.2024 -- "Braconaj"`,
		Category:   "Braconaj",
		Submission: validSubmission(),
		PDF:        []byte("%PDF-1.4"),
		Attachments: []objectstore.Object{{
			Key:         "attachments/3f2b8c1e-5d4a-4e7b-9a21-0c6d8e9f1a2b_urs.png",
			ContentType: "image/png",
			Body:        []byte("png"),
		}},
		OmittedAttachments: []string{"attachments/big.mov"},
	})

	assert.Equal(t, `Petitie PET-PJ [BRC-003-042]/128/15.03.2024 -- "Braconaj"`, msg.Subject)
	require.Len(t, msg.Attachments, 2)
	assert.Equal(t, "07-003-042.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.Equal(t, "urs.png", msg.Attachments[1].Filename)
	assert.Contains(t, msg.Text, "07-003-042")
	assert.Contains(t, msg.Text, "Ana Pop")
	assert.Contains(t, msg.Text, "attachments/big.mov")
	assert.Contains(t, msg.HTML, "PET-PJ [BRC-003-042]/128/15.03.2024 -- &#34;Braconaj&#34;")
	assert.Equal(t, []string{"oversight@animalert.ro"}, msg.Cc)
}

func TestAttachmentName(t *testing.T) {
	assert.Equal(t, "urs.png", attachmentName("attachments/3f2b8c1e-5d4a-4e7b-9a21-0c6d8e9f1a2b_urs.png"))
	assert.Equal(t, "plain.jpg", attachmentName("attachments/plain.jpg"))
	assert.Equal(t, "short_id.jpg", attachmentName("attachments/short_id.jpg"))
	assert.True(t, strings.HasSuffix(attachmentName("attachments/sub/x.pdf"), "x.pdf"))
}
