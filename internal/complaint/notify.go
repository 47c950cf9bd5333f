// File path: internal/complaint/notify.go
package complaint

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"golang.org/x/sync/errgroup"

	"github.com/animalert/animalert/internal/common"
	"github.com/animalert/animalert/internal/common/telemetry"
	"github.com/animalert/animalert/internal/mailer"
	"github.com/animalert/animalert/internal/objectstore"
)

const attachmentFetchLimit = 4

// NotificationInput is everything the petition email is built from.
type NotificationInput struct {
	To         []string
	Cc         []string
	PublicID   string
	InternalID string
	Category   string
	Submission Submission
	PDF        []byte

	Attachments []objectstore.Object
	// OmittedAttachments lists stored keys that were left out of the email.
	OmittedAttachments []string
}

type emailView struct {
	PublicID    string
	InternalID  string
	Category    string
	Date        string
	Location    string
	Description string
	FullName    string
	Email       string
	Phone       string
	Address     string
	Omitted     []string
}

const textBodySource = `Buna ziua,

Va transmitem petitia {{.InternalID}} (ID public {{.PublicID}}), inregistrata prin platforma AnimAlert.

Categorie: {{.Category}}
Data incidentului: {{.Date}}
Locatie: {{.Location}}

Descriere:
{{.Description}}

Date de contact petent:
{{.FullName}}
Email: {{.Email}}
Telefon: {{.Phone}}
Adresa: {{.Address}}
{{if .Omitted}}
Atasamente neincluse in acest email (disponibile la cerere):
{{range .Omitted}}- {{.}}
{{end}}{{end}}`

const htmlBodySource = `<p>Buna ziua,</p>
<p>Va transmitem petitia <strong>{{.InternalID}}</strong> (ID public <strong>{{.PublicID}}</strong>), inregistrata prin platforma AnimAlert.</p>
<table>
<tr><td>Categorie</td><td>{{.Category}}</td></tr>
<tr><td>Data incidentului</td><td>{{.Date}}</td></tr>
<tr><td>Locatie</td><td>{{.Location}}</td></tr>
</table>
<p>{{.Description}}</p>
<h4>Date de contact petent</h4>
<p>{{.FullName}}<br>Email: {{.Email}}<br>Telefon: {{.Phone}}<br>Adresa: {{.Address}}</p>
{{if .Omitted}}<p>Atasamente neincluse in acest email (disponibile la cerere):</p>
<ul>{{range .Omitted}}<li>{{.}}</li>{{end}}</ul>{{end}}`

var (
	textBody = texttemplate.Must(texttemplate.New("text").Parse(textBodySource))
	htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBodySource))
)

// BuildEmail assembles the petition email: the PDF first, then the user
// attachments in submission order.
func BuildEmail(in NotificationInput) mailer.Message {
	values := SubmissionValues(in.Submission, nil)
	view := emailView{
		PublicID:    in.PublicID,
		InternalID:  in.InternalID,
		Category:    in.Category,
		Date:        values["incidentDate"],
		Location:    joinNonEmpty(", ", values["incidentCounty"], values["incidentCity"], values["incidentAddress"]),
		Description: values["incidentDescription"],
		FullName:    values["fullName"],
		Email:       values["email"],
		Phone:       values["phoneNumber"],
		Address:     values["address"],
		Omitted:     in.OmittedAttachments,
	}

	var text, html bytes.Buffer
	if err := textBody.Execute(&text, view); err != nil {
		text.Reset()
		text.WriteString("Petitie " + in.InternalID + " (ID public " + in.PublicID + ")")
	}
	if err := htmlBody.Execute(&html, view); err != nil {
		html.Reset()
	}

	msg := mailer.Message{
		To:      in.To,
		Cc:      in.Cc,
		Subject: "Petitie " + in.InternalID,
		Text:    text.String(),
		HTML:    html.String(),
	}
	msg.Attachments = append(msg.Attachments, mailer.Attachment{
		Filename:    in.PublicID + ".pdf",
		ContentType: "application/pdf",
		Content:     in.PDF,
	})
	for _, obj := range in.Attachments {
		msg.Attachments = append(msg.Attachments, mailer.Attachment{
			Filename:    attachmentName(obj.Key),
			ContentType: obj.ContentType,
			Content:     obj.Body,
		})
	}
	return msg
}

// withoutAttachments moves every user attachment to the omitted list.
func withoutAttachments(in NotificationInput) NotificationInput {
	out := in
	out.OmittedAttachments = append([]string(nil), in.OmittedAttachments...)
	for _, obj := range in.Attachments {
		out.OmittedAttachments = append(out.OmittedAttachments, obj.Key)
	}
	out.Attachments = nil
	return out
}

// notify sends the petition email. Failures are logged and counted; the
// complaint is already committed.
func (s *Service) notify(ctx context.Context, in NotificationInput, keys []string) {
	logger := common.Component("complaint")
	if s.mailer == nil {
		logger.Warn("complaint: notification skipped, no mailer configured", "public_id", in.PublicID)
		return
	}
	if len(in.To) == 0 {
		logger.Warn("complaint: notification skipped, no recipient", "public_id", in.PublicID)
		telemetry.RecordEmail(errNoRecipient, false)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.EmailTimeout)
	defer cancel()
	ctx, end := telemetry.StartSpan(ctx, "complaint.notify")
	defer end("public_id", in.PublicID)

	in.Attachments, in.OmittedAttachments = s.fetchAttachments(ctx, keys)
	msg := BuildEmail(in)
	if msg.Size() > s.cfg.MaxEmailBytes && len(in.Attachments) > 0 {
		logger.Info("complaint: attachments exceed email limit", "public_id", in.PublicID, "bytes", msg.Size(), "limit", s.cfg.MaxEmailBytes)
		in = withoutAttachments(in)
		msg = BuildEmail(in)
	}

	err := s.mailer.Send(ctx, msg)
	retried := false
	if err != nil && len(in.Attachments) > 0 && mailer.IsSizeError(err) {
		logger.Warn("complaint: relay rejected message size, retrying with pdf only", "public_id", in.PublicID, "error", err)
		retried = true
		in = withoutAttachments(in)
		err = s.mailer.Send(ctx, BuildEmail(in))
	}
	telemetry.RecordEmail(err, retried)
	if err != nil {
		logger.Error("complaint: notification failed", "public_id", in.PublicID, "to", strings.Join(in.To, ","), "error", err)
		return
	}
	logger.Info("complaint: notification sent", "public_id", in.PublicID, "to", strings.Join(in.To, ","), "attachments", len(in.Attachments), "retried", retried)
}

// fetchAttachments downloads user attachments concurrently. Keys that
// cannot be fetched are returned as omitted; order follows keys.
func (s *Service) fetchAttachments(ctx context.Context, keys []string) ([]objectstore.Object, []string) {
	if len(keys) == 0 {
		return nil, nil
	}
	results := make([]*objectstore.Object, len(keys))
	var g errgroup.Group
	g.SetLimit(attachmentFetchLimit)
	for i, key := range keys {
		g.Go(func() error {
			obj, err := s.documents.Get(ctx, key)
			if err != nil {
				common.Component("complaint").Warn("complaint: attachment unavailable", "key", key, "error", err)
				return nil
			}
			results[i] = &obj
			return nil
		})
	}
	_ = g.Wait()

	var fetched []objectstore.Object
	var omitted []string
	for i, obj := range results {
		if obj == nil {
			omitted = append(omitted, keys[i])
			continue
		}
		fetched = append(fetched, *obj)
	}
	return fetched, omitted
}

// attachmentName strips the prefix and the random id from a stored key.
func attachmentName(key string) string {
	name := strings.TrimPrefix(key, objectstore.AttachmentPrefix)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if id, rest, ok := strings.Cut(name, "_"); ok && len(id) == 36 && rest != "" {
		return rest
	}
	return name
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
