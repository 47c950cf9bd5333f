// File path: internal/mailer/mailer.go
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	mail "github.com/wneessen/go-mail"

	"github.com/animalert/animalert/internal/common"
)

// ErrDisabled is returned by Send when no SMTP host is configured.
var ErrDisabled = errors.New("mailer: smtp host not configured")

// Attachment is a file carried by a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a plain-text email with an optional HTML alternative.
type Message struct {
	To          []string
	Cc          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Size approximates the encoded size of the message body and attachments
// before base64 expansion.
func (m Message) Size() int {
	size := len(m.Text) + len(m.HTML)
	for _, a := range m.Attachments {
		size += len(a.Content)
	}
	return size
}

// Mailer delivers messages through an SMTP relay.
type Mailer struct {
	cfg Config
}

func New(cfg Config) (*Mailer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Mailer{cfg: cfg}, nil
}

// Send dials the relay and delivers msg. Each call opens its own
// connection.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if m == nil || !m.cfg.Enabled() {
		return ErrDisabled
	}
	built, err := m.build(msg)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, built); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	common.Component("mailer").Debug("mailer: sent", "to", strings.Join(msg.To, ","), "subject", msg.Subject, "bytes", msg.Size())
	return nil
}

func (m *Mailer) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.cfg.Timeout))
	}
	switch m.cfg.TLSPolicy {
	case TLSMandatory:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	case TLSNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	case TLSImplicit:
		opts = append(opts, mail.WithSSL())
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password))
	}
	return opts
}

func (m *Mailer) build(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("mailer: message has no recipients")
	}
	out := mail.NewMsg()
	if err := out.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	if len(msg.Cc) > 0 {
		if err := out.Cc(msg.Cc...); err != nil {
			return nil, fmt.Errorf("cc address: %w", err)
		}
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		out.AttachReadSeeker(a.Filename, bytes.NewReader(a.Content), mail.WithFileContentType(mail.ContentType(contentType)))
	}
	return out, nil
}

// sizeReplies are reply fragments relays use when refusing a message for
// its size without a structured 552 code.
var sizeReplies = []string{"message size", "size limit", "too large"}

// IsSizeError reports whether err is the relay refusing a message for its
// size: an SMTP 552 reply or a size refusal in the reply text.
func IsSizeError(err error) bool {
	if err == nil {
		return false
	}
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) && sendErr.ErrorCode() == 552 {
		return true
	}
	text := strings.ToLower(err.Error())
	for _, reply := range sizeReplies {
		if strings.Contains(text, reply) {
			return true
		}
	}
	return false
}
