package mailqueue

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrUnsupportedType = errors.New("unsupported mail type")

var subjects = map[string]string{
	domain.MailTypeWelcome:       "Job Portal - Welcome",
	domain.MailTypeResetPassword: "Job Portal - Reset your password",
}

// Composer turns queued messages into ready-to-send mails.
type Composer struct {
	from      string
	templates *template.Template
}

func NewComposer(from string) (*Composer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Composer{from: from, templates: tmpl}, nil
}

func (c *Composer) Compose(body []byte) (*mail.Msg, error) {
	var message domain.MailMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("decode mail message: %w", err)
	}

	subject, ok := subjects[message.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, message.Type)
	}

	tmpl := c.templates.Lookup(message.Type + ".html")
	if tmpl == nil {
		return nil, fmt.Errorf("%w: %q has no template", ErrUnsupportedType, message.Type)
	}

	m := mail.NewMsg()
	if err := m.From(c.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(message.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	m.Subject(subject)
	if err := m.SetBodyHTMLTemplate(tmpl, message.Data); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	return m, nil
}
