package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"cajacontrol/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer delivers alert mail for the supervision inbox, optionally attaching
// the acta PDF of an arqueo.
type Mailer struct {
	host      string
	remitente string
	auth      smtp.Auth
	addr      string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:      cfg.SMTPHost,
		remitente: cfg.SMTPUser,
		auth:      smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost),
		addr:      fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Send delivers a plain-text mail, attaching the file at pdfPath when given.
func (m *Mailer) Send(to, subject, body, pdfPath string) error {
	if m.host == "" {
		return errors.New("mailer: SMTP sin configurar")
	}

	e := email.NewEmail()
	e.From = m.remitente
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: adjuntar PDF: %w", err)
		}
	}
	return e.Send(m.addr, m.auth)
}
