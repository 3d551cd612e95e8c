// Package mailer delivers the clinic's outbound email, today just the
// inventory alert digests. Delivery goes over SMTP; a recording mock stands in
// wherever SMTP is not configured.
package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when sending is attempted without SMTP settings.
var ErrNotConfigured = errors.New("smtp is not configured")

// EmailSender sends a single HTML email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds a sender for the given relay. From is the envelope and
// header sender address.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	// DialAndSend has no context support, so run it in a goroutine and race
	// the context deadline.
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return context.DeadlineExceeded
	}
}

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// Mock is a recording test double for EmailSender.
type Mock struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
}

func (m *Mock) SendEmail(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: htmlBody})
	if m.ShouldFail {
		return errors.New("mock send failure")
	}
	return nil
}

// Calls returns a copy of the recorded sends.
func (m *Mock) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Disabled rejects every send. Used when SMTP settings are absent so callers
// get a clear error instead of a silent no-op.
type Disabled struct{}

func (Disabled) SendEmail(context.Context, string, string, string) error {
	return ErrNotConfigured
}
