package doctor

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dentalos/clinic/internal/platform/auth"
	"github.com/dentalos/clinic/internal/platform/mailer"
)

// ResetSender delivers password reset instructions to an account's inbox.
type ResetSender interface {
	SendReset(ctx context.Context, d *Doctor) error
}

type Service struct {
	repo   Repository
	tokens *auth.TokenIssuer
	resets ResetSender
}

func NewService(repo Repository, tokens *auth.TokenIssuer, resets ResetSender) *Service {
	return &Service{repo: repo, tokens: tokens, resets: resets}
}

// Signup creates the account and its profile document.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	d := &Doctor{
		Name:         req.Name,
		Email:        req.Email,
		UID:          uuid.NewString(),
		PasswordHash: auth.HashPassword(req.Password),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Login verifies the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Doctor, error) {
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("email and password are required")
	}
	d, err := s.repo.Get(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	entered := auth.HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(entered), []byte(d.PasswordHash)) != 1 {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(d.Email, d.Name)
	if err != nil {
		return "", nil, fmt.Errorf("issuing token: %w", err)
	}
	return token, d, nil
}

// RequestPasswordReset asks the reset sender to mail instructions. The
// account must exist.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	d, err := s.repo.Get(ctx, email)
	if err != nil {
		return err
	}
	if err := s.resets.SendReset(ctx, d); err != nil {
		return fmt.Errorf("sending reset email: %w", err)
	}
	return nil
}

// MailResetSender emails reset instructions through the shared mailer.
type MailResetSender struct {
	sender mailer.EmailSender
}

func NewMailResetSender(sender mailer.EmailSender) *MailResetSender {
	return &MailResetSender{sender: sender}
}

func (m *MailResetSender) SendReset(ctx context.Context, d *Doctor) error {
	subject := "Password Reset Requested"
	body := fmt.Sprintf(`
Hello Dr. %s,

A password reset was requested for your account. If this was you, please
contact your administrator to complete the reset. If not, you can ignore
this message.

Regards,
Dental Treatment Planner
`, d.Name)
	return m.sender.SendEmail(ctx, d.Email, subject, body)
}
