// Package email is the transactional notification dispatcher. It is a
// best-effort side channel: callers decide whether a failure is compensated
// (invite issuance) or logged and swallowed (welcome, verification).
package email

import "context"

type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
	SendTemplate(ctx context.Context, to []string, templateName string, data map[string]any) error
}

// Template names known to the dispatcher.
const (
	TemplateInviteMember  = "invite_member"
	TemplateWelcome       = "welcome"
	TemplatePasswordReset = "password_reset"
	TemplateVerifyEmail   = "verify_email"
)

// NoOpProvider is used when SMTP is not configured.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}

func (p *NoOpProvider) SendTemplate(ctx context.Context, to []string, templateName string, data map[string]any) error {
	return nil
}
