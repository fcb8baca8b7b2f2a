package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailChannel sends plain-text mail through the Gmail API as the
// authorised account.
type GmailChannel struct {
	svc        *gmail.Service
	sender     string
	recipients []string
}

func NewGmailChannel(svc *gmail.Service, sender string, recipients []string) *GmailChannel {
	return &GmailChannel{svc: svc, sender: sender, recipients: recipients}
}

// NewGmailChannelFromCredentials authorises with an OAuth client JSON
// (Google Cloud Console "installed" or "web" format) and a refresh token.
func NewGmailChannelFromCredentials(ctx context.Context, credentialsJSON, refreshToken, sender string, recipients []string) (*GmailChannel, error) {
	cfg, err := google.ConfigFromJSON([]byte(credentialsJSON), gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}
	ts := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return NewGmailChannel(svc, sender, recipients), nil
}

func (c *GmailChannel) Name() string { return "gmail" }

func (c *GmailChannel) Send(ctx context.Context, subject, body string) error {
	if len(c.recipients) == 0 {
		return fmt.Errorf("gmail: no recipients")
	}
	raw := buildMessage(c.sender, c.recipients, subject, body)
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString([]byte(raw))}
	if _, err := c.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	return nil
}

func buildMessage(from string, to []string, subject, body string) string {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	return b.String()
}
