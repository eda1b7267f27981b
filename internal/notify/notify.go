// Package notify delivers invite e-mails. The invite service treats a nil
// error as a delivered notification and rolls the invite back otherwise.
package notify

import (
	"blogCMS/internal/config"
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"net/url"
	"strings"
)

type Notifier interface {
	SendInviteEmail(ctx context.Context, to, code, inviterName string) error
}

// InviteMessage is the rendered invite e-mail.
type InviteMessage struct {
	To          string
	Subject     string
	HTML        string
	InviteURL   string
	InviterName string
	Code        string
}

var inviteTemplate = template.Must(template.New("invite").Parse(`
<h2>You've been invited to join {{.AppName}}</h2>
<p>{{.InviterName}} has invited you to become an author on our blog platform.</p>
<p>Click the link below to accept your invitation:</p>
<a href="{{.InviteURL}}" style="background-color: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">Accept Invitation</a>
<p>This invitation will expire in 7 days.</p>
<p>If you didn't expect this invitation, you can safely ignore this email.</p>
`))

func InviteURL(appURL, code string) string {
	return strings.TrimSuffix(appURL, "/") + "/auth/invite?code=" + url.QueryEscape(code)
}

func BuildInviteMessage(appName, appURL, to, code, inviterName string) (*InviteMessage, error) {
	msg := &InviteMessage{
		To:          to,
		Subject:     fmt.Sprintf("You're invited to join %s", appName),
		InviteURL:   InviteURL(appURL, code),
		InviterName: inviterName,
		Code:        code,
	}

	var buf bytes.Buffer
	err := inviteTemplate.Execute(&buf, map[string]string{
		"AppName":     appName,
		"InviterName": inviterName,
		"InviteURL":   msg.InviteURL,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при формировании письма: %w", err)
	}
	msg.HTML = buf.String()

	return msg, nil
}

// New picks the notifier configured by INVITE_NOTIFIER.
func New(cfg *config.Config) (Notifier, error) {
	switch cfg.Notifier {
	case "smtp", "":
		return NewSMTPNotifier(cfg), nil
	case "amqp":
		return NewAMQPNotifier(cfg), nil
	case "log":
		return NewLogNotifier(cfg), nil
	default:
		return nil, fmt.Errorf("неизвестный тип уведомлений: %s", cfg.Notifier)
	}
}

// LogNotifier only logs the invite link. Used for local development.
type LogNotifier struct {
	appName string
	appURL  string
}

func NewLogNotifier(cfg *config.Config) *LogNotifier {
	return &LogNotifier{appName: cfg.AppName, appURL: cfg.AppURL}
}

func (n *LogNotifier) SendInviteEmail(ctx context.Context, to, code, inviterName string) error {
	msg, err := BuildInviteMessage(n.appName, n.appURL, to, code, inviterName)
	if err != nil {
		return err
	}
	log.Printf("invite for %s from %s: %s", msg.To, msg.InviterName, msg.InviteURL)
	return nil
}
