package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendNotifier struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendNotifier {
	m := &MailerSendNotifier{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendNotifier) BanNotice(ctx context.Context, email, name, kind, reason, expiresAt string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Your CraftLink account has been restricted"
	until := "This restriction is permanent."
	if expiresAt != "" {
		until = fmt.Sprintf("The restriction lifts on %s.", expiresAt)
	}

	html := fmt.Sprintf(`
		<h2>Account restricted</h2>
		<p>Hi %s,</p>
		<p>A %s restriction was placed on your account.</p>
		<p>Reason: %s</p>
		<p>%s</p>
	`, name, kind, reason, until)

	text := fmt.Sprintf("A %s restriction was placed on your account.\nReason: %s\n%s", kind, reason, until)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: name, Email: email}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("mailersend returned status %d", res.StatusCode)
	}
	return nil
}
