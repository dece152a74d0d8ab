package mailer

import (
	"fmt"

	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/util"
	"github.com/wneessen/go-mail"
)

const (
	smtpGmailHost = "smtp.gmail.com"
	smtpGmailPort = 587

	senderEmailName    = "GreenCycle Marketplace"
	senderEmailAddress = "greencycle.marketplace@gmail.com"
)

// Sender delivers transactional email. Callers treat failures as
// non-fatal; purchases never roll back because a receipt bounced.
type Sender interface {
	SendPurchaseReceipt(buyerEmail string, component db.Component) error
}

type GmailSender struct {
	client *mail.Client
}

func NewGmailSender(username, password string) (*GmailSender, error) {
	client, err := mail.NewClient(smtpGmailHost, mail.WithPort(smtpGmailPort), mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username), mail.WithPassword(password))
	if err != nil {
		return nil, err
	}

	return &GmailSender{client: client}, nil
}

func (sender *GmailSender) SendPurchaseReceipt(buyerEmail string, component db.Component) error {
	msg := mail.NewMsg()

	if err := msg.FromFormat(senderEmailName, senderEmailAddress); err != nil {
		return fmt.Errorf("failed to set From address: %w", err)
	}
	if err := msg.To(buyerEmail); err != nil {
		return fmt.Errorf("failed to set To address: %w", err)
	}

	msg.Subject(fmt.Sprintf("Order confirmed: %s", component.Name))

	body := fmt.Sprintf(
		"<p>Thanks for your purchase!</p>"+
			"<p>You bought <strong>%s</strong> for <strong>%s</strong>.</p>"+
			"<p>The seller has been notified and will arrange shipping.</p>",
		component.Name, util.FormatUSD(component.CurrentPrice),
	)
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := sender.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
