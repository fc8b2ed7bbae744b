package notify

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
	portsrepo "github.com/vzlabs/expense_tracker_app/internal/core/ports/repositories"
)

// MailSender sends one message. Satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier is a best-effort secondary observer of new-expense events: it
// subscribes to the admin channel like any other listener and mails the admin
// group. It runs fully decoupled from claim creation, so a mail failure can
// never affect the workflow.
type EmailNotifier struct {
	sender MailSender
	from   string
	users  portsrepo.UserReader
	bus    *Bus
	logger *slog.Logger
}

// NewEmailNotifier creates an email notifier. from is the sender address.
func NewEmailNotifier(sender MailSender, from string, users portsrepo.UserReader, bus *Bus, logger *slog.Logger) *EmailNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailNotifier{
		sender: sender,
		from:   from,
		users:  users,
		bus:    bus,
		logger: logger,
	}
}

// Start subscribes to the admin channel and consumes events until ctx is
// cancelled. It returns immediately; consumption happens on its own goroutine.
func (n *EmailNotifier) Start(ctx context.Context) {
	sub := n.bus.Subscribe(domain.AdminChannel)

	go func() {
		defer n.bus.Unsubscribe(domain.AdminChannel, sub)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				if event.Kind != domain.EventNewClaim {
					continue
				}
				payload, ok := event.Payload.(domain.NewClaimPayload)
				if !ok {
					continue
				}
				n.notifyAdmins(ctx, payload)
			}
		}
	}()
}

func (n *EmailNotifier) notifyAdmins(ctx context.Context, payload domain.NewClaimPayload) {
	emails, err := n.users.FindAdminEmails(ctx)
	if err != nil {
		n.logger.Error("Failed to look up admin emails", slog.String("error", err.Error()))
		return
	}
	if len(emails) == 0 {
		n.logger.Info("No admin emails found, skipping notification mail")
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", emails...)
	m.SetHeader("Subject", "New Expense Submitted")
	m.SetBody("text/plain", fmt.Sprintf(
		"A new expense has been submitted.\n\nAmount: $%s\nDescription: %s\nSubmitted by User ID: %s\nExpense ID: %s",
		payload.Amount.StringFixed(2), payload.Description, payload.SubmitterID, payload.ClaimID,
	))

	if err := n.sender.DialAndSend(m); err != nil {
		n.logger.Error("Failed to send admin notification email", slog.String("error", err.Error()))
		return
	}
	n.logger.Info("Admin notification email sent", slog.Int("recipients", len(emails)))
}
