package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/mail"
	"github.com/ticketflow/ticketflow/internal/repository"
)

// NotificationService wraps the mail collaborator. Delivery is fire and
// forget: failures are logged and never reach the caller.
type NotificationService struct {
	sender mail.Sender
	users  repository.UserRepository
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(sender mail.Sender, users repository.UserRepository, cfg config.SMTPConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{sender: sender, users: users, cfg: cfg, logger: logger}
}

// NotifyAssignment emails the assignee about a newly assigned ticket.
func (n *NotificationService) NotifyAssignment(ctx context.Context, assignee *domain.User, ticket *domain.Ticket) {
	if assignee == nil {
		return
	}

	category := ticket.Category
	if category == "" {
		category = "General"
	}

	body := fmt.Sprintf(`Hello %s,

A new support ticket has been assigned to you:

Title: %s
Priority: %s
Category: %s
Status: %s

Description:
%s
`, recipientName(assignee.Email), ticket.Title, ticket.Priority, category, ticket.Status, ticket.Description)

	if ticket.HelpfulNotes != "" {
		body += fmt.Sprintf(`
Triage Notes:
%s
`, ticket.HelpfulNotes)
	}
	body += `
Please log into TicketFlow to review and resolve this ticket.

Best regards,
TicketFlow Admin Team`

	n.deliver(ctx, assignee.Email, "New Ticket Assigned - TicketFlow", body)
}

// SendWelcome emails a freshly signed-up user.
func (n *NotificationService) SendWelcome(ctx context.Context, user *domain.User) {
	if user == nil {
		return
	}
	body := fmt.Sprintf(`Hello %s,

Welcome to TicketFlow! Your account has been successfully created.

You can now:
- Create support tickets for IT issues
- Track the status of your requests
- Receive updates on ticket progress

If you have any questions, feel free to reach out to our support team.

Best regards,
TicketFlow Admin Team`, recipientName(user.Email))

	n.deliver(ctx, user.Email, "Welcome to TicketFlow - Your Account is Ready!", body)
}

// deliver sends with the admin's address as sender when one exists, falling
// back to the configured support address. Errors are swallowed by contract.
func (n *NotificationService) deliver(ctx context.Context, to, subject, body string) {
	from := n.adminSender(ctx)
	if err := n.sender.Send(mail.Message{To: to, Subject: subject, Body: body, From: from}); err != nil {
		n.logger.Warn("notification delivery failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return
	}
	n.logger.Info("notification sent", zap.String("to", to), zap.String("subject", subject))
}

func (n *NotificationService) adminSender(ctx context.Context) string {
	admin, err := n.users.FindByRole(ctx, domain.RoleAdmin)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			n.logger.Debug("admin sender lookup failed", zap.Error(err))
		}
		return ""
	}
	return admin.Email
}

func recipientName(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return email
}
