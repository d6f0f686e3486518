package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/mail"
	"github.com/ticketflow/ticketflow/internal/service"
)

type fakeSender struct {
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestNotifyAssignmentUsesAdminAsSender(t *testing.T) {
	sender := &fakeSender{}
	users := &fakeUserRepo{users: []*domain.User{
		{ID: "a-1", Email: "admin@example.com", Role: domain.RoleAdmin},
	}}
	svc := service.NewNotificationService(sender, users, config.SMTPConfig{}, zap.NewNop())

	svc.NotifyAssignment(context.Background(), &domain.User{Email: "mod@example.com"}, &domain.Ticket{
		Title:        "VPN not connecting",
		Priority:     domain.TicketPriorityHigh,
		Status:       domain.TicketStatusInProgress,
		Description:  "Cannot connect since this morning",
		HelpfulNotes: "Check the gateway logs",
	})

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "mod@example.com", msg.To)
	assert.Equal(t, "admin@example.com", msg.From)
	assert.Contains(t, msg.Body, "Title: VPN not connecting")
	assert.Contains(t, msg.Body, "Priority: high")
	assert.Contains(t, msg.Body, "Category: General")
	assert.Contains(t, msg.Body, "Triage Notes:")
}

func TestNotifyAssignmentWithoutAdmin(t *testing.T) {
	sender := &fakeSender{}
	svc := service.NewNotificationService(sender, &fakeUserRepo{}, config.SMTPConfig{}, zap.NewNop())

	svc.NotifyAssignment(context.Background(), &domain.User{Email: "mod@example.com"}, &domain.Ticket{
		Title: "t", Description: "d",
	})

	require.Len(t, sender.sent, 1)
	assert.Empty(t, sender.sent[0].From, "sender falls back to the configured support address")
	assert.NotContains(t, sender.sent[0].Body, "Triage Notes:")
}

func TestNotifyAssignmentSwallowsSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp refused")}
	svc := service.NewNotificationService(sender, &fakeUserRepo{}, config.SMTPConfig{}, zap.NewNop())

	// must not panic or propagate
	svc.NotifyAssignment(context.Background(), &domain.User{Email: "mod@example.com"}, &domain.Ticket{Title: "t"})
	svc.NotifyAssignment(context.Background(), nil, &domain.Ticket{Title: "t"})
}

func TestSendWelcome(t *testing.T) {
	sender := &fakeSender{}
	svc := service.NewNotificationService(sender, &fakeUserRepo{}, config.SMTPConfig{}, zap.NewNop())

	svc.SendWelcome(context.Background(), &domain.User{Email: "new@example.com"})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "new@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "Hello new,")
	assert.Contains(t, sender.sent[0].Subject, "Welcome to TicketFlow")
}
