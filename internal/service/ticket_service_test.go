package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/events"
	"github.com/ticketflow/ticketflow/internal/service"
)

func TestCreateTicketDefaultsAndPublishes(t *testing.T) {
	tickets := newFakeTicketRepo()
	publisher := &fakePublisher{}
	svc := service.NewTicketService(tickets, publisher, zap.NewNop())

	ticket, err := svc.CreateTicket(context.Background(), "u-1", service.TicketCreateInput{
		Title:       "  Printer jam  ",
		Description: "Paper stuck in tray 2",
	})

	require.NoError(t, err)
	assert.Equal(t, "Printer jam", ticket.Title)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, domain.TicketStatusTodo, ticket.Status)
	assert.Equal(t, "u-1", ticket.CreatedBy)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.EventTicketCreated, publisher.published[0].eventType)
	assert.Equal(t, events.TicketCreatedPayload{TicketID: ticket.ID}, publisher.published[0].payload)
}

func TestCreateTicketRequiresTitleAndDescription(t *testing.T) {
	svc := service.NewTicketService(newFakeTicketRepo(), &fakePublisher{}, zap.NewNop())

	_, err := svc.CreateTicket(context.Background(), "u-1", service.TicketCreateInput{
		Title:       "   ",
		Description: "something",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))

	_, err = svc.CreateTicket(context.Background(), "u-1", service.TicketCreateInput{
		Title: "no description",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))
}

func TestCreateTicketRejectsUnknownPriority(t *testing.T) {
	svc := service.NewTicketService(newFakeTicketRepo(), &fakePublisher{}, zap.NewNop())

	_, err := svc.CreateTicket(context.Background(), "u-1", service.TicketCreateInput{
		Title:       "t",
		Description: "d",
		Priority:    domain.TicketPriority("critical"),
	})

	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))
}

func TestCreateTicketAcceptsUrgent(t *testing.T) {
	svc := service.NewTicketService(newFakeTicketRepo(), &fakePublisher{}, zap.NewNop())

	ticket, err := svc.CreateTicket(context.Background(), "u-1", service.TicketCreateInput{
		Title:       "Site down",
		Description: "Production outage",
		Priority:    domain.TicketPriorityUrgent,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityUrgent, ticket.Priority)
}

func TestCreateTicketSucceedsWhenEnqueueFails(t *testing.T) {
	tickets := newFakeTicketRepo()
	publisher := &fakePublisher{err: errors.New("redis down")}
	svc := service.NewTicketService(tickets, publisher, zap.NewNop())

	ticket, err := svc.CreateTicket(context.Background(), "u-1", service.TicketCreateInput{
		Title:       "t",
		Description: "d",
	})

	require.NoError(t, err)
	_, ok := tickets.byID[ticket.ID]
	assert.True(t, ok, "ticket persisted even though the event was not enqueued")
}

func TestListTicketsScopesByRole(t *testing.T) {
	tickets := newFakeTicketRepo(
		&domain.Ticket{ID: "t-1", CreatedBy: "u-1"},
		&domain.Ticket{ID: "t-2", CreatedBy: "u-2"},
	)
	svc := service.NewTicketService(tickets, &fakePublisher{}, zap.NewNop())

	mine, err := svc.ListTickets(context.Background(), &domain.User{ID: "u-1", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListTickets(context.Background(), &domain.User{ID: "m-1", Role: domain.RoleModerator})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetTicketHidesOthersTickets(t *testing.T) {
	tickets := newFakeTicketRepo(&domain.Ticket{ID: "t-1", CreatedBy: "u-1"})
	svc := service.NewTicketService(tickets, &fakePublisher{}, zap.NewNop())

	_, err := svc.GetTicket(context.Background(), &domain.User{ID: "u-2", Role: domain.RoleUser}, "t-1")
	assert.Equal(t, "NOT_FOUND", domainErrCode(t, err))

	got, err := svc.GetTicket(context.Background(), &domain.User{ID: "m-1", Role: domain.RoleModerator}, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", got.ID)
}

func TestDeleteTicketByStrangerIsRejected(t *testing.T) {
	tickets := newFakeTicketRepo(&domain.Ticket{ID: "t-1", CreatedBy: "u-1"})
	svc := service.NewTicketService(tickets, &fakePublisher{}, zap.NewNop())

	err := svc.DeleteTicket(context.Background(), &domain.User{ID: "u-2", Role: domain.RoleUser}, "t-1")

	assert.Equal(t, "NOT_FOUND", domainErrCode(t, err))
	_, stillThere := tickets.byID["t-1"]
	assert.True(t, stillThere)
}

func TestDeleteTicketByCreatorAndAdmin(t *testing.T) {
	tickets := newFakeTicketRepo(
		&domain.Ticket{ID: "t-1", CreatedBy: "u-1"},
		&domain.Ticket{ID: "t-2", CreatedBy: "u-1"},
	)
	svc := service.NewTicketService(tickets, &fakePublisher{}, zap.NewNop())

	require.NoError(t, svc.DeleteTicket(context.Background(), &domain.User{ID: "u-1", Role: domain.RoleUser}, "t-1"))
	require.NoError(t, svc.DeleteTicket(context.Background(), &domain.User{ID: "a-1", Role: domain.RoleAdmin}, "t-2"))

	_, err := tickets.GetByID(context.Background(), "t-1")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
