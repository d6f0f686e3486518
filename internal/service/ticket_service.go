package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/events"
	"github.com/ticketflow/ticketflow/internal/repository"
	apperrors "github.com/ticketflow/ticketflow/pkg/util"
)

// TicketService coordinates ticket CRUD and triggers the triage pipeline.
type TicketService struct {
	tickets   repository.TicketRepository
	publisher events.Publisher
	logger    *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, publisher events.Publisher, logger *zap.Logger) *TicketService {
	return &TicketService{tickets: tickets, publisher: publisher, logger: logger}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    domain.TicketPriority
}

// CreateTicket persists a new ticket with status TODO and enqueues the
// ticket-created event. Creation succeeds from the caller's perspective even
// if the enqueue fails; triage is then delayed, not lost data.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		Title:         title,
		Description:   description,
		Category:      strings.TrimSpace(input.Category),
		Priority:      priority,
		Status:        domain.TicketStatusTodo,
		RelatedSkills: []string{},
		CreatedBy:     userID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.publisher.Publish(ctx, events.EventTicketCreated, events.TicketCreatedPayload{TicketID: ticket.ID}); err != nil {
		s.logger.Error("failed to enqueue ticket-created event",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	return ticket, nil
}

// ListTickets returns all tickets for staff, own tickets for end-users.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User) ([]domain.Ticket, error) {
	if actor.IsStaff() {
		tickets, err := s.tickets.ListAll(ctx)
		return tickets, apperrors.MapError(err)
	}
	tickets, err := s.tickets.ListByCreator(ctx, actor.ID)
	return tickets, apperrors.MapError(err)
}

// GetTicket fetches one ticket, enforcing creator-or-staff visibility. A
// ticket the caller may not see reads as not found.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !actor.IsStaff() && ticket.CreatedBy != actor.ID {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

// DeleteTicket removes a ticket. Admins may delete any ticket, users only
// their own; anyone else gets not-found rather than a permission hint.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	if actor.Role != domain.RoleAdmin && ticket.CreatedBy != actor.ID {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("ticket deleted",
		zap.String("ticket_id", ticketID),
		zap.String("deleted_by", actor.ID))
	return nil
}
