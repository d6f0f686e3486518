package dto

import (
	"time"

	"github.com/ticketflow/ticketflow/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title" validate:"required"`
	Description string                `json:"description" validate:"required"`
	Category    string                `json:"category"`
	Priority    domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Category      string                `json:"category,omitempty"`
	Priority      domain.TicketPriority `json:"priority"`
	Status        domain.TicketStatus   `json:"status"`
	HelpfulNotes  string                `json:"helpful_notes,omitempty"`
	RelatedSkills []string              `json:"related_skills"`
	AssignedTo    *string               `json:"assigned_to"`
	CreatedBy     string                `json:"created_by"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketFromDomain maps the aggregate to its response shape.
func TicketFromDomain(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:            ticket.ID,
		Title:         ticket.Title,
		Description:   ticket.Description,
		Category:      ticket.Category,
		Priority:      ticket.Priority,
		Status:        ticket.Status,
		HelpfulNotes:  ticket.HelpfulNotes,
		RelatedSkills: ticket.RelatedSkills,
		AssignedTo:    ticket.AssignedTo,
		CreatedBy:     ticket.CreatedBy,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}
