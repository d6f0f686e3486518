package pipeline

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/classifier"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/observability"
	"github.com/ticketflow/ticketflow/internal/repository"
)

// Assigner resolves an assignee for a set of required skills. nil/nil means
// nobody is eligible and the ticket stays unassigned.
type Assigner interface {
	Resolve(ctx context.Context, requiredSkills []string) (*domain.User, error)
}

// AssignmentNotifier informs an assignee about a ticket. Implementations
// swallow delivery failures; the pipeline never sees them.
type AssignmentNotifier interface {
	NotifyAssignment(ctx context.Context, assignee *domain.User, ticket *domain.Ticket)
}

// TicketPipeline drives a newly created ticket through classification and
// assignment. Every step overwrites fields rather than accumulating, so the
// whole run is safe to replay under at-least-once delivery. The one known
// idempotence gap is the final notification: a duplicate run can send a
// duplicate email, which is accepted rather than prevented.
type TicketPipeline struct {
	tickets    repository.TicketRepository
	classifier classifier.Classifier
	assigner   Assigner
	notifier   AssignmentNotifier
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// TicketPipelineDeps bundles collaborators.
type TicketPipelineDeps struct {
	Tickets    repository.TicketRepository
	Classifier classifier.Classifier
	Assigner   Assigner
	Notifier   AssignmentNotifier
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTicketPipeline constructs the pipeline.
func NewTicketPipeline(deps TicketPipelineDeps) *TicketPipeline {
	return &TicketPipeline{
		tickets:    deps.Tickets,
		classifier: deps.Classifier,
		assigner:   deps.Assigner,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Run processes one ticket id. It never panics outward and never returns a
// raw error; the Result carries the retry decision for the caller.
func (p *TicketPipeline) Run(ctx context.Context, ticketID string) (result Result) {
	run := &runner{pipeline: "ticket-triage", logger: p.logger}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline panic recovered",
				zap.String("ticket_id", ticketID), zap.Any("panic", r))
			result = Result{Success: false, Err: errors.New("pipeline panic")}
		}
		p.metrics.RecordPipelineRun("ticket-triage", result.Success)
	}()

	var ticket *domain.Ticket
	if err := run.step("fetch-ticket", func() error {
		var err error
		ticket, err = p.tickets.GetByID(ctx, ticketID)
		if errors.Is(err, pgx.ErrNoRows) {
			return NewNonRetriable("ticket no longer exists", err)
		}
		return err
	}); err != nil {
		return run.fail(err)
	}

	if err := run.step("mark-in-progress", func() error {
		status := domain.TicketStatusInProgress
		return p.tickets.UpdateFields(ctx, ticket.ID, repository.TicketUpdate{Status: &status})
	}); err != nil {
		return run.fail(err)
	}

	// never fails: the classifier falls back internally
	var suggestion classifier.Suggestion
	_ = run.step("classify", func() error {
		suggestion = p.classifier.Classify(ctx, ticket)
		return nil
	})

	if err := run.step("apply-classification", func() error {
		priority := domain.NormalizePriority(suggestion.Priority)
		status := domain.TicketStatusInProgress
		notes := suggestion.HelpfulNotes
		skills := suggestion.RelatedSkills
		if skills == nil {
			skills = []string{}
		}
		return p.tickets.UpdateFields(ctx, ticket.ID, repository.TicketUpdate{
			Priority:      &priority,
			Status:        &status,
			HelpfulNotes:  &notes,
			RelatedSkills: &skills,
		})
	}); err != nil {
		return run.fail(err)
	}

	var assignee *domain.User
	if err := run.step("assign-moderator", func() error {
		var err error
		assignee, err = p.assigner.Resolve(ctx, suggestion.RelatedSkills)
		if err != nil {
			return err
		}
		var assigneeID *string
		if assignee != nil {
			assigneeID = &assignee.ID
		}
		return p.tickets.UpdateFields(ctx, ticket.ID, repository.TicketUpdate{AssignedTo: &assigneeID})
	}); err != nil {
		return run.fail(err)
	}

	if assignee != nil {
		// notifier swallows delivery failures; this step cannot fail the run
		_ = run.step("send-notification", func() error {
			final, err := p.tickets.GetByID(ctx, ticket.ID)
			if err != nil {
				p.logger.Warn("could not reload ticket for notification",
					zap.String("ticket_id", ticket.ID), zap.Error(err))
				final = ticket
			}
			p.notifier.NotifyAssignment(ctx, assignee, final)
			return nil
		})
	}

	p.logger.Info("ticket triage complete",
		zap.String("ticket_id", ticket.ID),
		zap.Bool("assigned", assignee != nil))
	return Result{Success: true}
}
