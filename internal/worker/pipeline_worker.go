package worker

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/events"
	"github.com/ticketflow/ticketflow/internal/pipeline"
)

// PipelineWorker binds the event queue to the pipelines. One consumer
// goroutine per event type; redelivery and delivery caps live in the queue.
type PipelineWorker struct {
	queue   *events.Queue
	tickets *pipeline.TicketPipeline
	signups *pipeline.SignupPipeline
	logger  *zap.Logger
}

// NewPipelineWorker constructs the worker.
func NewPipelineWorker(queue *events.Queue, tickets *pipeline.TicketPipeline, signups *pipeline.SignupPipeline, logger *zap.Logger) *PipelineWorker {
	return &PipelineWorker{queue: queue, tickets: tickets, signups: signups, logger: logger}
}

// Start launches the consumers. They run until ctx is cancelled.
func (w *PipelineWorker) Start(ctx context.Context) {
	go w.queue.Consume(ctx, events.EventTicketCreated, w.handleTicketCreated)
	go w.queue.Consume(ctx, events.EventUserSignup, w.handleUserSignup)
	w.logger.Info("pipeline workers started")
}

func (w *PipelineWorker) handleTicketCreated(ctx context.Context, event events.Event) error {
	var payload events.TicketCreatedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return pipeline.NewNonRetriable("invalid ticket-created payload", err)
	}
	if err := payload.Validate(); err != nil {
		return pipeline.NewNonRetriable("invalid ticket-created payload", err)
	}

	result := w.tickets.Run(ctx, payload.TicketID)
	return resultToQueueError(result)
}

func (w *PipelineWorker) handleUserSignup(ctx context.Context, event events.Event) error {
	var payload events.UserSignupPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return pipeline.NewNonRetriable("invalid user-signup payload", err)
	}
	if err := payload.Validate(); err != nil {
		return pipeline.NewNonRetriable("invalid user-signup payload", err)
	}

	result := w.signups.Run(ctx, payload.Email)
	return resultToQueueError(result)
}

// resultToQueueError translates a pipeline result into the queue's ack/retry
// contract: nil acks, a non-retriable error acks and drops, anything else
// leaves the message pending for redelivery.
func resultToQueueError(result pipeline.Result) error {
	if result.Success {
		return nil
	}
	if result.NonRetriable {
		return pipeline.NewNonRetriable("pipeline gave up", result.Err)
	}
	return result.Err
}
