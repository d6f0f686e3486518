package pipeline

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/observability"
	"github.com/ticketflow/ticketflow/internal/repository"
)

// WelcomeNotifier greets a new user. Implementations swallow delivery
// failures.
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, user *domain.User)
}

// SignupPipeline sends the welcome email for a signup event.
type SignupPipeline struct {
	users    repository.UserRepository
	notifier WelcomeNotifier
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewSignupPipeline constructs the pipeline.
func NewSignupPipeline(users repository.UserRepository, notifier WelcomeNotifier, metrics *observability.Metrics, logger *zap.Logger) *SignupPipeline {
	return &SignupPipeline{users: users, notifier: notifier, metrics: metrics, logger: logger}
}

// Run processes one signup event identified by user email.
func (p *SignupPipeline) Run(ctx context.Context, email string) (result Result) {
	run := &runner{pipeline: "user-signup", logger: p.logger}

	defer func() {
		p.metrics.RecordPipelineRun("user-signup", result.Success)
	}()

	var user *domain.User
	if err := run.step("fetch-user", func() error {
		var err error
		user, err = p.users.GetByEmail(ctx, email)
		if errors.Is(err, pgx.ErrNoRows) {
			return NewNonRetriable("user no longer exists", err)
		}
		return err
	}); err != nil {
		return run.fail(err)
	}

	_ = run.step("send-welcome-email", func() error {
		p.notifier.SendWelcome(ctx, user)
		return nil
	})

	return Result{Success: true}
}
