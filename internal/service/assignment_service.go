package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/repository"
)

// AssignmentService picks a moderator for a ticket based on required skills.
type AssignmentService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(users repository.UserRepository, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{users: users, logger: logger}
}

// Resolve returns a moderator whose skills match any of the required skills
// (case-insensitive containment), falling back to any admin. A nil user with
// nil error means the ticket stays unassigned; that is not a failure.
func (s *AssignmentService) Resolve(ctx context.Context, requiredSkills []string) (*domain.User, error) {
	moderator, err := s.users.FindByRoleAndSkills(ctx, domain.RoleModerator, requiredSkills)
	if err == nil {
		return moderator, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	admin, err := s.users.FindByRole(ctx, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("no eligible moderator or admin, ticket stays unassigned",
				zap.Strings("required_skills", requiredSkills))
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}
