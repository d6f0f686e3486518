package service_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/events"
	"github.com/ticketflow/ticketflow/internal/repository"
)

type fakeUserRepo struct {
	users []*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("u-%d", len(f.users)+1)
	}
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, updated *domain.User) error {
	for i, u := range f.users {
		if u.ID == updated.ID {
			f.users[i] = updated
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) FindByRoleAndSkills(_ context.Context, role domain.UserRole, skills []string) (*domain.User, error) {
	if len(skills) == 0 {
		return nil, pgx.ErrNoRows
	}
	for _, u := range f.users {
		if u.Role != role {
			continue
		}
		for _, have := range u.Skills {
			for _, want := range skills {
				if strings.Contains(strings.ToLower(have), strings.ToLower(want)) ||
					strings.Contains(strings.ToLower(want), strings.ToLower(have)) {
					return u, nil
				}
			}
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) FindByRole(_ context.Context, role domain.UserRole) (*domain.User, error) {
	for _, u := range f.users {
		if u.Role == role {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ListAll(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

type fakeTicketRepo struct {
	byID map[string]*domain.Ticket
	seq  int
}

func newFakeTicketRepo(tickets ...*domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{byID: map[string]*domain.Ticket{}}
	for _, t := range tickets {
		repo.byID[t.ID] = t
	}
	return repo
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		f.seq++
		ticket.ID = fmt.Sprintf("t-%d", f.seq)
	}
	f.byID[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) UpdateFields(_ context.Context, id string, update repository.TicketUpdate) error {
	ticket, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.Priority != nil {
		ticket.Priority = *update.Priority
	}
	if update.Status != nil {
		ticket.Status = *update.Status
	}
	if update.HelpfulNotes != nil {
		ticket.HelpfulNotes = *update.HelpfulNotes
	}
	if update.RelatedSkills != nil {
		ticket.RelatedSkills = append([]string{}, (*update.RelatedSkills)...)
	}
	if update.AssignedTo != nil {
		ticket.AssignedTo = *update.AssignedTo
	}
	return nil
}

func (f *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTicketRepo) ListByCreator(_ context.Context, userID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.byID {
		if t.CreatedBy == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.byID {
		out = append(out, *t)
	}
	return out, nil
}

type publishedEvent struct {
	eventType events.EventType
	payload   any
}

type fakePublisher struct {
	published []publishedEvent
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, eventType events.EventType, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedEvent{eventType: eventType, payload: payload})
	return nil
}
