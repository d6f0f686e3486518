package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketflow/ticketflow/internal/domain"
)

func TestCreateTicketRequestValidation(t *testing.T) {
	assert.NoError(t, Validate(CreateTicketRequest{
		Title:       "Printer jam",
		Description: "Paper stuck",
	}))
	assert.NoError(t, Validate(CreateTicketRequest{
		Title:       "Site down",
		Description: "Outage",
		Priority:    domain.TicketPriorityUrgent,
	}))

	assert.Error(t, Validate(CreateTicketRequest{Description: "no title"}))
	assert.Error(t, Validate(CreateTicketRequest{
		Title:       "t",
		Description: "d",
		Priority:    domain.TicketPriority("critical"),
	}))
}

func TestSignupRequestValidation(t *testing.T) {
	assert.NoError(t, Validate(SignupRequest{Email: "a@b.co", Password: "hunter22"}))

	assert.Error(t, Validate(SignupRequest{Email: "not-an-email", Password: "hunter22"}))
	assert.Error(t, Validate(SignupRequest{Email: "a@b.co", Password: "short"}))
}

func TestUpdateUserRequestValidation(t *testing.T) {
	assert.NoError(t, Validate(UpdateUserRequest{Email: "a@b.co", Role: domain.RoleModerator}))
	assert.NoError(t, Validate(UpdateUserRequest{Email: "a@b.co"}), "role is optional")

	assert.Error(t, Validate(UpdateUserRequest{Email: "a@b.co", Role: domain.UserRole("superuser")}))
}

func TestUserResponseOmitsPasswordHash(t *testing.T) {
	resp := UserFromDomain(&domain.User{
		ID:           "u-1",
		Email:        "a@b.co",
		PasswordHash: "bcrypt-hash",
		Role:         domain.RoleUser,
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "bcrypt-hash")
}

func TestTicketFromDomainKeepsAssignment(t *testing.T) {
	assignee := "m-1"
	resp := TicketFromDomain(&domain.Ticket{
		ID:            "t-1",
		Title:         "t",
		Priority:      domain.TicketPriorityHigh,
		Status:        domain.TicketStatusInProgress,
		RelatedSkills: []string{"VPN"},
		AssignedTo:    &assignee,
	})

	require.NotNil(t, resp.AssignedTo)
	assert.Equal(t, "m-1", *resp.AssignedTo)
	assert.Equal(t, []string{"VPN"}, resp.RelatedSkills)
}
