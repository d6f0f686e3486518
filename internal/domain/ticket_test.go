package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePriority(t *testing.T) {
	cases := []struct {
		in   TicketPriority
		want TicketPriority
	}{
		{TicketPriorityLow, TicketPriorityLow},
		{TicketPriorityMedium, TicketPriorityMedium},
		{TicketPriorityHigh, TicketPriorityHigh},
		{TicketPriorityUrgent, TicketPriorityMedium},
		{TicketPriority("critical"), TicketPriorityMedium},
		{TicketPriority("HIGH"), TicketPriorityMedium},
		{TicketPriority(""), TicketPriorityMedium},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePriority(tc.in), "input %q", tc.in)
	}
}

func TestStatusAdvances(t *testing.T) {
	assert.True(t, StatusAdvances(TicketStatusTodo, TicketStatusInProgress))
	assert.True(t, StatusAdvances(TicketStatusInProgress, TicketStatusInProgress), "replay of the same status is forward")
	assert.True(t, StatusAdvances(TicketStatusInProgress, TicketStatusDone))
	assert.False(t, StatusAdvances(TicketStatusDone, TicketStatusTodo))
	assert.False(t, StatusAdvances(TicketStatusInProgress, TicketStatusTodo))
	assert.False(t, StatusAdvances(TicketStatus("bogus"), TicketStatusDone))
}

func TestValidPriorityAndStatus(t *testing.T) {
	assert.True(t, ValidPriority(TicketPriorityUrgent))
	assert.False(t, ValidPriority(TicketPriority("critical")))

	assert.True(t, ValidStatus(TicketStatusDone))
	assert.False(t, ValidStatus(TicketStatus("CLOSED")))
}

func TestIsStaff(t *testing.T) {
	assert.False(t, (&User{Role: RoleUser}).IsStaff())
	assert.True(t, (&User{Role: RoleModerator}).IsStaff())
	assert.True(t, (&User{Role: RoleAdmin}).IsStaff())
}
