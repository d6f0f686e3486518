package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Status only moves
// forward (TODO -> IN_PROGRESS -> DONE); nothing moves it back automatically.
type TicketStatus string

const (
	TicketStatusTodo       TicketStatus = "TODO"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusDone       TicketStatus = "DONE"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

var statusRank = map[TicketStatus]int{
	TicketStatusTodo:       0,
	TicketStatusInProgress: 1,
	TicketStatusDone:       2,
}

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s TicketStatus) bool {
	_, ok := statusRank[s]
	return ok
}

// StatusAdvances reports whether moving from current to next keeps the
// forward-only invariant. Re-applying the current status counts as forward,
// which is what makes the pipeline's status writes replay-safe.
func StatusAdvances(current, next TicketStatus) bool {
	cur, ok := statusRank[current]
	if !ok {
		return false
	}
	nxt, ok := statusRank[next]
	if !ok {
		return false
	}
	return nxt >= cur
}

// ValidPriority reports whether p is one of the four priority values.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// NormalizePriority maps a classifier suggestion onto a storable priority.
// Suggestions are limited to low/medium/high; anything else becomes medium
// before the ticket is ever updated.
func NormalizePriority(suggested TicketPriority) TicketPriority {
	switch suggested {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return suggested
	}
	return TicketPriorityMedium
}

// Ticket is the aggregate for support requests. Classification fields
// (Priority, HelpfulNotes, RelatedSkills), Status and AssignedTo are owned by
// the triage pipeline once the ticket exists.
type Ticket struct {
	ID            string
	Title         string
	Description   string
	Category      string
	Priority      TicketPriority
	Status        TicketStatus
	HelpfulNotes  string
	RelatedSkills []string
	AssignedTo    *string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
