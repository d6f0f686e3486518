package classifier_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/classifier"
	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/domain"
)

func sampleTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:          "t-1",
		Title:       "Email sync broken",
		Description: "Outlook stopped syncing on Friday",
	}
}

func TestParseSuggestionPlainJSON(t *testing.T) {
	got, err := classifier.ParseSuggestion(`{"summary":"sync issue","priority":"high","helpfulNotes":"check IMAP","relatedSkills":["Email"]}`)

	require.NoError(t, err)
	assert.Equal(t, "sync issue", got.Summary)
	assert.Equal(t, domain.TicketPriorityHigh, got.Priority)
	assert.Equal(t, "check IMAP", got.HelpfulNotes)
	assert.Equal(t, []string{"Email"}, got.RelatedSkills)
}

func TestParseSuggestionStripsFences(t *testing.T) {
	raw := "```json\n{\"summary\":\"s\",\"priority\":\"low\",\"helpfulNotes\":\"n\",\"relatedSkills\":[]}\n```"

	got, err := classifier.ParseSuggestion(raw)

	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityLow, got.Priority)
}

func TestParseSuggestionIgnoresSurroundingProse(t *testing.T) {
	raw := "Here is the analysis you asked for:\n{\"summary\":\"s\",\"priority\":\"medium\",\"helpfulNotes\":\"n\",\"relatedSkills\":[\"VPN\"]}\nLet me know if you need more."

	got, err := classifier.ParseSuggestion(raw)

	require.NoError(t, err)
	assert.Equal(t, []string{"VPN"}, got.RelatedSkills)
}

func TestParseSuggestionRejectsNonJSON(t *testing.T) {
	_, err := classifier.ParseSuggestion("I could not analyze this ticket.")
	assert.Error(t, err)

	_, err = classifier.ParseSuggestion("{not valid json}")
	assert.Error(t, err)
}

func TestFallbackIsDeterministic(t *testing.T) {
	ticket := sampleTicket()

	first := classifier.Fallback(ticket)
	second := classifier.Fallback(ticket)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.TicketPriorityMedium, first.Priority)
	assert.Equal(t, "User reported: Email sync broken", first.Summary)
	assert.Equal(t, []string{"Technical Support", "Troubleshooting"}, first.RelatedSkills)
}

func TestClassifyUsesCollaboratorOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"output": "```json\n{\"summary\":\"s\",\"priority\":\"high\",\"helpfulNotes\":\"n\",\"relatedSkills\":[\"Email\"]}\n```",
		})
	}))
	defer server.Close()

	c := classifier.NewHTTPClassifier(config.ClassifierConfig{
		URL:            server.URL,
		APIKey:         "secret",
		TimeoutSeconds: 5,
	}, zap.NewNop())

	got := c.Classify(context.Background(), sampleTicket())

	assert.Equal(t, domain.TicketPriorityHigh, got.Priority)
	assert.Equal(t, []string{"Email"}, got.RelatedSkills)
}

func TestClassifyFallsBackOnCollaboratorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := classifier.NewHTTPClassifier(config.ClassifierConfig{
		URL:            server.URL,
		TimeoutSeconds: 5,
	}, zap.NewNop())

	got := c.Classify(context.Background(), sampleTicket())

	assert.Equal(t, classifier.Fallback(sampleTicket()), got)
}

func TestClassifyFallsBackWhenUnconfigured(t *testing.T) {
	c := classifier.NewHTTPClassifier(config.ClassifierConfig{}, zap.NewNop())

	got := c.Classify(context.Background(), sampleTicket())

	assert.Equal(t, classifier.Fallback(sampleTicket()), got)
}
