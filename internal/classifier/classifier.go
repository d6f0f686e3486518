package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/domain"
)

// Suggestion is the structured triage result for a ticket.
type Suggestion struct {
	Summary       string                `json:"summary"`
	Priority      domain.TicketPriority `json:"priority"`
	HelpfulNotes  string                `json:"helpfulNotes"`
	RelatedSkills []string              `json:"relatedSkills"`
}

// Classifier suggests priority, notes and skills for a ticket. Classify
// never fails: collaborator errors are absorbed and replaced by the
// deterministic fallback.
type Classifier interface {
	Classify(ctx context.Context, ticket *domain.Ticket) Suggestion
}

const systemPrompt = `You are an expert assistant that processes technical support tickets.
Summarize the issue, estimate its priority, provide helpful notes for human
moderators, and list the relevant technical skills required.
Respond with only a raw JSON object, no markdown and no code fences.`

// HTTPClassifier calls a completion-style text-analysis collaborator over
// HTTP. The collaborator returns free text that should contain a JSON object,
// possibly wrapped in markdown fences.
type HTTPClassifier struct {
	cfg    config.ClassifierConfig
	client *http.Client
	logger *zap.Logger
}

// NewHTTPClassifier builds the collaborator client.
func NewHTTPClassifier(cfg config.ClassifierConfig, logger *zap.Logger) *HTTPClassifier {
	return &HTTPClassifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

type completionRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Output string `json:"output"`
}

// Classify asks the collaborator for a suggestion and falls back to a
// deterministic local result on any failure.
func (c *HTTPClassifier) Classify(ctx context.Context, ticket *domain.Ticket) Suggestion {
	if c.cfg.URL == "" {
		c.logger.Debug("classifier not configured, using fallback", zap.String("ticket_id", ticket.ID))
		return Fallback(ticket)
	}

	raw, err := c.complete(ctx, ticket)
	if err != nil {
		c.logger.Warn("classification collaborator failed, using fallback",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return Fallback(ticket)
	}

	suggestion, err := ParseSuggestion(raw)
	if err != nil {
		c.logger.Warn("classification response unparseable, using fallback",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return Fallback(ticket)
	}
	return suggestion
}

func (c *HTTPClassifier) complete(ctx context.Context, ticket *domain.Ticket) (string, error) {
	prompt := fmt.Sprintf(`Analyze this support ticket and return only a JSON object:

Title: %s
Description: %s

Return JSON in this exact format:
{
  "summary": "Brief summary of the issue",
  "priority": "low",
  "helpfulNotes": "Technical guidance for resolution",
  "relatedSkills": ["skill1", "skill2"]
}`, ticket.Title, ticket.Description)

	body, err := json.Marshal(completionRequest{
		Model:  c.cfg.Model,
		System: systemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("collaborator returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var parsed completionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.Output) == "" {
		return "", errors.New("empty collaborator output")
	}
	return parsed.Output, nil
}

// ParseSuggestion extracts the structured suggestion from a raw collaborator
// response, stripping markdown fences and any text around the JSON object.
func ParseSuggestion(raw string) (Suggestion, error) {
	jsonString := strings.TrimSpace(raw)

	if start := strings.Index(jsonString, "```"); start >= 0 {
		rest := jsonString[start+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			jsonString = rest[:end]
		} else {
			jsonString = rest
		}
	}

	start := strings.Index(jsonString, "{")
	end := strings.LastIndex(jsonString, "}")
	if start < 0 || end <= start {
		return Suggestion{}, errors.New("no JSON object in response")
	}
	jsonString = jsonString[start : end+1]

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(jsonString), &suggestion); err != nil {
		return Suggestion{}, err
	}
	return suggestion, nil
}

// Fallback builds a deterministic suggestion purely from the ticket's own
// text. Calling it twice for the same ticket yields the same result.
func Fallback(ticket *domain.Ticket) Suggestion {
	return Suggestion{
		Summary:      fmt.Sprintf("User reported: %s", ticket.Title),
		Priority:     domain.TicketPriorityMedium,
		HelpfulNotes: fmt.Sprintf("Issue: %s. Please investigate and provide assistance to the user.", ticket.Description),
		RelatedSkills: []string{
			"Technical Support",
			"Troubleshooting",
		},
	}
}
