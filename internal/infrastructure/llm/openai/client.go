// Package openai provides a Briefer implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/infrastructure/config"
)

// maxPromptImpacts bounds how many propagation records are sent to the model.
const maxPromptImpacts = 25

const briefingPrompt = `You are an operational resilience analyst writing for a bank's board risk committee.
You will receive a disruption scenario and the simulated spread of the failure through the
organization's dependencies, in the order they were affected.

Write a short briefing with:
- summary: two or three sentences on what fails, how fast, and the total downtime
- key_risks: up to five concrete risks (single points of failure, fast propagation, long outages)
- recommendations: up to five concrete actions (redundancy, recovery objectives, vendor controls)

Return ONLY a valid JSON object with the keys "summary", "key_risks" and "recommendations", no other text.`

// Option configures a Client.
type Option func(*openai.ClientConfig)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(c *openai.ClientConfig) {
		c.BaseURL = url
	}
}

// Client implements the Briefer interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI LLM client.
func NewClient(cfg config.LLMConfig, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	for _, opt := range opts {
		opt(&clientCfg)
	}

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// BriefScenario asks the model for a narrative briefing of a simulation result.
func (c *Client) BriefScenario(ctx context.Context, scenario *entities.Scenario, result *entities.SimulationResult) (*entities.Briefing, error) {
	input, err := json.Marshal(newBriefingInput(scenario, result))
	if err != nil {
		return nil, fmt.Errorf("marshaling scenario: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: briefingPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: string(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)

	var raw rawBriefing
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parsing briefing JSON: %w (response: %s)", err, content)
	}
	if strings.TrimSpace(raw.Summary) == "" {
		return nil, fmt.Errorf("briefing has no summary (response: %s)", content)
	}

	return &entities.Briefing{
		ScenarioID:      scenario.ID,
		Summary:         raw.Summary,
		KeyRisks:        raw.KeyRisks,
		Recommendations: raw.Recommendations,
	}, nil
}

// rawBriefing is the JSON structure the model returns.
type rawBriefing struct {
	Summary         string   `json:"summary"`
	KeyRisks        []string `json:"key_risks"`
	Recommendations []string `json:"recommendations"`
}

// briefingInput is the JSON structure sent to the model.
type briefingInput struct {
	Scenario      string        `json:"scenario"`
	Category      string        `json:"category"`
	Severity      string        `json:"severity"`
	Description   string        `json:"description,omitempty"`
	TotalAffected int           `json:"total_affected"`
	DowntimeHours float64       `json:"estimated_total_downtime_hours"`
	Impacts       []impactInput `json:"impacts"`
	Omitted       int           `json:"omitted_impacts,omitempty"`
}

type impactInput struct {
	Dependency    string  `json:"dependency"`
	AtMinutes     float64 `json:"affected_at_minutes"`
	Severity      string  `json:"severity"`
	DowntimeHours float64 `json:"downtime_hours"`
}

func newBriefingInput(scenario *entities.Scenario, result *entities.SimulationResult) briefingInput {
	in := briefingInput{
		Scenario:      scenario.Name,
		Category:      string(scenario.Category),
		Severity:      scenario.Severity.String(),
		Description:   scenario.Description,
		TotalAffected: result.TotalAffected,
		DowntimeHours: result.EstimatedTotalDowntimeHours,
	}

	path := result.PropagationPath
	if len(path) > maxPromptImpacts {
		in.Omitted = len(path) - maxPromptImpacts
		path = path[:maxPromptImpacts]
	}
	in.Impacts = make([]impactInput, 0, len(path))
	for _, rec := range path {
		in.Impacts = append(in.Impacts, impactInput{
			Dependency:    rec.DependencyName,
			AtMinutes:     rec.AffectedAtMinutes,
			Severity:      rec.Severity.String(),
			DowntimeHours: rec.EstimatedDowntimeHours,
		})
	}
	return in
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
