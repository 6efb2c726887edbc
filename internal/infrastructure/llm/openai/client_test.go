package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/infrastructure/config"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
		errMsg  string
		model   string
	}{
		{
			name: "valid config",
			cfg: config.LLMConfig{
				APIKey: "test-key",
			},
			model: "gpt-4o-mini",
		},
		{
			name: "valid config with model",
			cfg: config.LLMConfig{
				APIKey: "test-key",
				Model:  "gpt-4o",
			},
			model: "gpt-4o",
		},
		{
			name:    "missing API key",
			cfg:     config.LLMConfig{},
			wantErr: true,
			errMsg:  "API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, client)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.model, client.model)
			}
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON",
			input:    `{"summary": "ok"}`,
			expected: `{"summary": "ok"}`,
		},
		{
			name:     "JSON with json code block",
			input:    "```json\n{\"summary\": \"ok\"}\n```",
			expected: `{"summary": "ok"}`,
		},
		{
			name:     "JSON with plain code block",
			input:    "```\n{\"summary\": \"ok\"}\n```",
			expected: `{"summary": "ok"}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"summary\": \"ok\"}\n  ",
			expected: `{"summary": "ok"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanJSONResponse(tt.input))
		})
	}
}

func testScenario() (*entities.Scenario, *entities.SimulationResult) {
	scenario := &entities.Scenario{
		ID:       "scn-1",
		Name:     "Core banking outage",
		Category: entities.CategoryOperational,
		Severity: entities.SeverityHigh,
	}
	result := &entities.SimulationResult{
		PropagationPath: []entities.ImpactRecord{
			{DependencyID: "d1", DependencyName: "Core banking", Severity: entities.SeverityHigh, EstimatedDowntimeHours: 4},
			{DependencyID: "d2", DependencyName: "Payments", AffectedAtMinutes: 30, Severity: entities.SeverityMedium, EstimatedDowntimeHours: 2},
		},
		TotalAffected:               2,
		EstimatedTotalDowntimeHours: 6,
	}
	return scenario, result
}

// fakeChat serves /chat/completions with a fixed assistant message and
// records the last request.
func fakeChat(t *testing.T, content string, last *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(last))
		resp := openai.ChatCompletionResponse{
			Object: "chat.completion",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_BriefScenario(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv := fakeChat(t, "```json\n{\"summary\":\"Payments stop within 30 minutes.\",\"key_risks\":[\"single core\"],\"recommendations\":[\"add a warm standby\"]}\n```", &req)

	client, err := NewClient(config.LLMConfig{APIKey: "test-key"}, WithBaseURL(srv.URL))
	require.NoError(t, err)

	scenario, result := testScenario()
	briefing, err := client.BriefScenario(context.Background(), scenario, result)
	require.NoError(t, err)

	assert.Equal(t, &entities.Briefing{
		ScenarioID:      "scn-1",
		Summary:         "Payments stop within 30 minutes.",
		KeyRisks:        []string{"single core"},
		Recommendations: []string{"add a warm standby"},
	}, briefing)

	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)

	var sent briefingInput
	require.NoError(t, json.Unmarshal([]byte(req.Messages[1].Content), &sent))
	assert.Equal(t, "Core banking outage", sent.Scenario)
	assert.Equal(t, "high", sent.Severity)
	require.Len(t, sent.Impacts, 2)
	assert.Equal(t, "Payments", sent.Impacts[1].Dependency)
}

func TestClient_BriefScenario_BadResponse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "not JSON", content: "I cannot help with that.", errMsg: "parsing briefing JSON"},
		{name: "empty summary", content: `{"summary":"  ","key_risks":[]}`, errMsg: "no summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req openai.ChatCompletionRequest
			srv := fakeChat(t, tt.content, &req)

			client, err := NewClient(config.LLMConfig{APIKey: "test-key"}, WithBaseURL(srv.URL))
			require.NoError(t, err)

			scenario, result := testScenario()
			_, err = client.BriefScenario(context.Background(), scenario, result)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewBriefingInput_TruncatesImpacts(t *testing.T) {
	scenario, result := testScenario()
	result.PropagationPath = nil
	for i := 0; i < maxPromptImpacts+5; i++ {
		result.PropagationPath = append(result.PropagationPath, entities.ImpactRecord{
			DependencyID:   fmt.Sprintf("d%d", i),
			DependencyName: fmt.Sprintf("dep %d", i),
		})
	}

	in := newBriefingInput(scenario, result)
	assert.Len(t, in.Impacts, maxPromptImpacts)
	assert.Equal(t, 5, in.Omitted)
	assert.Equal(t, "dep 0", in.Impacts[0].Dependency)
}
