package gemini

import (
	"context"
	"testing"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/tools"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestToContents(t *testing.T) {
	req := &scout.ModelRequest{
		Instruction: scout.SystemMessage("be brief"),
		Messages: []*scout.Message{
			scout.SystemMessage("answer in English"),
			scout.UserMessage("joke please"),
			scout.NewMessage(scout.RoleTool,
				scout.ToolPart{ID: "c1", Name: "joke", Request: `{"topic":"history"}`, Response: `{"text":"ha"}`},
				scout.ToolPart{ID: "c2", Name: "plain", Request: "", Response: "not json"},
			),
			scout.AssistantMessage("ha"),
		},
	}
	contents, system, err := toContents(req)
	require.NoError(t, err)

	require.NotNil(t, system)
	require.Len(t, system.Parts, 2)
	assert.Equal(t, "be brief", system.Parts[0].Text)
	assert.Equal(t, "answer in English", system.Parts[1].Text)

	require.Len(t, contents, 4)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "joke please", contents[0].Parts[0].Text)

	call := contents[1]
	assert.Equal(t, "model", call.Role)
	require.Len(t, call.Parts, 2)
	assert.Equal(t, &genai.FunctionCall{ID: "c1", Name: "joke", Args: map[string]any{"topic": "history"}}, call.Parts[0].FunctionCall)
	assert.Empty(t, call.Parts[1].FunctionCall.Args)

	response := contents[2]
	assert.Equal(t, "user", response.Role)
	assert.Equal(t, map[string]any{"text": "ha"}, response.Parts[0].FunctionResponse.Response)
	assert.Equal(t, map[string]any{"output": "not json"}, response.Parts[1].FunctionResponse.Response)

	assert.Equal(t, "model", contents[3].Role)
}

func TestToContentsBadArguments(t *testing.T) {
	req := &scout.ModelRequest{Messages: []*scout.Message{
		scout.NewMessage(scout.RoleTool, scout.ToolPart{ID: "c1", Name: "joke", Request: "{"}),
	}}
	_, _, err := toContents(req)
	assert.ErrorContains(t, err, "decoding arguments of joke")
}

func TestToGenerateConfig(t *testing.T) {
	schema := &jsonschema.Schema{Type: "object", Required: []string{"data"}}
	tool := tools.NewTool("joke", "Tell a joke", tools.HandleFunc(func(context.Context, string) (string, error) {
		return "", nil
	}))
	config, err := toGenerateConfig(&scout.ModelRequest{
		Tools:        []*tools.Tool{tool},
		OutputSchema: schema,
	}, scout.ModelOptions{Temperature: 0.5, MaxOutputTokens: 256})
	require.NoError(t, err)

	assert.Equal(t, "application/json", config.ResponseMIMEType)
	assert.Equal(t, map[string]any{"type": "object", "required": []any{"data"}}, config.ResponseJsonSchema)
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.5, *config.Temperature, 1e-6)
	assert.Equal(t, int32(256), config.MaxOutputTokens)
	assert.Nil(t, config.TopP)

	require.Len(t, config.Tools, 1)
	decls := config.Tools[0].FunctionDeclarations
	require.Len(t, decls, 1)
	assert.Equal(t, "joke", decls[0].Name)
	assert.Equal(t, "Tell a joke", decls[0].Description)
	assert.NotNil(t, decls[0].ParametersJsonSchema)
}

func TestToGenerateConfigEmpty(t *testing.T) {
	config, err := toGenerateConfig(&scout.ModelRequest{}, scout.ModelOptions{})
	require.NoError(t, err)
	assert.Empty(t, config.Tools)
	assert.Empty(t, config.ResponseMIMEType)
	assert.Nil(t, config.ResponseJsonSchema)
}

func TestToResponse(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		res, err := toResponse(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				FinishReason: genai.FinishReasonStop,
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "thinking", Thought: true},
					{Text: `{"data":[]}`},
				}},
			}},
			UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount: 3, CandidatesTokenCount: 4, TotalTokenCount: 7,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, scout.RoleAssistant, res.Message.Role)
		assert.Equal(t, `{"data":[]}`, res.Message.Text())
		assert.Equal(t, "STOP", res.Message.FinishReason)
		assert.Equal(t, scout.TokenUsage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}, res.Message.TokenUsage)
	})

	t.Run("function call", func(t *testing.T) {
		res, err := toResponse(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{Name: "joke", Args: map[string]any{"topic": "history"}}},
				}},
			}},
		})
		require.NoError(t, err)
		assert.Equal(t, scout.RoleTool, res.Message.Role)
		assert.Equal(t, []scout.ToolPart{{ID: "joke-0", Name: "joke", Request: `{"topic":"history"}`}}, res.Message.ToolParts())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := toResponse(&genai.GenerateContentResponse{})
		assert.ErrorIs(t, err, ErrEmptyResponse)
		_, err = toResponse(nil)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestNewModelRequiresKey(t *testing.T) {
	_, err := NewModel(context.Background(), "gemini-2.5-flash", Config{})
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}
