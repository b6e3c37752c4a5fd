package openai

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/tools"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/packages/param"
)

var (
	// ErrEmptyResponse indicates the provider returned no choices.
	ErrEmptyResponse = errors.New("empty completion response")
	// ErrAPIKeyRequired indicates the provider was built without an API key.
	ErrAPIKeyRequired = errors.New("openai: api key is required")
)

// defaultSchemaName is used when the output schema carries no title.
const defaultSchemaName = "structured_outputs"

// Config holds the connection settings of an OpenAI-compatible endpoint.
type Config struct {
	APIKey string
	// BaseURL overrides the default API endpoint, e.g. an AI gateway.
	BaseURL string
	// RequestOpts are appended after the options derived from the fields above.
	RequestOpts []option.RequestOption
}

// ChatModel implements scout.ModelProvider for OpenAI-compatible chat models.
type ChatModel struct {
	model  string
	client openai.Client
}

// NewModel constructs an OpenAI chat provider for the given model.
// Each call builds its own client so handles are never shared between runs.
func NewModel(model string, config Config) (*ChatModel, error) {
	if config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	opts = append(opts, config.RequestOpts...)
	return &ChatModel{
		model:  model,
		client: openai.NewClient(opts...),
	}, nil
}

// Name returns the model identifier.
func (m *ChatModel) Name() string {
	return m.model
}

// Generate executes a non-streaming chat completion request.
func (m *ChatModel) Generate(ctx context.Context, req *scout.ModelRequest, opts ...scout.ModelOption) (*scout.ModelResponse, error) {
	opt := scout.ModelOptions{}
	for _, apply := range opts {
		apply(&opt)
	}
	params, err := m.toChatCompletionParams(req, opt)
	if err != nil {
		return nil, err
	}
	chatResponse, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	return choiceToResponse(chatResponse)
}

// toChatCompletionParams converts a generic model request into OpenAI params.
func (m *ChatModel) toChatCompletionParams(req *scout.ModelRequest, opt scout.ModelOptions) (openai.ChatCompletionNewParams, error) {
	tools, err := toTools(req.Tools)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	model := req.Model
	if model == "" {
		model = m.model
	}
	params := openai.ChatCompletionNewParams{
		Tools:    tools,
		Model:    model,
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1),
	}
	if opt.Seed > 0 {
		params.Seed = param.NewOpt(opt.Seed)
	}
	if opt.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(opt.MaxOutputTokens)
	}
	if opt.Temperature > 0 {
		params.Temperature = param.NewOpt(opt.Temperature)
	}
	if opt.TopP > 0 {
		params.TopP = param.NewOpt(opt.TopP)
	}
	if req.OutputSchema != nil {
		schema := *req.OutputSchema
		schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   defaultSchemaName,
			Strict: openai.Bool(true),
		}
		if schema.Title != "" {
			schemaParam.Name = schema.Title
		}
		if schema.Description != "" {
			schemaParam.Description = openai.String(schema.Description)
		}
		schema.Title, schema.Description = "", ""
		schemaParam.Schema = &schema
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		}
	}
	if req.Instruction != nil {
		params.Messages = append(params.Messages, openai.SystemMessage(req.Instruction.Text()))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case scout.RoleUser:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Text()))
		case scout.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Text()))
		case scout.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Text()))
		case scout.RoleTool:
			params.Messages = append(params.Messages, toToolCallMessage(msg))
			for _, part := range msg.ToolParts() {
				params.Messages = append(params.Messages, openai.ToolMessage(part.Response, part.ID))
			}
		}
	}
	return params, nil
}

func toToolCallMessage(msg *scout.Message) openai.ChatCompletionMessageParamUnion {
	parts := msg.ToolParts()
	toolCalls := make([]openai.ChatCompletionMessageToolCallUnionParam, 0, len(parts))
	for _, v := range parts {
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: v.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      v.Name,
					Arguments: v.Request,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{
		OfAssistant: &openai.ChatCompletionAssistantMessageParam{
			ToolCalls: toolCalls,
		},
	}
}

func toTools(tools []*tools.Tool) ([]openai.ChatCompletionToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	params := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		fn := openai.FunctionDefinitionParam{
			Name: tool.Name,
		}
		if tool.Description != "" {
			fn.Description = openai.String(tool.Description)
		}
		if tool.InputSchema != nil {
			b, err := json.Marshal(tool.InputSchema)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(b, &fn.Parameters); err != nil {
				return nil, err
			}
		}
		params = append(params, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: fn,
			},
		})
	}
	return params, nil
}

// choiceToResponse converts a non-streaming completion to a ModelResponse.
// A choice carrying tool calls turns the whole message into a tool turn.
func choiceToResponse(cc *openai.ChatCompletion) (*scout.ModelResponse, error) {
	if len(cc.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	msg := scout.NewMessage(scout.RoleAssistant)
	msg.TokenUsage = scout.TokenUsage{
		PromptTokens:     cc.Usage.PromptTokens,
		CompletionTokens: cc.Usage.CompletionTokens,
		TotalTokens:      cc.Usage.TotalTokens,
	}
	for _, choice := range cc.Choices {
		if choice.Message.Content != "" {
			msg.Parts = append(msg.Parts, scout.TextPart{Text: choice.Message.Content})
		}
		if choice.FinishReason != "" {
			msg.FinishReason = choice.FinishReason
		}
		for _, call := range choice.Message.ToolCalls {
			msg.Role = scout.RoleTool
			msg.Parts = append(msg.Parts, scout.ToolPart{
				ID:      call.ID,
				Name:    call.Function.Name,
				Request: call.Function.Arguments,
			})
		}
	}
	return &scout.ModelResponse{Message: msg}, nil
}
