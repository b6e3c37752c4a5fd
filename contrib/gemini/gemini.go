package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/scout"
	"google.golang.org/genai"
)

var (
	// ErrEmptyResponse indicates the provider returned no candidates.
	ErrEmptyResponse = errors.New("gemini: empty response")
	// ErrAPIKeyRequired indicates the provider was built without an API key.
	ErrAPIKeyRequired = errors.New("gemini: api key is required")
)

// Config holds the connection settings of the Gemini API.
type Config struct {
	APIKey string
	// BaseURL overrides the default API endpoint.
	BaseURL string
}

// Gemini implements scout.ModelProvider on the Gemini API.
type Gemini struct {
	model  string
	client *genai.Client
}

// NewModel creates a new Gemini model provider with its own client.
func NewModel(ctx context.Context, model string, config Config) (*Gemini, error) {
	if config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &Gemini{
		model:  model,
		client: client,
	}, nil
}

// Name returns the name of the model.
func (m *Gemini) Name() string {
	return m.model
}

// Generate executes a single GenerateContent call.
func (m *Gemini) Generate(ctx context.Context, req *scout.ModelRequest, opts ...scout.ModelOption) (*scout.ModelResponse, error) {
	opt := scout.ModelOptions{}
	for _, apply := range opts {
		apply(&opt)
	}
	contents, system, err := toContents(req)
	if err != nil {
		return nil, err
	}
	config, err := toGenerateConfig(req, opt)
	if err != nil {
		return nil, err
	}
	config.SystemInstruction = system
	model := req.Model
	if model == "" {
		model = m.model
	}
	resp, err := m.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, err
	}
	return toResponse(resp)
}

func toGenerateConfig(req *scout.ModelRequest, opt scout.ModelOptions) (*genai.GenerateContentConfig, error) {
	var config genai.GenerateContentConfig
	if opt.Temperature > 0 {
		temperature := float32(opt.Temperature)
		config.Temperature = &temperature
	}
	if opt.TopP > 0 {
		topP := float32(opt.TopP)
		config.TopP = &topP
	}
	if opt.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(opt.MaxOutputTokens)
	}
	if opt.Seed > 0 {
		seed := int32(opt.Seed)
		config.Seed = &seed
	}
	if len(req.Tools) > 0 {
		tools, err := toTools(req.Tools)
		if err != nil {
			return nil, fmt.Errorf("converting tools: %w", err)
		}
		config.Tools = tools
	}
	if req.OutputSchema != nil {
		schema, err := toJSONValue(req.OutputSchema)
		if err != nil {
			return nil, fmt.Errorf("converting output schema: %w", err)
		}
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = schema
	}
	return &config, nil
}
