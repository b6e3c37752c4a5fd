package server

import (
	"errors"
	"net/http"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/pipeline"
	"github.com/labstack/echo/v4"
)

// RunRequest is the body of POST /api/run.
type RunRequest struct {
	Prompt        string `json:"prompt"`
	APIKey        string `json:"apiKey"`
	RegistryURL   string `json:"registryUrl"`
	OpenAIBaseURL string `json:"openaiBaseUrl"`
	OpenAIModel   string `json:"openaiModel"`
	Provider      string `json:"provider"`
	Debug         bool   `json:"debug"`
}

// ServerInfo describes the selected MCP server.
type ServerInfo struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// RunResponse is the body of a completed run.
type RunResponse struct {
	Success bool       `json:"success"`
	Server  ServerInfo `json:"server"`
	Result  string     `json:"result"`
}

const (
	notFoundMessage        = "No MCP server found for your request"
	discoveryFailedMessage = "Error searching MCP registry"
	executionFailedMessage = "Error executing request"
)

func (s *Server) request(body RunRequest) pipeline.Request {
	req := pipeline.Request{
		Intent: pipeline.FreeForm{Text: body.Prompt},
		Model: scout.ModelConfig{
			Provider: body.Provider,
			APIKey:   body.APIKey,
			Name:     body.OpenAIModel,
			BaseURL:  body.OpenAIBaseURL,
		},
		RegistryURL: body.RegistryURL,
		Debug:       body.Debug,
	}
	if req.Model.Provider == "" {
		req.Model.Provider = s.defaults.Model.Provider
	}
	if req.Model.APIKey == "" {
		req.Model.APIKey = s.defaults.Model.APIKey
	}
	if req.Model.Name == "" {
		req.Model.Name = s.defaults.Model.Name
	}
	if req.Model.BaseURL == "" {
		req.Model.BaseURL = s.defaults.Model.BaseURL
	}
	if req.RegistryURL == "" {
		req.RegistryURL = s.defaults.RegistryURL
	}
	return req
}

func (s *Server) run(c echo.Context) error {
	var body RunRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
	}
	req := s.request(body)
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
	}

	outcome, err := s.runner.Run(c.Request().Context(), req)
	if err != nil {
		if pipeline.KindOf(err) == pipeline.KindValidation {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
		}
		return err
	}
	switch outcome.Kind {
	case pipeline.OutcomeCompleted:
		return c.JSON(http.StatusOK, RunResponse{
			Success: true,
			Server:  serverInfo(outcome),
			Result:  outcome.Text,
		})
	case pipeline.OutcomeNotFound:
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: notFoundMessage})
	case pipeline.OutcomeDiscoveryFailed:
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: discoveryFailedMessage, Details: details(outcome)})
	case pipeline.OutcomeExecutionFailed:
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: executionFailedMessage, Details: details(outcome)})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "unexpected outcome "+outcome.Kind.String())
	}
}

func serverInfo(outcome pipeline.Outcome) ServerInfo {
	if outcome.Service == nil {
		return ServerInfo{}
	}
	return ServerInfo{
		Name:        outcome.Service.Name,
		URL:         outcome.Service.URL,
		Description: outcome.Service.Description,
	}
}

func details(outcome pipeline.Outcome) string {
	var pe *pipeline.Error
	if errors.As(outcome.Err, &pe) && pe.Err != nil {
		return pe.Err.Error()
	}
	if outcome.Err != nil {
		return outcome.Err.Error()
	}
	return outcome.Text
}

func validationMessage(err error) string {
	var pe *pipeline.Error
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err.Error()
	}
	return err.Error()
}
