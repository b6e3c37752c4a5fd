package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/tools"
	"google.golang.org/genai"
)

// toContents converts a request into GenAI contents and a system instruction.
func toContents(req *scout.ModelRequest) ([]*genai.Content, *genai.Content, error) {
	var system *genai.Content
	if req.Instruction != nil {
		system = &genai.Content{Parts: []*genai.Part{{Text: req.Instruction.Text()}}}
	}
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case scout.RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: msg.Text()})
		case scout.RoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Text(), genai.RoleUser))
		case scout.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Text(), genai.RoleModel))
		case scout.RoleTool:
			call, response, err := toFunctionParts(msg)
			if err != nil {
				return nil, nil, err
			}
			contents = append(contents, call, response)
		}
	}
	return contents, system, nil
}

// toFunctionParts splits a tool turn into the model's function calls and the user's function responses.
func toFunctionParts(msg *scout.Message) (*genai.Content, *genai.Content, error) {
	call := &genai.Content{Role: "model"}
	response := &genai.Content{Role: "user"}
	for _, part := range msg.ToolParts() {
		args := map[string]any{}
		if strings.TrimSpace(part.Request) != "" {
			if err := json.Unmarshal([]byte(part.Request), &args); err != nil {
				return nil, nil, fmt.Errorf("decoding arguments of %s: %w", part.Name, err)
			}
		}
		call.Parts = append(call.Parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{ID: part.ID, Name: part.Name, Args: args},
		})
		result := map[string]any{}
		var raw any
		if err := json.Unmarshal([]byte(part.Response), &raw); err == nil {
			if v, ok := raw.(map[string]any); ok {
				result = v
			} else {
				result["output"] = raw
			}
		} else {
			result["output"] = part.Response
		}
		response.Parts = append(response.Parts, &genai.Part{
			FunctionResponse: &genai.FunctionResponse{ID: part.ID, Name: part.Name, Response: result},
		})
	}
	return call, response, nil
}

// toTools converts tools into GenAI function declarations.
func toTools(tools []*tools.Tool) ([]*genai.Tool, error) {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		decl := &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
		}
		if tool.InputSchema != nil {
			schema, err := toJSONValue(tool.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("input schema of %s: %w", tool.Name, err)
			}
			decl.ParametersJsonSchema = schema
		}
		decls = append(decls, decl)
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}, nil
}

// toJSONValue round-trips v through JSON into a generic value.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// toResponse converts the first candidate of a GenAI response into a model turn.
func toResponse(resp *genai.GenerateContentResponse) (*scout.ModelResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}
	candidate := resp.Candidates[0]
	msg := scout.NewMessage(scout.RoleAssistant)
	msg.FinishReason = string(candidate.FinishReason)
	if resp.UsageMetadata != nil {
		msg.TokenUsage = scout.TokenUsage{
			PromptTokens:     int64(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int64(resp.UsageMetadata.TotalTokenCount),
		}
	}
	for i, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return nil, err
			}
			id := part.FunctionCall.ID
			if id == "" {
				id = fmt.Sprintf("%s-%d", part.FunctionCall.Name, i)
			}
			msg.Role = scout.RoleTool
			msg.Parts = append(msg.Parts, scout.ToolPart{ID: id, Name: part.FunctionCall.Name, Request: string(args)})
			continue
		}
		if part.Text != "" && !part.Thought {
			msg.Parts = append(msg.Parts, scout.TextPart{Text: part.Text})
		}
	}
	return &scout.ModelResponse{Message: msg}, nil
}
