package scout

import (
	"strings"

	"github.com/google/uuid"
)

// Role indicates the author of a message.
type Role string

const (
	// RoleUser is a message written by the caller.
	RoleUser Role = "user"
	// RoleSystem carries instructions for the model.
	RoleSystem Role = "system"
	// RoleAssistant is a model reply.
	RoleAssistant Role = "assistant"
	// RoleTool is a model turn that requests tool calls, and later carries their results.
	RoleTool Role = "tool"
)

// Status describes whether a message is final.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusIncomplete Status = "incomplete"
	StatusCompleted  Status = "completed"
)

// Part is one piece of message content.
type Part interface {
	isPart()
}

// TextPart is plain text content.
type TextPart struct {
	Text string `json:"text"`
}

// ToolPart is a tool call requested by the model, with its response once executed.
type ToolPart struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Request  string `json:"request"`
	Response string `json:"response,omitempty"`
}

func (TextPart) isPart() {}
func (ToolPart) isPart() {}

// TokenUsage reports the tokens consumed by a model call.
type TokenUsage struct {
	PromptTokens     int64 `json:"promptTokens"`
	CompletionTokens int64 `json:"completionTokens"`
	TotalTokens      int64 `json:"totalTokens"`
}

// Message is one turn of an agent transcript.
type Message struct {
	ID           string         `json:"id"`
	Role         Role           `json:"role"`
	Author       string         `json:"author,omitempty"`
	InvocationID string         `json:"invocationId,omitempty"`
	Parts        []Part         `json:"parts"`
	Status       Status         `json:"status"`
	FinishReason string         `json:"finishReason,omitempty"`
	TokenUsage   TokenUsage     `json:"tokenUsage"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// NewMessage creates a completed message with a fresh ID.
func NewMessage(role Role, parts ...Part) *Message {
	return &Message{
		ID:     uuid.NewString(),
		Role:   role,
		Parts:  parts,
		Status: StatusCompleted,
	}
}

// UserMessage creates a user message from text.
func UserMessage(text string) *Message {
	return NewMessage(RoleUser, TextPart{Text: text})
}

// SystemMessage creates a system message from text.
func SystemMessage(text string) *Message {
	return NewMessage(RoleSystem, TextPart{Text: text})
}

// AssistantMessage creates an assistant message from text.
func AssistantMessage(text string) *Message {
	return NewMessage(RoleAssistant, TextPart{Text: text})
}

// Text returns the concatenated text parts of the message.
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	var buf strings.Builder
	for _, part := range m.Parts {
		if v, ok := part.(TextPart); ok {
			buf.WriteString(v.Text)
		}
	}
	return buf.String()
}

// ToolParts returns the tool calls carried by the message.
func (m *Message) ToolParts() []ToolPart {
	if m == nil {
		return nil
	}
	var calls []ToolPart
	for _, part := range m.Parts {
		if v, ok := part.(ToolPart); ok {
			calls = append(calls, v)
		}
	}
	return calls
}

// String returns the message text.
func (m *Message) String() string {
	return m.Text()
}

// MergeParts merges the parts of the given messages into base, ignoring nil messages.
func MergeParts(base *Message, messages ...*Message) *Message {
	for _, m := range messages {
		if m == nil {
			continue
		}
		if base == nil {
			base = &Message{ID: m.ID, Role: m.Role, Status: m.Status}
		}
		base.Parts = append(base.Parts, m.Parts...)
	}
	return base
}
