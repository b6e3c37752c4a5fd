package pipeline

import (
	"fmt"
	"strings"
)

// Intent is the origin of one pipeline run. It yields two independent
// strings: the text searched for in the registry and the prompt delegated
// to the selected service.
type Intent interface {
	// Prompt returns the text sent to the selected service.
	Prompt() string
	// search returns the registry search text and whether it may be rewritten.
	search() (text string, rewritable bool)
	validate() error
}

// TopicKind selects one of the built-in registry searches.
type TopicKind string

const (
	TopicChuckNorris  TopicKind = "chuck-norris"
	TopicGitHubIssues TopicKind = "github-issues"
)

// DefaultTopic is used when a FixedTopic carries no topic.
const DefaultTopic = "history"

type topicTemplate struct {
	registry string
	prompt   string
}

var topics = map[TopicKind]topicTemplate{
	TopicChuckNorris: {
		registry: "Search for a MCP server that handles chuck norris jokes. Include url, name, and description for each server.",
		prompt:   "Tell me a Chuck Norris joke about %s",
	},
	TopicGitHubIssues: {
		registry: "Return all MCP servers that allow me to check my github issues. Include url, name, and description for each server.",
		prompt:   "List my GitHub issues about %s",
	},
}

// TopicKinds returns the supported topic kinds.
func TopicKinds() []TopicKind {
	return []TopicKind{TopicChuckNorris, TopicGitHubIssues}
}

// ParseTopicKind parses a topic kind name.
func ParseTopicKind(s string) (TopicKind, error) {
	kind := TopicKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := topics[kind]; !ok {
		return "", fmt.Errorf("unknown search type %q", s)
	}
	return kind, nil
}

// FixedTopic searches the registry with a built-in prompt and asks the
// selected service about Topic.
type FixedTopic struct {
	Kind  TopicKind
	Topic string
}

func (t FixedTopic) Prompt() string {
	topic := strings.TrimSpace(t.Topic)
	if topic == "" {
		topic = DefaultTopic
	}
	return fmt.Sprintf(topics[t.Kind].prompt, topic)
}

func (t FixedTopic) search() (string, bool) {
	return topics[t.Kind].registry, false
}

func (t FixedTopic) validate() error {
	if _, ok := topics[t.Kind]; !ok {
		return fmt.Errorf("unknown search type %q", t.Kind)
	}
	return nil
}

// FreeForm is a caller-written request. The same text is searched for and
// delegated, though the search text may be rewritten first.
type FreeForm struct {
	Text string
}

func (f FreeForm) Prompt() string {
	return f.Text
}

func (f FreeForm) search() (string, bool) {
	return f.Text, true
}

func (f FreeForm) validate() error {
	if strings.TrimSpace(f.Text) == "" {
		return fmt.Errorf("prompt is required")
	}
	return nil
}
