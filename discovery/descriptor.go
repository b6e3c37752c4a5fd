package discovery

import (
	"fmt"
	"strings"
)

// ServiceDescriptor identifies one remote MCP service found in the registry.
// Its identity is the URL.
type ServiceDescriptor struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate reports whether the descriptor can be executed against.
func (d ServiceDescriptor) Validate() error {
	if strings.TrimSpace(d.URL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidDescriptor)
	}
	return nil
}

// String returns "name (url)".
func (d ServiceDescriptor) String() string {
	if d.Name == "" {
		return d.URL
	}
	return fmt.Sprintf("%s (%s)", d.Name, d.URL)
}

// Result is the ordered list of candidates emitted by the discovery run.
// Order is emission order; duplicates are kept.
type Result []ServiceDescriptor

// Empty reports whether no candidate was found.
func (r Result) Empty() bool {
	return len(r) == 0
}
