package discovery

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawDescriptor keeps absent fields distinguishable from empty ones.
type rawDescriptor struct {
	URL         *string `json:"url"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Parsed is the outcome of decoding a discovery payload.
type Parsed struct {
	// Result holds the accepted candidates in payload order.
	Result Result
	// Rejected explains every element that was dropped.
	Rejected []error
}

// Parse decodes the final-turn text of a discovery run.
//
// An empty payload yields ErrNoOutput, text that is not a JSON object yields
// ErrMalformedPayload and an object without "data" yields ErrMissingData.
// With strict set the payload must also satisfy Schema, or ErrSchemaMismatch
// is returned. Otherwise elements are checked one by one: an element without
// a non-empty string url is rejected, absent name and description become "".
func Parse(payload string, strict bool) (Parsed, error) {
	text := trimFences(payload)
	if text == "" {
		return Parsed{}, ErrNoOutput
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	data, ok := envelope["data"]
	if !ok {
		return Parsed{}, ErrMissingData
	}
	if strict {
		var doc any
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			return Parsed{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if err := validatePayload(doc); err != nil {
			return Parsed{}, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
		}
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return Parsed{}, fmt.Errorf("%w: data: %v", ErrMalformedPayload, err)
	}
	parsed := Parsed{Result: make(Result, 0, len(elements))}
	for i, element := range elements {
		d, err := decodeDescriptor(element)
		if err != nil {
			parsed.Rejected = append(parsed.Rejected, fmt.Errorf("data[%d]: %w", i, err))
			continue
		}
		parsed.Result = append(parsed.Result, d)
	}
	return parsed, nil
}

func decodeDescriptor(element json.RawMessage) (ServiceDescriptor, error) {
	var raw rawDescriptor
	if err := json.Unmarshal(element, &raw); err != nil {
		return ServiceDescriptor{}, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	var d ServiceDescriptor
	if raw.URL != nil {
		d.URL = strings.TrimSpace(*raw.URL)
	}
	if raw.Name != nil {
		d.Name = *raw.Name
	}
	if raw.Description != nil {
		d.Description = *raw.Description
	}
	if err := d.Validate(); err != nil {
		return ServiceDescriptor{}, err
	}
	return d, nil
}

// trimFences removes surrounding whitespace and a markdown code fence, if any.
func trimFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
