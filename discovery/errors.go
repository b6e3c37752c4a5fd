package discovery

import "errors"

var (
	// ErrNotFound is returned by the selector when there is no candidate.
	ErrNotFound = errors.New("discovery: no candidate service found")
	// ErrNoOutput indicates the discovery run produced no text in its final turn.
	ErrNoOutput = errors.New("discovery: no model output received")
	// ErrMalformedPayload indicates the final turn is not a JSON object with a "data" array.
	ErrMalformedPayload = errors.New("discovery: malformed payload")
	// ErrMissingData indicates the payload has no "data" field.
	ErrMissingData = errors.New("discovery: payload has no data field")
	// ErrSchemaMismatch indicates the payload does not satisfy the discovery schema.
	ErrSchemaMismatch = errors.New("discovery: payload does not match schema")
	// ErrInvalidDescriptor indicates a candidate cannot be used.
	ErrInvalidDescriptor = errors.New("discovery: invalid descriptor")
	// ErrRunFailed indicates the discovery run itself failed.
	ErrRunFailed = errors.New("discovery: run failed")
)
