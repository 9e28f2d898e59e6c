package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape is the form of a webhook reply.
type Shape int

const (
	// ShapeUnknown is any reply without a usable output.
	ShapeUnknown Shape = iota
	// ShapeArray is [{"output": "..."}]; only the first element counts.
	ShapeArray
	// ShapeObject is {"output": "..."}.
	ShapeObject
)

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeObject:
		return "object"
	default:
		return "unknown"
	}
}

// MarshalText encodes the shape name.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a shape name; unrecognised names are ShapeUnknown.
func (s *Shape) UnmarshalText(text []byte) error {
	switch string(text) {
	case "array":
		*s = ShapeArray
	case "object":
		*s = ShapeObject
	default:
		*s = ShapeUnknown
	}
	return nil
}

// Reply is a decoded webhook reply.
type Reply struct {
	Shape  Shape
	Output string
}

type outputObject struct {
	Output *string `json:"output"`
}

// DecodeReply decodes a webhook body. Valid JSON always decodes: a body that
// matches neither known shape, or whose output is empty or not a string, is
// ShapeUnknown. Only malformed JSON is an error.
func DecodeReply(body []byte) (Reply, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return Reply{}, fmt.Errorf("invalid reply JSON: %q", truncate(trimmed, 64))
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil || len(items) == 0 {
			return Reply{Shape: ShapeUnknown}, nil
		}
		if out, ok := decodeOutput(items[0]); ok {
			return Reply{Shape: ShapeArray, Output: out}, nil
		}
	case '{':
		if out, ok := decodeOutput(trimmed); ok {
			return Reply{Shape: ShapeObject, Output: out}, nil
		}
	}
	return Reply{Shape: ShapeUnknown}, nil
}

func decodeOutput(raw []byte) (string, bool) {
	var obj outputObject
	if err := json.Unmarshal(raw, &obj); err != nil || obj.Output == nil || *obj.Output == "" {
		return "", false
	}
	return *obj.Output, true
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
