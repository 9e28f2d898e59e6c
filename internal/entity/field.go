// Package entity maps raw content API records into display entities.
//
// Upstream records are loosely typed: any field may be absent, null or of the
// wrong type. Mapping never fails. A value that could not be read becomes a
// Field with Present=false whose Value is the display sentinel ("N/A",
// "General", 0, the mapping time), so a renderer can either print Value
// directly or substitute its own text.
package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is an optional upstream value.
type Field[T any] struct {
	Value   T
	Present bool
}

// Some wraps a value read from upstream.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Present: true}
}

// Missing wraps the sentinel used when upstream had no usable value.
func Missing[T any](sentinel T) Field[T] {
	return Field[T]{Value: sentinel}
}

// Or returns the upstream value, or fallback when it was missing.
func (f Field[T]) Or(fallback T) T {
	if f.Present {
		return f.Value
	}
	return fallback
}

// String formats Value, sentinel included.
func (f Field[T]) String() string {
	return fmt.Sprint(f.Value)
}

// MarshalJSON encodes Value. Which fields were substituted is reported
// separately in the entity's Missing list.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

// UnmarshalJSON decodes Value; null leaves the field missing.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		*f = Field[T]{Value: zero}
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Present = true
	return nil
}
