package core

import (
	"bytes"
	"encoding/json"
	"time"
)

// FieldState distinguishes a field the caller left out from one it cleared.
type FieldState int

const (
	Unchanged FieldState = iota
	SetTo
	Clear
)

// Field is a tagged optional update for a single record field. The zero
// value is Unchanged. When decoded from JSON an absent key stays Unchanged,
// an explicit null becomes Clear and any other value becomes SetTo.
type Field[T any] struct {
	State FieldState
	Value T
}

func Set[T any](v T) Field[T] {
	return Field[T]{State: SetTo, Value: v}
}

func Cleared[T any]() Field[T] {
	return Field[T]{State: Clear}
}

func (f Field[T]) IsSet() bool     { return f.State == SetTo }
func (f Field[T]) IsClear() bool   { return f.State == Clear }
func (f Field[T]) IsPresent() bool { return f.State != Unchanged }

// Ptr returns the new value for a nullable column: nil when cleared.
func (f Field[T]) Ptr() *T {
	if f.State != SetTo {
		return nil
	}
	v := f.Value
	return &v
}

// Apply writes the update into a nullable destination.
func (f Field[T]) Apply(dst **T) {
	switch f.State {
	case SetTo:
		v := f.Value
		*dst = &v
	case Clear:
		*dst = nil
	}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.State = Clear
		f.Value = zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t, ok := any(&v).(*time.Time)
		if !ok {
			return err
		}
		d, derr := parseDateOnly(data)
		if derr != nil {
			return err
		}
		*t = d
	}
	f.State = SetTo
	f.Value = v
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.State != SetTo {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// parseDateOnly accepts a bare calendar date such as "2027-06-15",
// interpreted as midnight UTC.
func parseDateOnly(data []byte) (time.Time, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}
