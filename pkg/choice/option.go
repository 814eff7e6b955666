package choice

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Option holds a value that may be absent. The zero value is absent.
//
// A JSON null or a missing key decodes to an absent Option, and so does a
// value of the wrong JSON type. Paired with the `omitzero` struct tag, absent
// Options are left out when encoding.
type Option[T any] struct {
	value T
	ok    bool
}

func Some[T any](value T) Option[T] {
	return Option[T]{value: value, ok: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Option[T]) IsPresent() bool {
	return o.ok
}

// IsZero lets encoding/json's omitzero drop absent values.
func (o Option[T]) IsZero() bool {
	return !o.ok
}

func (o Option[T]) OrElse(fallback T) T {
	return Ternary(o.ok, o.value, fallback)
}

func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		// Only a mismatch on the value itself is dropped. Errors from fields
		// nested inside T still fail the decode.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			*o = None[T]()
			return nil
		}
		return err
	}
	*o = Some(v)
	return nil
}

// Map applies fn to a present value.
func Map[T, U any](o Option[T], fn func(T) U) Option[U] {
	if v, ok := o.Get(); ok {
		return Some(fn(v))
	}
	return None[U]()
}
