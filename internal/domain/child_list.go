package domain

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// Identified is implemented by child inputs that may reference a persisted row.
type Identified interface {
	ChildID() (uuid.UUID, bool)
}

// ChildList is a tri-state list of desired child records:
//
//   - absent (Present=false): leave the stored children untouched
//   - present and empty: delete every stored child
//   - present with items: reconcile the stored children against Items
//
// The zero value is absent. JSON null decodes to absent as well.
type ChildList[T any] struct {
	Items   []T
	Present bool
}

// Keep returns an absent list.
func Keep[T any]() ChildList[T] {
	return ChildList[T]{}
}

// Sync returns a present list holding items. Sync() with no arguments means
// "delete all".
func Sync[T any](items ...T) ChildList[T] {
	if items == nil {
		items = []T{}
	}
	return ChildList[T]{Items: items, Present: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked when the key
// is present in the payload, which is what makes absent distinguishable.
func (l *ChildList[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*l = ChildList[T]{}
		return nil
	}
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*l = Sync(items...)
	return nil
}

// Map converts a list element-wise, preserving presence.
func Map[T, U any](l ChildList[T], f func(T) U) ChildList[U] {
	if !l.Present {
		return ChildList[U]{}
	}
	out := make([]U, len(l.Items))
	for i, item := range l.Items {
		out[i] = f(item)
	}
	return ChildList[U]{Items: out, Present: true}
}
