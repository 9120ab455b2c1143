package errors

import (
	"sort"
	"strings"
)

// FieldErrors accumulates field-scoped validation messages. The first message
// recorded for a field wins.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, exists := f[field]; exists {
		return
	}
	f[field] = msg
}

// Merge copies other into f, prefixing every key with prefix.
func (f FieldErrors) Merge(prefix string, other FieldErrors) {
	for field, msg := range other {
		f.Add(prefix+field, msg)
	}
}

// Has reports whether field carries an error.
func (f FieldErrors) Has(field string) bool {
	_, ok := f[field]
	return ok
}

// Fields returns the failing field names in lexical order.
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for field := range f {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for _, field := range f.Fields() {
		parts = append(parts, field+": "+f[field])
	}
	return strings.Join(parts, "; ")
}

// Err converts the set into a validation error, or nil when empty.
func (f FieldErrors) Err(message string) error {
	if len(f) == 0 {
		return nil
	}
	if message == "" {
		message = "validation failed"
	}
	details := make(map[string]string, len(f))
	for k, v := range f {
		details[k] = v
	}
	return Wrap(CodeValidation, f, message).WithDetails(details)
}
