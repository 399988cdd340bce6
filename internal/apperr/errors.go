// Package apperr defines the failure taxonomy shared by the service layer
// and the HTTP presentation: not-found, duplicate-resource and validation
// failures. Anything else is treated as unexpected and reported without
// internal detail.
package apperr

import (
	"fmt"
	"sort"
	"strings"
)

// NotFoundError means an entity is absent or owned by a different user.
// Both cases report the same error so callers cannot probe for the
// existence of other users' resources.
type NotFoundError struct {
	Resource string
	Field    string
	Value    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: %v", e.Resource, e.Field, e.Value)
}

// NotFound builds a NotFoundError for the given resource and lookup key.
func NotFound(resource, field string, value any) error {
	return &NotFoundError{Resource: resource, Field: field, Value: value}
}

// DuplicateError means a uniqueness rule was violated, e.g. a category
// name/type collision or an already registered email.
type DuplicateError struct {
	Message string
}

func (e *DuplicateError) Error() string { return e.Message }

// Duplicate builds a DuplicateError with a formatted message.
func Duplicate(format string, args ...any) error {
	return &DuplicateError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError carries per-field input constraint violations.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validation builds a ValidationError from a field to message map.
func Validation(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

// ValidationField builds a ValidationError for a single field.
func ValidationField(field, message string) error {
	return Validation(map[string]string{field: message})
}
