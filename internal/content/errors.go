// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrNotFound is returned when the requested entity does not exist or
	// is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned for mutations without an admin session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is the parent of the conflict errors below.
	ErrConflict = errors.New("conflict")

	// ErrDuplicateSlug means another entity of the same type owns the slug.
	ErrDuplicateSlug = fmt.Errorf("slug already exists: %w", ErrConflict)

	// ErrHasDependents means a delete was refused because children still
	// reference the entity.
	ErrHasDependents = fmt.Errorf("entity still has dependents: %w", ErrConflict)
)

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = e.Fields[k]
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
