package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"elpunto/internal/auth"
	"elpunto/internal/repositories"
	"elpunto/internal/uploads"
)

var (
	// ErrDuplicateIdentity is returned when a username or email is already registered.
	ErrDuplicateIdentity = errors.New("identity already exists")
	// ErrInvalidCredentials is returned for an unknown username or a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnsupportedFileType is returned when an upload has a disallowed extension.
	ErrUnsupportedFileType = uploads.ErrUnsupportedFileType
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = repositories.ErrNotFound
	// ErrPersistence wraps unexpected store failures. Nothing was written.
	ErrPersistence = errors.New("persistence failure")
	// ErrDenied is matched by every *DeniedError.
	ErrDenied = errors.New("access denied")
)

// ValidationError collects user-correctable problems keyed by form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
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

// Add records msg for field unless the field already has a message.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Merge copies every field of other into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msg := range other.Fields {
		e.Add(field, msg)
	}
}

// OrNil returns e as an error, or nil when no field failed.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// DeniedError carries the authorization decision that stopped a submission.
type DeniedError struct {
	Decision auth.Decision
}

func (e *DeniedError) Error() string {
	switch e.Decision.Reason {
	case auth.LoginRequired:
		return "access denied: login required"
	default:
		return "access denied: admin required"
	}
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}

// authorize is the first step of every submission.
func authorize(p auth.Principal, req auth.Requirement) error {
	if d := auth.Authorize(p, req); !d.Allowed {
		return &DeniedError{Decision: d}
	}
	return nil
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
