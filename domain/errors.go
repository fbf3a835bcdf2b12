package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrSlugTaken    = errors.New("slug already in use")
	ErrForbidden    = errors.New("administrator role required")
	ErrUnauthorized = errors.New("not authenticated")
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidLogin = errors.New("wrong email or password")
)

// ValidationErrors maps a form field to the message shown next to it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) check(field, msg string) {
	if msg != "" {
		v[field] = msg
	}
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
