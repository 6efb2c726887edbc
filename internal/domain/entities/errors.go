package entities

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrGraphTooLarge = errors.New("graph too large")
)

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	Kind string // "dependency", "relationship", "scenario", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a field that failed validation.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	// Ref identifies the offending record when known, e.g. a relationship ID.
	Ref string
}

func (e *ValidationError) Error() string {
	msg := e.Field + " " + e.Message
	if e.Value != "" {
		msg = fmt.Sprintf("%s (got %q)", msg, e.Value)
	}
	if e.Ref != "" {
		msg = e.Ref + ": " + msg
	}
	return msg
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// GraphTooLargeError is returned when a traversal exceeds its ceiling.
type GraphTooLargeError struct {
	Limit string // "visited" or "iterations"
	Max   int
}

func (e *GraphTooLargeError) Error() string {
	return fmt.Sprintf("graph too large: exceeded %d %s", e.Max, e.Limit)
}

// Is makes errors.Is(err, ErrGraphTooLarge) succeed.
func (e *GraphTooLargeError) Is(target error) bool {
	return target == ErrGraphTooLarge
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
