// Package apperror defines the error kinds surfaced by the nearest-geopoints query.
package apperror

import (
	"errors"
	"fmt"
)

// Kind names an error category in API responses
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindParse                 Kind = "parse_error"
	KindValidation            Kind = "validation_error"
	KindDependencyUnavailable Kind = "dependency_unavailable"
	KindInternal              Kind = "internal_error"
)

// NotFoundError reports a data source that is missing or cannot be reached.
type NotFoundError struct {
	Source string
	Err    error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source %s not found: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("source %s not found", e.Source)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

func (e *NotFoundError) Kind() Kind { return KindNotFound }

// ParseError reports content that is not well-formed structured data.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("source %s is not well-formed JSON: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Kind() Kind { return KindParse }

// ValidationError reports a well-formed record with a missing or invalid field.
// Index is the zero-based record position, or -1 when the error is not tied to one record.
type ValidationError struct {
	Source string
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Index < 0 && e.Field == "":
		return fmt.Sprintf("source %s: %s", e.Source, e.Reason)
	case e.Index < 0:
		return fmt.Sprintf("source %s: field %q %s", e.Source, e.Field, e.Reason)
	case e.Field == "":
		return fmt.Sprintf("source %s: record %d: %s", e.Source, e.Index, e.Reason)
	default:
		return fmt.Sprintf("source %s: record %d: field %q %s", e.Source, e.Index, e.Field, e.Reason)
	}
}

func (e *ValidationError) Kind() Kind { return KindValidation }

// DependencyUnavailableError reports that the cached point set failed to load, so no ranking can proceed.
type DependencyUnavailableError struct {
	Dependency string
	Err        error
}

func (e *DependencyUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s unavailable: %v", e.Dependency, e.Err)
	}
	return fmt.Sprintf("%s unavailable", e.Dependency)
}

func (e *DependencyUnavailableError) Unwrap() error { return e.Err }

func (e *DependencyUnavailableError) Kind() Kind { return KindDependencyUnavailable }

type kinded interface {
	Kind() Kind
}

// KindOf returns the kind of the outermost typed error in err's chain,
// or KindInternal if there is none.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}
