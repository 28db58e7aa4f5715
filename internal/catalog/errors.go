package catalog

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a LoadError.
type ErrorKind string

const (
	// KindNetwork means every candidate location of a resource failed.
	KindNetwork ErrorKind = "network"

	// KindMalformed means a payload parsed as JSON but had the wrong shape.
	// It is only logged; the store substitutes an empty default.
	KindMalformed ErrorKind = "malformed_response"
)

// Resource names used in errors and logs.
const (
	ResourceTracks     = "tracks"
	ResourceAggregates = "aggregates"
)

// LoadError is the structured failure returned by Store.Load and Store.Refetch.
type LoadError struct {
	Kind      ErrorKind
	Resource  string
	Message   string
	Retryable bool
	Err       error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (%s, %s)", e.Message, e.Kind, e.Resource)
	}
	return fmt.Sprintf("%s (%s, %s): %v", e.Message, e.Kind, e.Resource, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a LoadError the caller may retry
// with Store.Refetch.
func IsRetryable(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Retryable
}

// IsCancelled reports whether err only means the caller stopped waiting,
// either through cancellation or its own deadline. A cancelled load is "no
// result yet", not a failure. Candidate timeouts inside a LoadError do not
// count.
func IsCancelled(err error) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func networkError(resource string, err error) *LoadError {
	return &LoadError{
		Kind:      KindNetwork,
		Resource:  resource,
		Message:   "catalog data unavailable: all candidate locations failed",
		Retryable: true,
		Err:       err,
	}
}

func malformed(resource, message string) *LoadError {
	return &LoadError{
		Kind:     KindMalformed,
		Resource: resource,
		Message:  message,
	}
}
