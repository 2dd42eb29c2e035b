package store

import (
	"errors"
	"fmt"
)

// Error wraps a backend failure with the operation context and the HTTP
// status the backend answered with (zero when the request never got a
// response).
type Error struct {
	// Op is the capability that failed ("ListPage", "OpenObject", "ListAllBuckets").
	Op string

	// Driver names the adapter ("minio", "s3").
	Driver string

	Bucket string
	Key    string

	// StatusCode is the backend HTTP status, zero if unknown.
	StatusCode int

	// Code is the backend error code (e.g. "AccessDenied"), if any.
	Code string

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	target := e.Bucket
	if e.Key != "" {
		target = e.Bucket + "/" + e.Key
	}
	if target == "" {
		return fmt.Sprintf("%s %s: %v", e.Driver, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Driver, e.Op, target, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode extracts the backend HTTP status from err, or zero when err
// carries none.
func StatusCode(err error) int {
	var se *Error
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
