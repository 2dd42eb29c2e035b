package browser

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/damacus/iron-browser/internal/store"
)

// Sentinel errors for translated backend conditions.
var (
	// ErrAccessDenied indicates the source credentials lack list or read permission.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound indicates the bucket or key does not exist.
	ErrNotFound = errors.New("not found")
)

// StorageError is a backend failure the user can act on. Kind is one of
// ErrAccessDenied or ErrNotFound.
type StorageError struct {
	Kind   error
	Bucket string
	Source string
	Err    error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	switch e.Kind {
	case ErrAccessDenied:
		return fmt.Sprintf("access denied while accessing bucket '%s' in source '%s': ensure the credentials include list and read permissions", e.Bucket, e.Source)
	case ErrNotFound:
		return fmt.Sprintf("bucket '%s' in source '%s' was not found: confirm the bucket name and region", e.Bucket, e.Source)
	}
	return fmt.Sprintf("storage error for bucket '%s' in source '%s': %v", e.Bucket, e.Source, e.Err)
}

// Unwrap exposes both the kind and the backend error to errors.Is/As.
func (e *StorageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// TransferError aborts an export when an object could not be written into
// the archive.
type TransferError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *TransferError) Error() string {
	return fmt.Sprintf("failed to add object '%s' to archive: %v", e.Key, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *TransferError) Unwrap() error {
	return e.Err
}

// Translate maps a backend error onto the storage error taxonomy. Status
// 403 and 404 become a *StorageError; anything else is returned unchanged.
func Translate(err error, bucket string, src store.Source) error {
	if err == nil {
		return nil
	}

	switch store.StatusCode(err) {
	case http.StatusForbidden:
		return &StorageError{Kind: ErrAccessDenied, Bucket: bucket, Source: src.Name, Err: err}
	case http.StatusNotFound:
		return &StorageError{Kind: ErrNotFound, Bucket: bucket, Source: src.Name, Err: err}
	}
	return err
}

// IsAccessDenied returns true if err is a translated 403.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsNotFound returns true if err is a translated 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
