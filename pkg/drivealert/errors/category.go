// Package errors classifies the failures drivealert workers run into.
//
// Nothing in the pipeline is fatal. The category decides what the caller does:
//   - Recoverable: network failures during a redraw; log at error, skip this cycle
//   - Missing: absent data such as a trigger without audio asset; skip quietly
//   - Fallback: collaborator failures (NLU, TTS); substitute a fallback and go on
//   - Permanent: everything else; logged by the worker loop, loop continues
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Category represents how an error should be handled.
type Category int

const (
	// CategoryPermanent indicates retrying the same input will not help.
	CategoryPermanent Category = iota

	// CategoryRecoverable indicates an I/O failure that may clear on its own.
	// Examples: name resolution, refused connections.
	CategoryRecoverable

	// CategoryMissing indicates absent data that is skipped without complaint.
	CategoryMissing

	// CategoryFallback indicates a collaborator failed and a substitute was used.
	CategoryFallback
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPermanent:
		return "permanent"
	case CategoryRecoverable:
		return "recoverable"
	case CategoryMissing:
		return "missing"
	case CategoryFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and context.
type CategorizedError struct {
	// Err is the underlying error.
	Err error

	// Category indicates how this error should be handled.
	Category Category

	// Context describes what operation was being attempted.
	Context string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s)", e.Context, e.Err, e.Category)
	}
	return fmt.Sprintf("%s (category: %s)", e.Err, e.Category)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// NewCategorized creates a new categorized error.
func NewCategorized(err error, category Category, context string) *CategorizedError {
	return &CategorizedError{
		Err:      err,
		Category: category,
		Context:  context,
	}
}

// Recoverable creates a recoverable error.
func Recoverable(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryRecoverable, context)
}

// Missing creates a missing-data error.
func Missing(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryMissing, context)
}

// Fallback creates a fallback error.
func Fallback(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryFallback, context)
}

// Categorize determines how an error should be handled.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	if IsNetwork(err) {
		return CategoryRecoverable
	}

	return CategoryPermanent
}

// IsNetwork reports whether err is a name resolution or connection failure.
// Context cancellation is not a network failure even when wrapped by url.Error.
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout() || IsNetwork(urlErr.Err)
	}

	return false
}

// IsRecoverable reports whether the caller should log and skip this cycle.
func IsRecoverable(err error) bool {
	return Categorize(err) == CategoryRecoverable
}
