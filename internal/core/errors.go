package core

import (
	"errors"
	"strings"
)

// Sentinel errors forming the operation-level taxonomy. Handlers match these
// with errors.Is to choose a response status; anything unmatched is treated
// as a storage failure.
var (
	// ErrInvalidArgument marks missing or malformed required input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks a referenced product id that does not exist.
	ErrNotFound = errors.New("product not found")

	// ErrConflict marks a case-insensitive name collision with a different product.
	ErrConflict = errors.New("product name already exists")

	// ErrImportFailed marks an import payload that could not be parsed at all.
	ErrImportFailed = errors.New("failed to import CSV file")

	// ErrNoProducts marks an export requested against an empty store.
	ErrNoProducts = errors.New("no products to export")
)

// UserMessage is a user-friendly rendering of an error with a support code.
// Users can quote the code to support staff for faster diagnosis.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// sentinelMessages maps taxonomy errors to their user messages.
// Codes are grouped: PRD (product store), IMP/EXP (pipelines), ERR (fallback).
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrInvalidArgument, UserMessage{
		Message: "The request is missing or has invalid fields",
		Action:  "Check that all required fields are filled in correctly",
		Code:    "PRD001",
	}},
	{ErrNotFound, UserMessage{
		Message: "Product not found",
		Action:  "The product may have been deleted. Refresh the list",
		Code:    "PRD002",
	}},
	{ErrConflict, UserMessage{
		Message: "Product name already exists",
		Action:  "Product names are unique regardless of case. Pick another name",
		Code:    "PRD003",
	}},
	{ErrImportFailed, UserMessage{
		Message: "Failed to import CSV file",
		Action:  "Ensure the file is a valid comma-separated CSV with a header row",
		Code:    "IMP001",
	}},
	{ErrNoProducts, UserMessage{
		Message: "No products to export",
		Action:  "Add products before exporting",
		Code:    "EXP001",
	}},
}

// storagePatterns catches raw driver errors that slipped past the sentinels.
// Matched case-insensitively with strings.Contains; first match wins, so more
// specific patterns come before general ones.
var storagePatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"unique constraint", UserMessage{
		Message: "Product name already exists",
		Action:  "Product names are unique regardless of case. Pick another name",
		Code:    "DB001",
	}},
	{"duplicate key", UserMessage{
		Message: "Product name already exists",
		Action:  "Product names are unique regardless of case. Pick another name",
		Code:    "DB001",
	}},
	{"foreign key", UserMessage{
		Message: "A related record is missing",
		Action:  "Refresh and try again",
		Code:    "DB002",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to reach the database",
		Action:  "Please try again in a few moments",
		Code:    "DB003",
	}},
	{"timeout", UserMessage{
		Message: "The operation timed out",
		Action:  "Please try again",
		Code:    "DB004",
	}},
	{"context canceled", UserMessage{
		Message: "The request was cancelled",
		Action:  "Please try again",
		Code:    "DB005",
	}},
}

// defaultMessage is the fallback for unclassified failures.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError translates any error into a user-facing message.
// Sentinels are matched first (with errors.Is, so wrapping is fine), then raw
// storage error text is pattern matched.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, sp := range storagePatterns {
		if strings.Contains(errStr, sp.pattern) {
			return sp.msg
		}
	}

	return defaultMessage
}

// isUniqueViolation reports whether err is a storage-level unique constraint
// violation. The LOWER(name) unique index is the backstop for the
// application-level duplicate pre-check; its violation is an authoritative
// conflict, not a generic storage failure.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique constraint") ||
		strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "constraint failed")
}
