// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, identifier
// generation, HTTP response writing and HTTP client initialization.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// JournalIDCtxKey is the key used to store the journal identifier taken from
// the request path.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.JournalIDCtxKey, "personal")
var JournalIDCtxKey = contextKey("journalID")

// GetJournalIDFromContext retrieves the journal identifier from the context.
//
// Returns the journal ID and an ok flag:
//   - ok == true : value is found, is a string and is not empty
//   - ok == false: value is missing, empty or has an unexpected type
func GetJournalIDFromContext(ctx context.Context) (string, bool) {
	journalID, ok := ctx.Value(JournalIDCtxKey).(string)
	return journalID, ok && journalID != ""
}
