package utils

import "regexp"

// MaxIdentifierLength bounds identifiers used in paths, keys and log fields.
const MaxIdentifierLength = 64

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidIdentifier reports whether id is non-empty, at most
// [MaxIdentifierLength] bytes and made of letters, digits, dot, underscore
// and dash only.
func ValidIdentifier(id string) bool {
	return len(id) <= MaxIdentifierLength && identifierPattern.MatchString(id)
}

// ValidJournalID reports whether id can be used as a journal identifier.
func ValidJournalID(id string) bool {
	return ValidIdentifier(id)
}
