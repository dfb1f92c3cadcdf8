package inventory

import (
	"errors"
	"fmt"
)

// ParseError reports text that does not name any variant of an enumeration
type ParseError struct {
	Kind string // "check method" or "interface status"
	Text string // The rejected input
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Kind, e.Text)
}

// IsParseError checks if an error is (or wraps) a *ParseError
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}
