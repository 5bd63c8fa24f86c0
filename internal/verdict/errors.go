package verdict

import (
	"fmt"
	"strings"
)

// Configuration error codes (E200-E299)
const (
	ErrUnresolvedEntry   = "E201" // verdict names a test that does not exist
	ErrDuplicateEntry    = "E202" // test listed more than once
	ErrBlankEntry        = "E203" // class or method missing
	ErrBadDisposition    = "E204" // unknown disposition string
	ErrModuleMismatch    = "E205" // list targets a different module
	ErrUnsupportedFormat = "E206" // unknown verdict file extension
)

// ConfigError reports a verdict list that cannot be used. Items lists every
// offending entry so a single run surfaces all of them.
type ConfigError struct {
	Code    string   `json:"code"`
	Module  string   `json:"module,omitempty"`
	Message string   `json:"message"`
	Items   []string `json:"items,omitempty"`
}

// NewConfigError creates a ConfigError.
func NewConfigError(code, module, message string, items []string) *ConfigError {
	return &ConfigError{Code: code, Module: module, Message: message, Items: items}
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Code)
	if e.Module != "" {
		fmt.Fprintf(&b, "%s: ", e.Module)
	}
	b.WriteString(e.Message)
	if len(e.Items) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Items, ", "))
	}
	return b.String()
}

// IsConfigError reports whether err carries a ConfigError, optionally
// restricted to the given codes. Joined and wrapped errors are searched in
// full, so any matching member counts.
func IsConfigError(err error, codes ...string) bool {
	for _, ce := range ConfigErrors(err) {
		if len(codes) == 0 {
			return true
		}
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	return false
}

// ConfigErrors returns every ConfigError inside err, depth-first.
func ConfigErrors(err error) []*ConfigError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*ConfigError); ok {
		return []*ConfigError{ce}
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		var out []*ConfigError
		for _, e := range u.Unwrap() {
			out = append(out, ConfigErrors(e)...)
		}
		return out
	case interface{ Unwrap() error }:
		return ConfigErrors(u.Unwrap())
	}
	return nil
}
