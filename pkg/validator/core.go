package validator

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError describes one failed rule.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the error returned by Apply when any rule fails.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Map groups messages by field, the shape used in HTTP error bodies.
func (ve ValidationErrors) Map() map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, err := range ve {
		out[err.Field] = append(out[err.Field], err.Message)
	}
	return out
}

// Rule is a single deferred check.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply runs every rule and collects the failures.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, rule := range rules {
		if !rule.Check() {
			errs = append(errs, rule.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// When returns rule unchanged if cond holds, otherwise a rule that always passes.
func When(cond bool, rule Rule) Rule {
	if cond {
		return rule
	}
	return Rule{Check: func() bool { return true }}
}

// ExtractValidationErrors unwraps ValidationErrors from err, or returns nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
