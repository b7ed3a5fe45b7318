package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// RequiredString fails when value is empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)},
	}
}

func RequiredSlice[T any](field string, value []T) Rule {
	return Rule{
		Check: func() bool { return len(value) > 0 },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

func InListString(field, value string, allowed []string) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{Field: field, Message: "must be one of: " + strings.Join(allowed, ", ")},
	}
}

// ValidEmail accepts a bare address with a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			local, domain, ok := strings.Cut(value, "@")
			if !ok || local == "" {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return strings.Contains(domain, ".")
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// ValidURLWithScheme requires an absolute URL with a host and one of schemes.
func ValidURLWithScheme(field, value string, schemes []string) Rule {
	return Rule{
		Check: func() bool {
			u, err := url.ParseRequestURI(value)
			if err != nil || u.Host == "" {
				return false
			}
			return slices.Contains(schemes, u.Scheme)
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid URL with scheme: " + strings.Join(schemes, ", "),
		},
	}
}

func ValidUUID(field, value string) Rule {
	return Rule{
		Check: func() bool {
			_, err := uuid.Parse(value)
			return err == nil && len(value) == 36
		},
		Error: ValidationError{Field: field, Message: "must be a valid UUID"},
	}
}
