// Package validation checks and normalizes contact form input.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Deekshi23/portfolio/internal/model"
)

const (
	MaxNameLength    = 100
	MaxSubjectLength = 200
	MinMessageLength = 10
	MaxMessageLength = 5000
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Kind classifies a field failure.
type Kind int

const (
	// FieldRequired means the field was structurally absent.
	FieldRequired Kind = iota + 1
	// FieldInvalid means the field was present but failed its rule.
	FieldInvalid
)

func (k Kind) String() string {
	switch k {
	case FieldRequired:
		return "required"
	case FieldInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// FieldError is a single rule violation.
type FieldError struct {
	Field  string
	Kind   Kind
	Reason string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// Errors collects every violation found in one pass.
type Errors []FieldError

func (e Errors) Error() string {
	return strings.Join(e.Messages(), "; ")
}

// Messages renders each violation as "<field>: <reason>".
func (e Errors) Messages() []string {
	out := make([]string, len(e))
	for i, fe := range e {
		out[i] = fe.Error()
	}
	return out
}

// Has reports whether a violation of the given kind exists for field.
func (e Errors) Has(field string, kind Kind) bool {
	for _, fe := range e {
		if fe.Field == field && fe.Kind == kind {
			return true
		}
	}
	return false
}

// Required returns a FieldRequired error for field.
func Required(field string) FieldError {
	return FieldError{Field: field, Kind: FieldRequired, Reason: "field required"}
}

// Invalid returns a FieldInvalid error for field.
func Invalid(field, reason string) FieldError {
	return FieldError{Field: field, Kind: FieldInvalid, Reason: reason}
}

// Name trims v and rejects empty or overlong names.
func Name(v string) (string, error) {
	return text("name", v, 1, MaxNameLength)
}

// Subject trims v and rejects empty or overlong subjects.
func Subject(v string) (string, error) {
	return text("subject", v, 1, MaxSubjectLength)
}

// Message trims v and enforces the 10–5000 character bounds.
func Message(v string) (string, error) {
	return text("message", v, MinMessageLength, MaxMessageLength)
}

// Email trims v, checks the local@domain.tld shape and lowercases it.
func Email(v string) (string, error) {
	v = strings.TrimSpace(v)
	if !emailPattern.MatchString(v) {
		return "", Invalid("email", "invalid email format")
	}
	return strings.ToLower(v), nil
}

func text(field, v string, minLen, maxLen int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", Invalid(field, "cannot be empty or only whitespace")
	}
	n := utf8.RuneCountInString(v)
	if n > maxLen {
		return "", Invalid(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
	if n < minLen {
		return "", Invalid(field, fmt.Sprintf("must be at least %d characters", minLen))
	}
	return v, nil
}

// Contact validates every field of in and returns the normalized values.
// All rules run; the returned error is an Errors value listing each failure.
func Contact(in model.ContactInput) (model.ContactFields, error) {
	var (
		out  model.ContactFields
		errs Errors
	)

	check := func(field string, raw *string, rule func(string) (string, error), dst *string) {
		if raw == nil {
			errs = append(errs, Required(field))
			return
		}
		v, err := rule(*raw)
		if err != nil {
			var fe FieldError
			if !errors.As(err, &fe) {
				fe = Invalid(field, err.Error())
			}
			errs = append(errs, fe)
			return
		}
		*dst = v
	}

	check("name", in.Name, Name, &out.Name)
	check("email", in.Email, Email, &out.Email)
	check("subject", in.Subject, Subject, &out.Subject)
	check("message", in.Message, Message, &out.Message)

	if len(errs) > 0 {
		return model.ContactFields{}, errs
	}
	return out, nil
}
