// Package validator holds the field checks request DTOs run in Validate.
package validator

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is returned by every DTO Validate and rendered as a 422.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap keys messages by field. A field reported twice keeps its first message.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v))
	for _, err := range v {
		if _, seen := result[err.Field]; !seen {
			result[err.Field] = err.Message
		}
	}
	return result
}

// Required appends a "<field> is required" error when value is blank.
func Required(errs ValidationErrors, field, value string) ValidationErrors {
	if IsEmpty(value) {
		return append(errs, ValidationError{Field: field, Message: field + " is required"})
	}
	return errs
}

func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidDate parses a YYYY-MM-DD roster date.
func IsValidDate(s string) (time.Time, bool) {
	date, err := time.Parse(DateLayout, s)
	return date, err == nil
}

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidTime checks an HH:MM wall-clock time.
func IsValidTime(s string) (time.Time, bool) {
	if !clockRegex.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", s)
	return t, err == nil
}

func IsInSlice[T comparable](value T, allowed []T) bool {
	return slices.Contains(allowed, value)
}

// Environment codes are lowercase identifiers such as "production" or "packaging".
var environmentRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,49}$`)

func IsValidEnvironment(env string) bool {
	return environmentRegex.MatchString(env)
}

// Itoa is used to build indexed field paths such as "suggestions[2]".
func Itoa(i int) string {
	return strconv.Itoa(i)
}
