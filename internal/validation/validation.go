package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidateRequired checks that a field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMaxLength checks the maximum length of a string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return fmt.Errorf("%s must be at most %d characters long", fieldName, maxLength)
	}
	return nil
}

// ValidateFutureDate checks that a date lies in the future
func ValidateFutureDate(date time.Time, now time.Time, fieldName string) error {
	if !date.After(now) {
		return errors.New(fieldName + " must be in the future")
	}
	return nil
}

// EventValidation contains event-specific validations
type EventValidation struct{}

// ValidateEventName validates an event's name
func (v EventValidation) ValidateEventName(name string) error {
	if err := ValidateRequired(name, "name"); err != nil {
		return err
	}
	return ValidateMaxLength(name, 100, "name")
}

// ValidateEventDescription validates an event's description
func (v EventValidation) ValidateEventDescription(description string) error {
	if err := ValidateRequired(description, "description"); err != nil {
		return err
	}
	return ValidateMaxLength(description, 1000, "description")
}

// ValidateItemName validates a signup item name
func (v EventValidation) ValidateItemName(item string) error {
	if err := ValidateRequired(item, "item"); err != nil {
		return err
	}
	if strings.ContainsRune(item, '/') {
		return errors.New("item must not contain '/'")
	}
	return ValidateMaxLength(item, 100, "item")
}
