package model

import (
	"net/mail"
	"strings"
)

// Field length limits
const (
	MaxNameLength             = 100
	MaxShortDescriptionLength = 300
	MaxLongDescriptionLength  = 5000
	MaxURLLength              = 2048
)

// IsValidEmail reports whether s is a single bare address.
func IsValidEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func requireText(errs []FieldError, field, value string, max int) []FieldError {
	switch {
	case strings.TrimSpace(value) == "":
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	case len(value) > max:
		return append(errs, FieldError{Field: field, Message: field + " is too long"})
	}
	return errs
}

func optionalText(errs []FieldError, field string, value *string, max int) []FieldError {
	if value == nil {
		return errs
	}
	return requireText(errs, field, *value, max)
}
