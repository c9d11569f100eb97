package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRateLimited        = errors.New("too many attempts")
	ErrDeliveryFailed     = errors.New("email delivery failed")
	ErrInvalidImage       = errors.New("invalid image")
)

// FieldErrors maps input fields to message keys. Services return it for
// input they refuse; handlers translate it into a validation response.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field, msg := range e {
		fields = append(fields, field+": "+msg)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, "; ")
}

// merge copies src into e, keeping messages already present.
func (e FieldErrors) merge(src map[string]string) {
	for field, msg := range src {
		if _, ok := e[field]; !ok {
			e[field] = msg
		}
	}
}

func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
