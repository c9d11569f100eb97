package common

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

// CustomValidator plugs validator/v10 into echo's c.Validate.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// IsEmail reports whether addr is a single valid email address.
func (cv *CustomValidator) IsEmail(addr string) bool {
	return cv.validator.Var(addr, "required,email") == nil
}

var tagMessages = map[string]string{
	"required": "This field is required.",
	"email":    "Enter a valid email address.",
	"oneof":    "Select a valid choice.",
	"uuid":     "Select a valid choice.",
	"datetime": "Enter a valid date.",
	"numeric":  "Enter a number.",
}

// ProcessValidationErrors flattens validator errors into field → message
// keys. Unknown tags fall back to the tag name.
func ProcessValidationErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"non_field_errors": err.Error()}
	}

	errorResponse := make(map[string]string)
	for _, ve := range validationErrors {
		msg, ok := tagMessages[ve.Tag()]
		switch {
		case ok:
		case ve.Tag() == "max":
			msg = fmt.Sprintf("Ensure this value has at most %s characters.", ve.Param())
		case ve.Tag() == "min":
			msg = fmt.Sprintf("Ensure this value has at least %s characters.", ve.Param())
		case ve.Tag() == "len":
			msg = fmt.Sprintf("Ensure this value has exactly %s characters.", ve.Param())
		default:
			msg = ve.Tag()
		}
		errorResponse[ve.Field()] = msg
	}
	return errorResponse
}

// ValidatePhoneNumber checks a number against the default region; numbers
// in international format are accepted from any region.
func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}

	return nil
}
