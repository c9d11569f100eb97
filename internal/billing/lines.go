package billing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fakti/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxDescriptionLength = 255
	// amounts are stored as NUMERIC(10,2)
	maxAmountIntegerDigits = 8
)

var maxAmount = decimal.New(1, maxAmountIntegerDigits)

var (
	errRequired     = errors.New("This field is required.")
	errNotNumber    = errors.New("Enter a number.")
	errNegative     = errors.New("Ensure this value is greater than or equal to 0.")
	errTooPrecise   = errors.New("Ensure that there are no more than 2 decimal places.")
	errTooLarge     = errors.New("Ensure that there are no more than 10 digits in total.")
	errAboveHundred = errors.New("Ensure this value is less than or equal to 100.")
)

// Amount is a decimal as received from a client. It accepts both JSON
// numbers and JSON strings so that exact values survive decoding.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	*a = Amount(strings.TrimSpace(raw))
	return nil
}

// LineInput is one line item as submitted on an invoice form.
type LineInput struct {
	ItemID      string `json:"item_id"`
	Description string `json:"description"`
	Quantity    Amount `json:"quantity"`
	UnitPrice   Amount `json:"unit_price"`
}

func (in LineInput) blank() bool {
	return strings.TrimSpace(in.ItemID) == "" &&
		strings.TrimSpace(in.Description) == "" &&
		in.Quantity == "" &&
		in.UnitPrice == ""
}

// FieldError points at a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects field errors from one validation pass.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Details flattens the errors into the field → message map used in error
// responses. The first message per field wins.
func (e ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(e))
	for _, fe := range e {
		if _, exists := details[fe.Field]; !exists {
			details[fe.Field] = fe.Message
		}
	}
	return details
}

// ValidateLineItems turns submitted lines into valued line items. Rows left
// completely empty are skipped. Either the returned items or the returned
// errors are non-nil, never both.
func ValidateLineItems(inputs []LineInput) ([]models.LineItem, ValidationErrors) {
	var errs ValidationErrors
	items := make([]models.LineItem, 0, len(inputs))

	for i, in := range inputs {
		if in.blank() {
			continue
		}
		prefix := fmt.Sprintf("line_items[%d].", i)

		description := strings.TrimSpace(in.Description)
		if description == "" {
			errs = append(errs, FieldError{Field: prefix + "description", Message: errRequired.Error()})
		} else if len([]rune(description)) > MaxDescriptionLength {
			errs = append(errs, FieldError{
				Field:   prefix + "description",
				Message: fmt.Sprintf("Ensure this value has at most %d characters.", MaxDescriptionLength),
			})
		}

		quantity, qErr := ParseAmount(in.Quantity)
		if qErr != nil {
			errs = append(errs, FieldError{Field: prefix + "quantity", Message: qErr.Error()})
		}
		unitPrice, pErr := ParseAmount(in.UnitPrice)
		if pErr != nil {
			errs = append(errs, FieldError{Field: prefix + "unit_price", Message: pErr.Error()})
		}

		var itemID *uuid.UUID
		if raw := strings.TrimSpace(in.ItemID); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				errs = append(errs, FieldError{Field: prefix + "item_id", Message: "Select a valid choice."})
			} else {
				itemID = &id
			}
		}

		items = append(items, models.LineItem{
			ItemID:      itemID,
			Position:    len(items),
			Description: description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			LineAmount:  LineAmount(quantity, unitPrice),
		})
	}

	if len(items) == 0 && len(errs) == 0 {
		errs = append(errs, FieldError{Field: "line_items", Message: "At least one line item is required."})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return items, nil
}

// ParseAmount parses a required non-negative amount with at most two
// decimal places.
func ParseAmount(raw Amount) (decimal.Decimal, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return decimal.Zero, errRequired
	}
	value, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, errNotNumber
	}
	if value.IsNegative() {
		return decimal.Zero, errNegative
	}
	if !value.Equal(value.Round(CurrencyPlaces)) {
		return decimal.Zero, errTooPrecise
	}
	if value.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, errTooLarge
	}
	return value, nil
}

// ParsePercent parses an optional rate between 0 and 100. An empty value
// means zero.
func ParsePercent(raw Amount) (decimal.Decimal, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return decimal.Zero, nil
	}
	value, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if value.GreaterThan(hundred) {
		return decimal.Zero, errAboveHundred
	}
	return value, nil
}
