package billing

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLineItems_Valid(t *testing.T) {
	itemID := uuid.New()
	inputs := []LineInput{
		{Description: "  Design work  ", Quantity: "10", UnitPrice: "150"},
		{},
		{ItemID: itemID.String(), Description: "Hosting", Quantity: "0.5", UnitPrice: "7.49"},
	}

	items, errs := ValidateLineItems(inputs)

	require.Nil(t, errs)
	require.Len(t, items, 2)
	assert.Equal(t, "Design work", items[0].Description)
	assert.Equal(t, 0, items[0].Position)
	assert.True(t, items[0].LineAmount.Equal(d("1500")))
	assert.Nil(t, items[0].ItemID)

	assert.Equal(t, 1, items[1].Position)
	require.NotNil(t, items[1].ItemID)
	assert.Equal(t, itemID, *items[1].ItemID)
	assert.True(t, items[1].LineAmount.Equal(d("3.75")))
}

func TestValidateLineItems_RequiresAtLeastOneLine(t *testing.T) {
	items, errs := ValidateLineItems([]LineInput{{}, {}})

	assert.Nil(t, items)
	require.Len(t, errs, 1)
	assert.Equal(t, "line_items", errs[0].Field)
}

func TestValidateLineItems_FieldErrors(t *testing.T) {
	inputs := []LineInput{
		{Description: "ok", Quantity: "1", UnitPrice: "1"},
		{Description: "", Quantity: "-1", UnitPrice: "abc", ItemID: "not-a-uuid"},
		{Description: strings.Repeat("x", MaxDescriptionLength+1), Quantity: "1.005", UnitPrice: "100000000"},
	}

	items, errs := ValidateLineItems(inputs)

	assert.Nil(t, items)
	details := errs.Details()
	assert.Equal(t, "This field is required.", details["line_items[1].description"])
	assert.Equal(t, "Ensure this value is greater than or equal to 0.", details["line_items[1].quantity"])
	assert.Equal(t, "Enter a number.", details["line_items[1].unit_price"])
	assert.Equal(t, "Select a valid choice.", details["line_items[1].item_id"])
	assert.Contains(t, details["line_items[2].description"], "at most 255 characters")
	assert.Equal(t, "Ensure that there are no more than 2 decimal places.", details["line_items[2].quantity"])
	assert.Equal(t, "Ensure that there are no more than 10 digits in total.", details["line_items[2].unit_price"])
	assert.NotContains(t, details, "line_items[0].description")
	assert.Contains(t, errs.Error(), "line_items[1].quantity")
}

func TestValidateLineItems_MissingAmounts(t *testing.T) {
	_, errs := ValidateLineItems([]LineInput{{Description: "Consulting"}})

	details := errs.Details()
	assert.Equal(t, "This field is required.", details["line_items[0].quantity"])
	assert.Equal(t, "This field is required.", details["line_items[0].unit_price"])
}

func TestParsePercent(t *testing.T) {
	value, err := ParsePercent("")
	assert.NoError(t, err)
	assert.True(t, value.IsZero())

	value, err = ParsePercent("12.5")
	assert.NoError(t, err)
	assert.True(t, value.Equal(d("12.5")))

	_, err = ParsePercent("100.01")
	assert.EqualError(t, err, "Ensure this value is less than or equal to 100.")

	_, err = ParsePercent("-1")
	assert.Error(t, err)
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var in LineInput
	err := json.Unmarshal([]byte(`{"description":"x","quantity":2.5,"unit_price":"10.10"}`), &in)
	require.NoError(t, err)
	assert.Equal(t, Amount("2.5"), in.Quantity)
	assert.Equal(t, Amount("10.10"), in.UnitPrice)

	err = json.Unmarshal([]byte(`{"quantity":null}`), &in)
	require.NoError(t, err)
	assert.Equal(t, Amount(""), in.Quantity)
}
