package common

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fakti/internal/i18n"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmailList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "a@x.ht", []string{"a@x.ht"}},
		{"comma and semicolon", "a@x.ht, b@x.ht;c@x.ht", []string{"a@x.ht", "b@x.ht", "c@x.ht"}},
		{"blank entries dropped", " ,a@x.ht;; ", []string{"a@x.ht"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitEmailList(tt.raw))
		})
	}
}

func TestValidateUUID(t *testing.T) {
	id := uuid.New()

	got, err := ValidateUUID(" "+id.String()+" ", "id")
	assert.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ValidateUUID("", "id")
	assert.EqualError(t, err, "id is required")

	_, err = ValidateUUID("1234", "id")
	assert.Error(t, err)
}

func TestValidatePaginationParams(t *testing.T) {
	limit, offset, err := ValidatePaginationParams(0, -5)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, _, err = ValidatePaginationParams(5000, 0)
	require.NoError(t, err)
	assert.Equal(t, 200, limit)

	_, _, err = ValidatePaginationParams(10, 2000000)
	assert.Error(t, err)
}

func TestSanitizeSearchQuery(t *testing.T) {
	assert.Equal(t, "acme", SanitizeSearchQuery("  %acme_ "))
	assert.Equal(t, "", SanitizeSearchQuery("   "))
}

func TestValidatePhoneNumber(t *testing.T) {
	assert.NoError(t, ValidatePhoneNumber("+509 3412 3456", "HT"))
	assert.NoError(t, ValidatePhoneNumber("+1 650 253 0000", "HT"))
	assert.Error(t, ValidatePhoneNumber("12", "HT"))
	assert.Error(t, ValidatePhoneNumber("not a phone", "HT"))
}

type signup struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Language string `json:"language" validate:"omitempty,oneof=en ht"`
}

func TestProcessValidationErrors(t *testing.T) {
	v := NewValidator()

	err := v.Validate(signup{Username: "ab", Email: "nope", Language: "fr"})
	require.Error(t, err)

	details := ProcessValidationErrors(err)
	assert.Equal(t, "Ensure this value has at least 3 characters.", details["username"])
	assert.Equal(t, "Enter a valid email address.", details["email"])
	assert.Equal(t, "Select a valid choice.", details["language"])

	assert.NoError(t, v.Validate(signup{Username: "marie", Email: "marie@example.ht"}))
	assert.Equal(t, map[string]string{"non_field_errors": "boom"}, ProcessValidationErrors(errors.New("boom")))
}

func TestIsEmail(t *testing.T) {
	v := NewValidator()
	assert.True(t, v.IsEmail("a@example.ht"))
	assert.False(t, v.IsEmail("a@"))
	assert.False(t, v.IsEmail(""))
}

func TestSendNotFoundError_Localized(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithLanguage(context.Background(), i18n.HaitianCreole))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, SendNotFoundError(c, "invoice"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, "Nou pa jwenn fakti", body.Error.Message)
}

func TestSendConflictError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	require.NoError(t, SendConflictError(c, "DUPLICATE_IDENTIFIER", "invoice_number", "This invoice number is already used for your account."))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DUPLICATE_IDENTIFIER", body.Error.Code)
	assert.Equal(t, "This invoice number is already used for your account.", body.Error.Details["invoice_number"])
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	_, ok := GetUserIDFromContext(ctx)
	assert.False(t, ok)
	assert.Equal(t, i18n.English, GetLanguageFromContext(ctx))

	id := uuid.New()
	ctx = WithLanguage(WithUserID(ctx, id), i18n.HaitianCreole)
	got, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, i18n.HaitianCreole, GetLanguageFromContext(ctx))
}
