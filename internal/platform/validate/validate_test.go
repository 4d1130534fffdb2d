// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Hampi", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_MaxLen counts characters, not bytes.
*/
func TestValidator_MaxLen(t *testing.T) {
	v := &validate.Validator{}
	v.MaxLen("title", "Śrīnagar", 8)
	assert.False(t, v.HasErrors())

	v.MaxLen("title", "Śrīnagar!", 8)
	assert.True(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("title", "").                       // Fails
		MaxLen("title", "Kanyakumari", 5).           // Fails
		Custom("content", true, "Must be an object"). // Fails
		Custom("slug", false, "never").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
	assert.Equal(t, "content", ae.Details[2].Field)
}

/*
TestValidator_Title reports only the first problem of a display name.
*/
func TestValidator_Title(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		message string
	}{
		{"valid", "Fort Kochi", ""},
		{"empty", "  ", "This field is required"},
		{"too_long", strings.Repeat("a", 11), "Maximum 10 characters"},
		{"multi_line", "Fort\nKochi", "Must be a single line of text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&validate.Validator{}).Title("title", tt.value, 10).Err()
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			ae := apperr.As(err)
			require.NotNil(t, ae)
			require.Len(t, ae.Details, 1)
			assert.Equal(t, tt.message, ae.Details[0].Message)
		})
	}
}

/*
TestValidator_JSONObject accepts absent content and objects only.
*/
func TestValidator_JSONObject(t *testing.T) {
	for _, raw := range []string{"", "null", `{"history":"Portuguese era"}`} {
		assert.False(t, (&validate.Validator{}).JSONObject("content", json.RawMessage(raw)).HasErrors(), raw)
	}
	for _, raw := range []string{`[1,2]`, `"text"`, `{broken`} {
		assert.True(t, (&validate.Validator{}).JSONObject("content", json.RawMessage(raw)).HasErrors(), raw)
	}
}

/*
TestInvalid builds a single-field validation error.
*/
func TestInvalid(t *testing.T) {
	err := validate.Invalid("parent_id", "A region is required")
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
	require.Len(t, err.Details, 1)
	assert.Equal(t, "A region is required", err.Details[0].Message)
}
