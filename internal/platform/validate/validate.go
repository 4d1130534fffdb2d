// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate collects field-level errors for catalog writes and
// returns them as one VALIDATION_ERROR.
//
// Services validate their inputs here before touching storage or media, so a
// rejected request never leaves a file or a row behind.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taibuivan/yatra/internal/platform/apperr"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// Validator accumulates failures through a chainable API. Use one per call.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Title checks a display name: present, at most max characters and on a
// single line. Only the first failure is reported.
func (v *Validator) Title(field, value string, max int) *Validator {
	switch {
	case strings.TrimSpace(value) == "":
		v.add(field, "This field is required")
	case utf8.RuneCountInString(value) > max:
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	case strings.IndexFunc(value, unicode.IsControl) >= 0:
		v.add(field, "Must be a single line of text")
	}
	return v
}

// JSONObject fails unless raw is absent, null or a JSON object. Place
// content is free-form but always keyed.
func (v *Validator) JSONObject(field string, raw json.RawMessage) *Validator {
	if len(raw) == 0 {
		return v
	}
	var object map[string]any
	if err := json.Unmarshal(raw, &object); err != nil {
		v.add(field, "Must be a JSON object")
	}
	return v
}

// Custom adds message for field when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns the accumulated VALIDATION_ERROR, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// Invalid builds a single-field VALIDATION_ERROR, for rules that depend on
// state the Validator cannot see (the parent of a place, a missing form part).
func Invalid(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
