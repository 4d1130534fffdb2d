// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Slugs are the human-readable identifiers of places (e.g., "kerala",
// "munnar-hills"). This package handles normalization, accent removal,
// length capping and numeric disambiguation suffixes. Uniqueness against
// stored rows is the caller's concern.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxLength is the upper bound of a slug, suffix included.
	MaxLength = 60

	// Fallback is used when the title carries no usable characters.
	Fallback = "place"
)

var (
	// nonAlphanumeric matches any sequence of non-alphanumeric, non-hyphen characters.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Replaces non-alphanumeric characters with hyphens.
// 5. Collapses multiple hyphens and trims leading/trailing hyphens.
// 6. Caps the result at [MaxLength] and re-trims a dangling hyphen.
//
// An input with nothing usable yields [Fallback].
func From(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Replace whitespace and special chars with hyphens
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	// 4. Clean up hyphenation
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	// 5. Cap length
	result = truncate(result, MaxLength)

	if result == "" {
		return Fallback
	}
	return result
}

// WithSuffix returns the n-th disambiguation candidate for base.
//
// n == 0 yields base itself; otherwise "base-n", with base shortened so the
// whole candidate still fits in [MaxLength].
func WithSuffix(base string, n int) string {
	if n <= 0 {
		return base
	}

	suffix := "-" + strconv.Itoa(n)
	head := truncate(base, MaxLength-len(suffix))
	if head == "" {
		head = Fallback
	}
	return head + suffix
}

// truncate cuts s to at most max bytes (slugs are ASCII) and drops a trailing hyphen.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) > max {
		s = s[:max]
	}
	return strings.TrimRight(s, "-")
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
