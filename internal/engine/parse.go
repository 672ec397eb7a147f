package engine

import (
	"strings"
	"unicode/utf8"

	"hypeos/internal/hypeos"
)

const (
	maxTitleLen  = 200
	maxUserIDLen = 64
	maxCategory  = 40

	DefaultCategory = "general"
)

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", &hypeos.InputError{Field: "title", Value: title}
	}
	if utf8.RuneCountInString(t) > maxTitleLen {
		return "", &hypeos.InputError{Field: "title", Value: "longer than 200 characters"}
	}
	return t, nil
}

// normalizeCategory lowercases category. Categories are free-form; ones
// outside the rules table score at 1.0.
func normalizeCategory(category string) (string, error) {
	c := strings.TrimSpace(strings.ToLower(category))
	if c == "" {
		return DefaultCategory, nil
	}
	if utf8.RuneCountInString(c) > maxCategory {
		return "", &hypeos.InputError{Field: "category", Value: category}
	}
	return c, nil
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" || len(userID) > maxUserIDLen {
		return &hypeos.InputError{Field: "userId", Value: userID}
	}
	return nil
}
