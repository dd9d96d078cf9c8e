package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"forum-api/domain/config"
	pkgerrors "forum-api/pkg/errors"
)

// Title is a validated topic or course title
type Title struct {
	value string
}

// NewTitle creates a title with validation using default configuration
func NewTitle(value string) (Title, error) {
	return NewTitleWithConfig(value, config.DefaultDomainConfig())
}

// NewTitleWithConfig creates a title with validation and configuration
func NewTitleWithConfig(value string, cfg *config.DomainConfig) (Title, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return Title{}, pkgerrors.NewValidationError("title is required")
	}

	length := utf8.RuneCountInString(value)
	if length < cfg.MinTitleLength {
		return Title{}, pkgerrors.NewValidationError(
			fmt.Sprintf("title too short: minimum %d characters required", cfg.MinTitleLength))
	}
	if length > cfg.MaxTitleLength {
		return Title{}, pkgerrors.NewValidationError(
			fmt.Sprintf("title exceeds maximum length of %d characters", cfg.MaxTitleLength))
	}

	return Title{value: value}, nil
}

// String returns the title text
func (t Title) String() string {
	return t.value
}

// Slug derives the URL slug for the title
func (t Title) Slug(derive SlugFunc) string {
	return derive(t.value)
}

// Text is the validated body of a comment or reply, or a topic description
type Text struct {
	value string
}

// NewText validates a required body of at most maxLength runes
func NewText(field, value string, maxLength int) (Text, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Text{}, pkgerrors.NewValidationError(field + " is required")
	}
	if maxLength > 0 && utf8.RuneCountInString(value) > maxLength {
		return Text{}, pkgerrors.NewValidationError(
			fmt.Sprintf("%s exceeds maximum length of %d characters", field, maxLength))
	}
	return Text{value: value}, nil
}

// String returns the text
func (t Text) String() string {
	return t.value
}
