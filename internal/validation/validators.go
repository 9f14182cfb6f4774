package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/haneulpark/habit-diary/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Custom validators should never fail to register in normal operation.
	if err := Validate.RegisterValidation("iso_date", validateISODate); err != nil {
		panic(fmt.Sprintf("failed to register iso_date validator: %v", err))
	}
	if err := Validate.RegisterValidation("day_label", validateDayLabel); err != nil {
		panic(fmt.Sprintf("failed to register day_label validator: %v", err))
	}
}

// validateISODate validates that a string is a YYYY-MM-DD calendar date
func validateISODate(fl validator.FieldLevel) bool {
	return ValidateISODate(fl.Field().String()) == nil
}

// validateDayLabel validates that a string is one of the weekday labels
func validateDayLabel(fl validator.FieldLevel) bool {
	return models.ValidDayLabel(fl.Field().String())
}

// ValidateISODate validates a YYYY-MM-DD date string value
func ValidateISODate(value string) error {
	if _, err := time.Parse(models.DateFormat, value); err != nil {
		return fmt.Errorf("invalid date: %s (must be YYYY-MM-DD)", value)
	}
	return nil
}

// ValidateDayLabel validates a weekday label value (월..일)
func ValidateDayLabel(value string) error {
	if !models.ValidDayLabel(value) {
		return fmt.Errorf("invalid day: %s (must be one of %s)", value, strings.Join(models.DayLabels(), ", "))
	}
	return nil
}

// ValidateRating validates a satisfaction score value
func ValidateRating(value int) error {
	if value < models.RatingMin || value > models.RatingMax {
		return fmt.Errorf("invalid rating: %d (must be between %d and %d)", value, models.RatingMin, models.RatingMax)
	}
	return nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
