package validation

import (
	"fmt"

	dErrors "vaxledger/pkg/domain-errors"
)

// Slice element count limits
const (
	// MaxAcceptedVaccines is the maximum number of vaccines in one rule.
	MaxAcceptedVaccines = 100
)

// String element length limits
const (
	MaxCenterNameLength = 128
	MaxAreaLength       = 128

	// MaxVaccineCodeLength bounds both code_type and code.
	MaxVaccineCodeLength = 64

	// MaxPersonFieldLength bounds each personal attribute fed to the person identifier.
	MaxPersonFieldLength = 256

	// MaxTokenLength bounds proof tokens and person identifiers accepted from clients.
	MaxTokenLength = 130
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckRequired rejects empty strings.
func CheckRequired(fieldName, value string) error {
	if value == "" {
		return dErrors.New(dErrors.CodeValidation, fieldName+" is required")
	}
	return nil
}
