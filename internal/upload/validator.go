package upload

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	// AcceptedSuffix is the only file suffix the analysis service understands.
	// Kept in sync with the Candidate.Name tag.
	AcceptedSuffix = ".txt"

	// MaxSizeBytes is the largest file accepted for upload (10 MiB).
	// Kept in sync with the Candidate.SizeBytes tag.
	MaxSizeBytes int64 = 10 * 1024 * 1024
)

// ValidationKind identifies which pre-flight rule rejected a file
type ValidationKind string

const (
	KindWrongFileType ValidationKind = "wrong_file_type"
	KindFileTooLarge  ValidationKind = "file_too_large"
)

// Sentinels for errors.Is checks
var (
	ErrWrongFileType = &ValidationError{Kind: KindWrongFileType}
	ErrFileTooLarge  = &ValidationError{Kind: KindFileTooLarge}
)

// ValidationError is returned when a candidate fails a local check.
// It never reaches the network.
type ValidationError struct {
	Kind ValidationKind `json:"kind"`
	Name string         `json:"name,omitempty"`
	Size int64          `json:"size,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message()
}

// Message returns the text shown to the user
func (e *ValidationError) Message() string {
	switch e.Kind {
	case KindWrongFileType:
		return "Please upload a .txt file exported from WhatsApp"
	case KindFileTooLarge:
		return "File size exceeds 10MB limit"
	default:
		return fmt.Sprintf("invalid file %q", e.Name)
	}
}

// Is matches validation errors by kind
func (e *ValidationError) Is(target error) bool {
	var ve *ValidationError
	if errors.As(target, &ve) {
		return e.Kind == ve.Kind
	}
	return false
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ruleKinds maps a failed candidate tag to the rule it belongs to
var ruleKinds = map[string]ValidationKind{
	"endswith": KindWrongFileType,
	"lte":      KindFileTooLarge,
}

// Validate checks a candidate before submission. Rules run in field order
// and the first failure wins.
func Validate(c Candidate) error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("cannot validate %q: %w", c.Name, err)
	}

	kind, ok := ruleKinds[fieldErrs[0].Tag()]
	if !ok {
		return fmt.Errorf("%s failed %s validation", fieldErrs[0].Field(), fieldErrs[0].Tag())
	}
	return &ValidationError{Kind: kind, Name: c.Name, Size: c.SizeBytes}
}

// IsValidationError checks if an error is a local validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
