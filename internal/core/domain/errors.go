package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrExternalService  = errors.New("external service error")
	ErrParse            = errors.New("parse error")
	ErrInsufficientData = errors.New("insufficient data")
	ErrNotFound         = errors.New("not found")
	ErrGeneration       = errors.New("generation failed")
	ErrImprovement      = errors.New("improvement failed")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
