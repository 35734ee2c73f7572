package service

import (
	"errors"
	"fmt"
	"strings"

	"ali-plastic-pos/internal/repository"
	"ali-plastic-pos/pkg/validator"
)

var (
	ErrProductExists   = errors.New("product with this name, unit value and unit type already exists")
	ErrProductNotFound = errors.New("product not found")
	ErrSaleNotFound    = errors.New("sale not found")
	ErrEmptyCheckout   = errors.New("checkout needs at least one item")
	// ErrInsufficientStock rejects a checkout when negative stock is disabled.
	ErrInsufficientStock = repository.ErrInsufficientStock
)

// ValidationError carries a client-facing message for malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func validate(data interface{}) error {
	if errs := validator.ValidateStruct(data); len(errs) > 0 {
		return &ValidationError{Message: validator.FirstError(errs).Error()}
	}
	return nil
}

// IsValidation reports whether err came from input validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Actor identifies who performed a write, for audit columns and broadcasts.
type Actor struct {
	ID       string
	Username string
}

func (a Actor) auditID() string {
	if strings.TrimSpace(a.ID) == "" {
		return "system"
	}
	return a.ID
}
