// internal/domain/checkout/errors.go
package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCart is returned when a submission is attempted with no items
	ErrEmptyCart = errors.New("your cart is empty")
	// ErrSubmissionInProgress is returned while the session already has an order being created
	ErrSubmissionInProgress = errors.New("an order is already being submitted")
)

// ValidationError carries the field errors that blocked a submission
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("invalid checkout form: %s", strings.Join(names, ", "))
}

// FieldMap returns field name to message, convenient for form rendering
func (e *ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Message
	}
	return m
}

// OrderSubmissionError wraps a failure of the order creation call. Cart and
// form are untouched when it is returned.
type OrderSubmissionError struct {
	Err error
}

func (e *OrderSubmissionError) Error() string {
	return fmt.Sprintf("order submission failed: %v", e.Err)
}

func (e *OrderSubmissionError) Unwrap() error {
	return e.Err
}
