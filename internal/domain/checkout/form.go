// internal/domain/checkout/form.go
package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// PaymentMethod is the shopper's chosen way to pay
type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentPayPal PaymentMethod = "paypal"
	PaymentApple  PaymentMethod = "apple"
)

// PaymentMethods lists the accepted payment methods in display order
var PaymentMethods = []PaymentMethod{PaymentCredit, PaymentPayPal, PaymentApple}

// IsValid reports whether m is one of the accepted payment methods
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCredit, PaymentPayPal, PaymentApple:
		return true
	}
	return false
}

// Label is the display name of the payment method
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCredit:
		return "Credit Card"
	case PaymentPayPal:
		return "PayPal"
	case PaymentApple:
		return "Apple Pay"
	}
	return string(m)
}

// CustomerForm holds the shipping and payment details entered at checkout
type CustomerForm struct {
	FirstName     string        `json:"first_name" validate:"required,min=2"`
	LastName      string        `json:"last_name" validate:"required,min=2"`
	Email         string        `json:"email" validate:"required,email"`
	Phone         string        `json:"phone" validate:"required,min=10"`
	Address       string        `json:"address" validate:"required,min=5"`
	City          string        `json:"city" validate:"required,min=2"`
	State         string        `json:"state" validate:"required,min=2"`
	Zip           string        `json:"zip" validate:"required,min=5"`
	Country       string        `json:"country" validate:"required,min=2"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,payment_method"`
}

// FormFromProfile pre-fills a form from the signed-in user's profile.
// Payment defaults to credit card.
func FormFromProfile(p *user.Profile) CustomerForm {
	form := CustomerForm{PaymentMethod: PaymentCredit}
	if p == nil {
		return form
	}
	form.FirstName = p.FirstName
	form.LastName = p.LastName
	form.Email = p.Email
	form.Phone = p.Phone
	form.Address = p.Address
	form.City = p.City
	form.State = p.State
	form.Zip = p.Zip
	form.Country = p.Country
	return form
}

// ShippingAddress returns the address captured with the order
func (f CustomerForm) ShippingAddress() order.Address {
	return order.Address{
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		Email:        f.Email,
		Phone:        f.Phone,
		AddressLine1: f.Address,
		City:         f.City,
		State:        f.State,
		PostalCode:   f.Zip,
		Country:      f.Country,
	}
}

// FieldError is the first rule a field violates
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating a form
type ValidationResult struct {
	Valid       bool         `json:"valid"`
	FieldErrors []FieldError `json:"field_errors,omitempty"`
}

// Err returns the result as a *ValidationError, or nil when the form is valid
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Fields: r.FieldErrors}
}

var fieldLabels = map[string]string{
	"first_name":     "First name",
	"last_name":      "Last name",
	"email":          "Email",
	"phone":          "Phone number",
	"address":        "Address",
	"city":           "City",
	"state":          "State",
	"zip":            "ZIP code",
	"country":        "Country",
	"payment_method": "Payment method",
}

// FormValidator checks a CustomerForm against the checkout field rules
type FormValidator struct {
	validate *validator.Validate
}

// NewFormValidator creates a validator for checkout forms
func NewFormValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return PaymentMethod(fl.Field().String()).IsValid()
	})
	return &FormValidator{validate: v}
}

// Validate reports, for every failing field in form order, the first rule the
// field violates.
func (fv *FormValidator) Validate(form CustomerForm) ValidationResult {
	err := fv.validate.Struct(form)
	if err == nil {
		return ValidationResult{Valid: true}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationResult{FieldErrors: []FieldError{{Field: "form", Rule: "invalid", Message: err.Error()}}}
	}

	result := ValidationResult{FieldErrors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		result.FieldErrors = append(result.FieldErrors, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return result
}

func message(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "email":
		return "Enter a valid email address"
	case "payment_method":
		return "Choose credit card, PayPal or Apple Pay"
	}
	return fmt.Sprintf("%s is invalid", label)
}
