package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

func validForm() CustomerForm {
	return CustomerForm{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		Phone:         "5551234567",
		Address:       "12 Analytical Way",
		City:          "London",
		State:         "LN",
		Zip:           "12345",
		Country:       "UK",
		PaymentMethod: PaymentCredit,
	}
}

func TestValidate_ValidForm(t *testing.T) {
	result := NewFormValidator().Validate(validForm())

	assert.True(t, result.Valid)
	assert.Empty(t, result.FieldErrors)
	assert.NoError(t, result.Err())
}

func TestValidate_FieldRules(t *testing.T) {
	fv := NewFormValidator()

	tests := []struct {
		name   string
		mutate func(*CustomerForm)
		field  string
		rule   string
	}{
		{"short first name", func(f *CustomerForm) { f.FirstName = "A" }, "first_name", "min"},
		{"missing last name", func(f *CustomerForm) { f.LastName = "" }, "last_name", "required"},
		{"bad email", func(f *CustomerForm) { f.Email = "not-an-email" }, "email", "email"},
		{"short phone", func(f *CustomerForm) { f.Phone = "555123" }, "phone", "min"},
		{"short address", func(f *CustomerForm) { f.Address = "12 A" }, "address", "min"},
		{"short city", func(f *CustomerForm) { f.City = "L" }, "city", "min"},
		{"short state", func(f *CustomerForm) { f.State = "L" }, "state", "min"},
		{"short zip", func(f *CustomerForm) { f.Zip = "123" }, "zip", "min"},
		{"short country", func(f *CustomerForm) { f.Country = "U" }, "country", "min"},
		{"missing payment", func(f *CustomerForm) { f.PaymentMethod = "" }, "payment_method", "required"},
		{"unknown payment", func(f *CustomerForm) { f.PaymentMethod = "bitcoin" }, "payment_method", "payment_method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			result := fv.Validate(form)
			require.False(t, result.Valid)
			require.Len(t, result.FieldErrors, 1)
			assert.Equal(t, tt.field, result.FieldErrors[0].Field)
			assert.Equal(t, tt.rule, result.FieldErrors[0].Rule)
			assert.NotEmpty(t, result.FieldErrors[0].Message)
		})
	}
}

func TestValidate_ZipBoundary(t *testing.T) {
	fv := NewFormValidator()

	form := validForm()
	form.Zip = "12345"
	assert.True(t, fv.Validate(form).Valid)

	form.Zip = "1234"
	assert.False(t, fv.Validate(form).Valid)
}

func TestValidate_FirstViolatedRulePerField(t *testing.T) {
	result := NewFormValidator().Validate(CustomerForm{Email: "x"})

	require.False(t, result.Valid)
	require.Len(t, result.FieldErrors, 10)
	assert.Equal(t, "first_name", result.FieldErrors[0].Field)
	assert.Equal(t, "required", result.FieldErrors[0].Rule)
	assert.Equal(t, "First name is required", result.FieldErrors[0].Message)
	assert.Equal(t, "email", result.FieldErrors[2].Field)
	assert.Equal(t, "email", result.FieldErrors[2].Rule)
	assert.Equal(t, "payment_method", result.FieldErrors[9].Field)

	var verr *ValidationError
	require.ErrorAs(t, result.Err(), &verr)
	assert.Equal(t, "Enter a valid email address", verr.FieldMap()["email"])
}

func TestPaymentMethod(t *testing.T) {
	for _, m := range PaymentMethods {
		assert.True(t, m.IsValid())
	}
	assert.False(t, PaymentMethod("cash").IsValid())
	assert.Equal(t, "Apple Pay", PaymentApple.Label())
}

func TestFormFromProfile(t *testing.T) {
	form := FormFromProfile(&user.Profile{FirstName: "Ada", Email: "ada@example.com", Zip: "12345"})
	assert.Equal(t, "Ada", form.FirstName)
	assert.Equal(t, "12345", form.Zip)
	assert.Equal(t, PaymentCredit, form.PaymentMethod)

	empty := FormFromProfile(nil)
	assert.Equal(t, CustomerForm{PaymentMethod: PaymentCredit}, empty)
}

func TestShippingAddress(t *testing.T) {
	addr := validForm().ShippingAddress()
	assert.Equal(t, "12 Analytical Way", addr.AddressLine1)
	assert.Equal(t, "12345", addr.PostalCode)
	assert.Equal(t, "ada@example.com", addr.Email)
}
