package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() CustomerInput {
	return CustomerInput{
		Name:    "  Priya Sharma ",
		Phone:   "98765 43210",
		Email:   "Priya@Example.com",
		Address: "12 MG Road, Indiranagar, Bengaluru 560038",
	}
}

func TestValidateCustomer(t *testing.T) {
	t.Run("Normalizes valid input", func(t *testing.T) {
		c, errs := ValidateCustomer(validInput())

		require.Nil(t, errs)
		assert.Equal(t, "Priya Sharma", c.Name)
		assert.Equal(t, "9876543210", c.Phone)
		assert.Equal(t, "priya@example.com", c.Email)
		assert.Equal(t, "12 MG Road, Indiranagar, Bengaluru 560038", c.Address)
	})

	t.Run("Email is optional", func(t *testing.T) {
		in := validInput()
		in.Email = "   "

		c, errs := ValidateCustomer(in)

		require.Nil(t, errs)
		assert.Empty(t, c.Email)
	})

	t.Run("Short phone", func(t *testing.T) {
		in := validInput()
		in.Phone = "98765432"

		_, errs := ValidateCustomer(in)

		require.NotNil(t, errs)
		assert.Contains(t, errs[FieldPhone], "valid 10-digit Indian phone number")
	})

	t.Run("Collects every field error", func(t *testing.T) {
		_, errs := ValidateCustomer(CustomerInput{Name: "A", Phone: "12345", Email: "nope", Address: "short"})

		require.Len(t, errs, 4)
		assert.Equal(t, MsgNameRequired, errs[FieldName])
		assert.Equal(t, MsgPhoneInvalid, errs[FieldPhone])
		assert.Equal(t, MsgEmailInvalid, errs[FieldEmail])
		assert.Equal(t, MsgAddressRequired, errs[FieldAddress])
		assert.Equal(t,
			"validation failed: address: "+MsgAddressRequired+"; email: "+MsgEmailInvalid+"; name: "+MsgNameRequired+"; phone: "+MsgPhoneInvalid,
			errs.Error(),
		)
	})

	t.Run("Empty input does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			_, errs := ValidateCustomer(CustomerInput{})
			assert.Len(t, errs, 3)
		})
	})
}

func TestValidPhone(t *testing.T) {
	cases := []struct {
		phone string
		want  bool
	}{
		{"9876543210", true},
		{"6000000000", true},
		{"7123456789", true},
		{"8123456789", true},
		{"+91 98765-43210", false},
		{"5876543210", false},
		{"0987654321", false},
		{"98765432", false},
		{"98765432101", false},
		{"", false},
		{"98765-43210", true},
	}

	for _, tc := range cases {
		t.Run(tc.phone, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidPhone(tc.phone))
		})
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@b.in"))
	assert.False(t, ValidEmail("a@b"))
	assert.False(t, ValidEmail("a b@c.com"))
	assert.False(t, ValidEmail("@c.com"))
}
