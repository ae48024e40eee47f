package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout-gateway/internal/models"
)

func validCheckoutValues() models.CheckoutValues {
	return models.CheckoutValues{
		models.FieldEmail:      "ada@example.com",
		models.FieldFirstName:  "Ada",
		models.FieldLastName:   "Lovelace",
		models.FieldAddress1:   "10 Downing Street",
		models.FieldAddress2:   "",
		models.FieldCity:       "London",
		models.FieldPostalCode: "SW1A 2AA",
		models.FieldCountry:    "GB",
	}
}

func TestValidateCheckoutAllEmpty(t *testing.T) {
	errs := ValidateCheckout(models.CheckoutValues{})

	require.Len(t, errs, 7, "one error per required field, address2 excluded")
	for _, field := range models.RequiredCheckoutFields {
		assert.Contains(t, errs, field)
	}
	assert.NotContains(t, errs, models.FieldAddress2)
}

func TestValidateCheckoutValid(t *testing.T) {
	assert.Empty(t, ValidateCheckout(validCheckoutValues()))
	assert.True(t, IsCheckoutValid(validCheckoutValues()))
}

func TestValidateCheckoutEmailFormat(t *testing.T) {
	values := validCheckoutValues()

	for _, bad := range []string{"ada", "ada@example", "ada example@x.y", "@example.com"} {
		values[models.FieldEmail] = bad
		errs := ValidateCheckout(values)
		assert.Contains(t, errs, models.FieldEmail, "email %q should be rejected", bad)
	}

	values[models.FieldEmail] = "a@b.co"
	assert.NotContains(t, ValidateCheckout(values), models.FieldEmail)
}

func TestValidateCheckoutPostalCodeLength(t *testing.T) {
	values := validCheckoutValues()

	values[models.FieldPostalCode] = "12"
	assert.Contains(t, ValidateCheckout(values), models.FieldPostalCode)

	values[models.FieldPostalCode] = "  1 "
	assert.Contains(t, ValidateCheckout(values), models.FieldPostalCode)

	values[models.FieldPostalCode] = "123"
	assert.NotContains(t, ValidateCheckout(values), models.FieldPostalCode)
}

func TestValidateCheckoutBlankAfterTrim(t *testing.T) {
	values := validCheckoutValues()
	values[models.FieldCity] = "   "

	errs := ValidateCheckout(values)
	assert.Contains(t, errs, models.FieldCity)
	assert.Len(t, errs, 1, "whitespace-only counts as blank, everything else stays valid")
}

func TestFocusTargetID(t *testing.T) {
	assert.Equal(t, "checkout-email", models.FocusTargetID(models.FieldEmail))
	assert.Equal(t, "checkout-postalCode", models.FocusTargetID(models.FieldPostalCode))
}
