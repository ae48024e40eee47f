package validation

import (
	"regexp"
	"strings"

	"checkout-gateway/internal/models"
)

// Permissive local@domain.tld shape; real deliverability is the mail
// provider's problem.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateCheckout checks every address field unconditionally so that all
// invalid fields are reported simultaneously. The returned map is sparse: a
// field is absent iff it passes.
func ValidateCheckout(values models.CheckoutValues) models.CheckoutErrors {
	errs := models.CheckoutErrors{}

	for _, field := range models.RequiredCheckoutFields {
		if strings.TrimSpace(values[field]) == "" {
			errs[field] = requiredMessage(field)
		}
	}

	if email := strings.TrimSpace(values[models.FieldEmail]); email != "" && !emailPattern.MatchString(email) {
		errs[models.FieldEmail] = "Please enter a valid email address"
	}

	if postal := strings.TrimSpace(values[models.FieldPostalCode]); postal != "" && len(postal) < 3 {
		errs[models.FieldPostalCode] = "Postal code is too short"
	}

	return errs
}

// IsCheckoutValid reports whether ValidateCheckout comes back empty.
func IsCheckoutValid(values models.CheckoutValues) bool {
	return len(ValidateCheckout(values)) == 0
}

func requiredMessage(field models.CheckoutField) string {
	switch field {
	case models.FieldEmail:
		return "Email is required"
	case models.FieldFirstName:
		return "First name is required"
	case models.FieldLastName:
		return "Last name is required"
	case models.FieldAddress1:
		return "Address is required"
	case models.FieldCity:
		return "City is required"
	case models.FieldPostalCode:
		return "Postal code is required"
	case models.FieldCountry:
		return "Country is required"
	default:
		return "This field is required"
	}
}
