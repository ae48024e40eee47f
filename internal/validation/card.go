package validation

import (
	"strconv"
	"strings"
	"time"

	"checkout-gateway/internal/models"
)

// ValidateCardNumber checks length and the Luhn checksum after stripping
// whitespace. Accepts 13 to 19 digits.
func ValidateCardNumber(raw string) bool {
	digits := stripSpaces(raw)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ExpiryResult carries the parsed month and year when the date is valid.
type ExpiryResult struct {
	Valid bool
	Month int
	Year  int
}

// maxExpiryYears bounds how far in the future an expiry may lie. Issuers do
// not print cards valid beyond roughly two decades, so a date like 12/99 is a
// typo, not a far-future card.
const maxExpiryYears = 20

// ValidateExpiryDate accepts MM/YY or MM/YYYY. Two-digit years read as
// 2000+YY. Dates strictly before the current month are invalid; the current
// month itself is valid. Years more than maxExpiryYears ahead are invalid.
func ValidateExpiryDate(raw string) ExpiryResult {
	return ValidateExpiryDateAt(raw, time.Now())
}

func ValidateExpiryDateAt(raw string, now time.Time) ExpiryResult {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 2 {
		return ExpiryResult{}
	}

	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || month < 1 || month > 12 {
		return ExpiryResult{}
	}

	yearPart := strings.TrimSpace(parts[1])
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return ExpiryResult{}
	}
	switch len(yearPart) {
	case 2:
		year += 2000
	case 4:
		// already absolute
	default:
		return ExpiryResult{}
	}

	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return ExpiryResult{}
	}
	if year > now.Year()+maxExpiryYears {
		return ExpiryResult{}
	}

	return ExpiryResult{Valid: true, Month: month, Year: year}
}

// ValidateCVV requires 3 or 4 digits after stripping whitespace.
func ValidateCVV(raw string) bool {
	digits := stripSpaces(raw)
	if len(digits) < 3 || len(digits) > 4 {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateCardholderName requires a trimmed length between 2 and 50.
func ValidateCardholderName(raw string) bool {
	n := len(strings.TrimSpace(raw))
	return n >= 2 && n <= 50
}

// FormatCardNumber groups digits in blocks of four. Presentation only:
// composing with ValidateCardNumber never changes the outcome.
func FormatCardNumber(raw string) string {
	digits := stripSpaces(raw)
	var b strings.Builder
	for i := 0; i < len(digits); i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

// FormatExpiryDate inserts the slash after the month digits.
func FormatExpiryDate(raw string) string {
	digits := stripSpaces(strings.ReplaceAll(raw, "/", ""))
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

// ValidatePaymentForm runs every card field validator in one pass, never
// short-circuiting, so all invalid fields are reported together.
func ValidatePaymentForm(data models.PaymentMethodFormData) models.PaymentFormErrors {
	return validatePaymentFormAt(data, time.Now())
}

func validatePaymentFormAt(data models.PaymentMethodFormData, now time.Time) models.PaymentFormErrors {
	errs := models.PaymentFormErrors{}

	if !ValidateCardNumber(data.CardNumber) {
		errs[models.PaymentFieldCardNumber] = "Please enter a valid card number"
	}
	if !ValidateExpiryDateAt(data.ExpiryDate, now).Valid {
		errs[models.PaymentFieldExpiryDate] = "Please enter a valid expiry date"
	}
	if !ValidateCVV(data.CVV) {
		errs[models.PaymentFieldCVV] = "Please enter a valid CVV"
	}
	if !ValidateCardholderName(data.CardholderName) {
		errs[models.PaymentFieldName] = "Please enter the cardholder name"
	}

	return errs
}

// IsPaymentFormValid reports whether ValidatePaymentForm comes back empty.
func IsPaymentFormValid(data models.PaymentMethodFormData) bool {
	return len(ValidatePaymentForm(data)) == 0
}

func stripSpaces(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
