package models

// CheckoutField names one input of the checkout address form. The string value
// doubles as the key of CheckoutValues and the suffix of the DOM-style focus
// target id ("checkout-<field>").
type CheckoutField string

const (
	FieldEmail      CheckoutField = "email"
	FieldFirstName  CheckoutField = "firstName"
	FieldLastName   CheckoutField = "lastName"
	FieldAddress1   CheckoutField = "address1"
	FieldAddress2   CheckoutField = "address2"
	FieldCity       CheckoutField = "city"
	FieldPostalCode CheckoutField = "postalCode"
	FieldCountry    CheckoutField = "country"
)

// CheckoutFieldOrder is the declaration order of the form. Error summaries and
// first-invalid-field focus follow this order, never alphabetical.
var CheckoutFieldOrder = []CheckoutField{
	FieldEmail,
	FieldFirstName,
	FieldLastName,
	FieldAddress1,
	FieldAddress2,
	FieldCity,
	FieldPostalCode,
	FieldCountry,
}

// RequiredCheckoutFields lists every field that must be non-blank. Address
// line 2 is the single optional field.
var RequiredCheckoutFields = []CheckoutField{
	FieldEmail,
	FieldFirstName,
	FieldLastName,
	FieldAddress1,
	FieldCity,
	FieldPostalCode,
	FieldCountry,
}

// CheckoutValues maps every form field to its current raw value.
type CheckoutValues map[CheckoutField]string

// CheckoutErrors is sparse: a field is absent iff it currently validates.
type CheckoutErrors map[CheckoutField]string

// FocusTargetID derives the deterministic element id for a field.
func FocusTargetID(field CheckoutField) string {
	return "checkout-" + string(field)
}
