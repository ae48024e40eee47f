package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout-gateway/internal/models"
)

func TestFormControllerErrorVisibility(t *testing.T) {
	form := NewFormController(nil)

	// Everything is invalid but nothing has been touched and no submit was
	// attempted, so nothing is shown yet.
	assert.Len(t, form.Errors(), 7)
	assert.Empty(t, form.VisibleErrors())

	form.SetValue(models.FieldEmail, "not-an-email")
	visible := form.VisibleErrors()
	assert.Len(t, visible, 1)
	assert.Contains(t, visible, models.FieldEmail)
}

func TestFormControllerSubmitAttemptedIsLatched(t *testing.T) {
	form := NewFormController(nil)

	ok, _, _ := form.AttemptSubmit()
	assert.False(t, ok)
	assert.True(t, form.SubmitAttempted())

	// After the first attempt every current error is visible, and the flag
	// never resets for the session.
	assert.Len(t, form.VisibleErrors(), 7)

	form.SetValue(models.FieldEmail, "ada@example.com")
	assert.True(t, form.SubmitAttempted())
	assert.Len(t, form.VisibleErrors(), 6)
}

func TestFormControllerSummaryFollowsDeclarationOrder(t *testing.T) {
	form := NewFormController(models.CheckoutValues{
		models.FieldEmail:     "ada@example.com",
		models.FieldFirstName: "Ada",
	})

	ok, summary, focusTarget := form.AttemptSubmit()
	require.False(t, ok)

	var fields []models.CheckoutField
	for _, fe := range summary {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []models.CheckoutField{
		models.FieldLastName,
		models.FieldAddress1,
		models.FieldCity,
		models.FieldPostalCode,
		models.FieldCountry,
	}, fields)
	assert.Equal(t, "checkout-lastName", focusTarget)
}

func TestFormControllerFocusFirstInvalidField(t *testing.T) {
	form := NewFormController(nil)

	_, summary, focusTarget := form.AttemptSubmit()
	require.NotEmpty(t, summary)
	assert.Equal(t, "checkout-email", focusTarget, "email is the first declared field")
}

func TestFormControllerValidSubmit(t *testing.T) {
	form := NewFormController(models.CheckoutValues{
		models.FieldEmail:      "ada@example.com",
		models.FieldFirstName:  "Ada",
		models.FieldLastName:   "Lovelace",
		models.FieldAddress1:   "10 Downing Street",
		models.FieldCity:       "London",
		models.FieldPostalCode: "SW1A 2AA",
		models.FieldCountry:    "GB",
	})

	ok, summary, focusTarget := form.AttemptSubmit()
	assert.True(t, ok)
	assert.Empty(t, summary)
	assert.Empty(t, focusTarget)
	assert.True(t, form.IsValid())
}
