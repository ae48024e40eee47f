package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout-gateway/internal/models"
	"checkout-gateway/internal/refresh"
)

func TestPaymentSectionAutoSelectsDefaultOnStart(t *testing.T) {
	api := &mockPaymentAPI{
		methods: []models.SavedPaymentMethod{
			{ID: "pm_1", Type: models.MethodCard},
			{ID: "pm_2", Type: models.MethodCard, IsDefault: true},
		},
	}

	var selected []string
	section := NewPaymentSection(PaymentSectionConfig{
		API:      api,
		OnSelect: func(id string) { selected = append(selected, id) },
	})
	section.Start(context.Background())

	assert.Equal(t, []string{"pm_2"}, selected, "default method is reported without user interaction")
	assert.Equal(t, "pm_2", section.SelectedID())
}

func TestPaymentSectionNoDefaultNoAutoSelect(t *testing.T) {
	api := &mockPaymentAPI{
		methods: []models.SavedPaymentMethod{{ID: "pm_1", Type: models.MethodCard}},
	}

	var selected []string
	section := NewPaymentSection(PaymentSectionConfig{
		API:      api,
		OnSelect: func(id string) { selected = append(selected, id) },
	})
	section.Start(context.Background())

	assert.Empty(t, selected)
	assert.Empty(t, section.SelectedID())
}

func TestPaymentSectionLoadErrorGoesToCallback(t *testing.T) {
	api := &mockPaymentAPI{methodsErr: errBoom}

	var gotErr error
	section := NewPaymentSection(PaymentSectionConfig{
		API:     api,
		OnError: func(err error) { gotErr = err },
	})
	section.Start(context.Background())

	assert.ErrorIs(t, gotErr, errBoom)
	assert.Empty(t, section.Methods())
}

func TestPaymentSectionAddCardSavedAttachesThenRefreshesThenSelects(t *testing.T) {
	api := &mockPaymentAPI{}

	var selected []string
	section := NewPaymentSection(PaymentSectionConfig{
		API:       api,
		Tokenizer: &mockTokenizer{token: "pm_new"},
		OnSelect:  func(id string) { selected = append(selected, id) },
	})

	data := validCardForm()
	data.SaveCard = true
	errs := section.AddCard(context.Background(), data)
	require.Empty(t, errs)

	// attach completes, then the refresh, then the selection.
	assert.Equal(t, []string{"attach:pm_new", "get"}, api.Calls())
	assert.Equal(t, []string{"pm_new"}, selected)
	assert.False(t, section.AddFormVisible())
}

func TestPaymentSectionAddCardUnsavedNeverAttaches(t *testing.T) {
	api := &mockPaymentAPI{}

	var selected []string
	section := NewPaymentSection(PaymentSectionConfig{
		API:       api,
		Tokenizer: &mockTokenizer{token: "pm_once"},
		OnSelect:  func(id string) { selected = append(selected, id) },
	})

	errs := section.AddCard(context.Background(), validCardForm())
	require.Empty(t, errs)

	assert.Empty(t, api.Calls(), "one-time token is used for this transaction only")
	assert.Equal(t, []string{"pm_once"}, selected)
}

func TestPaymentSectionAddCardValidation(t *testing.T) {
	api := &mockPaymentAPI{}
	section := NewPaymentSection(PaymentSectionConfig{
		API:       api,
		Tokenizer: &mockTokenizer{},
	})

	errs := section.AddCard(context.Background(), models.PaymentMethodFormData{})
	require.Len(t, errs, 4)
	assert.Empty(t, api.Calls(), "validation failures never reach the network")
}

func TestPaymentSectionAddCardTokenizeFailure(t *testing.T) {
	api := &mockPaymentAPI{}

	var gotErr error
	section := NewPaymentSection(PaymentSectionConfig{
		API:       api,
		Tokenizer: &mockTokenizer{err: errBoom},
		OnError:   func(err error) { gotErr = err },
	})

	errs := section.AddCard(context.Background(), validCardForm())
	require.Contains(t, errs, models.PaymentFieldGeneral)
	assert.ErrorIs(t, gotErr, errBoom)
}

func TestPaymentSectionDeleteRequiresConfirmation(t *testing.T) {
	api := &mockPaymentAPI{}
	section := NewPaymentSection(PaymentSectionConfig{
		API:     api,
		Confirm: func(string) bool { return false },
	})

	section.Delete(context.Background(), "pm_1")
	assert.Empty(t, api.Calls())
}

func TestPaymentSectionDeleteSelectedClearsSelection(t *testing.T) {
	api := &mockPaymentAPI{
		methods: []models.SavedPaymentMethod{{ID: "pm_1", IsDefault: true}},
	}

	var selected []string
	section := NewPaymentSection(PaymentSectionConfig{
		API:      api,
		OnSelect: func(id string) { selected = append(selected, id) },
		Confirm:  func(string) bool { return true },
	})
	section.Start(context.Background())
	require.Equal(t, "pm_1", section.SelectedID())

	api.methods = nil
	section.Delete(context.Background(), "pm_1")

	assert.Empty(t, section.SelectedID())
	assert.Equal(t, []string{"pm_1", ""}, selected, "parent is notified with an empty selection")
}

func TestPaymentSectionSetDefaultRefreshesList(t *testing.T) {
	api := &mockPaymentAPI{
		methods: []models.SavedPaymentMethod{{ID: "pm_1"}, {ID: "pm_2"}},
	}
	section := NewPaymentSection(PaymentSectionConfig{API: api})
	section.Start(context.Background())

	// The server decides the default flag; the refreshed list is the sole
	// source of truth.
	api.methods = []models.SavedPaymentMethod{{ID: "pm_1"}, {ID: "pm_2", IsDefault: true}}
	section.SetDefault(context.Background(), "pm_2")

	methods := section.Methods()
	require.Len(t, methods, 2)
	assert.True(t, methods[1].IsDefault)
	assert.Contains(t, api.Calls(), "default:pm_2")
}

func TestPaymentSectionClosedAppliesNoUpdates(t *testing.T) {
	api := &mockPaymentAPI{
		methods: []models.SavedPaymentMethod{{ID: "pm_1", IsDefault: true}},
	}

	var selected []string
	section := NewPaymentSection(PaymentSectionConfig{
		API:      api,
		OnSelect: func(id string) { selected = append(selected, id) },
	})

	section.Close()
	section.Start(context.Background())

	assert.Empty(t, selected)
	assert.Empty(t, section.Methods())
}

func TestPaymentSectionRefreshBusLifecycle(t *testing.T) {
	bus := refresh.NewBus()
	api := &mockPaymentAPI{}
	section := NewPaymentSection(PaymentSectionConfig{API: api, Bus: bus})

	section.Start(context.Background())
	assert.Equal(t, 1, bus.Len())

	bus.Notify()
	assert.Equal(t, []string{"get", "get"}, api.Calls())

	section.Close()
	assert.Equal(t, 0, bus.Len(), "unmount releases the subscription")
}
