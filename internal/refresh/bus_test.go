package refresh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusNotifiesSubscribers(t *testing.T) {
	bus := NewBus()

	var a, b int
	unsubA := bus.Subscribe(func() { a++ })
	bus.Subscribe(func() { b++ })

	bus.Notify()
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	unsubA()
	bus.Notify()
	assert.Equal(t, 1, a, "unsubscribed consumer no longer fires")
	assert.Equal(t, 2, b)
	assert.Equal(t, 1, bus.Len())
}

func TestBusDoubleUnsubscribe(t *testing.T) {
	bus := NewBus()
	unsub := bus.Subscribe(func() {})

	unsub()
	unsub()
	assert.Equal(t, 0, bus.Len())
}
