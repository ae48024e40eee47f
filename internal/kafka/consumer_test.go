package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"checkout-gateway/internal/models"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockConsumerGroupSession struct {
	mock.Mock
}

func (m *mockConsumerGroupSession) Claims() map[string][]int32 {
	args := m.Called()
	return args.Get(0).(map[string][]int32)
}

func (m *mockConsumerGroupSession) MemberID() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockConsumerGroupSession) GenerationID() int32 {
	args := m.Called()
	return int32(args.Int(0))
}

func (m *mockConsumerGroupSession) MarkOffset(topic string, partition int32, offset int64, metadata string) {
	m.Called(topic, partition, offset, metadata)
}

func (m *mockConsumerGroupSession) Commit() {
	m.Called()
}

func (m *mockConsumerGroupSession) ResetOffset(topic string, partition int32, offset int64, metadata string) {
	m.Called(topic, partition, offset, metadata)
}

func (m *mockConsumerGroupSession) MarkMessage(msg *sarama.ConsumerMessage, metadata string) {
	m.Called(msg, metadata)
}

func (m *mockConsumerGroupSession) Context() context.Context {
	args := m.Called()
	return args.Get(0).(context.Context)
}

type mockConsumerGroupClaim struct {
	mock.Mock
}

func (m *mockConsumerGroupClaim) Topic() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockConsumerGroupClaim) Partition() int32 {
	args := m.Called()
	return int32(args.Int(0))
}

func (m *mockConsumerGroupClaim) InitialOffset() int64 {
	args := m.Called()
	return int64(args.Int(0))
}

func (m *mockConsumerGroupClaim) HighWaterMarkOffset() int64 {
	args := m.Called()
	return int64(args.Int(0))
}

func (m *mockConsumerGroupClaim) Messages() <-chan *sarama.ConsumerMessage {
	args := m.Called()
	return args.Get(0).(chan *sarama.ConsumerMessage)
}

func TestOrderConsumerHandler_ProcessesEvent(t *testing.T) {
	event := &models.OrderEvent{
		OrderID:     "order_test_1",
		CustomerID:  "cus_1",
		AmountMinor: 4200,
		Currency:    "eur",
		CreatedAt:   time.Now(),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var received *models.OrderEvent
	handler := &orderConsumerHandler{handler: func(e *models.OrderEvent) error {
		received = e
		return nil
	}}

	session := &mockConsumerGroupSession{}
	session.On("MarkMessage", mock.Anything, "").Return()

	msgChan := make(chan *sarama.ConsumerMessage, 1)
	msgChan <- &sarama.ConsumerMessage{
		Topic: "order-created",
		Value: payload,
	}
	close(msgChan)

	claim := &mockConsumerGroupClaim{}
	claim.On("Messages").Return(msgChan)

	require.NoError(t, handler.ConsumeClaim(session, claim))

	require.NotNil(t, received)
	assert.Equal(t, "order_test_1", received.OrderID)
	assert.Equal(t, int64(4200), received.AmountMinor)
	session.AssertCalled(t, "MarkMessage", mock.Anything, "")
}

func TestOrderConsumerHandler_SkipsMalformedMessage(t *testing.T) {
	handlerCalled := false
	handler := &orderConsumerHandler{handler: func(*models.OrderEvent) error {
		handlerCalled = true
		return nil
	}}

	session := &mockConsumerGroupSession{}

	msgChan := make(chan *sarama.ConsumerMessage, 1)
	msgChan <- &sarama.ConsumerMessage{
		Topic: "order-created",
		Value: []byte("not json"),
	}
	close(msgChan)

	claim := &mockConsumerGroupClaim{}
	claim.On("Messages").Return(msgChan)

	require.NoError(t, handler.ConsumeClaim(session, claim))

	// Malformed messages are skipped without being marked
	assert.False(t, handlerCalled)
	session.AssertNotCalled(t, "MarkMessage", mock.Anything, mock.Anything)
}

func TestOrderConsumerHandler_HandlerErrorLeavesMessageUnmarked(t *testing.T) {
	event := &models.OrderEvent{OrderID: "order_err"}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	handler := &orderConsumerHandler{handler: func(*models.OrderEvent) error {
		return assert.AnError
	}}

	session := &mockConsumerGroupSession{}

	msgChan := make(chan *sarama.ConsumerMessage, 1)
	msgChan <- &sarama.ConsumerMessage{
		Topic: "order-created",
		Value: payload,
	}
	close(msgChan)

	claim := &mockConsumerGroupClaim{}
	claim.On("Messages").Return(msgChan)

	require.NoError(t, handler.ConsumeClaim(session, claim))
	session.AssertNotCalled(t, "MarkMessage", mock.Anything, mock.Anything)
}
