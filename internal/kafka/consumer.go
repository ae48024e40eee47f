package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"checkout-gateway/internal/models"
	"github.com/IBM/sarama"
)

type Consumer struct {
	consumer sarama.ConsumerGroup
	topics   []string
}

func NewConsumer(brokers []string, groupID string) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	topics := []string{"order-created"}

	return &Consumer{
		consumer: consumer,
		topics:   topics,
	}, nil
}

func (c *Consumer) ConsumeOrders(ctx context.Context, handler func(*models.OrderEvent) error) error {
	consumerHandler := &orderConsumerHandler{handler: handler}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.consumer.Consume(ctx, c.topics, consumerHandler); err != nil {
				log.Printf("Error consuming messages: %v", err)
				return err
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.consumer.Close()
}

type orderConsumerHandler struct {
	handler func(*models.OrderEvent) error
}

func (h *orderConsumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *orderConsumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *orderConsumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event models.OrderEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			continue
		}

		if err := h.handler(&event); err != nil {
			log.Printf("Failed to handle order event: %v", err)
			continue
		}

		session.MarkMessage(message, "")
	}

	return nil
}
