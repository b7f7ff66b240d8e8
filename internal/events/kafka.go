package events

import (
	"context"
	"encoding/json"
	"log"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/orders"
)

// Publisher emits order-created events keyed by order id.
type Publisher struct {
	writer *kafkaGo.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafkaGo.Writer{
			Addr:     kafkaGo.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafkaGo.LeastBytes{},
		},
	}
}

func (p *Publisher) OrderCreated(ctx context.Context, order models.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(order.ID.Hex()),
		Value: payload,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

type statusUpdate struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// StatusConsumer applies the administrative order-status feed. This is
// the only path that mutates an order after creation.
type StatusConsumer struct {
	reader *kafkaGo.Reader
	orders *orders.Service
}

func NewStatusConsumer(brokers []string, topic, groupID string, svc *orders.Service) *StatusConsumer {
	return &StatusConsumer{
		reader: kafkaGo.NewReader(kafkaGo.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
		orders: svc,
	}
}

// Run blocks until the context is cancelled. Malformed or unknown
// messages are logged and skipped; the feed is never a fatal error.
func (c *StatusConsumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("[EVENTS] [INFO] status consumer shutting down")
				return
			}
			log.Println("[EVENTS] [ERROR] status read failed:", err)
			continue
		}

		var update statusUpdate
		if err := json.Unmarshal(msg.Value, &update); err != nil {
			log.Println("[EVENTS] [ERROR] status payload invalid:", err)
			continue
		}

		orderID, err := primitive.ObjectIDFromHex(update.OrderID)
		if err != nil {
			log.Println("[EVENTS] [ERROR] status orderId invalid:", update.OrderID)
			continue
		}

		if err := c.orders.UpdateStatus(ctx, orderID, update.Status); err != nil {
			log.Println("[EVENTS] [ERROR] status update failed:", err)
			continue
		}

		log.Println("[EVENTS] [INFO] order status updated:", update.OrderID, "->", update.Status)
	}
}

func (c *StatusConsumer) Close() error {
	return c.reader.Close()
}
