package kafka

import (
	"encoding/json"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// Producer publishes payment lifecycle events for downstream consumers
// (certificate issuing, notifications). Delivery is fire-and-forget from the
// caller's point of view; a publish failure never rolls back a committed
// payment transition.
type Producer struct {
	producer sarama.SyncProducer
}

func NewProducer(broker string) *Producer {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer([]string{broker}, config)
	if err != nil {
		log.Fatalf("Failed to start Kafka producer: %v", err)
	}

	log.Info("Kafka producer initialized")
	return &Producer{producer: producer}
}

// Publish sends one event to the topic named after the event type
// (payment.settled, payment.failed, payment.refunded).
func (p *Producer) Publish(eventType string, data map[string]interface{}) {
	event := map[string]interface{}{
		"event_type": eventType,
		"data":       data,
	}

	raw, err := json.Marshal(event)
	if err != nil {
		log.Errorf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: eventType,
		Value: sarama.ByteEncoder(raw),
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		log.Errorf("Failed to publish %s event: %v", eventType, err)
		return
	}

	log.WithField("event", eventType).Debug("Published payment event")
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
