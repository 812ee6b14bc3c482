package kafka

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"

	"github.com/theazran/tagihYT/model"
)

const statusTopic = "transaction.status"

type Producer struct {
	producer sarama.SyncProducer
}

// NewProducer connects a sync producer, retrying while the broker comes
// up. An empty broker address disables Kafka entirely.
func NewProducer(broker string) *Producer {
	if broker == "" {
		log.Println("KAFKA_BROKER not set — status events disabled")
		return nil
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	var (
		client sarama.SyncProducer
		err    error
	)
	for i := 1; i <= 5; i++ {
		client, err = sarama.NewSyncProducer([]string{broker}, config)
		if err == nil {
			log.Printf("Kafka producer connected to %s", broker)
			return &Producer{producer: client}
		}

		log.Printf("Failed to connect to Kafka (try %d/5): %v", i, err)
		time.Sleep(3 * time.Second)
	}

	log.Printf("Could not connect to Kafka after 5 attempts — status events disabled: %v", err)
	return nil
}

// PublishStatusChanged emits a transaction_status_changed event. Safe to
// call on a nil producer.
func (p *Producer) PublishStatusChanged(tx *model.Transaction, previous string) {
	if p == nil || p.producer == nil {
		return
	}

	event := map[string]interface{}{
		"event_type": "transaction_status_changed",
		"data": map[string]interface{}{
			"order_id":        tx.OrderID,
			"gateway":         tx.Gateway,
			"month":           tx.Month,
			"amount":          tx.Amount,
			"previous_status": previous,
			"status":          tx.Status,
			"updated_at":      tx.UpdatedAt.Format(time.RFC3339),
		},
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal status event: %v", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: statusTopic,
		Key:   sarama.StringEncoder(tx.OrderID),
		Value: sarama.ByteEncoder(messageBytes),
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		log.Printf("Failed to send status event for %s: %v", tx.OrderID, err)
	}
}

func (p *Producer) Close() {
	if p == nil || p.producer == nil {
		return
	}
	if err := p.producer.Close(); err != nil {
		log.Printf("Kafka producer close: %v", err)
	}
}
