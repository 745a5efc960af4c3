// Package messaging publica eventos de facturación y alertas de stock.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/pos-api/internal/application/billing"
	"github.com/jhoicas/pos-api/pkg/logger"
	kafkaGo "github.com/segmentio/kafka-go"
)

var (
	_ billing.EventPublisher = (*KafkaPublisher)(nil)
	_ billing.EventPublisher = (*LogPublisher)(nil)
)

// KafkaPublisher escribe eventos JSON en Kafka. Un solo Writer para todos los tópicos.
type KafkaPublisher struct {
	writer *kafkaGo.Writer
}

// NewKafkaPublisher crea el publisher sobre los brokers dados.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(brokers...),
		Balancer:               &kafkaGo.LeastBytes{},
		RequiredAcks:           kafkaGo.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

// PublishEvent serializa event y lo escribe en topic con la clave dada.
func (p *KafkaPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafkaGo.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
}

// Close vacía y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher se usa cuando no hay brokers configurados: deja el evento en el log.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publisher.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log.Component("events")}
}

func (p *LogPublisher) PublishEvent(_ context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	p.log.Info().Str("topic", topic).Str("key", key).RawJSON("event", payload).Msg("evento")
	return nil
}
