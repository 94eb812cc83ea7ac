package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"inventory-manager/internal/config"
	"inventory-manager/internal/logger"
)

// Publisher emits domain events after their transaction commits.
type Publisher interface {
	PublishStockMovementRecorded(ctx context.Context, event StockMovementRecordedEvent) error
	PublishSalesOrderCreated(ctx context.Context, event SalesOrderCreatedEvent) error
	PublishSalesOrderFulfilled(ctx context.Context, event SalesOrderFulfilledEvent) error
	Close() error
}

// KafkaPublisher wraps a Kafka sync producer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	now      func() time.Time
}

// NewPublisher returns a Kafka publisher, or a NopPublisher when no brokers are configured.
func NewPublisher(cfg config.KafkaConfig) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		logger.Logger.Info().Msg("No Kafka brokers configured, domain events disabled")
		return NopPublisher{}, nil
	}

	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = 3
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Msg("Kafka publisher initialized")

	return newKafkaPublisher(producer), nil
}

func newKafkaPublisher(producer sarama.SyncProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, now: time.Now}
}

func (p *KafkaPublisher) PublishStockMovementRecorded(ctx context.Context, event StockMovementRecordedEvent) error {
	return p.publish(ctx, TopicStockMovements, EventTypeStockMovementRecorded, &event.Metadata, &event,
		attribute.Int("movement.id", event.MovementID),
		attribute.Int("product.id", event.ProductID),
		attribute.Int("warehouse.id", event.WarehouseID),
	)
}

func (p *KafkaPublisher) PublishSalesOrderCreated(ctx context.Context, event SalesOrderCreatedEvent) error {
	return p.publish(ctx, TopicSalesOrders, EventTypeSalesOrderCreated, &event.Metadata, &event,
		attribute.Int("order.id", event.OrderID),
		attribute.String("order.number", event.OrderNumber),
	)
}

func (p *KafkaPublisher) PublishSalesOrderFulfilled(ctx context.Context, event SalesOrderFulfilledEvent) error {
	return p.publish(ctx, TopicSalesOrders, EventTypeSalesOrderFulfilled, &event.Metadata, &event,
		attribute.Int("order.id", event.OrderID),
		attribute.Int("warehouse.id", event.WarehouseID),
	)
}

// publish fills meta, marshals event (which embeds meta) and sends it keyed by
// company id, so one company's events stay ordered within a partition.
func (p *KafkaPublisher) publish(ctx context.Context, topic, eventType string, meta *Metadata, event any, attrs ...attribute.KeyValue) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", eventType),
			attribute.Int("company.id", meta.CompanyID),
		}, attrs...)...),
	)
	defer span.End()

	if meta.EventID == "" {
		meta.EventID = uuid.NewString()
	}
	meta.EventType = eventType
	meta.Timestamp = p.now().UTC()
	span.SetAttributes(attribute.String("event.id", meta.EventID))

	payload, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(meta.EventID)},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(strconv.Itoa(meta.CompanyID)),
		Value:   sarama.ByteEncoder(payload),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		return fmt.Errorf("failed to send %s to Kafka: %w", eventType, err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Debug(ctx).
		Str("event_id", meta.EventID).
		Str("event_type", eventType).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Int("company_id", meta.CompanyID).
		Msg("Domain event published")
	return nil
}

// Close closes the Kafka producer
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher discards events. Used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishStockMovementRecorded(context.Context, StockMovementRecordedEvent) error {
	return nil
}

func (NopPublisher) PublishSalesOrderCreated(context.Context, SalesOrderCreatedEvent) error {
	return nil
}

func (NopPublisher) PublishSalesOrderFulfilled(context.Context, SalesOrderFulfilledEvent) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
