package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"skyfare/pkg/logger"
)

// Publisher publishes ticket deliveries for the email workers.
type Publisher interface {
	PublishTicketDelivery(ctx context.Context, delivery *TicketDelivery) error
	Close() error
	HealthCheck(ctx context.Context) error
}

// KafkaProducerConfig contains configuration for the Kafka delivery producer
type KafkaProducerConfig struct {
	Brokers          []string
	DeliveryTopic    string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		DeliveryTopic:    "ticket-delivery",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// KafkaPublisher publishes ticket deliveries to Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

func NewKafkaPublisher(config *KafkaProducerConfig) (Publisher, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one recipient's deliveries ordered.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log := logger.GetDefault()
	log.Info("ticket delivery producer created", "topic", config.DeliveryTopic)

	return &KafkaPublisher{
		producer: producer,
		config:   config,
		log:      log,
	}, nil
}

func (kp *KafkaPublisher) PublishTicketDelivery(ctx context.Context, delivery *TicketDelivery) error {
	messageBytes, err := delivery.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal delivery: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.DeliveryTopic,
		Key:       sarama.StringEncoder(delivery.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Timestamp: delivery.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send delivery to Kafka: %w", err)
	}

	kp.log.Info("ticket delivery published",
		"topic", kp.config.DeliveryTopic,
		"partition", partition,
		"offset", offset,
		"ticket_id", delivery.TicketID,
		"recipient", delivery.RecipientEmail,
	)
	return nil
}

func (kp *KafkaPublisher) Close() error {
	return kp.producer.Close()
}

func (kp *KafkaPublisher) HealthCheck(ctx context.Context) error {
	if kp.producer == nil {
		return fmt.Errorf("producer not initialized")
	}
	return nil
}

// LogPublisher is used when Kafka is disabled; deliveries are logged
// and dropped.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher() Publisher {
	return &LogPublisher{log: logger.GetDefault()}
}

func (lp *LogPublisher) PublishTicketDelivery(ctx context.Context, delivery *TicketDelivery) error {
	lp.log.Info("ticket delivery skipped, kafka disabled",
		"ticket_id", delivery.TicketID,
		"recipient", delivery.RecipientEmail,
	)
	return nil
}

func (lp *LogPublisher) Close() error { return nil }

func (lp *LogPublisher) HealthCheck(ctx context.Context) error { return nil }
