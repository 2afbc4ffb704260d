package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"skyfare/pkg/logger"
)

type Consumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	AutoCommit           bool
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "skyfare-delivery-workers",
		Topics:               []string{"ticket-delivery"},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    5 * time.Minute,
		AutoCommit:           true,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

type KafkaDeliveryConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	emailService  EmailService
	topics        []string
	log           *logger.Logger
	ctx           context.Context
	cancel        context.CancelFunc
}

func NewKafkaDeliveryConsumer(config *ConsumerConfig, emailService EmailService) (Consumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if config.AutoCommit {
		saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
		saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &KafkaDeliveryConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		emailService:  emailService,
		topics:        config.Topics,
		log:           logger.GetDefault(),
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func (kdc *KafkaDeliveryConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	kdc.log.Info("starting delivery consumer workers", "workers", numWorkers, "topics", kdc.topics)

	go kdc.handleErrors()

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			kdc.runWorker(ctx, workerID)
		}(i)
	}
	return nil
}

func (kdc *KafkaDeliveryConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &deliveryGroupHandler{
		consumer:     kdc,
		workerID:     workerID,
		emailService: kdc.emailService,
	}

	for {
		select {
		case <-ctx.Done():
			kdc.log.Info("delivery worker shutting down", "worker", workerID)
			return
		default:
			if err := kdc.consumerGroup.Consume(ctx, kdc.topics, handler); err != nil {
				kdc.log.WithError(err).Error("delivery worker consume failed", "worker", workerID)
				time.Sleep(time.Second)
			}
		}
	}
}

func (kdc *KafkaDeliveryConsumer) handleErrors() {
	for err := range kdc.consumerGroup.Errors() {
		kdc.log.WithError(err).Error("delivery consumer group error")
	}
}

func (kdc *KafkaDeliveryConsumer) Stop() error {
	kdc.cancel()
	if err := kdc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	kdc.log.Info("delivery consumer stopped")
	return nil
}

func (kdc *KafkaDeliveryConsumer) HealthCheck(ctx context.Context) error {
	select {
	case <-kdc.ctx.Done():
		return fmt.Errorf("consumer context is cancelled")
	default:
		if kdc.emailService == nil {
			return fmt.Errorf("email service not configured")
		}
		return nil
	}
}

type deliveryGroupHandler struct {
	consumer     *KafkaDeliveryConsumer
	workerID     int
	emailService EmailService
}

func (h *deliveryGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *deliveryGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *deliveryGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				h.consumer.log.WithError(err).Error("failed to process delivery", "worker", h.workerID)
			} else {
				session.MarkMessage(message, "")
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *deliveryGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var delivery TicketDelivery
	if err := json.Unmarshal(message.Value, &delivery); err != nil {
		return fmt.Errorf("failed to unmarshal delivery: %w", err)
	}

	if err := h.sendWithRetry(ctx, &delivery); err != nil {
		return err
	}

	h.consumer.log.Info("ticket email sent",
		"worker", h.workerID,
		"ticket_id", delivery.TicketID,
		"recipient", delivery.RecipientEmail,
	)
	return nil
}

func (h *deliveryGroupHandler) sendWithRetry(ctx context.Context, delivery *TicketDelivery) error {
	maxRetries := h.consumer.config.MaxRetries
	backoff := h.consumer.config.RetryBackoffDuration

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := h.emailService.SendTicketEmail(ctx, delivery)
		if err == nil {
			return nil
		}
		if attempt == maxRetries {
			return err
		}

		delay := backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
