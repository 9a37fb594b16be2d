package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// Publisher delivers reservation events to a broker.  Callers treat a
// publish error as non-fatal: the reservation is already committed.
type Publisher interface {
	PublishReservationCreated(ctx context.Context, ev ReservationCreatedEvent) error
	Close() error
}

// NoopPublisher drops every event.  It is used when EVENTS_DRIVER=none.
type NoopPublisher struct{}

func (NoopPublisher) PublishReservationCreated(context.Context, ReservationCreatedEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }

// RabbitPublisher publishes persistent JSON messages to the durable
// reservation.created queue through the default exchange.  One connection
// and channel are held for the lifetime of the publisher.
type RabbitPublisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *log.Entry
}

// NewRabbitPublisher dials url and declares the queue (idempotent).
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		ReservationCreatedQueue, // name
		true,                    // durable
		false,                   // autoDelete
		false,                   // exclusive
		false,                   // noWait
		nil,                     // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &RabbitPublisher{
		conn:   conn,
		ch:     ch,
		logger: log.WithField("component", "rabbitmq-publisher"),
	}, nil
}

// PublishReservationCreated marshals ev and publishes it as a persistent message.
func (p *RabbitPublisher) PublishReservationCreated(ctx context.Context, ev ReservationCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", ReservationCreatedQueue, false, false, pub); err != nil {
		p.logger.WithError(err).WithField("reservation_id", ev.ReservationID).Error("publish failed")
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// KafkaPublisher sends events to a Kafka topic keyed by owner id, so the
// events of one user stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *log.Entry
}

// NewKafkaPublisher creates an idempotent sync producer for brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return newKafkaPublisher(producer, topic), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = ReservationCreatedQueue
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   log.WithField("component", "kafka-publisher"),
	}
}

// PublishReservationCreated sends ev and waits for the broker acknowledgement.
func (p *KafkaPublisher) PublishReservationCreated(_ context.Context, ev ReservationCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	key := strconv.FormatUint(ev.OwnerID, 10)
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(body),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic": p.topic,
			"key":   key,
		}).Error("failed to send message to kafka")
		return fmt.Errorf("send message: %w", err)
	}
	p.logger.WithFields(log.Fields{
		"topic":     p.topic,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	}).Debug("message sent to kafka")
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

var (
	_ Publisher = NoopPublisher{}
	_ Publisher = (*RabbitPublisher)(nil)
	_ Publisher = (*KafkaPublisher)(nil)
)
