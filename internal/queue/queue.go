package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/eldarhac/GraphMind/internal/util"
	"github.com/eldarhac/GraphMind/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	EmbeddingQueue = "embedding_queue"
	SnapshotQueue  = "snapshot_queue"

	retryDelayMs = 10000
)

// Queues lists every work queue the worker consumes.
var Queues = []string{EmbeddingQueue, SnapshotQueue}

// EmbeddingJobMsg asks the worker to (re)compute profile embeddings.
// Empty PersonIDs selects everyone.
type EmbeddingJobMsg struct {
	JobID       string   `json:"job_id"`
	PersonIDs   []string `json:"person_ids,omitempty"`
	OnlyMissing bool     `json:"only_missing"`
}

// SnapshotExportMsg asks the worker to write the current network to the
// object store below Prefix.
type SnapshotExportMsg struct {
	JobID  string `json:"job_id"`
	Prefix string `json:"prefix"`
}

func Init() *amqp091.Connection {
	connURL := util.GetEnv("RABBITMQ_URL")
	if connURL == "" {
		connURL = fmt.Sprintf(
			"amqp://%s:%s@%s:%s/",
			util.GetEnvString("RABBITMQ_USER", "guest"),
			util.GetEnvString("RABBITMQ_PASSWORD", "guest"),
			util.GetEnvString("RABBITMQ_HOST", "localhost"),
			util.GetEnvString("RABBITMQ_PORT", "5672"),
		)
	}

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

// SetupQueues declares every queue with a dead-letter queue and a retry
// queue that hands messages back after a delay.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err := ch.QueueDeclare(
			retryName,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			amqp091.Table{
				"x-message-ttl":             int32(retryDelayMs),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("declare %s: %w", retryName, err)
		}
	}

	return nil
}

// Publisher enqueues a message body on a named queue.
type Publisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}

// ChannelPublisher publishes persistent messages through an AMQP channel.
type ChannelPublisher struct {
	ch *amqp091.Channel
}

func NewChannelPublisher(ch *amqp091.Channel) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, queueName string, body []byte) error {
	return p.ch.PublishWithContext(ctx, "", queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	})
}
