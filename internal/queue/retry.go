package queue

import (
	"context"

	"github.com/eldarhac/GraphMind/pkg/logger"
	"github.com/eldarhac/GraphMind/pkg/metrics"

	"github.com/rabbitmq/amqp091-go"
)

const (
	// MaxRetries is how often a failed message is retried before it goes to
	// the dead-letter queue.
	MaxRetries = 10

	retriesHeader = "x-retries"
)

func retryCount(headers amqp091.Table) int {
	switch v := headers[retriesHeader].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}

// nextRoute decides where a failed message goes next and returns the
// headers to send it with.
func nextRoute(queueName string, headers amqp091.Table) (string, amqp091.Table, bool) {
	retries := retryCount(headers)
	if retries >= MaxRetries {
		return queueName + "_dlq", headers, true
	}

	out := amqp091.Table{}
	for k, v := range headers {
		out[k] = v
	}
	out[retriesHeader] = int32(retries + 1)
	return queueName + "_retry", out, false
}

// HandleProcessingError moves a failed message to its retry queue, or to
// the dead-letter queue once it ran out of retries. The original delivery
// is acked only after the copy was published.
func HandleProcessingError(ctx context.Context, ch *amqp091.Channel, msg amqp091.Delivery, queueName string) {
	target, headers, dead := nextRoute(queueName, msg.Headers)
	outcome := "retry"
	if dead {
		outcome = "dead_letter"
		logger.Warn("[Queue] Sending message to DLQ", "dlq", target)
	}

	err := ch.PublishWithContext(ctx, "", target, false, false, amqp091.Publishing{
		ContentType:  msg.ContentType,
		Body:         msg.Body,
		Headers:      headers,
		DeliveryMode: amqp091.Persistent,
	})
	if err != nil {
		logger.Error("[Queue] Failed to republish message", "queue", target, "err", err)
		_ = msg.Nack(false, true)
		return
	}
	metrics.WorkerJobs.WithLabelValues(queueName, outcome).Inc()
	_ = msg.Ack(false)
}
