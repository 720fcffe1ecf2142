package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eldarhac/GraphMind/internal/queue"
	"github.com/eldarhac/GraphMind/internal/storage"
	"github.com/eldarhac/GraphMind/internal/util"
	"github.com/eldarhac/GraphMind/pkg/leaselock"
	"github.com/eldarhac/GraphMind/pkg/logger"
	"github.com/eldarhac/GraphMind/pkg/logger/console"
	"github.com/eldarhac/GraphMind/pkg/metrics"
	"github.com/eldarhac/GraphMind/pkg/store"
	"github.com/eldarhac/GraphMind/pkg/store/file"
	pgxstore "github.com/eldarhac/GraphMind/pkg/store/pgx"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
		JSON:  util.GetEnvBool("LOG_JSON", false),
	})
	logger.Init(consoleLogger)

	// Init s3 client
	objects, err := storage.NewS3StoreFromEnv(ctx)
	if err != nil {
		logger.Fatal("Could not create S3 client", "err", err)
	}

	// GraphAiClient
	aiClient, err := util.NewAIClientFromEnv()
	if err != nil {
		logger.Fatal("Could not create AI client", "err", err)
	}

	// Init pgx client
	poolConfig, err := pgxpool.ParseConfig(util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Invalid DATABASE_URL", "err", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pgConn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	dbStorage := pgxstore.NewGraphDBStorage(pgConn)

	hostname, _ := os.Hostname()
	locks := leaselock.New(pgConn, hostname, leaselock.WithTTL(util.GetEnvDuration("JOB_LEASE_TTL", 5*time.Minute)))

	processors := map[string]queue.Processor{
		queue.EmbeddingQueue: &queue.Leased{
			Locks: locks,
			Key:   queue.EmbeddingQueue,
			Next: &queue.EmbeddingWorker{
				AI:        aiClient,
				Storage:   dbStorage,
				BatchSize: util.GetEnvNumeric("EMBED_BATCH_SIZE", 32),
				Parallel:  util.GetEnvNumeric("AI_PARALLEL_REQ", 4),
			},
		},
		queue.SnapshotQueue: &queue.Leased{
			Locks: locks,
			Key:   queue.SnapshotQueue,
			Next: &queue.SnapshotExporter{
				Source: dbStorage,
				Target: func(prefix string) store.GraphWriter {
					return file.NewGraphFileStorage(objects, prefix)
				},
			},
		},
	}

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()
	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	// A single consumer channel with prefetch=1 delivers one message at a
	// time across all queues.
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	type queuedMessage struct {
		msg       amqp.Delivery
		queueName string
	}

	messageChan := make(chan queuedMessage)

	for _, queueName := range queue.Queues {
		go func(qName string) {
			msgs, err := consumerCh.Consume(
				qName,
				fmt.Sprintf("%s_consumer", qName),
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,   // args
			)
			if err != nil {
				logger.Fatal("Failed to start consuming", "queue", qName, "err", err)
			}

			for {
				select {
				case <-ctx.Done():
					logger.Info("[Worker] Stopping consumer", "queue", qName)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("[Worker] Message channel closed", "queue", qName)
						return
					}
					select {
					case messageChan <- queuedMessage{msg: msg, queueName: qName}:
					case <-ctx.Done():
						return
					}
				}
			}
		}(queueName)
	}

	if port := util.GetEnv("METRICS_PORT"); port != "" {
		metricsServer := &http.Server{Addr: ":" + port, Handler: promhttp.Handler()}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("[Worker] Metrics server failed", "err", err)
			}
		}()
		defer metricsServer.Close()
	}

	logger.Info("[Worker] Listening for messages", "queues", queue.Queues)

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("[Worker] Stopping message processor")
				return
			case qm := <-messageChan:
				startTime := time.Now()
				logger.Info("[Worker] Received message", "queue", qm.queueName)

				var processingErr error
				if p, ok := processors[qm.queueName]; ok {
					processingErr = p.ProcessMessage(ctx, qm.msg.Body)
				} else {
					processingErr = fmt.Errorf("no processor for queue %s", qm.queueName)
				}

				// On error send to retry or dead-letter, otherwise ack the message
				if processingErr != nil {
					logger.Error("[Worker] Error processing message", "queue", qm.queueName, "err", processingErr)
					queue.HandleProcessingError(ctx, consumerCh, qm.msg, qm.queueName)
				} else {
					if err := qm.msg.Ack(false); err != nil {
						logger.Error("[Worker] Failed to ack message", "err", err)
					}
					metrics.WorkerJobs.WithLabelValues(qm.queueName, "ok").Inc()
					logger.Info("[Worker] Message processed successfully", "queue", qm.queueName)
				}

				aiMetrics := aiClient.GetMetrics()
				logger.Info(
					"[Worker] AI Metrics",
					"input_tokens", aiMetrics.InputTokens,
					"output_tokens", aiMetrics.OutputTokens,
					"total_tokens", aiMetrics.TotalTokens,
					"duration", formatDuration(time.Duration(aiMetrics.DurationMs)*time.Millisecond),
				)
				logger.Info("[Worker] Processing time", "duration", formatDuration(time.Since(startTime)))
				aiClient.ResetMetrics()
			}
		}
	}()

	<-ctx.Done()
	logger.Info("[Worker] Shutdown signal received, exiting...")
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
