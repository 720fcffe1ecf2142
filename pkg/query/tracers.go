package query

import (
	"time"

	"github.com/eldarhac/GraphMind/pkg/logger"
	"github.com/eldarhac/GraphMind/pkg/metrics"
)

// MetricsTracer exports trace events as Prometheus metrics.
type MetricsTracer struct{}

func (MetricsTracer) Record(event TraceEvent) {
	switch event.Kind {
	case TraceEventCollaboratorCall:
		metrics.CollaboratorCalls.WithLabelValues(event.Collaborator, outcome(event.ErrorKind)).Inc()
	case TraceEventDegraded:
		metrics.DegradedQueries.WithLabelValues(event.ErrorKind).Inc()
	case TraceEventCompleted:
		metrics.QueriesTotal.WithLabelValues(string(event.Category), string(event.Operation), outcome(event.ErrorKind)).Inc()
		metrics.QueryDuration.WithLabelValues(string(event.Category)).Observe(
			(time.Duration(event.DurationMs) * time.Millisecond).Seconds(),
		)
	}
}

// LogTracer writes trace events to the debug log.
type LogTracer struct{}

func (LogTracer) Record(event TraceEvent) {
	switch event.Kind {
	case TraceEventTransition:
		logger.Debug("[Query] State", "from", event.From, "to", event.To)
	case TraceEventResolvedEntities:
		logger.Debug("[Query] Resolved entities", "entities", event.Entities)
	case TraceEventCollaboratorCall:
		if event.Error != "" {
			logger.Warn("[Query] Collaborator failed", "collaborator", event.Collaborator, "ms", event.DurationMs, "err", event.Error)
			return
		}
		logger.Debug("[Query] Collaborator call", "collaborator", event.Collaborator, "ms", event.DurationMs)
	case TraceEventDegraded:
		logger.Info("[Query] Degraded answer", "kind", event.ErrorKind, "reason", event.Error)
	case TraceEventCompleted:
		logger.Info("[Query] Completed", "category", event.Category, "operation", event.Operation, "ms", event.DurationMs, "error", event.ErrorKind)
	}
}

func outcome(errorKind string) string {
	if errorKind == "" {
		return "ok"
	}
	return errorKind
}
