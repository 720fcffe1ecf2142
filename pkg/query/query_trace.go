package query

import (
	"sync"

	"github.com/eldarhac/GraphMind/pkg/common"
)

type TraceEventKind string

const (
	TraceEventTransition       TraceEventKind = "transition"
	TraceEventResolvedEntities TraceEventKind = "resolved_entities"
	TraceEventCollaboratorCall TraceEventKind = "collaborator_call"
	TraceEventDegraded         TraceEventKind = "degraded"
	TraceEventCompleted        TraceEventKind = "completed"
)

// TraceEvent is an extensible event envelope for query tracing.
// Additive changes to this struct are backward compatible for implementers.
type TraceEvent struct {
	Kind TraceEventKind

	From State
	To   State

	Entities []string

	Collaborator string
	DurationMs   int64
	Error        string
	ErrorKind    string

	Category  common.Category
	Operation common.Operation
}

// Tracer is a sink for query tracing events.
//
// Implementers can forward events to logs, metrics, or tests.
type Tracer interface {
	Record(event TraceEvent)
}

// MultiTracer fan-outs trace events to multiple tracers.
type MultiTracer []Tracer

func (m MultiTracer) Record(event TraceEvent) {
	for _, t := range m {
		if t == nil {
			continue
		}
		t.Record(event)
	}
}

func RecordTransition(t Tracer, from, to State) {
	if t == nil {
		return
	}
	t.Record(TraceEvent{Kind: TraceEventTransition, From: from, To: to})
}

func RecordResolvedEntities(t Tracer, names ...string) {
	if t == nil {
		return
	}
	t.Record(TraceEvent{Kind: TraceEventResolvedEntities, Entities: names})
}

func RecordCollaboratorCall(t Tracer, name string, durationMs int64, err error) {
	if t == nil {
		return
	}
	ev := TraceEvent{Kind: TraceEventCollaboratorCall, Collaborator: name, DurationMs: durationMs}
	if err != nil {
		ev.Error = err.Error()
		ev.ErrorKind = ErrorKind(err)
	}
	t.Record(ev)
}

func RecordDegraded(t Tracer, err error) {
	if t == nil || err == nil {
		return
	}
	t.Record(TraceEvent{Kind: TraceEventDegraded, Error: err.Error(), ErrorKind: ErrorKind(err)})
}

func RecordCompleted(t Tracer, category common.Category, resp Response, err error) {
	if t == nil {
		return
	}
	ev := TraceEvent{
		Kind:       TraceEventCompleted,
		To:         resp.State,
		Category:   category,
		Operation:  resp.Operation,
		DurationMs: resp.ProcessingTimeMs,
	}
	if err != nil {
		ev.Error = err.Error()
		ev.ErrorKind = ErrorKind(err)
	}
	t.Record(ev)
}

// QueryTrace collects what happened during a single ProcessQuery call.
//
// QueryTrace is safe for concurrent use.
type QueryTrace struct {
	mu sync.Mutex

	states        []State
	entities      []string
	collaborators []string
	degraded      []string
	errorKind     string
}

type QueryTraceSnapshot struct {
	States        []State
	Entities      []string
	Collaborators []string
	Degraded      []string
	ErrorKind     string
}

func NewQueryTrace() *QueryTrace {
	return &QueryTrace{}
}

func (t *QueryTrace) Record(event TraceEvent) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch event.Kind {
	case TraceEventTransition:
		if len(t.states) == 0 {
			t.states = append(t.states, event.From)
		}
		t.states = append(t.states, event.To)
	case TraceEventResolvedEntities:
		t.entities = append(t.entities[:0], event.Entities...)
	case TraceEventCollaboratorCall:
		t.collaborators = append(t.collaborators, event.Collaborator)
	case TraceEventDegraded:
		t.degraded = append(t.degraded, event.ErrorKind)
	case TraceEventCompleted:
		t.errorKind = event.ErrorKind
	default:
		return
	}
}

func (t *QueryTrace) Snapshot() QueryTraceSnapshot {
	if t == nil {
		return QueryTraceSnapshot{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return QueryTraceSnapshot{
		States:        append([]State(nil), t.states...),
		Entities:      append([]string(nil), t.entities...),
		Collaborators: append([]string(nil), t.collaborators...),
		Degraded:      append([]string(nil), t.degraded...),
		ErrorKind:     t.errorKind,
	}
}
