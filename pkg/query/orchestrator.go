package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/graph"
	"github.com/eldarhac/GraphMind/pkg/logger"
	"github.com/eldarhac/GraphMind/pkg/resolver"
)

const (
	// DefaultApology is returned whenever a query fails.
	DefaultApology = "I encountered an issue processing your query. Could you please rephrase or try a different question?"

	msgNoPerson         = "I couldn't identify a person in your question. Could you mention them by name?"
	msgNoMatch          = "I've searched the network, but I could not find anyone matching the name '%s'."
	msgHighlightCleared = "I've cleared the highlights on the graph."

	clearCommand = "clear highlights"
)

// Orchestrator drives a question through classification, entity
// resolution, graph execution and explanation.
//
// An Orchestrator holds no per-query state and is safe for concurrent use.
type Orchestrator struct {
	c         Collaborators
	tracer    Tracer
	apology   string
	nameLimit int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTracer sets a tracer that receives the events of every query.
func WithTracer(t Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

// WithApology replaces the message returned when a query fails.
func WithApology(msg string) Option {
	return func(o *Orchestrator) {
		if msg != "" {
			o.apology = msg
		}
	}
}

// WithKnownNameLimit caps how many network names are handed to the intent
// extractor. Zero passes all names.
func WithKnownNameLimit(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.nameLimit = n
		}
	}
}

// NewOrchestrator creates an Orchestrator calling the given collaborators.
func NewOrchestrator(c Collaborators, opts ...Option) *Orchestrator {
	o := &Orchestrator{c: c, apology: DefaultApology}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type run struct {
	req    Request
	tracer Tracer
	state  State

	category common.Category
	intent   common.IntentRequest
	snapshot *graph.Snapshot
	entities []string
	result   graph.Result

	text   string
	action *VisualizationAction
}

func (r *run) transition(to State) {
	RecordTransition(r.tracer, r.state, to)
	r.state = to
}

// ProcessQuery answers a single question. It never returns an error: any
// failure, including a panic or a cancelled context, yields the apology
// with a nil action.
func (o *Orchestrator) ProcessQuery(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	r := &run{
		req:    req,
		tracer: MultiTracer{o.tracer, req.Tracer},
		state:  StateIdle,
	}

	var err error
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while %s: %v", r.state, p)
		}
		if err != nil {
			logger.Error("[Query] Query failed", "state", r.state, "kind", ErrorKind(err), "err", err)
			r.transition(StateError)
			resp = Response{
				ResponseText:     o.apology,
				Operation:        common.OperationGeneral,
				Action:           nil,
				ProcessingTimeMs: time.Since(start).Milliseconds(),
				State:            StateError,
			}
		}
		RecordCompleted(r.tracer, r.category, resp, err)
	}()

	err = o.drive(ctx, r)
	if err != nil {
		return resp
	}

	op := r.intent.Operation
	if op == "" {
		op = common.OperationGeneral
	}
	return Response{
		ResponseText:     r.text,
		Category:         r.category,
		Operation:        op,
		Action:           r.action,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		ResolvedEntities: r.entities,
		State:            r.state,
	}
}

func (o *Orchestrator) drive(ctx context.Context, r *run) error {
	if strings.EqualFold(strings.TrimSpace(r.req.Text), clearCommand) {
		r.text = msgHighlightCleared
		r.action = noAction()
		r.transition(StateDone)
		return nil
	}

	r.transition(StateClassifying)
	for !r.state.Terminal() {
		if err := ctx.Err(); err != nil {
			return downstream("context", err)
		}
		next, err := o.step(ctx, r)
		if err != nil {
			return err
		}
		r.transition(next)
	}
	return nil
}

func (o *Orchestrator) step(ctx context.Context, r *run) (State, error) {
	switch r.state {
	case StateClassifying:
		return o.classify(ctx, r)
	case StateExtracting:
		return o.extract(ctx, r)
	case StateResolving:
		return o.resolve(r)
	case StateExecuting:
		return o.execute(ctx, r)
	case StateSynthesizing:
		return o.synthesize(ctx, r)
	case StateDelegatingRelational:
		return o.delegate(ctx, r, "relational", o.c.Relational)
	case StateDelegatingKnowledge:
		return o.delegate(ctx, r, "knowledge", o.c.Knowledge)
	default:
		return StateError, fmt.Errorf("unexpected state %q", r.state)
	}
}

func (o *Orchestrator) classify(ctx context.Context, r *run) (State, error) {
	if o.c.Classifier == nil {
		return StateError, downstream("classifier", errors.New("not configured"))
	}

	var category common.Category
	err := o.call(r, "classifier", func() (err error) {
		category, err = o.c.Classifier.Classify(ctx, r.req.Text, r.req.History)
		return err
	})
	if err != nil {
		return StateError, err
	}

	category = common.ParseCategory(string(category))
	if !category.Valid() {
		logger.Warn("[Query] Unknown category, answering as knowledge question", "category", category)
		RecordDegraded(r.tracer, fmt.Errorf("%w: %q", ErrClassificationAmbiguous, category))
		category = common.CategoryKnowledgeQA
	}
	r.category = category

	switch category {
	case common.CategoryGraphQuery:
		return StateExtracting, nil
	case common.CategoryRelationalQuery:
		return StateDelegatingRelational, nil
	default:
		return StateDelegatingKnowledge, nil
	}
}

func (o *Orchestrator) extract(ctx context.Context, r *run) (State, error) {
	if o.c.Extractor == nil {
		return StateError, downstream("extractor", errors.New("not configured"))
	}

	r.snapshot = graph.NewSnapshot(r.req.Graph)

	names := r.snapshot.Names()
	if o.nameLimit > 0 && len(names) > o.nameLimit {
		names = names[:o.nameLimit]
	}

	var intent common.IntentRequest
	err := o.call(r, "extractor", func() (err error) {
		intent, err = o.c.Extractor.ExtractIntent(
			ctx,
			r.req.Text,
			r.req.History,
			r.req.CurrentUser.Name,
			names,
		)
		return err
	})
	if err != nil {
		return StateError, err
	}

	intent.Category = r.category
	r.intent = intent
	return StateResolving, nil
}

func (o *Orchestrator) resolve(r *run) (State, error) {
	r.entities = resolver.Resolve(
		r.intent.Entities,
		r.snapshot.Names(),
		r.req.CurrentUser.Name,
		r.intent.Operation,
	)
	RecordResolvedEntities(r.tracer, r.entities...)

	var short error
	switch r.intent.Operation {
	case common.OperationFindPath:
		if len(r.entities) < 2 {
			short = fmt.Errorf("%w: find_path resolved %d of 2 people", ErrInsufficientEntities, len(r.entities))
		}
	case common.OperationSelectNode:
		if len(r.entities) == 0 {
			short = fmt.Errorf("%w: select_node resolved nobody", ErrInsufficientEntities)
		}
	}
	if short == nil {
		return StateExecuting, nil
	}

	RecordDegraded(r.tracer, short)
	r.text = msgNoPerson
	if r.intent.Operation == common.OperationSelectNode {
		if raw := rawMentions(r.intent.Entities); len(raw) > 0 {
			r.text = fmt.Sprintf(msgNoMatch, strings.Join(raw, ", "))
		}
	}
	r.action = noAction()
	return StateDone, nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run) (State, error) {
	s := r.snapshot

	switch r.intent.Operation {
	case common.OperationFindPath:
		r.result = graph.ShortestPath(s, r.entities)
	case common.OperationRankNodes:
		r.result = graph.InfluenceRank(s, r.intent.Parameters.Topic)
	case common.OperationFindBridge:
		r.result = graph.BridgeDetect(s)
	case common.OperationSelectNode:
		r.result = graph.SelectByName(s, r.entities)
	case common.OperationRecommendPerson:
		r.result = graph.RecommendPeople(s, r.req.CurrentUser.ID)
	case common.OperationFindSimilar, common.OperationFindPotentialConnections:
		if o.c.Similarity == nil {
			return StateError, downstream("similarity", errors.New("not configured"))
		}
		err := o.call(r, "similarity", func() (err error) {
			r.result, err = o.similar(ctx, r)
			return err
		})
		if err != nil {
			return StateError, err
		}
	default:
		r.result = graph.Empty(r.intent.Operation)
	}

	if status, msg := r.result.Outcome(); status != graph.StatusOK {
		logger.Debug("[Query] Operation did not complete", "operation", r.intent.Operation, "status", status, "message", msg)
		if err := statusError(status); err != nil {
			RecordDegraded(r.tracer, fmt.Errorf("%w: %s", err, msg))
		}
	}
	return StateSynthesizing, nil
}

func (o *Orchestrator) similar(ctx context.Context, r *run) (graph.Result, error) {
	if r.intent.Operation == common.OperationFindSimilar {
		return graph.FindSimilar(ctx, r.snapshot, o.c.Similarity, r.entities)
	}

	target := r.req.CurrentUser.Name
	if len(r.entities) > 0 {
		target = r.entities[0]
	}
	return graph.PotentialConnections(ctx, r.snapshot, o.c.Similarity, target)
}

func (o *Orchestrator) synthesize(ctx context.Context, r *run) (State, error) {
	text, err := o.explain(ctx, r)
	if err != nil {
		return StateError, err
	}
	r.text = text
	r.action = Translate(r.result)
	return StateDone, nil
}

func (o *Orchestrator) delegate(ctx context.Context, r *run, name string, d Delegate) (State, error) {
	text := resolver.StripMentions(r.req.Text)

	var answer string
	err := o.call(r, name, func() (err error) {
		if d != nil {
			answer, err = d.Answer(ctx, text, r.req.History)
			return err
		}
		if o.c.Generator == nil {
			return errors.New("not configured")
		}
		answer, err = o.c.Generator.GenerateFreeText(ctx, text)
		return err
	})
	if err != nil {
		return StateError, err
	}

	r.text = answer
	r.action = noAction()
	return StateDone, nil
}

// call runs a collaborator invocation and wraps its failure as a
// downstream failure.
func (o *Orchestrator) call(r *run, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if err != nil {
		err = downstream(name, err)
	}
	RecordCollaboratorCall(r.tracer, name, time.Since(start).Milliseconds(), err)
	return err
}

func statusError(status graph.Status) error {
	switch status {
	case graph.StatusEntityNotFound:
		return ErrEntityNotFound
	case graph.StatusInsufficientEntities:
		return ErrInsufficientEntities
	case graph.StatusDataInconsistent:
		return ErrDataInconsistency
	}
	return nil
}

func rawMentions(entities []string) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		e = resolver.StripMentions(e)
		if e != "" && !resolver.IsPronoun(e) {
			out = append(out, e)
		}
	}
	return out
}
