package query

import (
	"context"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/graph"
)

// Classifier buckets a question into a category. Values outside the known
// categories are tolerated and degrade to knowledge_qa.
type Classifier interface {
	Classify(ctx context.Context, text string, history []ai.ChatMessage) (common.Category, error)
}

// IntentExtractor turns a graph question into an operation with raw entity
// mentions.
type IntentExtractor interface {
	ExtractIntent(
		ctx context.Context,
		text string,
		history []ai.ChatMessage,
		currentUserName string,
		knownNames []string,
	) (common.IntentRequest, error)
}

// SimilarityService finds people with similar profiles.
type SimilarityService = graph.Similarity

// TextGenerator produces free text for a prompt.
type TextGenerator interface {
	GenerateFreeText(ctx context.Context, prompt string) (string, error)
}

// Delegate answers questions that are not about graph structure.
type Delegate interface {
	Answer(ctx context.Context, text string, history []ai.ChatMessage) (string, error)
}

// Collaborators bundles the external services the orchestrator calls.
// Relational and Knowledge are optional and default to Generator.
type Collaborators struct {
	Classifier Classifier
	Extractor  IntentExtractor
	Similarity SimilarityService
	Generator  TextGenerator
	Relational Delegate
	Knowledge  Delegate
}

// Request is everything a single query needs. Graph is used as-is for this
// call only.
type Request struct {
	Text        string
	CurrentUser common.Person
	Graph       common.Graph
	History     []ai.ChatMessage
	// Tracer receives the events of this request in addition to the
	// orchestrator wide tracer.
	Tracer Tracer
}

// Response is the envelope returned for every query.
type Response struct {
	ResponseText     string               `json:"response"`
	Category         common.Category      `json:"category"`
	Operation        common.Operation     `json:"intent"`
	Action           *VisualizationAction `json:"graph_action"`
	ProcessingTimeMs int64                `json:"processing_time"`
	ResolvedEntities []string             `json:"resolved_entities,omitempty"`
	State            State                `json:"-"`
}

// ActionKind tells the renderer what to do with a VisualizationAction.
type ActionKind string

const (
	ActionHighlightPath  ActionKind = "highlight_path"
	ActionHighlightNodes ActionKind = "highlight_nodes"
	ActionNone           ActionKind = "none"
)

// VisualizationAction is the directive sent to the graph renderer.
type VisualizationAction struct {
	Kind    ActionKind `json:"type"`
	NodeIDs []string   `json:"node_ids"`
	EdgeIDs []string   `json:"connection_ids"`
}

// State is a step of the orchestrator state machine.
type State string

const (
	StateIdle                 State = "idle"
	StateClassifying          State = "classifying"
	StateExtracting           State = "extracting"
	StateResolving            State = "resolving"
	StateExecuting            State = "executing"
	StateSynthesizing         State = "synthesizing"
	StateDelegatingRelational State = "delegating_relational"
	StateDelegatingKnowledge  State = "delegating_knowledge"
	StateDone                 State = "done"
	StateError                State = "error"
)

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError
}
