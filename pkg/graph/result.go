package graph

import "github.com/eldarhac/GraphMind/pkg/common"

// Status describes whether an operation produced a usable result.
type Status string

const (
	StatusOK                   Status = "ok"
	StatusInsufficientEntities Status = "insufficient_entities"
	StatusEntityNotFound       Status = "entity_not_found"
	StatusNoPath               Status = "no_path"
	StatusDataInconsistent     Status = "data_inconsistent"
	StatusNoResults            Status = "no_results"
)

// Result is the outcome of one graph operation. The concrete type tells
// which operation ran; callers switch on it.
type Result interface {
	Operation() common.Operation
	// Outcome returns the status and, when the operation could not complete,
	// a message meant for the user.
	Outcome() (Status, string)
	isResult()
}

type outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

func (o outcome) Outcome() (Status, string) { return o.Status, o.Message }
func (outcome) isResult()                    {}

// PathResult is produced by ShortestPath.
type PathResult struct {
	outcome
	Path     []string            `json:"path"`
	Distance int                 `json:"distance"`
	Nodes    []common.Person     `json:"nodes"`
	Edges    []common.Connection `json:"edges"`
}

func (*PathResult) Operation() common.Operation { return common.OperationFindPath }

// RankedPerson pairs a person with its influence score.
type RankedPerson struct {
	Person common.Person `json:"person"`
	Score  int           `json:"score"`
}

// RankResult is produced by InfluenceRank.
type RankResult struct {
	outcome
	Ranked        []RankedPerson `json:"ranked_nodes"`
	Topic         string         `json:"topic,omitempty"`
	TotalAnalyzed int            `json:"total_analyzed"`
}

func (*RankResult) Operation() common.Operation { return common.OperationRankNodes }

// BridgeResult is produced by BridgeDetect.
type BridgeResult struct {
	outcome
	Bridges []common.Person `json:"bridges"`
}

func (*BridgeResult) Operation() common.Operation { return common.OperationFindBridge }

// SimilarResult is produced by FindSimilar.
type SimilarResult struct {
	outcome
	Target     *common.Person  `json:"target,omitempty"`
	Candidates []common.Person `json:"candidates"`
}

func (*SimilarResult) Operation() common.Operation { return common.OperationFindSimilar }

// PotentialResult is produced by PotentialConnections.
type PotentialResult struct {
	outcome
	Target     *common.Person      `json:"target,omitempty"`
	Similar    []common.Person     `json:"similar"`
	Candidates []common.Person     `json:"candidates"`
	Via        []common.Connection `json:"via"`
}

func (*PotentialResult) Operation() common.Operation {
	return common.OperationFindPotentialConnections
}

// SelectResult is produced by SelectByName.
type SelectResult struct {
	outcome
	Query   []string        `json:"query"`
	Matches []common.Person `json:"matches"`
}

func (*SelectResult) Operation() common.Operation { return common.OperationSelectNode }

// Recommendation is a suggested new contact and the people both share.
type Recommendation struct {
	Person common.Person `json:"person"`
	Mutual []string      `json:"mutual"`
}

// RecommendResult is produced by RecommendPeople.
type RecommendResult struct {
	outcome
	For             *common.Person   `json:"for,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
}

func (*RecommendResult) Operation() common.Operation { return common.OperationRecommendPerson }

// EmptyResult stands in for operations that have nothing to compute.
type EmptyResult struct {
	outcome
	Requested common.Operation `json:"requested"`
}

func (*EmptyResult) Operation() common.Operation { return common.OperationGeneral }

// Empty returns the result used for general or unknown operations.
func Empty(op common.Operation) *EmptyResult {
	return &EmptyResult{outcome: outcome{Status: StatusOK}, Requested: op}
}

func succeeded() outcome { return outcome{Status: StatusOK} }

func failed(status Status, msg string) outcome {
	return outcome{Status: status, Message: msg}
}
