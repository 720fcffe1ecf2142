package common

import "strings"

// Graph is a snapshot of the professional network: people and the
// connections between them. Edge order is meaningful; algorithms that need
// a tie-break fall back to the order in which edges appear here.
type Graph struct {
	Nodes []Person     `json:"nodes"`
	Edges []Connection `json:"edges"`
}

// Person is a node in the network. Everything besides ID and Name is
// profile data that the algorithms treat as opaque, except ExpertiseAreas
// which feeds topic ranking.
type Person struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Title             string   `json:"title,omitempty"`
	Company           string   `json:"company,omitempty"`
	Institution       string   `json:"institution,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	ExpertiseAreas    []string `json:"expertise_areas,omitempty"`
	Interests         []string `json:"interests,omitempty"`
	ProfilePictureURL string   `json:"profile_picture_url,omitempty"`
	LinkedinURL       string   `json:"linkedin_url,omitempty"`
}

// ConnectionType describes how two people know each other.
type ConnectionType string

const (
	ConnectionWork  ConnectionType = "WORK"
	ConnectionStudy ConnectionType = "STUDY"
)

// Connection is an undirected edge between two people.
type Connection struct {
	ID             string         `json:"id"`
	PersonAID      string         `json:"person_a_id"`
	PersonBID      string         `json:"person_b_id"`
	ConnectionType ConnectionType `json:"connection_type"`
	Strength       float64        `json:"strength,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

// Other returns the endpoint of the connection that is not id.
func (c Connection) Other(id string) string {
	if c.PersonAID == id {
		return c.PersonBID
	}
	return c.PersonAID
}

// Touches reports whether id is one of the connection's endpoints.
func (c Connection) Touches(id string) bool {
	return c.PersonAID == id || c.PersonBID == id
}

// Category is the coarse bucket a question is routed into.
type Category string

const (
	CategoryGraphQuery      Category = "graph_query"
	CategoryRelationalQuery Category = "relational_query"
	CategoryKnowledgeQA     Category = "knowledge_qa"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGraphQuery, CategoryRelationalQuery, CategoryKnowledgeQA:
		return true
	}
	return false
}

// ParseCategory normalizes free-form classifier output. Unknown values are
// returned as-is so the caller can decide how to degrade.
func ParseCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}

// Operation is the graph operation requested for a graph_query.
type Operation string

const (
	OperationFindPath                 Operation = "find_path"
	OperationRankNodes                Operation = "rank_nodes"
	OperationRecommendPerson          Operation = "recommend_person"
	OperationFindSimilar              Operation = "find_similar"
	OperationFindBridge               Operation = "find_bridge"
	OperationSelectNode               Operation = "select_node"
	OperationFindPotentialConnections Operation = "find_potential_connections"
	OperationGeneral                  Operation = "general"
)

// Operations lists every known operation in a stable order.
var Operations = []Operation{
	OperationFindPath,
	OperationRankNodes,
	OperationRecommendPerson,
	OperationFindSimilar,
	OperationFindBridge,
	OperationSelectNode,
	OperationFindPotentialConnections,
	OperationGeneral,
}

// Valid reports whether o is one of the known operations.
func (o Operation) Valid() bool {
	for _, op := range Operations {
		if op == o {
			return true
		}
	}
	return false
}

// Parameters carries optional knobs extracted alongside the entities.
type Parameters struct {
	Topic          string `json:"topic,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	ConnectionType string `json:"connection_type,omitempty"`
}

// IntentRequest is the structured form of a graph question.
type IntentRequest struct {
	Category   Category   `json:"category"`
	Operation  Operation  `json:"operation"`
	Entities   []string   `json:"entities"`
	Parameters Parameters `json:"parameters"`
}

// ChatMessage is a single turn of a conversation.
//
// Role is either "user" or "assistant".
type ChatMessage struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}
