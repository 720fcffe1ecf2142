package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/eldarhac/GraphMind/internal/queue"
	"github.com/eldarhac/GraphMind/internal/server/middleware"
	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/query"
	"github.com/eldarhac/GraphMind/pkg/store"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

type fakeProcessor struct {
	mu       sync.Mutex
	requests []query.Request
	resp     query.Response
}

func (f *fakeProcessor) ProcessQuery(ctx context.Context, req query.Request) query.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.resp
}

type fakeSource struct {
	graph       common.Graph
	err         error
	invalidated int
}

func (f *fakeSource) Get(ctx context.Context) (common.Graph, error) {
	return f.graph, f.err
}

func (f *fakeSource) Invalidate() { f.invalidated++ }

type fakeChats struct {
	mu       sync.Mutex
	chats    map[string]store.Chat
	messages map[string][]store.ChatMessage
	limits   []int
}

func newFakeChats() *fakeChats {
	return &fakeChats{
		chats:    make(map[string]store.Chat),
		messages: make(map[string][]store.ChatMessage),
	}
}

func (f *fakeChats) CreateChat(ctx context.Context, chat store.Chat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats[chat.ID] = chat
	return nil
}

func (f *fakeChats) GetChat(ctx context.Context, id string, personID string) (store.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[id]
	if !ok || chat.PersonID != personID {
		return store.Chat{}, store.ErrNotFound
	}
	return chat, nil
}

func (f *fakeChats) AddChatMessage(ctx context.Context, msg store.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID = int64(len(f.messages[msg.ChatID]) + 1)
	f.messages[msg.ChatID] = append(f.messages[msg.ChatID], msg)
	return nil
}

func (f *fakeChats) GetChatMessages(ctx context.Context, chatID string, limit int) ([]store.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	msgs := f.messages[chatID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]store.ChatMessage(nil), msgs...), nil
}

type published struct {
	queue string
	body  []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{queue: queueName, body: body})
	return nil
}

func testGraph() common.Graph {
	return common.Graph{
		Nodes: []common.Person{
			{ID: "p1", Name: "Alice Adler", Title: "Engineer"},
			{ID: "p2", Name: "Bob Brown"},
		},
		Edges: []common.Connection{
			{ID: "c1", PersonAID: "p1", PersonBID: "p2", ConnectionType: common.ConnectionWork},
		},
	}
}

type testApp struct {
	app       *middleware.App
	processor *fakeProcessor
	source    *fakeSource
	chats     *fakeChats
	publisher *fakePublisher
}

func newTestApp() *testApp {
	t := &testApp{
		processor: &fakeProcessor{resp: query.Response{
			ResponseText:     "Alice knows Bob.",
			Category:         common.CategoryGraphQuery,
			Operation:        common.OperationFindPath,
			ProcessingTimeMs: 7,
			Action: &query.VisualizationAction{
				Kind:    query.ActionHighlightPath,
				NodeIDs: []string{"p1", "p2"},
				EdgeIDs: []string{"c1"},
			},
		}},
		source:    &fakeSource{graph: testGraph()},
		chats:     newFakeChats(),
		publisher: &fakePublisher{},
	}
	t.app = &middleware.App{
		Orchestrator: t.processor,
		Snapshots:    t.source,
		Chats:        t.chats,
		Queue:        t.publisher,
		HistoryLimit: 10,
	}
	return t
}

// call runs handler with an authenticated AppContext.
func call(
	app *middleware.App,
	handler echo.HandlerFunc,
	method string,
	body string,
	params map[string]string,
) *httptest.ResponseRecorder {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) > 0 {
		names := make([]string, 0, len(params))
		values := make([]string, 0, len(params))
		for name, value := range params {
			names = append(names, name)
			values = append(values, value)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}

	ac := &middleware.AppContext{Context: c, App: app, User: &middleware.AppUser{PersonID: "p1", Role: "user"}}
	if err := handler(ac); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestPostChatHandlerNewConversation(t *testing.T) {
	ta := newTestApp()

	rec := call(ta.app, PostChatHandler, http.MethodPost, `{"message":"How do I reach Bob Brown?"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	got := decode[map[string]any](t, rec)
	chatID, _ := got["conversation_id"].(string)
	if chatID == "" {
		t.Fatalf("conversation_id missing in %v", got)
	}
	if got["response"] != "Alice knows Bob." || got["intent"] != "find_path" || got["category"] != "graph_query" {
		t.Fatalf("unexpected envelope %v", got)
	}
	action, _ := got["graph_action"].(map[string]any)
	if action["type"] != "highlight_path" {
		t.Fatalf("graph_action = %v", got["graph_action"])
	}

	if len(ta.processor.requests) != 1 {
		t.Fatalf("ProcessQuery called %d times, want 1", len(ta.processor.requests))
	}
	req := ta.processor.requests[0]
	if req.CurrentUser.Name != "Alice Adler" {
		t.Fatalf("CurrentUser = %+v, want the snapshot profile", req.CurrentUser)
	}
	if len(req.Graph.Nodes) != 2 || len(req.History) != 0 {
		t.Fatalf("Request = %+v", req)
	}

	chat, ok := ta.chats.chats[chatID]
	if !ok || chat.PersonID != "p1" || chat.Title != "How do I reach Bob Brown?" {
		t.Fatalf("stored chat = %+v", chat)
	}
	msgs := ta.chats.messages[chatID]
	if len(msgs) != 2 {
		t.Fatalf("stored %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" || msgs[1].Operation != "find_path" {
		t.Fatalf("stored messages = %+v", msgs)
	}
	if len(msgs[1].Action) == 0 {
		t.Fatalf("assistant message has no graph action")
	}
}

func TestPostChatHandlerExistingConversation(t *testing.T) {
	ta := newTestApp()
	ta.chats.chats["chat-1"] = store.Chat{ID: "chat-1", PersonID: "p1", CreatedAt: time.Now()}
	ta.chats.messages["chat-1"] = []store.ChatMessage{
		{ChatID: "chat-1", Role: "user", Content: "Who is Bob?"},
		{ChatID: "chat-1", Role: "assistant", Content: "Bob is an engineer."},
	}

	rec := call(ta.app, PostChatHandler, http.MethodPost, `{"message":"And Alice?","conversation_id":"chat-1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	req := ta.processor.requests[0]
	if len(req.History) != 2 || req.History[0].Message != "Who is Bob?" {
		t.Fatalf("History = %+v", req.History)
	}
	if ta.chats.limits[0] != 10 {
		t.Fatalf("history limit = %d, want 10", ta.chats.limits[0])
	}
	if n := len(ta.chats.messages["chat-1"]); n != 4 {
		t.Fatalf("stored %d messages, want 4", n)
	}
}

func TestPostChatHandlerUnknownUserProfile(t *testing.T) {
	ta := newTestApp()
	ta.source.graph = common.Graph{}

	rec := call(ta.app, PostChatHandler, http.MethodPost, `{"message":"hello"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := ta.processor.requests[0].CurrentUser; got.ID != "p1" || got.Name != "" {
		t.Fatalf("CurrentUser = %+v, want id only", got)
	}
}

func TestPostChatHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		setup  func(*testApp)
		status int
	}{
		{name: "empty message", body: `{"message":""}`, status: http.StatusBadRequest},
		{name: "malformed body", body: `{"message":`, status: http.StatusBadRequest},
		{name: "unknown conversation", body: `{"message":"hi","conversation_id":"missing"}`, status: http.StatusNotFound},
		{
			name: "foreign conversation",
			body: `{"message":"hi","conversation_id":"chat-2"}`,
			setup: func(ta *testApp) {
				ta.chats.chats["chat-2"] = store.Chat{ID: "chat-2", PersonID: "p2"}
			},
			status: http.StatusNotFound,
		},
		{
			name: "snapshot unavailable",
			body: `{"message":"hi"}`,
			setup: func(ta *testApp) {
				ta.source.err = errors.New("database down")
			},
			status: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp()
			if tt.setup != nil {
				tt.setup(ta)
			}
			rec := call(ta.app, PostChatHandler, http.MethodPost, tt.body, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if len(ta.processor.requests) != 0 {
				t.Fatalf("ProcessQuery called on a rejected request")
			}
		})
	}
}

func TestGetChatHandler(t *testing.T) {
	ta := newTestApp()
	ta.chats.chats["chat-1"] = store.Chat{ID: "chat-1", PersonID: "p1", Title: "Reach Bob"}
	ta.chats.chats["chat-2"] = store.Chat{ID: "chat-2", PersonID: "p2"}
	ta.chats.messages["chat-1"] = []store.ChatMessage{
		{ID: 1, ChatID: "chat-1", Role: "user", Content: "How do I reach Bob?"},
		{ID: 2, ChatID: "chat-1", Role: "assistant", Content: "Through Alice.", Operation: "find_path"},
	}

	rec := call(ta.app, GetChatHandler, http.MethodGet, "", map[string]string{"conversation_id": "chat-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		ConversationID string              `json:"conversation_id"`
		Title          string              `json:"title"`
		Messages       []store.ChatMessage `json:"messages"`
	}](t, rec)
	if got.ConversationID != "chat-1" || got.Title != "Reach Bob" || len(got.Messages) != 2 {
		t.Fatalf("GetChatHandler() = %+v", got)
	}
	if got.Messages[1].Operation != "find_path" {
		t.Fatalf("Messages[1] = %+v", got.Messages[1])
	}
	if ta.chats.limits[0] != 0 {
		t.Fatalf("limit = %d, want all messages", ta.chats.limits[0])
	}

	rec = call(ta.app, GetChatHandler, http.MethodGet, "", map[string]string{"conversation_id": "chat-2"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign chat status = %d, want 404", rec.Code)
	}
}

func TestGraphHandlers(t *testing.T) {
	ta := newTestApp()

	rec := call(ta.app, GetGraphHandler, http.MethodGet, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	g := decode[common.Graph](t, rec)
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("GetGraphHandler() = %+v", g)
	}

	rec = call(ta.app, ReloadGraphHandler, http.MethodPost, "", nil)
	if rec.Code != http.StatusOK || ta.source.invalidated != 1 {
		t.Fatalf("reload status = %d, invalidated = %d", rec.Code, ta.source.invalidated)
	}

	ta.source.err = errors.New("unavailable")
	rec = call(ta.app, GetGraphHandler, http.MethodGet, "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestRefreshEmbeddingsHandler(t *testing.T) {
	ta := newTestApp()

	rec := call(ta.app, RefreshEmbeddingsHandler, http.MethodPost, `{"person_ids":["p1","p2"],"only_missing":true}`, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (%s)", rec.Code, rec.Body.String())
	}
	resp := decode[jobResponse](t, rec)
	if len(ta.publisher.msgs) != 1 || ta.publisher.msgs[0].queue != queue.EmbeddingQueue {
		t.Fatalf("published = %+v", ta.publisher.msgs)
	}

	var msg queue.EmbeddingJobMsg
	if err := json.Unmarshal(ta.publisher.msgs[0].body, &msg); err != nil {
		t.Fatalf("invalid job body: %v", err)
	}
	if msg.JobID == "" || msg.JobID != resp.JobID {
		t.Fatalf("job id = %q, response job id = %q", msg.JobID, resp.JobID)
	}
	if len(msg.PersonIDs) != 2 || !msg.OnlyMissing {
		t.Fatalf("job = %+v", msg)
	}

	rec = call(ta.app, RefreshEmbeddingsHandler, http.MethodPost, `{"person_ids":[""]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty person id status = %d, want 400", rec.Code)
	}
}

func TestExportSnapshotHandler(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		prefix string
	}{
		{name: "default prefix", body: "", prefix: queue.DefaultSnapshotPrefix},
		{name: "custom prefix", body: `{"prefix":"snapshots/2026-10-01"}`, prefix: "snapshots/2026-10-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp()
			rec := call(ta.app, ExportSnapshotHandler, http.MethodPost, tt.body, nil)
			if rec.Code != http.StatusAccepted {
				t.Fatalf("status = %d, want 202 (%s)", rec.Code, rec.Body.String())
			}
			var msg queue.SnapshotExportMsg
			if err := json.Unmarshal(ta.publisher.msgs[0].body, &msg); err != nil {
				t.Fatalf("invalid job body: %v", err)
			}
			if ta.publisher.msgs[0].queue != queue.SnapshotQueue || msg.Prefix != tt.prefix {
				t.Fatalf("published %s to %s", ta.publisher.msgs[0].body, ta.publisher.msgs[0].queue)
			}
		})
	}
}

func TestEnqueuePublishError(t *testing.T) {
	ta := newTestApp()
	ta.publisher.err = errors.New("channel closed")

	rec := call(ta.app, ExportSnapshotHandler, http.MethodPost, "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
