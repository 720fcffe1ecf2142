package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eldarhac/GraphMind/internal/server/middleware"
	serverutil "github.com/eldarhac/GraphMind/internal/server/util"
	"github.com/eldarhac/GraphMind/internal/util"
	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/logger"
	"github.com/eldarhac/GraphMind/pkg/query"
	"github.com/eldarhac/GraphMind/pkg/store"
)

var chatLog = logger.For("Chat")

type chatResponse struct {
	query.Response
	ConversationID string `json:"conversation_id"`
}

func PostChatHandler(c echo.Context) error {
	type chatRequest struct {
		Message        string `json:"message" validate:"required,max=4000"`
		ConversationID string `json:"conversation_id"`
	}

	data := new(chatRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	ac := c.(*middleware.AppContext)
	user := ac.User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	app := ac.App
	ctx := c.Request().Context()

	g, err := app.Snapshots.Get(ctx)
	if err != nil {
		chatLog.Error("Failed to load snapshot", "err", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "Network is not available"})
	}

	var history []ai.ChatMessage
	chatID := data.ConversationID
	if chatID != "" {
		if _, err := app.Chats.GetChat(ctx, chatID, user.PersonID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"message": "Conversation not found"})
			}
			chatLog.Error("Failed to get chat", "chat", chatID, "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		}
		stored, err := app.Chats.GetChatMessages(ctx, chatID, app.HistoryLimit)
		if err != nil {
			chatLog.Error("Failed to get chat messages", "chat", chatID, "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		}
		history = serverutil.ChatHistory(stored)
	} else {
		chatID = util.NewID()
		err := app.Chats.CreateChat(ctx, store.Chat{
			ID:        chatID,
			PersonID:  user.PersonID,
			Title:     serverutil.ChatTitle(data.Message),
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			chatLog.Error("Failed to create chat", "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		}
	}

	resp := app.Orchestrator.ProcessQuery(ctx, query.Request{
		Text:        data.Message,
		CurrentUser: currentUser(g, user.PersonID),
		Graph:       g,
		History:     history,
	})

	// The answer is returned even if it could not be stored.
	if err := app.Chats.AddChatMessage(ctx, serverutil.UserMessage(chatID, data.Message)); err != nil {
		chatLog.Error("Failed to store question", "chat", chatID, "err", err)
	} else if msg, err := serverutil.AssistantMessage(chatID, resp); err != nil {
		chatLog.Error("Failed to encode answer", "chat", chatID, "err", err)
	} else if err := app.Chats.AddChatMessage(ctx, msg); err != nil {
		chatLog.Error("Failed to store answer", "chat", chatID, "err", err)
	}

	return c.JSON(http.StatusOK, chatResponse{Response: resp, ConversationID: chatID})
}

func GetChatHandler(c echo.Context) error {
	type getChatRequest struct {
		ConversationID string `param:"conversation_id" validate:"required"`
	}

	type getChatResponse struct {
		ConversationID string              `json:"conversation_id"`
		Title          string              `json:"title"`
		CreatedAt      time.Time           `json:"created_at"`
		Messages       []store.ChatMessage `json:"messages"`
	}

	data := new(getChatRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	ac := c.(*middleware.AppContext)
	user := ac.User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	ctx := c.Request().Context()

	chat, err := ac.App.Chats.GetChat(ctx, data.ConversationID, user.PersonID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Conversation not found"})
		}
		chatLog.Error("Failed to get chat", "chat", data.ConversationID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	messages, err := ac.App.Chats.GetChatMessages(ctx, chat.ID, 0)
	if err != nil {
		chatLog.Error("Failed to get chat messages", "chat", chat.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	return c.JSON(http.StatusOK, getChatResponse{
		ConversationID: chat.ID,
		Title:          chat.Title,
		CreatedAt:      chat.CreatedAt,
		Messages:       messages,
	})
}

// currentUser finds the asking person in the snapshot. People that are not
// part of the network yet are represented by their id alone.
func currentUser(g common.Graph, personID string) common.Person {
	for _, p := range g.Nodes {
		if p.ID == personID {
			return p
		}
	}
	return common.Person{ID: personID}
}
