package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"smart_talk_service/internal/chat/app"
	"smart_talk_service/internal/chat/domain"
	"smart_talk_service/pkg/logger"
	"smart_talk_service/pkg/middlewares"
	"smart_talk_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type chatMocks struct {
	users    *app.MockUserRepository
	messages *app.MockMessageRepository
	push     *app.MockPushRepository
	pub      *app.MockPublisher
}

func newTestApp(t *testing.T) (*fiber.App, *chatMocks) {
	t.Helper()
	logger.SetNewNop()

	m := &chatMocks{
		users:    new(app.MockUserRepository),
		messages: new(app.MockMessageRepository),
		push:     new(app.MockPushRepository),
		pub:      new(app.MockPublisher),
	}
	h := NewChatHandler(
		app.NewUserUseCase(m.users, m.pub, token.GenerateJWT),
		app.NewMessageUseCase(m.messages, m.pub, 0, 0),
		app.NewNotificationUseCase(m.push),
	)

	a := fiber.New()
	a.Post("/users", h.Join)
	a.Get("/users/:id", h.GetUser)
	a.Get("/rooms/:room/users", h.GetRoomUsers)
	a.Get("/rooms/:room/messages", h.GetRoomMessages)

	auth := a.Group("/", middlewares.JWTMiddleware())
	auth.Put("/users/:id/status", h.UpdateStatus)
	auth.Post("/rooms/:room/messages", h.PostRoomMessage)
	auth.Post("/notifications", h.SendNotification)
	return a, m
}

func doJSON(t *testing.T, a *fiber.App, method, path, bearer string, body interface{}) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}

	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func sessionToken(t *testing.T, userID, room string) string {
	t.Helper()
	tok, err := token.GenerateJWT(userID, "Ana", room)
	require.NoError(t, err)
	return tok
}

func TestChatHandler_Join(t *testing.T) {
	a, m := newTestApp(t)
	m.users.On("CreateUser", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	m.pub.On("Publish", mock.Anything, "chat:room:lobby", mock.Anything).Return(nil)

	status, body := doJSON(t, a, fiber.MethodPost, "/users", "", JoinRequest{Name: " Ana ", Room: "lobby"})
	require.Equal(t, fiber.StatusCreated, status)

	var resp JoinResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "Ana", resp.User.Name)
	assert.Equal(t, "lobby", resp.User.Room)
	assert.True(t, resp.User.IsOnline)
	assert.NotEmpty(t, resp.User.ID)

	claims, err := token.ParseJWT(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "lobby", claims.Room)
}

func TestChatHandler_Join_Invalid(t *testing.T) {
	a, _ := newTestApp(t)

	status, body := doJSON(t, a, fiber.MethodPost, "/users", "", JoinRequest{Name: "  "})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "name is required")
}

func TestChatHandler_GetUser(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.User
		err        error
		wantStatus int
	}{
		{"found", &domain.User{ID: "u1", Name: "Ana", Room: "general"}, nil, fiber.StatusOK},
		{"not found", nil, domain.ErrUserNotFound, fiber.StatusNotFound},
		{"backend disabled", nil, domain.ErrBackendDisabled, fiber.StatusServiceUnavailable},
		{"transport", nil, errors.New("deadline exceeded"), fiber.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, m := newTestApp(t)
			m.users.On("FindByID", mock.Anything, "u1").Return(tt.user, tt.err)

			status, body := doJSON(t, a, fiber.MethodGet, "/users/u1", "", nil)
			assert.Equal(t, tt.wantStatus, status)
			if tt.user != nil {
				var got domain.User
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "Ana", got.Name)
			}
		})
	}
}

func TestChatHandler_UpdateStatus(t *testing.T) {
	a, m := newTestApp(t)
	m.users.On("UpdateOnlineStatus", mock.Anything, "u1", false).Return(nil)
	m.pub.On("Publish", mock.Anything, "chat:room:general", mock.MatchedBy(func(e domain.RoomEvent) bool {
		return e.Action == domain.UserStatus && e.User.ID == "u1" && !e.User.IsOnline
	})).Return(nil)

	status, _ := doJSON(t, a, fiber.MethodPut, "/users/u1/status", sessionToken(t, "u1", "general"), StatusRequest{IsOnline: false})
	assert.Equal(t, fiber.StatusNoContent, status)
	m.users.AssertExpectations(t)
	m.pub.AssertExpectations(t)
}

func TestChatHandler_UpdateStatus_Forbidden(t *testing.T) {
	a, m := newTestApp(t)

	status, _ := doJSON(t, a, fiber.MethodPut, "/users/u2/status", sessionToken(t, "u1", "general"), StatusRequest{IsOnline: true})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, a, fiber.MethodPut, "/users/u1/status", "", StatusRequest{IsOnline: true})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	m.users.AssertNotCalled(t, "UpdateOnlineStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatHandler_GetRoomUsers(t *testing.T) {
	a, m := newTestApp(t)
	m.users.On("FindActiveByRoom", mock.Anything, "lobby").Return([]domain.User{{ID: "u1", Name: "Ana"}}, nil)

	status, body := doJSON(t, a, fiber.MethodGet, "/rooms/lobby/users", "", nil)
	require.Equal(t, fiber.StatusOK, status)

	var users []domain.User
	require.NoError(t, json.Unmarshal(body, &users))
	assert.Len(t, users, 1)
}

func TestChatHandler_GetRoomMessages(t *testing.T) {
	a, m := newTestApp(t)
	now := time.Now().UTC()
	m.messages.On("FindRecentByRoom", mock.Anything, "lobby", 2).Return([]domain.Message{
		{ID: "m2", Content: "second", Timestamp: now},
		{ID: "m1", Content: "first", Timestamp: now.Add(-time.Second)},
	}, nil)

	status, body := doJSON(t, a, fiber.MethodGet, "/rooms/lobby/messages?limit=2", "", nil)
	require.Equal(t, fiber.StatusOK, status)

	var messages []domain.Message
	require.NoError(t, json.Unmarshal(body, &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)

	status, _ = doJSON(t, a, fiber.MethodGet, "/rooms/lobby/messages?limit=abc", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestChatHandler_PostRoomMessage(t *testing.T) {
	a, m := newTestApp(t)
	m.messages.On("SaveMessage", mock.Anything, mock.MatchedBy(func(msg *domain.Message) bool {
		return msg.UserID == "u1" && msg.UserName == "Ana" && msg.Room == "lobby"
	})).Return(nil)
	m.pub.On("Publish", mock.Anything, "chat:room:lobby", mock.Anything).Return(nil)

	status, body := doJSON(t, a, fiber.MethodPost, "/rooms/lobby/messages", sessionToken(t, "u1", "lobby"), SendMessageRequest{Content: "hola"})
	require.Equal(t, fiber.StatusCreated, status)

	var msg domain.Message
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.Equal(t, "hola", msg.Content)
	assert.Equal(t, domain.MessageTypeText, msg.MessageType)
	assert.NotEmpty(t, msg.ID)
}

func TestChatHandler_PostRoomMessage_OtherRoom(t *testing.T) {
	a, m := newTestApp(t)

	status, _ := doJSON(t, a, fiber.MethodPost, "/rooms/lobby/messages", sessionToken(t, "u1", "general"), SendMessageRequest{Content: "hola"})
	assert.Equal(t, fiber.StatusForbidden, status)
	m.messages.AssertNotCalled(t, "SaveMessage", mock.Anything, mock.Anything)
}

func TestChatHandler_PostRoomMessage_SystemTypeRejected(t *testing.T) {
	a, m := newTestApp(t)

	status, body := doJSON(t, a, fiber.MethodPost, "/rooms/lobby/messages", sessionToken(t, "u1", "lobby"),
		SendMessageRequest{Content: "Bob left the room", MessageType: string(domain.MessageTypeSystem)})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "only send text")
	m.messages.AssertNotCalled(t, "SaveMessage", mock.Anything, mock.Anything)
}

func TestChatHandler_SendNotification(t *testing.T) {
	a, m := newTestApp(t)
	m.push.On("Send", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Token == "device-1" && n.Title == "New message" && n.Data["room"] == "general"
	})).Return("projects/p/messages/1", nil)

	req := NotificationRequest{Token: "device-1", Title: "New message", Body: "hola", Data: map[string]string{"room": "general"}}
	status, body := doJSON(t, a, fiber.MethodPost, "/notifications", sessionToken(t, "u1", "general"), req)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"message_id":"projects/p/messages/1"}`, string(body))

	status, _ = doJSON(t, a, fiber.MethodPost, "/notifications", sessionToken(t, "u1", "general"), NotificationRequest{Title: "x"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}
