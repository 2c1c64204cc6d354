package handlers

import (
	"strconv"

	"smart_talk_service/internal/chat/app"
	"smart_talk_service/internal/chat/domain"
	"smart_talk_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler 处理聊天室相关的 HTTP 请求
type ChatHandler struct {
	userUC         *app.UserUseCase
	messageUC      *app.MessageUseCase
	notificationUC *app.NotificationUseCase
}

// NewChatHandler 创建新的 ChatHandler
func NewChatHandler(userUC *app.UserUseCase, messageUC *app.MessageUseCase, notificationUC *app.NotificationUseCase) *ChatHandler {
	return &ChatHandler{
		userUC:         userUC,
		messageUC:      messageUC,
		notificationUC: notificationUC,
	}
}

// JoinRequest body of POST /users
type JoinRequest struct {
	Name string `json:"name"`
	Room string `json:"room"`
}

// JoinResponse created user and its session token
type JoinResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// StatusRequest body of PUT /users/{id}/status
type StatusRequest struct {
	IsOnline bool `json:"is_online"`
}

// SendMessageRequest body of POST /rooms/{room}/messages
type SendMessageRequest struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

// NotificationRequest body of POST /notifications
type NotificationRequest struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// Join 加入聊天室
// @Summary Join a room
// @Description Creates an online user in the room and returns its session token
// @Tags Users
// @Accept json
// @Produce json
// @Param request body JoinRequest true "display name and room"
// @Success 201 {object} JoinResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /users [post]
func (h *ChatHandler) Join(c *fiber.Ctx) error {
	var req JoinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request"})
	}

	user, t, err := h.userUC.Join(c.UserContext(), req.Name, req.Room)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(JoinResponse{User: user, Token: t})
}

// GetUser 查找用户
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} domain.User
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *ChatHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userUC.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(user)
}

// UpdateStatus 更新上线状态, only for the token owner
// @Summary Update online status
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param auth query string false "session token"
// @Param request body StatusRequest true "online flag"
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/status [put]
func (h *ChatHandler) UpdateStatus(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID != middlewares.UserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "cannot update another user"})
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request"})
	}

	if err := h.userUC.SetPresence(c.UserContext(), userID, middlewares.Room(c), req.IsOnline); err != nil {
		return sendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetRoomUsers 聊天室在线用户
// @Summary Active users of a room
// @Tags Rooms
// @Produce json
// @Param room path string true "Room"
// @Success 200 {array} domain.User
// @Failure 502 {object} ErrorResponse
// @Router /rooms/{room}/users [get]
func (h *ChatHandler) GetRoomUsers(c *fiber.Ctx) error {
	users, err := h.userUC.GetUsersByRoom(c.UserContext(), c.Params("room"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(users)
}

// GetRoomMessages 聊天室历史讯息
// @Summary Recent messages of a room
// @Description Most recent messages in chronological order
// @Tags Rooms
// @Produce json
// @Param room path string true "Room"
// @Param limit query int false "max messages (default 50)"
// @Success 200 {array} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /rooms/{room}/messages [get]
func (h *ChatHandler) GetRoomMessages(c *fiber.Ctx) error {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid limit"})
		}
		limit = n
	}

	messages, err := h.messageUC.GetMessagesByRoom(c.UserContext(), c.Params("room"), limit)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(messages)
}

// PostRoomMessage 发送讯息到 token 所属的聊天室
// @Summary Send a message
// @Tags Rooms
// @Accept json
// @Produce json
// @Param room path string true "Room"
// @Param auth query string false "session token"
// @Param request body SendMessageRequest true "message"
// @Success 201 {object} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /rooms/{room}/messages [post]
func (h *ChatHandler) PostRoomMessage(c *fiber.Ctx) error {
	room := c.Params("room")
	if room != middlewares.Room(c) {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "not a member of this room"})
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request"})
	}

	sender := domain.User{
		ID:   middlewares.UserID(c),
		Name: middlewares.UserName(c),
		Room: room,
	}
	msg, err := h.messageUC.SendMessage(c.UserContext(), sender, req.Content, domain.MessageType(req.MessageType))
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// SendNotification 推播通知
// @Summary Send a push notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param auth query string false "session token"
// @Param request body NotificationRequest true "notification"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /notifications [post]
func (h *ChatHandler) SendNotification(c *fiber.Ctx) error {
	var req NotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request"})
	}

	id, err := h.notificationUC.SendNotification(c.UserContext(), req.Token, req.Title, req.Body, req.Data)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"message_id": id})
}
