package router

import (
	"context"

	"smart_talk_service/internal/api/handlers"
	"smart_talk_service/internal/chat/app"
	"smart_talk_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册聊天室相关的路由
// @title Smart Talk Chat Service API
// @version 1.0
// @description API documentation for the Smart Talk chat service
// @host localhost:8080
// @BasePath /
func RegisterRoutes(r *fiber.App, chatHandler *handlers.ChatHandler, chatWebsocket *app.ChatWebsocketHandler) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/", handlers.ConnectCheck)
	r.Post("/debug", handlers.DebugLogFlag)

	r.Post("/users", chatHandler.Join)
	r.Get("/users/:id", chatHandler.GetUser)
	r.Get("/rooms/:room/users", chatHandler.GetRoomUsers)
	r.Get("/rooms/:room/messages", chatHandler.GetRoomMessages)

	auth := middlewares.JWTMiddleware()
	r.Put("/users/:id/status", auth, chatHandler.UpdateStatus)
	r.Post("/rooms/:room/messages", auth, chatHandler.PostRoomMessage)
	r.Post("/notifications", auth, chatHandler.SendNotification)

	r.Get("/ws", auth, upgradeOnly, websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}

func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
