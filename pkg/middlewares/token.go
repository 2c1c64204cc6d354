package middlewares

import (
	"strings"

	"smart_talk_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//TokenUserID get user form token, set c.locals name
	TokenUserID = "UserID"
	//TokenUserName get display name form token, set c.locals name
	TokenUserName = "UserName"
	//TokenRoom get room form token, set c.locals name
	TokenRoom = "Room"
)

// JWTMiddleware validates the session token from query, cookie or Authorization header
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Query(QueryToken)

		if tokenStr == "" {
			tokenStr = c.Cookies(CookieToken)
		}

		if tokenStr == "" {
			tokenStr = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		}

		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		claims, err := token.ParseJWT(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(TokenUserID, claims.UserID)
		c.Locals(TokenUserName, claims.UserName)
		c.Locals(TokenRoom, claims.Room)

		return c.Next()
	}
}

// UserID returns the authenticated user id, empty when absent
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(TokenUserID).(string)
	return id
}

// UserName returns the display name bound to the session token
func UserName(c *fiber.Ctx) string {
	name, _ := c.Locals(TokenUserName).(string)
	return name
}

// Room returns the room bound to the session token, empty when absent
func Room(c *fiber.Ctx) string {
	room, _ := c.Locals(TokenRoom).(string)
	return room
}
