package handlers

import (
	ws "github.com/apoaevents/badge_credits/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func FeedUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// CreditFeed streams credit events to an admin client until it hangs up.
var CreditFeed = websocket.New(func(conn *websocket.Conn) {
	token := conn.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	client := &ws.Client{UserID: userID, Conn: conn}
	ws.Register <- client
	defer func() {
		ws.Unregister <- client
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
})
