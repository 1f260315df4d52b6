package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler upgrades the connection and registers it with the hub for
// real-time notification delivery. AuthRequired has already resolved the
// user, accepting the token as a query parameter for browser clients.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID := conn.Locals("userID").(uint)

		s.hub.Register(userID, conn)
		defer s.hub.Unregister(userID, conn)

		// Reads are only used to detect the client going away; inbound
		// messages are ignored.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	return func(c *fiber.Ctx) error {
		if s.hub == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Real-time notifications are unavailable")
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
