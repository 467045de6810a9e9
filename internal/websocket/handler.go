package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection with the hub and blocks until the
// resident disconnects.
func ServeWs(hub *Hub, conn *websocket.Conn, userID int64) {
	client := newClient(hub, conn, userID)
	hub.register <- client

	go client.writeLoop()
	client.readLoop()
}
