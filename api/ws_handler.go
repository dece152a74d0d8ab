package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/greencycle/ewaste-BE/internal/realtime"
	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog/log"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin browsers are let through here; the connection stays
	// anonymous until it presents a valid token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is the inbound frame envelope. Token authenticates the
// connection; component_id subscribes it to an item's live events.
type clientMessage struct {
	Type        string `json:"type"`
	Token       string `json:"token,omitempty"`
	ComponentID string `json:"component_id,omitempty"`
}

// handleWebSocket upgrades the connection and starts the read/write pumps.
// Clients authenticate in-band with {"type":"authenticate","token":...} and
// may then watch items with {"type":"watch","component_id":...}.
func (server *Server) handleWebSocket(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	client := realtime.NewClient(shortuuid.New(), conn)

	go client.WritePump()
	go client.ReadPump(server.hub, server.handleClientMessage)
}

func (server *Server) handleClientMessage(client *realtime.Client, message []byte) {
	var msg clientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		server.sendError(client, "invalid message format")
		return
	}

	switch msg.Type {
	case "authenticate":
		payload, err := server.tokenMaker.VerifyToken(msg.Token)
		if err != nil {
			server.sendError(client, "invalid access token")
			return
		}

		server.hub.RegisterUser(payload.Subject, client)
		server.sendAck(client, "authenticated")

	case "watch":
		if _, err := uuid.Parse(msg.ComponentID); err != nil {
			server.sendError(client, "invalid component ID")
			return
		}

		server.hub.Watch(client, msg.ComponentID)
		server.sendAck(client, "watching")

	default:
		server.sendError(client, "unknown message type")
	}
}

func (server *Server) sendAck(client *realtime.Client, status string) {
	if payload, err := json.Marshal(gin.H{"type": "ack", "status": status}); err == nil {
		client.TrySend(payload)
	}
}

func (server *Server) sendError(client *realtime.Client, message string) {
	if payload, err := json.Marshal(gin.H{"type": "error", "error": message}); err == nil {
		client.TrySend(payload)
	}
}
