package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"smart_talk_service/internal/chat/domain"
	"smart_talk_service/internal/chat/repository"
	"smart_talk_service/pkg/logger"
	"smart_talk_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	defaultPingInterval = 10 * time.Minute
	writeWait           = 10 * time.Second
	sendBufferSize      = 64
)

// ChatWebsocketHandler 一個 room session 的 websocket 入口
type ChatWebsocketHandler struct {
	userUC       *UserUseCase
	messageUC    *MessageUseCase
	pub          repository.Publisher
	pingInterval time.Duration
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(userUC *UserUseCase, messageUC *MessageUseCase, pub repository.Publisher) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		userUC:       userUC,
		messageUC:    messageUC,
		pub:          pub,
		pingInterval: defaultPingInterval,
	}
}

// wsClient queues frames for writePump, the only goroutine writing to conn.
// After close returns nothing touches conn again, the pooled conn may already
// belong to another session.
type wsClient struct {
	conn   *websocket.Conn
	userID string
	out    chan []byte
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

func newWSClient(conn *websocket.Conn, userID string) *wsClient {
	return &wsClient{
		conn:   conn,
		userID: userID,
		out:    make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// send never blocks the caller: a full queue drops the frame
func (c *wsClient) send(resp domain.WSResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Error("websocket marshal", zap.String("action", resp.Action), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- b:
	default:
		logger.Log.Warn("websocket send buffer full, frame dropped", zap.String("user_id", c.userID), zap.String("action", resp.Action))
	}
}

func (c *wsClient) sendError(errorMsg string) {
	c.send(domain.WSResponse{
		Action:  "error",
		Success: false,
		Error:   errorMsg,
	})
}

func (c *wsClient) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		close(c.done)
	}()

	broken := false
	for {
		select {
		case b, ok := <-c.out:
			if !ok {
				return
			}
			if broken {
				continue
			}
			if err := c.write(websocket.TextMessage, b); err != nil {
				// a peer that stops reading hits the deadline; dropping it ends the read loop too
				logger.Log.Warn("write message error", zap.String("user_id", c.userID), zap.Error(err))
				broken = true
				_ = c.conn.Close()
			}
		case <-ticker.C:
			if broken {
				continue
			}
			if err := c.write(websocket.PingMessage, []byte("ping")); err != nil {
				logger.Log.Warn("Ping error", zap.String("user_id", c.userID), zap.Error(err))
				broken = true
				_ = c.conn.Close()
			}
		}
	}
}

func (c *wsClient) write(mt int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(mt, data)
}

// close stops writePump and waits for it to exit
func (c *wsClient) close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.out)
	}
	c.mu.Unlock()
	<-c.done
}

// HandleConnection 是 WebSocket 連線的進入點, locals come from JWTMiddleware
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	sender := domain.User{
		ID:       localString(conn, middlewares.TokenUserID),
		Name:     localString(conn, middlewares.TokenUserName),
		Room:     localString(conn, middlewares.TokenRoom),
		IsOnline: true,
		IsActive: true,
	}
	if sender.Room == "" {
		sender.Room = domain.DefaultRoom
	}
	logger.Log.Info("websocket connected", zap.String("user_id", sender.ID), zap.String("room", sender.Room))

	client := newWSClient(conn, sender.ID)
	go client.writePump(h.pingInterval)

	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("Received PONG", zap.String("user_id", sender.ID))
		return nil
	})

	// a missing user document must not keep the session out of the room
	if err := h.userUC.SetPresence(ctx, sender.ID, sender.Room, true); err != nil {
		logger.Log.Warn("mark online", zap.String("user_id", sender.ID), zap.Error(err))
	}

	unsubscribe, err := h.pub.Subscribe(ctx, domain.RoomChannel(sender.Room), client.send)
	if err != nil {
		logger.Log.Error("room subscribe", zap.String("room", sender.Room), zap.Error(err))
		client.sendError("room unavailable")
		client.close()
		conn.Close()
		return
	}

	defer func() {
		// order matters: no delivery after unsubscribe, no write after close
		unsubscribe()
		client.close()
		// ctx may already be done once the client is gone
		if err := h.userUC.SetPresence(context.Background(), sender.ID, sender.Room, false); err != nil {
			logger.Log.Warn("mark offline", zap.String("user_id", sender.ID), zap.Error(err))
		}
		logger.Log.Info("websocket close", zap.String("user_id", sender.ID))
		conn.Close()
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Info("Connection closed", zap.String("user_id", sender.ID))
			} else {
				logger.Log.Warn("websocket read error", zap.String("user_id", sender.ID), zap.Error(err))
			}
			return
		}
		h.execWebsocketAction(ctx, client, sender, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, client *wsClient, sender domain.User, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, client, sender, msg)
	default:
		client.sendError("unsupported message type")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, client *wsClient, sender domain.User, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		client.sendError("invalid json")
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch domain.Action(req.Action) {
	case domain.SendMessage:
		m, err := h.messageUC.SendMessage(ctx, sender, req.Content, domain.MessageType(req.MessageType))
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message_id"] = m.ID
		}

	case domain.GetMessages:
		messages, err := h.messageUC.GetMessagesByRoom(ctx, sender.Room, req.Limit)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["messages"] = messages
		}

	case domain.GetUsers:
		users, err := h.userUC.GetUsersByRoom(ctx, sender.Room)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["users"] = users
		}

	default:
		client.sendError("unknown action")
		return
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err", zap.String("user_id", sender.ID), zap.String("action", req.Action), zap.String("err", resp.Error))
	}
	client.send(resp)
}

func localString(conn *websocket.Conn, key string) string {
	v, _ := conn.Locals(key).(string)
	return v
}
