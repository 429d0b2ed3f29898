package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"classroom-backend/internal/chat"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// inboundEnvelope 是客户端发来的原始消息格式。
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client 代表一个连接到 Hub 的 WebSocket 客户端。
// 身份 (userID, userName) 在升级连接时由认证中间件确定，
// 入站 join 事件里客户端自报的身份会被覆盖为已验证身份。
type Client struct {
	id       string
	hub      *Hub
	conn     *websocket.Conn
	session  *chat.Session
	room     string // URL 中指定并通过成员校验的房间码
	userID   uint
	userName string
	send     chan []byte
	closed   bool // Unregister 在 Hub 写锁内置位，之后 send 不再可用
}

// NewClient 创建一个新的 Client 实例，连接 ID 随机分配。
func NewClient(hub *Hub, conn *websocket.Conn, room string, userID uint, userName string) *Client {
	return &Client{
		id:       uuid.NewString(),
		hub:      hub,
		conn:     conn,
		room:     room,
		userID:   userID,
		userName: userName,
		send:     make(chan []byte, 256),
	}
}

// Bind 关联会话处理器。必须在 Run 之前调用。
func (c *Client) Bind(session *chat.Session) { c.session = session }

// Run 启动客户端的读写 goroutine。
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

func (c *Client) ID() string { return c.id }

func (c *Client) UserID() uint { return c.userID }

// ReadPump 从 WebSocket 连接读取消息并按到达顺序派发给会话处理器。
// 它在自己的 goroutine 中运行；退出时负责断开清理，
// 因此单连接内 join/sendMessage/disconnect 的顺序得到保证。
func (c *Client) ReadPump() {
	logCtx := logrus.WithFields(logrus.Fields{"conn_id": c.id, "user_id": c.userID, "room": c.room})
	defer func() {
		// 先让会话清理在线状态并广播名单，再从 Hub 注销连接
		c.session.Handle(context.Background(), chat.Event{Type: chat.EventDisconnect})
		c.hub.Unregister(c)
		c.conn.Close()
		logCtx.Info("readPump exited, client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed")
			}
			break
		}
		if messageType != websocket.TextMessage {
			logCtx.Debugf("Ignoring non-text message type: %d", messageType)
			continue
		}
		c.dispatch(logCtx, message)
	}
}

// dispatch 解析入站消息并转换为会话事件。格式错误的消息记录后丢弃。
func (c *Client) dispatch(logCtx *logrus.Entry, raw []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logCtx.WithError(err).Warn("Malformed inbound message, dropping")
		return
	}

	switch env.Event {
	case chat.EventNameJoin:
		var payload chat.JoinPayload
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &payload); err != nil {
				logCtx.WithError(err).Warn("Malformed join payload, dropping")
				return
			}
		}
		if payload.Room.Code != "" && payload.Room.Code != c.room {
			logCtx.WithField("claimed_room", payload.Room.Code).Warn("Join payload room does not match connection room, overriding")
		}
		// 身份和房间以服务端验证过的为准
		payload.Room.Code = c.room
		payload.User.Name = c.userName
		payload.User.ID = c.userID
		c.session.Handle(context.Background(), chat.Event{Type: chat.EventJoin, Join: &payload})

	case chat.EventNameSendMessage:
		var payload chat.MessagePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			logCtx.WithError(err).Warn("Malformed sendMessage payload, dropping")
			return
		}
		c.session.Handle(context.Background(), chat.Event{Type: chat.EventSendMessage, Message: &payload})

	default:
		logCtx.WithField("event", env.Event).Warn("Unknown inbound event, dropping")
	}
}

// WritePump 将消息从发送队列泵送到 WebSocket 连接，并周期性发送 Ping。
// 它在自己的 goroutine 中运行。
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	logCtx := logrus.WithFields(logrus.Fields{"conn_id": c.id, "user_id": c.userID})
	defer func() {
		ticker.Stop()
		c.conn.Close()
		logCtx.Info("writePump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 在注销时关闭了发送通道
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logCtx.WithError(err).Warn("Failed to write message to websocket")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logCtx.WithError(err).Warn("Failed to send ping message")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})
		}
	}
}
