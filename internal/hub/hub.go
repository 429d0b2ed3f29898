// Package hub 维护活跃的 WebSocket 连接集合，并实现按房间寻址的广播网关。
package hub

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub 是 chat.BroadcastGateway 的 WebSocket 实现。
// 它跟踪每个连接订阅了哪些房间频道；投递是 fire-and-forget 的：
// 发送缓冲已满的慢客户端会被跳过，由其 WritePump 和清理逻辑善后。
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Client            // connID -> client
	rooms map[string]map[string]*Client // room -> connID -> client

	log *logrus.Entry
}

// NewHub 创建并返回一个新的 Hub 实例。
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*Client),
		rooms: make(map[string]map[string]*Client),
		log:   logrus.WithField("component", "hub"),
	}
}

// envelope 是 WebSocket 线上的统一消息格式，双向一致。
type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Register 将一个已升级的连接纳入 Hub 管理。
func (h *Hub) Register(client *Client) {
	if client == nil {
		h.log.Error("Attempted to register a nil client")
		return
	}
	h.mu.Lock()
	h.conns[client.ID()] = client
	h.mu.Unlock()
	h.log.WithFields(logrus.Fields{"conn_id": client.ID(), "user_id": client.UserID()}).Info("Client registered")
}

// Unregister 将连接从 Hub 和它订阅的所有房间中移除，并关闭其发送通道。
func (h *Hub) Unregister(client *Client) {
	if client == nil {
		return
	}
	h.mu.Lock()
	if _, ok := h.conns[client.ID()]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, client.ID())
	for room, members := range h.rooms {
		if _, ok := members[client.ID()]; ok {
			delete(members, client.ID())
			// 空房间从 Hub 中删除记录
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	// closed 标记和通道关闭都在写锁内完成，deliver 在读锁内检查标记，
	// 保证不会向已关闭的通道发送
	client.closed = true
	close(client.send)
	h.mu.Unlock()
	h.log.WithFields(logrus.Fields{"conn_id": client.ID(), "user_id": client.UserID()}).Info("Client unregistered")
}

// Subscribe 实现 chat.BroadcastGateway。
// 未注册的连接 ID 会被忽略 (连接可能在订阅前就断开了)。
func (h *Hub) Subscribe(connectionID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.conns[connectionID]
	if !ok {
		h.log.WithFields(logrus.Fields{"conn_id": connectionID, "room": room}).Warn("Subscribe for unknown connection, ignoring")
		return
	}
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[string]*Client)
	}
	h.rooms[room][connectionID] = client
}

// SendToConnection 实现 chat.BroadcastGateway，向单个连接发送一个具名事件。
func (h *Hub) SendToConnection(connectionID, event string, payload interface{}) {
	h.mu.RLock()
	client, ok := h.conns[connectionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.deliver(client, event, payload)
}

// SendToRoom 实现 chat.BroadcastGateway，向房间的全部已订阅连接发送一个具名事件。
func (h *Hub) SendToRoom(room, event string, payload interface{}) {
	// 拷贝一份接收者列表，避免发送时长时间持有锁
	h.mu.RLock()
	members := h.rooms[room]
	clients := make([]*Client, 0, len(members))
	for _, c := range members {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}
	h.log.WithFields(logrus.Fields{
		"room":            room,
		"event":           event,
		"recipient_count": len(clients),
	}).Debug("Broadcasting to room")

	for _, c := range clients {
		h.deliver(c, event, payload)
	}
}

// deliver 序列化事件并非阻塞地写入客户端的发送队列。
// SendToRoom 拷贝完接收者列表后客户端可能已经注销，所以发送必须在读锁内
// 重新检查 closed 标记：Unregister 持写锁关闭通道，二者互斥。
func (h *Hub) deliver(client *Client, event string, payload interface{}) {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("Failed to marshal outbound event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if client.closed {
		return
	}
	select {
	case client.send <- data:
	default:
		// 发送队列满说明客户端消费太慢，跳过本条，让 WritePump/清理任务处理后续
		h.log.WithFields(logrus.Fields{"conn_id": client.ID(), "event": event}).Warn("Client send channel full, dropping event")
	}
}
