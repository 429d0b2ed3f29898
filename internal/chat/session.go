package chat

import (
	"context"

	"github.com/sirupsen/logrus"

	"classroom-backend/internal/presence"
)

// State 是 Session 的生命周期状态。
// 状态机只有一条路径：Unjoined -> Joined -> Closed，join 之后不会回到 Unjoined。
type State int

const (
	StateUnjoined State = iota
	StateJoined
	StateClosed
)

// Session 是单个连接的协议处理器。
// 同一连接的事件按到达顺序逐个传入 Handle；不同连接各有自己的 Session，
// 它们通过共享的 Registry 和 Gateway 交互，因此 Registry 的操作必须原子。
type Session struct {
	connID   string
	registry *presence.Registry
	gateway  BroadcastGateway
	store    ChatStore

	state State
	room  string // 加入成功后固定，之后不再改变
	log   *logrus.Entry
}

// NewSession 为一个连接创建协议处理器。所有依赖必须非 nil。
func NewSession(connID string, registry *presence.Registry, gateway BroadcastGateway, store ChatStore) *Session {
	if registry == nil {
		panic("presence registry cannot be nil for Session")
	}
	if gateway == nil {
		panic("broadcast gateway cannot be nil for Session")
	}
	if store == nil {
		panic("chat store cannot be nil for Session")
	}
	return &Session{
		connID:   connID,
		registry: registry,
		gateway:  gateway,
		store:    store,
		state:    StateUnjoined,
		log:      logrus.WithFields(logrus.Fields{"component": "chat_session", "conn_id": connID}),
	}
}

// State 返回会话当前状态。
func (s *Session) State() State { return s.state }

// Room 返回会话加入的房间码，未加入时为空串。
func (s *Session) Room() string { return s.room }

// Handle 处理一个入站事件。协议层的失败从不向传输层传播：
// 所有失败路径要么是空操作，要么记录日志后抑制部分结果。
func (s *Session) Handle(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventJoin:
		s.handleJoin(ctx, ev.Join)
	case EventSendMessage:
		s.handleSendMessage(ctx, ev.Message)
	case EventDisconnect:
		s.handleDisconnect()
	default:
		s.log.Warnf("Unknown event type: %d", ev.Type)
	}
}

// handleJoin 处理加入请求：登记在线 -> 订阅房间频道 -> 回放历史 -> 广播在线名单。
func (s *Session) handleJoin(ctx context.Context, payload *JoinPayload) {
	if payload == nil {
		s.log.Warn("Join event without payload, ignoring")
		return
	}
	if s.state != StateUnjoined {
		// 连接在本模型中最多加入一个房间；已加入或已关闭的会话忽略后续 join
		s.log.WithField("room", payload.Room.Code).Debug("Join ignored: session is not in Unjoined state")
		return
	}

	room := payload.Room.Code
	logCtx := s.log.WithFields(logrus.Fields{
		"room":    room,
		"user_id": payload.User.ID,
		"name":    payload.User.Name,
	})

	entry := s.registry.Add(room, payload.User.Name, payload.User.ID, s.connID)
	if entry == nil {
		// 同一 (room, user) 已在线：不订阅、不广播，静默忽略。
		// 已知问题：真正在重连的客户端拿不到历史和名单，行为保留待产品决策。
		logCtx.Info("Join rejected: user already present in room")
		return
	}

	s.state = StateJoined
	s.room = room
	s.gateway.Subscribe(s.connID, room)

	// 历史回放失败不阻止加入，只是没有 history 事件
	history, err := s.store.FetchHistory(ctx, room)
	if err != nil {
		logCtx.WithError(err).Error("Failed to fetch room history, joining without replay")
	} else {
		s.gateway.SendToConnection(s.connID, EventNameHistory, HistoryPayload{History: history})
	}

	// 向全房间 (包括加入者自己) 广播最新在线名单
	s.gateway.SendToRoom(room, EventNameOnlineUsers, RosterPayload{OnlineUsers: s.registry.ListByRoom(room)})
	logCtx.Info("User joined room")
}

// handleSendMessage 处理消息发送：解析在线身份 -> 持久化 -> 广播已持久化的消息。
func (s *Session) handleSendMessage(ctx context.Context, payload *MessagePayload) {
	if payload == nil {
		s.log.Warn("SendMessage event without payload, ignoring")
		return
	}
	if payload.Text == "" {
		// 消息正文必填，空消息既不落库也不广播
		s.log.Debug("Dropping message with empty text")
		return
	}

	entry := s.registry.GetByConnection(s.connID)
	if entry == nil {
		// 传输层在未登记在线的情况下送来了消息，状态不一致，丢弃但不崩溃
		s.log.Warn("Dropping message from untracked connection")
		return
	}

	logCtx := s.log.WithFields(logrus.Fields{"room": entry.Room, "user_id": entry.UserID})

	// 广播的是持久化后的消息而不是原始负载：历史记录是唯一事实来源，
	// 持久化失败时必须抑制广播，否则客户端会看到一条历史里不存在的消息。
	msg, err := s.store.AppendMessage(ctx, entry.Name, entry.UserID, payload.Text, entry.Room)
	if err != nil {
		logCtx.WithError(err).Error("Failed to persist message, broadcast suppressed")
		return
	}

	s.gateway.SendToRoom(entry.Room, EventNameNewMessage, msg)
	logCtx.Debug("Message persisted and broadcast")
}

// handleDisconnect 处理连接断开：清理在线记录并通知剩余成员。
func (s *Session) handleDisconnect() {
	entry := s.registry.RemoveByConnection(s.connID)
	if entry != nil {
		// 向剩余成员广播缩小后的在线名单
		s.gateway.SendToRoom(entry.Room, EventNameOnlineUsers, RosterPayload{OnlineUsers: s.registry.ListByRoom(entry.Room)})
		s.log.WithFields(logrus.Fields{"room": entry.Room, "user_id": entry.UserID}).Info("User left room")
	}
	// join 之前就断开的连接没有在线记录，无需广播
	s.state = StateClosed
}
