// Package chat 实现实时聊天的核心协议：每个连接一个 Session，
// 处理 join / sendMessage / disconnect 事件，协调在线注册表、消息存储和房间广播。
package chat

import (
	"classroom-backend/internal/domain"
	"classroom-backend/internal/presence"
)

// 客户端与服务端之间约定的事件名。
const (
	// client -> server
	EventNameJoin        = "join"
	EventNameSendMessage = "sendMessage"

	// server -> client
	EventNameHistory     = "history"
	EventNameOnlineUsers = "onlineusers"
	EventNameNewMessage  = "newMessage"
)

// EventType 枚举了 Session 能处理的入站事件。
type EventType int

const (
	EventJoin EventType = iota
	EventSendMessage
	EventDisconnect
)

// JoinPayload 是 join 事件的负载。
type JoinPayload struct {
	Room struct {
		Code string `json:"code"`
	} `json:"room"`
	User struct {
		Name string `json:"name"`
		ID   uint   `json:"id"`
	} `json:"user"`
}

// MessagePayload 是 sendMessage 事件的负载。
type MessagePayload struct {
	Text      string `json:"text"`
	Classroom string `json:"classroom"`
}

// Event 是传给 Session.Handle 的带标签事件。
// Type 决定哪个负载字段有效；Disconnect 没有负载。
type Event struct {
	Type    EventType
	Join    *JoinPayload
	Message *MessagePayload
}

// HistoryPayload 是发给新加入者的 history 事件负载。
type HistoryPayload struct {
	History []domain.Message `json:"history"`
}

// RosterPayload 是 onlineusers 事件负载，携带房间的完整在线列表 (不是增量)。
type RosterPayload struct {
	OnlineUsers []*presence.Entry `json:"onlineUsers"`
}
