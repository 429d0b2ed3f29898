package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-backend/internal/chat"
	"classroom-backend/internal/domain"
	"classroom-backend/internal/presence"
)

// fakeGateway 按顺序记录所有出站发送，供断言使用。
type fakeGateway struct {
	subscriptions map[string]string // connID -> room
	sends         []sentEvent
}

type sentEvent struct {
	target  string // 连接 ID 或房间码
	toRoom  bool
	event   string
	payload interface{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{subscriptions: make(map[string]string)}
}

func (g *fakeGateway) Subscribe(connectionID, room string) {
	g.subscriptions[connectionID] = room
}

func (g *fakeGateway) SendToConnection(connectionID, event string, payload interface{}) {
	g.sends = append(g.sends, sentEvent{target: connectionID, event: event, payload: payload})
}

func (g *fakeGateway) SendToRoom(room, event string, payload interface{}) {
	g.sends = append(g.sends, sentEvent{target: room, toRoom: true, event: event, payload: payload})
}

func (g *fakeGateway) eventsNamed(name string) []sentEvent {
	var out []sentEvent
	for _, s := range g.sends {
		if s.event == name {
			out = append(out, s)
		}
	}
	return out
}

// fakeStore 持久化到内存切片，可注入失败。
type fakeStore struct {
	messages   []domain.Message
	nextID     uint
	fetchErr   error
	appendErr  error
	appendCall int
}

func newFakeStore() *fakeStore { return &fakeStore{nextID: 1} }

func (s *fakeStore) FetchHistory(_ context.Context, room string) ([]domain.Message, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var out []domain.Message
	for _, m := range s.messages {
		if m.Classroom == room {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) AppendMessage(_ context.Context, authorName string, authorID uint, text, room string) (*domain.Message, error) {
	s.appendCall++
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	msg := domain.Message{
		ID:         s.nextID,
		Text:       text,
		AuthorName: authorName,
		AuthorID:   authorID,
		Classroom:  room,
	}
	s.nextID++
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func joinEvent(room, name string, userID uint) chat.Event {
	payload := &chat.JoinPayload{}
	payload.Room.Code = room
	payload.User.Name = name
	payload.User.ID = userID
	return chat.Event{Type: chat.EventJoin, Join: payload}
}

func messageEvent(text string) chat.Event {
	return chat.Event{Type: chat.EventSendMessage, Message: &chat.MessagePayload{Text: text}}
}

func TestSession_Join(t *testing.T) {
	reg := presence.NewRegistry()
	gw := newFakeGateway()
	store := newFakeStore()
	store.messages = []domain.Message{
		{ID: 1, Text: "hi", AuthorName: "Bob", AuthorID: 2, Classroom: "ABC123"},
		{ID: 2, Text: "elsewhere", AuthorName: "Eve", AuthorID: 5, Classroom: "XYZ789"},
	}

	sess := chat.NewSession("c1", reg, gw, store)
	sess.Handle(context.Background(), joinEvent("ABC123", "Alice", 1))

	assert.Equal(t, chat.StateJoined, sess.State())
	assert.Equal(t, "ABC123", sess.Room())
	assert.Equal(t, "ABC123", gw.subscriptions["c1"], "加入后应订阅房间频道")

	// 记录的在线条目应带完整身份
	entry := reg.GetByConnection("c1")
	require.NotNil(t, entry)
	assert.Equal(t, "Alice", entry.Name)
	assert.Equal(t, uint(1), entry.UserID)

	// 先给加入者回放本房间历史，再广播在线名单
	require.Len(t, gw.sends, 2)
	history := gw.sends[0]
	assert.False(t, history.toRoom)
	assert.Equal(t, "c1", history.target)
	assert.Equal(t, chat.EventNameHistory, history.event)
	hp, ok := history.payload.(chat.HistoryPayload)
	require.True(t, ok)
	require.Len(t, hp.History, 1, "历史只应包含本房间的消息")
	assert.Equal(t, "hi", hp.History[0].Text)

	roster := gw.sends[1]
	assert.True(t, roster.toRoom)
	assert.Equal(t, "ABC123", roster.target)
	assert.Equal(t, chat.EventNameOnlineUsers, roster.event)
	rp, ok := roster.payload.(chat.RosterPayload)
	require.True(t, ok)
	require.Len(t, rp.OnlineUsers, 1)
	assert.Equal(t, "c1", rp.OnlineUsers[0].ConnectionID)
}

func TestSession_Join_HistoryFetchFails(t *testing.T) {
	reg := presence.NewRegistry()
	gw := newFakeGateway()
	store := newFakeStore()
	store.fetchErr = errors.New("db down")

	sess := chat.NewSession("c1", reg, gw, store)
	sess.Handle(context.Background(), joinEvent("ABC123", "Alice", 1))

	// 历史拉取失败不阻止加入：没有 history 事件，但名单照常广播
	assert.Equal(t, chat.StateJoined, sess.State())
	assert.NotNil(t, reg.GetByConnection("c1"))
	assert.Empty(t, gw.eventsNamed(chat.EventNameHistory))
	require.Len(t, gw.eventsNamed(chat.EventNameOnlineUsers), 1)
}

func TestSession_Join_DuplicateUserRejectedSilently(t *testing.T) {
	reg := presence.NewRegistry()
	gw := newFakeGateway()
	store := newFakeStore()

	first := chat.NewSession("c1", reg, gw, store)
	first.Handle(context.Background(), joinEvent("ABC123", "Alice", 1))
	sendsBefore := len(gw.sends)

	// 同一用户从第二个连接加入同一房间：完全静默
	second := chat.NewSession("c2", reg, gw, store)
	second.Handle(context.Background(), joinEvent("ABC123", "Alice", 1))

	assert.Equal(t, chat.StateUnjoined, second.State(), "被拒绝的会话应保持 Unjoined")
	assert.Len(t, gw.sends, sendsBefore, "拒绝重复加入时不应有任何发送")
	_, subscribed := gw.subscriptions["c2"]
	assert.False(t, subscribed, "被拒绝的连接不应订阅房间")
	assert.Equal(t, 1, reg.Size())
}

func TestSession_Join_SecondJoinIgnored(t *testing.T) {
	reg := presence.NewRegistry()
	gw := newFakeGateway()
	store := newFakeStore()

	sess := chat.NewSession("c1", reg, gw, store)
	sess.Handle(context.Background(), joinEvent("ABC123", "Alice", 1))
	sendsBefore := len(gw.sends)

	// 已加入的会话再次 join (换房间也一样) 是空操作
	sess.Handle(context.Background(), joinEvent("XYZ789", "Alice", 1))

	assert.Equal(t, "ABC123", sess.Room())
	assert.Len(t, gw.sends, sendsBefore)
	assert.Equal(t, 1, reg.Size())
}

func TestSession_SendMessage(t *testing.T) {
	reg := presence.NewRegistry()
	gw := newFakeGateway()
	store := newFakeStore()

	sess := chat.NewSession("c1", reg, gw, store)
	sess.Handle(context.Background(), joinEvent("ABC123", "Alice", 1))
	sess.Handle(context.Background(), messageEvent("hello room"))

	// 身份取自在线记录，不信任消息负载
	require.Len(t, store.messages, 1)
	saved := store.messages[0]
	assert.Equal(t, "hello room", saved.Text)
	assert.Equal(t, "Alice", saved.AuthorName)
	assert.Equal(t, uint(1), saved.AuthorID)
	assert.Equal(t, "ABC123", saved.Classroom)

	// 广播的是持久化后的消息 (带 ID)
	broadcasts := gw.eventsNamed(chat.EventNameNewMessage)
	require.Len(t, broadcasts, 1)
	assert.True(t, broadcasts[0].toRoom)
	assert.Equal(t, "ABC123", broadcasts[0].target)
	msg, ok := broadcasts[0].payload.(*domain.Message)
	require.True(t, ok)
	assert.Equal(t, saved.ID, msg.ID)
	assert.Equal(t, "hello room", msg.Text)
}

func TestSession_SendMessage_PersistFailureSuppressesBroadcast(t *testing.T) {
	reg := presence.NewRegistry()
	gw := newFakeGateway()
	store := newFakeStore()

	sess := chat.NewSession("c1", reg, gw, store)
	sess.Handle(context.Background(), joinEvent("ABC123", "Alice", 1))

	store.appendErr = errors.New("db down")
	sess.Handle(context.Background(), messageEvent("lost"))

	assert.Equal(t, 1, store.appendCall, "应尝试持久化一次")
	assert.Empty(t, gw.eventsNamed(chat.EventNameNewMessage), "持久化失败时必须抑制广播")
}

func TestSession_SendMessage_EmptyTextDropped(t *testing.T) {
	reg := presence.NewRegistry()
	gw := newFakeGateway()
	store := newFakeStore()

	sess := chat.NewSession("c1", reg, gw, store)
	sess.Handle(context.Background(), joinEvent("ABC123", "Alice", 1))
	sendsBefore := len(gw.sends)

	// 消息正文必填：空文本既不落库也不广播
	sess.Handle(context.Background(), messageEvent(""))

	assert.Zero(t, store.appendCall, "空消息不应尝试持久化")
	assert.Len(t, gw.sends, sendsBefore, "空消息不应触发任何广播")
}

func TestSession_SendMessage_BeforeJoinDropped(t *testing.T) {
	reg := presence.NewRegistry()
	gw := newFakeGateway()
	store := newFakeStore()

	sess := chat.NewSession("c1", reg, gw, store)
	sess.Handle(context.Background(), messageEvent("too early"))

	assert.Zero(t, store.appendCall, "未加入的连接的消息应被丢弃而不落库")
	assert.Empty(t, gw.sends)
}

func TestSession_Disconnect(t *testing.T) {
	reg := presence.NewRegistry()
	gw := newFakeGateway()
	store := newFakeStore()

	alice := chat.NewSession("c1", reg, gw, store)
	alice.Handle(context.Background(), joinEvent("ABC123", "Alice", 1))
	bob := chat.NewSession("c2", reg, gw, store)
	bob.Handle(context.Background(), joinEvent("ABC123", "Bob", 2))

	gw.sends = nil
	alice.Handle(context.Background(), chat.Event{Type: chat.EventDisconnect})

	assert.Equal(t, chat.StateClosed, alice.State())
	assert.Nil(t, reg.GetByConnection("c1"))
	assert.Equal(t, 1, reg.Size())

	rosters := gw.eventsNamed(chat.EventNameOnlineUsers)
	require.Len(t, rosters, 1, "断开后应向房间广播一次缩小的名单")
	rp, ok := rosters[0].payload.(chat.RosterPayload)
	require.True(t, ok)
	require.Len(t, rp.OnlineUsers, 1)
	assert.Equal(t, "Bob", rp.OnlineUsers[0].Name)
}

func TestSession_Disconnect_BeforeJoin(t *testing.T) {
	reg := presence.NewRegistry()
	gw := newFakeGateway()
	store := newFakeStore()

	sess := chat.NewSession("c1", reg, gw, store)
	sess.Handle(context.Background(), chat.Event{Type: chat.EventDisconnect})

	assert.Equal(t, chat.StateClosed, sess.State())
	assert.Empty(t, gw.sends, "未加入的连接断开不应广播任何内容")
}

func TestSession_RejoinAfterDisconnect(t *testing.T) {
	reg := presence.NewRegistry()
	gw := newFakeGateway()
	store := newFakeStore()

	old := chat.NewSession("c1", reg, gw, store)
	old.Handle(context.Background(), joinEvent("ABC123", "Alice", 1))
	old.Handle(context.Background(), chat.Event{Type: chat.EventDisconnect})

	// 旧连接断开后，同一用户用新连接重新加入应被接纳
	fresh := chat.NewSession("c2", reg, gw, store)
	fresh.Handle(context.Background(), joinEvent("ABC123", "Alice", 1))

	assert.Equal(t, chat.StateJoined, fresh.State())
	assert.Equal(t, 1, reg.Size())
	assert.Equal(t, "c2", reg.GetByConnection("c2").ConnectionID)
}
