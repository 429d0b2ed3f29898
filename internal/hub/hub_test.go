package hub

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain 非阻塞地取出客户端发送队列里的全部消息。
func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestHub_SendToConnection_Envelope(t *testing.T) {
	h := NewHub()
	client := NewClient(h, nil, "ABC123", 1, "Alice")
	h.Register(client)

	h.SendToConnection(client.ID(), "history", map[string]string{"k": "v"})

	msgs := drain(client)
	require.Len(t, msgs, 1)

	var env envelope
	require.NoError(t, json.Unmarshal(msgs[0], &env))
	assert.Equal(t, "history", env.Event)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "v", data["k"])
}

func TestHub_SendToRoom_OnlySubscribed(t *testing.T) {
	h := NewHub()
	alice := NewClient(h, nil, "ABC123", 1, "Alice")
	bob := NewClient(h, nil, "ABC123", 2, "Bob")
	eve := NewClient(h, nil, "XYZ789", 3, "Eve")
	h.Register(alice)
	h.Register(bob)
	h.Register(eve)

	h.Subscribe(alice.ID(), "ABC123")
	h.Subscribe(bob.ID(), "ABC123")
	h.Subscribe(eve.ID(), "XYZ789")

	h.SendToRoom("ABC123", "newMessage", "hello")

	assert.Len(t, drain(alice), 1)
	assert.Len(t, drain(bob), 1)
	assert.Empty(t, drain(eve), "其他房间的连接不应收到广播")
}

func TestHub_SendToRoom_RegisteredButNotSubscribed(t *testing.T) {
	h := NewHub()
	alice := NewClient(h, nil, "ABC123", 1, "Alice")
	h.Register(alice)

	// 注册了但还没 join 的连接不在广播范围内
	h.SendToRoom("ABC123", "newMessage", "hello")
	assert.Empty(t, drain(alice))
}

func TestHub_SubscribeUnknownConnection(t *testing.T) {
	h := NewHub()
	// 不应 panic
	h.Subscribe("ghost", "ABC123")
	h.SendToRoom("ABC123", "newMessage", "hello")
}

func TestHub_Unregister(t *testing.T) {
	h := NewHub()
	alice := NewClient(h, nil, "ABC123", 1, "Alice")
	bob := NewClient(h, nil, "ABC123", 2, "Bob")
	h.Register(alice)
	h.Register(bob)
	h.Subscribe(alice.ID(), "ABC123")
	h.Subscribe(bob.ID(), "ABC123")

	h.Unregister(alice)

	// 发送通道被关闭，通知 WritePump 退出
	_, open := <-alice.send
	assert.False(t, open, "注销后发送通道应被关闭")

	h.SendToRoom("ABC123", "newMessage", "hello")
	assert.Len(t, drain(bob), 1)

	// 重复注销是无害的空操作
	h.Unregister(alice)
}

func TestHub_DeliverAfterUnregister(t *testing.T) {
	h := NewHub()
	client := NewClient(h, nil, "ABC123", 1, "Alice")
	h.Register(client)
	h.Subscribe(client.ID(), "ABC123")

	// 复现广播与注销交错：SendToRoom 拷贝完接收者列表后、投递前，
	// 客户端完成注销并关闭了发送通道。投递必须静默跳过而不是 panic。
	h.Unregister(client)
	assert.NotPanics(t, func() {
		h.deliver(client, "newMessage", "late event")
	})
}

func TestHub_ConcurrentBroadcastAndUnregister(t *testing.T) {
	h := NewHub()
	stable := NewClient(h, nil, "ABC123", 1, "Alice")
	h.Register(stable)
	h.Subscribe(stable.ID(), "ABC123")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		churn := NewClient(h, nil, "ABC123", uint(i+2), "Bob")
		h.Register(churn)
		h.Subscribe(churn.ID(), "ABC123")

		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				h.SendToRoom("ABC123", "newMessage", j)
				drain(stable)
			}
		}()
		go func(c *Client) {
			defer wg.Done()
			h.Unregister(c)
		}(churn)
	}
	wg.Wait()
}

func TestHub_SlowClientDropsEvent(t *testing.T) {
	h := NewHub()
	client := NewClient(h, nil, "ABC123", 1, "Alice")
	h.Register(client)
	h.Subscribe(client.ID(), "ABC123")

	// 填满发送缓冲后再投递：事件被丢弃而不是阻塞
	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte("x")
	}
	done := make(chan struct{})
	go func() {
		h.SendToRoom("ABC123", "newMessage", "overflow")
		close(done)
	}()
	<-done

	assert.Len(t, drain(client), cap(client.send), "缓冲满时新事件应被丢弃")
}
