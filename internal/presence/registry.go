// Package presence 维护当前在线连接到 (教室, 用户) 的进程内映射。
// 注册表是纯运行时状态，不做任何持久化；进程重启后为空。
package presence

import "sync"

// Entry 表示一条在线记录：某个连接以某个用户身份加入了某个教室。
// JSON 字段名与客户端约定的 onlineusers 负载保持一致。
type Entry struct {
	Room         string `json:"room"` // 教室房间码
	Name         string `json:"name"` // 加入时的用户名快照
	UserID       uint   `json:"dbid"` // 用户在数据库中的 ID
	ConnectionID string `json:"sid"`  // 传输层分配的连接 ID，每个活跃连接唯一
}

// Registry 是连接在线状态的权威注册表。
// 它由服务进程启动时创建一次并注入到各个会话中，不允许作为包级全局变量使用，
// 以便测试可以创建多个互相独立的注册表。
// 所有方法都是并发安全的。
type Registry struct {
	mu      sync.Mutex
	entries []*Entry          // 保持插入顺序，ListByRoom 按此顺序返回
	byConn  map[string]*Entry // connectionID -> entry
}

// NewRegistry 创建一个空的 Registry。
func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[string]*Entry),
	}
}

// Add 为一个连接登记在线状态。
// 如果同一 (room, userID) 已有活跃记录，则拒绝重复加入并返回 nil，
// 已有记录保持不变：重连尝试在旧连接断开前是幂等的空操作，而不是顶掉旧会话。
// 同一 connectionID 也至多持有一条记录，重复登记同样返回 nil。
func (r *Registry) Add(room, name string, userID uint, connectionID string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[connectionID]; ok {
		return nil
	}
	for _, e := range r.entries {
		if e.Room == room && e.UserID == userID {
			return nil // 不予接纳，保留原有记录
		}
	}

	entry := &Entry{
		Room:         room,
		Name:         name,
		UserID:       userID,
		ConnectionID: connectionID,
	}
	r.entries = append(r.entries, entry)
	r.byConn[connectionID] = entry
	return entry
}

// GetByConnection 根据连接 ID 查找在线记录，不存在时返回 nil。纯查询，无副作用。
func (r *Registry) GetByConnection(connectionID string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byConn[connectionID]
}

// ListByRoom 返回某教室当前的全部在线记录，按加入顺序排列。
func (r *Registry) ListByRoom(room string) []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*Entry
	for _, e := range r.entries {
		if e.Room == room {
			result = append(result, e)
		}
	}
	return result
}

// RemoveByConnection 删除并返回该连接的在线记录。
// 连接从未 join 过就断开是正常情况，此时返回 nil 而不报错。
func (r *Registry) RemoveByConnection(connectionID string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byConn[connectionID]
	if !ok {
		return nil
	}
	delete(r.byConn, connectionID)
	for i, e := range r.entries {
		if e == entry {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	return entry
}

// Size 返回当前在线记录总数。
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
