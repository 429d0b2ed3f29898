// Package tasks 定义后台任务类型和负载结构。
package tasks

import "encoding/json"

// 任务类型常量
const (
	// TypeRoomActivity 更新教室的最后活跃时间
	TypeRoomActivity = "room:activity"
)

// RoomActivityPayload 是教室活跃度更新任务的数据结构
type RoomActivityPayload struct {
	Code string `json:"code"` // 教室房间码
}

// NewRoomActivityTask 创建教室活跃度更新任务的负载字节
func NewRoomActivityTask(code string) ([]byte, error) {
	return json.Marshal(RoomActivityPayload{Code: code})
}
