package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/chat"
	"classroom-backend/internal/middleware"
)

// MessageHandler 提供聊天记录的 HTTP 只读入口，作为 WebSocket 历史推送的补充。
type MessageHandler struct {
	store chat.ChatStore
}

func NewMessageHandler(store chat.ChatStore) *MessageHandler {
	if store == nil {
		panic("http: ChatStore is nil")
	}
	return &MessageHandler{store: store}
}

// History 返回教室的全部历史消息，按发送时间升序。
func (h *MessageHandler) History(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	messages, err := h.store.FetchHistory(c.Request.Context(), room.Code)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"history": messages})
}
