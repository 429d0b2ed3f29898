package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"classroom-backend/internal/chat"
	"classroom-backend/internal/hub"
	"classroom-backend/internal/middleware"
	"classroom-backend/internal/presence"
	"classroom-backend/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: 上线前按部署域名收紧 Origin 校验
	},
}

// Handler 把通过鉴权的 HTTP 请求升级为聊天 WebSocket 连接。
type Handler struct {
	hub      *hub.Hub
	registry *presence.Registry
	store    chat.ChatStore
	auth     *service.AuthService
	rooms    *service.ClassroomService
}

func NewHandler(h *hub.Hub, registry *presence.Registry, store chat.ChatStore,
	auth *service.AuthService, rooms *service.ClassroomService) *Handler {
	if h == nil || registry == nil || store == nil || auth == nil || rooms == nil {
		panic("websocket: nil dependency")
	}
	return &Handler{hub: h, registry: registry, store: store, auth: auth, rooms: rooms}
}

// Serve 校验身份和教室成员资格后升级连接。
// 升级之后所有错误只能通过关闭连接表达，所以校验必须发生在升级之前。
func (h *Handler) Serve(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	code := c.Param("code")
	room, err := h.rooms.FindByCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Room Code!"})
		return
	}

	member, err := h.rooms.IsMember(c.Request.Context(), room.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden!"})
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := hub.NewClient(h.hub, conn, room.Code, user.ID, user.Name)
	session := chat.NewSession(client.ID(), h.registry, h.hub, h.store)
	client.Bind(session)
	h.hub.Register(client)

	logrus.WithFields(logrus.Fields{
		"sid":     client.ID(),
		"user_id": user.ID,
		"room":    room.Code,
	}).Info("WebSocket connection established")

	client.Run()
}
