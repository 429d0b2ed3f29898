package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"classroom-backend/internal/domain"
	"classroom-backend/internal/service"
)

// 上下文键，供 Room 中间件之后的处理程序使用
const (
	CtxUserID = "user_id"
	CtxRoom   = "room"
)

// RoomAdmin 返回一个 Gin 中间件，要求认证用户是 URL 参数 :code 教室的创建者。
// 校验通过后把 *domain.Classroom 写入上下文。必须在 Auth 之后使用。
func RoomAdmin(rooms *service.ClassroomService) gin.HandlerFunc {
	if rooms == nil {
		panic("ClassroomService cannot be nil for RoomAdmin middleware")
	}
	return func(c *gin.Context) {
		room, userID, ok := resolveRoom(c, rooms)
		if !ok {
			return
		}
		if room.CreatedBy != userID {
			logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": room.ID}).Warn("RoomAdmin: user is not the classroom admin")
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden! You're not allowed to do that!"})
			c.Abort()
			return
		}
		c.Set(CtxRoom, room)
		c.Next()
	}
}

// RoomMember 返回一个 Gin 中间件，要求认证用户是 :code 教室的成员。
// 校验通过后把 *domain.Classroom 写入上下文。必须在 Auth 之后使用。
func RoomMember(rooms *service.ClassroomService) gin.HandlerFunc {
	if rooms == nil {
		panic("ClassroomService cannot be nil for RoomMember middleware")
	}
	return func(c *gin.Context) {
		room, userID, ok := resolveRoom(c, rooms)
		if !ok {
			return
		}
		isMember, err := rooms.IsMember(c.Request.Context(), room.ID, userID)
		if err != nil {
			logrus.WithError(err).Error("RoomMember: membership check failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
			c.Abort()
			return
		}
		if !isMember {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden!"})
			c.Abort()
			return
		}
		c.Set(CtxRoom, room)
		c.Next()
	}
}

// resolveRoom 提取认证用户和 :code 对应的教室；失败时已写好响应并 Abort。
func resolveRoom(c *gin.Context, rooms *service.ClassroomService) (*domain.Classroom, uint, bool) {
	userID, ok := UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		c.Abort()
		return nil, 0, false
	}

	code := c.Param("code")
	room, err := rooms.FindByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrClassroomNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Room Code!"})
		} else {
			logrus.WithError(err).WithField("code", code).Error("Room middleware: failed to resolve classroom")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		}
		c.Abort()
		return nil, 0, false
	}
	return room, userID, true
}

// UserIDFromContext 读取 Auth 中间件写入的用户 ID。
func UserIDFromContext(c *gin.Context) (uint, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		return 0, false
	}
	userID, ok := v.(uint)
	return userID, ok
}

// RoomFromContext 读取 Room 中间件写入的教室。
func RoomFromContext(c *gin.Context) (*domain.Classroom, bool) {
	v, exists := c.Get(CtxRoom)
	if !exists {
		return nil, false
	}
	room, ok := v.(*domain.Classroom)
	return room, ok
}
