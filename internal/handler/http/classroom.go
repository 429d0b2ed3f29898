package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/service"
)

// ClassroomHandler 处理教室的创建、列表与加入申请。
type ClassroomHandler struct {
	rooms *service.ClassroomService
}

func NewClassroomHandler(rooms *service.ClassroomService) *ClassroomHandler {
	if rooms == nil {
		panic("http: ClassroomService is nil")
	}
	return &ClassroomHandler{rooms: rooms}
}

type createClassroomRequest struct {
	ClassName   string `json:"classname" binding:"required,min=2,max=50"`
	Subject     string `json:"subject" binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"max=500"`
}

type joinClassroomRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// Create 创建教室，创建者自动成为管理员和首名成员。
func (h *ClassroomHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	room, err := h.rooms.CreateClassroom(c.Request.Context(), userID, req.ClassName, req.Subject, req.Description)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"code":    room.Code,
		"user_id": userID,
	}).Info("Classroom created")
	SuccessResponse(c, http.StatusCreated, room)
}

// ListJoined 返回当前用户已加入的全部教室。
func (h *ClassroomHandler) ListJoined(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rooms, err := h.rooms.JoinedClassrooms(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"classrooms": rooms})
}

// RequestJoin 按房间码提交加入申请，等待管理员审批。
func (h *ClassroomHandler) RequestJoin(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req joinClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.rooms.RequestJoin(c.Request.Context(), userID, req.Code); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Join request submitted"})
}

// Get 返回单个教室的详情，要求请求者是成员（由路由中间件保证）。
func (h *ClassroomHandler) Get(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}
	SuccessResponse(c, http.StatusOK, room)
}
