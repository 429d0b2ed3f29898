package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/service"
)

// RoomAdminHandler 处理仅限教室管理员的操作：改名、成员管理、审批。
type RoomAdminHandler struct {
	rooms *service.ClassroomService
}

func NewRoomAdminHandler(rooms *service.ClassroomService) *RoomAdminHandler {
	if rooms == nil {
		panic("http: ClassroomService is nil")
	}
	return &RoomAdminHandler{rooms: rooms}
}

type renameRequest struct {
	Value string `json:"value" binding:"required,min=2,max=50"`
}

type descriptionRequest struct {
	Value string `json:"value" binding:"max=500"`
}

type addStudentRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *RoomAdminHandler) UpdateClassName(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	updated, err := h.rooms.UpdateClassName(c.Request.Context(), room, req.Value)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, updated)
}

func (h *RoomAdminHandler) UpdateSubject(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	updated, err := h.rooms.UpdateSubject(c.Request.Context(), room, req.Value)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, updated)
}

func (h *RoomAdminHandler) UpdateDescription(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	var req descriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	updated, err := h.rooms.UpdateDescription(c.Request.Context(), room, req.Value)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, updated)
}

// AddStudent 管理员按邮箱直接加人，跳过申请流程。
func (h *RoomAdminHandler) AddStudent(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	var req addStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	updated, err := h.rooms.AddStudentByEmail(c.Request.Context(), room, req.Email)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"code":  room.Code,
		"email": req.Email,
	}).Info("Student added by admin")
	SuccessResponse(c, http.StatusOK, updated)
}

func (h *RoomAdminHandler) RemoveStudent(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	studentID, ok := parseUintParam(c, "id")
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	updated, err := h.rooms.RemoveStudent(c.Request.Context(), room, studentID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, updated)
}

func (h *RoomAdminHandler) ApproveJoin(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	applicantID, ok := parseUintParam(c, "id")
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	updated, err := h.rooms.ApproveJoin(c.Request.Context(), room, applicantID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"code":    room.Code,
		"user_id": applicantID,
	}).Info("Join request approved")
	SuccessResponse(c, http.StatusOK, updated)
}

func (h *RoomAdminHandler) DenyJoin(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	applicantID, ok := parseUintParam(c, "id")
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	updated, err := h.rooms.DenyJoin(c.Request.Context(), room, applicantID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, updated)
}
