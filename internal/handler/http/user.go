package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/service"
)

// 头像上限 10MB，超过直接拒绝。
const maxAvatarSize = 10 << 20

var allowedAvatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// UserHandler 处理个人资料与头像维护。
type UserHandler struct {
	auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	if auth == nil {
		panic("http: AuthService is nil")
	}
	return &UserHandler{auth: auth}
}

type updateNameRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

type updateEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

func (h *UserHandler) UpdateName(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.auth.UpdateName(c.Request.Context(), userID, req.Name)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, user)
}

func (h *UserHandler) UpdateEmail(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.auth.UpdateEmail(c.Request.Context(), userID, req.Email)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Password updated"})
}

// UploadAvatar 接收 multipart 表单里的 avatar 字段并存为用户头像。
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Avatar file is required")
		return
	}
	if fileHeader.Size > maxAvatarSize {
		ErrorResponse(c, http.StatusBadRequest, "Avatar exceeds the 10MB limit")
		return
	}
	if !allowedAvatarTypes[fileHeader.Header.Get("Content-Type")] {
		ErrorResponse(c, http.StatusBadRequest, "Only PNG and JPEG avatars are allowed")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarSize+1))
	if err != nil || int64(len(data)) > maxAvatarSize {
		ErrorResponse(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	if err := h.auth.SetAvatar(c.Request.Context(), userID, data); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Avatar updated"})
}

// GetAvatar 按路径参数中的用户 ID 返回头像字节。
func (h *UserHandler) GetAvatar(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	avatar, err := h.auth.GetAvatar(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if len(avatar) == 0 {
		ErrorResponse(c, http.StatusNotFound, "User has no avatar")
		return
	}

	c.Data(http.StatusOK, http.DetectContentType(avatar), avatar)
}

func (h *UserHandler) RemoveAvatar(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.auth.RemoveAvatar(c.Request.Context(), userID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Avatar removed"})
}
