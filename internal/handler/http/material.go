package http

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/service"
)

// 课件上限 50MB。
const maxMaterialSize = 50 << 20

// MaterialHandler 处理课件的上传、列表、下载与删除。
type MaterialHandler struct {
	materials *service.MaterialService
}

func NewMaterialHandler(materials *service.MaterialService) *MaterialHandler {
	if materials == nil {
		panic("http: MaterialService is nil")
	}
	return &MaterialHandler{materials: materials}
}

// Upload 接收 multipart 表单里的 file 字段，落盘后记录元数据。
func (h *MaterialHandler) Upload(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "File is required")
		return
	}
	if fileHeader.Size > maxMaterialSize {
		ErrorResponse(c, http.StatusBadRequest, "File exceeds the 50MB limit")
		return
	}

	dir, err := h.materials.UploadDir(room.Code)
	if err != nil {
		logrus.WithError(err).Error("Failed to prepare upload directory")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to store file")
		return
	}

	fileName := h.materials.BuildFileName(room.Code, fileHeader.Filename)
	if err := c.SaveUploadedFile(fileHeader, filepath.Join(dir, fileName)); err != nil {
		logrus.WithError(err).Error("Failed to save uploaded file")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to store file")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	material, err := h.materials.RecordUpload(c.Request.Context(), room, userID,
		fileName, fileHeader.Filename, mimeType, fileHeader.Size)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"code": room.Code,
		"file": fileName,
		"size": fileHeader.Size,
	}).Info("Material uploaded")
	SuccessResponse(c, http.StatusCreated, material)
}

// List 返回教室的全部课件元数据。
func (h *MaterialHandler) List(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	materials, err := h.materials.ListMaterials(c.Request.Context(), room.ID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"materials": materials})
}

// Download 按文件名把课件发给客户端，附带原始文件名。
func (h *MaterialHandler) Download(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	fileName := c.Param("file")
	// 防止路径穿越
	if fileName != filepath.Base(fileName) || strings.Contains(fileName, "..") {
		ErrorResponse(c, http.StatusBadRequest, "Invalid file name")
		return
	}

	material, path, err := h.materials.ResolveFile(c.Request.Context(), room.Code, fileName)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.FileAttachment(path, material.OriginalName)
}

// Delete 删除课件元数据及磁盘文件，仅限教室管理员。
func (h *MaterialHandler) Delete(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	fileName := c.Param("file")
	if fileName != filepath.Base(fileName) || strings.Contains(fileName, "..") {
		ErrorResponse(c, http.StatusBadRequest, "Invalid file name")
		return
	}

	if err := h.materials.DeleteMaterial(c.Request.Context(), room.Code, fileName); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Material deleted"})
}
