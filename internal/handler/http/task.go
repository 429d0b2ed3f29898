package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/service"
)

// TaskHandler 处理教室内的作业/任务发布与查询。
type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	if tasks == nil {
		panic("http: TaskService is nil")
	}
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"required,max=2000"`
	TaskType    string `json:"taskType" binding:"required,oneof=assignment quiz announcement"`
	DueDate     string `json:"dueDate" binding:"required"` // RFC 3339
}

// Create 发布新任务，仅限教室管理员（由路由中间件保证）。
func (h *TaskHandler) Create(c *gin.Context) {
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

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid due date, expected RFC 3339")
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), room, userID, req.Title, req.Description, req.TaskType, dueDate)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, task)
}

// List 返回教室的全部任务，成员可见。
func (h *TaskHandler) List(c *gin.Context) {
	room, ok := middleware.RoomFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusInternalServerError, "Room missing from context")
		return
	}

	tasks, err := h.tasks.ListTasks(c.Request.Context(), room.ID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"tasks": tasks})
}
