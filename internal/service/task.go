package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"classroom-backend/internal/domain"
	"classroom-backend/internal/repository"
)

// TaskService 负责教室任务 (作业/测验) 的业务逻辑。
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService 创建 TaskService 实例。
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	if taskRepo == nil {
		panic("TaskRepository cannot be nil for TaskService")
	}
	return &TaskService{taskRepo: taskRepo}
}

// CreateTask 在教室中布置一项新任务。
func (s *TaskService) CreateTask(ctx context.Context, room *domain.Classroom, creatorID uint, title, description, taskType string, dueDate time.Time) (*domain.Task, error) {
	task := &domain.Task{
		Title:       title,
		Description: description,
		TaskType:    taskType,
		DueDate:     dueDate,
		ClassroomID: room.ID,
		CreatedBy:   creatorID,
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"room_id": room.ID, "title": title}).Error("Failed to save task")
		return nil, ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"room_id": room.ID, "task_id": task.ID}).Info("Task created")
	return task, nil
}

// ListTasks 返回教室的全部任务。
func (s *TaskService) ListTasks(ctx context.Context, classroomID uint) ([]domain.Task, error) {
	tasks, err := s.taskRepo.FindByClassroom(ctx, classroomID)
	if err != nil {
		logrus.WithError(err).WithField("room_id", classroomID).Error("Failed to list tasks")
		return nil, ErrInternalServer
	}
	return tasks, nil
}
