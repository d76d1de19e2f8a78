package api

import (
	"net/http"
	"strconv"
	"time"

	"study_garden/internal/middleware"
	"study_garden/internal/model"
	"study_garden/internal/service"
	"study_garden/pkg/auth"
	"study_garden/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	dueDateLayout  = "2006-01-02"
	dueTimeLayout  = "15:04"
	defaultDueTime = "23:59"
)

type taskRoutes struct {
	ts service.TaskServiceI
	a  *auth.TelegramAuth
}

func NewTaskRoutes(handler *gin.RouterGroup, ts service.TaskServiceI, a *auth.TelegramAuth) {
	r := &taskRoutes{ts: ts, a: a}

	handler.GET("/categories", r.GetCategories)

	h := handler.Group("/tasks")
	h.Use(a.TelegramAuthMiddleware(), middleware.RequireUser())
	{
		h.GET("", r.ListTasks)
		h.POST("", r.CreateTask)
		h.DELETE("/:task_id", r.DeleteTask)
		h.POST("/:task_id/complete", r.CompleteTask)
	}
}

type CreateTaskRequest struct {
	Course   string `json:"course"`
	Title    string `json:"title"`
	Category string `json:"category"`
	DueDate  string `json:"due_date"`
	DueTime  string `json:"due_time"`
}

type TaskResponse struct {
	ID        int64  `json:"id"`
	Course    string `json:"course"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Points    int    `json:"points"`
	DueDate   string `json:"due_date"`
	DueTime   string `json:"due_time"`
	Completed bool   `json:"completed"`
}

func newTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Course:    t.Course,
		Title:     t.Title,
		Category:  string(t.Category),
		Points:    t.Category.Points(),
		DueDate:   t.DueAt.Format(dueDateLayout),
		DueTime:   t.DueAt.Format(dueTimeLayout),
		Completed: t.Completed,
	}
}

func parseDue(date, clock string) (time.Time, error) {
	if date == "" {
		return time.Time{}, nil
	}
	if clock == "" {
		clock = defaultDueTime
	}
	return time.ParseInLocation(dueDateLayout+" "+dueTimeLayout, date+" "+clock, time.UTC)
}

func (r *taskRoutes) CreateTask(c *gin.Context) {
	log := logger.Logger()

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	due, err := parseDue(req.DueDate, req.DueTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due date or time"})
		return
	}

	task, err := r.ts.CreateTask(c.Request.Context(), middleware.UserID(c), service.TaskInput{
		Course:   req.Course,
		Title:    req.Title,
		Category: model.Category(req.Category),
		DueAt:    due,
	})
	if err != nil {
		writeError(c, log, "failed to create task", err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (r *taskRoutes) ListTasks(c *gin.Context) {
	log := logger.Logger()

	tasks, err := r.ts.ListTasks(c.Request.Context(), model.TaskFilter{
		UserID: middleware.UserID(c),
		Status: model.TaskStatus(c.DefaultQuery("status", string(model.TaskStatusAll))),
	})
	if err != nil {
		writeError(c, log, "failed to list tasks", err)
		return
	}

	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = newTaskResponse(t)
	}
	c.JSON(http.StatusOK, out)
}

func (r *taskRoutes) DeleteTask(c *gin.Context) {
	log := logger.Logger()

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := r.ts.DeleteTask(c.Request.Context(), middleware.UserID(c), taskID); err != nil {
		writeError(c, log, "failed to delete task", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (r *taskRoutes) CompleteTask(c *gin.Context) {
	log := logger.Logger()

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	result, err := r.ts.MarkCompleted(c.Request.Context(), middleware.UserID(c), taskID)
	if err != nil {
		writeError(c, log, "failed to complete task", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id":           taskID,
		"rewards":           result.Granted,
		"catalog_exhausted": result.Exhausted,
	})
}

func (r *taskRoutes) GetCategories(c *gin.Context) {
	categories := r.ts.Categories()

	out := make([]gin.H, len(categories))
	for i, cv := range categories {
		out[i] = gin.H{"category": cv.Category, "points": cv.Points}
	}
	c.JSON(http.StatusOK, out)
}

func parseTaskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("task_id"), 10, 64)
	if err != nil || id <= 0 {
		logger.Logger().Info("invalid task_id", zap.String("task_id", c.Param("task_id")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task_id"})
		return 0, false
	}
	return id, true
}
