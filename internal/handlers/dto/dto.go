package dto

import (
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/service"
	"taskKeeper/internal/views"
	"time"
)

// TaskForm - тело POST /tasks и PUT /tasks/{id}.
// DueDate: null или "" означает "без дедлайна".
type TaskForm struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
	Completed   *bool   `json:"completed,omitempty"`
}

type FilterRequest struct {
	Filter string `json:"filter"`
}

type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	DueDate     *task.Date `json:"dueDate"`
	IsOverdue   bool       `json:"isOverdue"`
}

type TaskListResponse struct {
	Tasks  []TaskResponse `json:"tasks"`
	Count  int            `json:"count"`
	Total  int            `json:"total"`
	Filter string         `json:"filter"`
}

type DashboardResponse struct {
	Stats          service.Stats  `json:"stats"`
	CompletionRate int            `json:"completionRate"`
	Recent         []TaskResponse `json:"recent"`
	Upcoming       []TaskResponse `json:"upcoming"`
	HighPriority   []TaskResponse `json:"highPriority"`
}

func FromTask(t task.Task, today task.Date) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt,
		DueDate:     t.DueDate,
		IsOverdue:   views.IsOverdue(t, today),
	}
}

func FromTaskList(tasks []task.Task, today task.Date) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, today)
	}
	return result
}
