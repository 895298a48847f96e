package handlers

import (
	"context"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/service"
)

// TaskStore - то, что HTTP-слою разрешено делать с хранилищем задач
type TaskStore interface {
	AddTask(context.Context, task.NewTask) task.Task
	UpdateTask(context.Context, task.Task) bool
	DeleteTask(context.Context, string) bool
	ToggleTask(context.Context, string) bool
	SetFilter(task.Filter) bool

	VisibleTasks() []task.Task
	AllTasks() []task.Task
	TaskByID(string) (task.Task, bool)
	Filter() task.Filter
	Stats() service.Stats
	HealthCheck(context.Context) error
}

var _ TaskStore = (*service.TaskStore)(nil)
