package task

import (
	"strings"
)

// TaskOption изменяет копию задачи перед UpdateTask
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = strings.TrimSpace(title)
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = strings.TrimSpace(description)
	}
}

func WithPriority(priority Priority) TaskOption {
	if !priority.Valid() {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithDueDate(dueDate Date) TaskOption {
	if dueDate.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.DueDate = &dueDate
	}
}

func WithoutDueDate() TaskOption {
	return func(task *Task) {
		task.DueDate = nil
	}
}

// Apply возвращает изменённую копию, nil-опции пропускаются
func Apply(t Task, options ...TaskOption) Task {
	res := t.Clone()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&res)
	}
	return res
}
