// Package views содержит чистые производные представления над списком задач:
// поиск, сортировку и срезы для дашборда. Входные срезы не изменяются.
package views

import (
	"math"
	"slices"
	"strings"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/service"
	"time"
)

type SortKey string

const SortByCreatedAt SortKey = "createdAt"
const SortByTitle SortKey = "title"
const SortByPriority SortKey = "priority"
const SortByDueDate SortKey = "dueDate"

type Order string

const Asc Order = "asc"
const Desc Order = "desc"

const (
	RecentLimit       = 5
	UpcomingLimit     = 3
	HighPriorityLimit = 3
)

func (k SortKey) Valid() bool {
	switch k {
	case SortByCreatedAt, SortByTitle, SortByPriority, SortByDueDate:
		return true
	}
	return false
}

func (o Order) Valid() bool {
	return o == Asc || o == Desc
}

// Search - регистронезависимый поиск подстроки в названии или описании
func Search(tasks []task.Task, term string) []task.Task {
	if term == "" {
		return slices.Clone(tasks)
	}
	needle := strings.ToLower(term)

	res := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			res = append(res, t)
		}
	}
	return res
}

// Sort - устойчивая сортировка: при равных ключах порядок коллекции
// сохраняется в обоих направлениях. Отсутствующая дата считается самой ранней.
func Sort(tasks []task.Task, key SortKey, order Order) []task.Task {
	res := slices.Clone(tasks)
	cmp := compareBy(key)
	if order == Desc {
		slices.SortStableFunc(res, func(a, b task.Task) int { return cmp(b, a) })
	} else {
		slices.SortStableFunc(res, cmp)
	}
	return res
}

func compareBy(key SortKey) func(a, b task.Task) int {
	switch key {
	case SortByTitle:
		return func(a, b task.Task) int {
			return strings.Compare(a.Title, b.Title)
		}
	case SortByPriority:
		return func(a, b task.Task) int {
			return a.Priority.Rank() - b.Priority.Rank()
		}
	case SortByDueDate:
		return func(a, b task.Task) int {
			return dueTime(a).Compare(dueTime(b))
		}
	default:
		return func(a, b task.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
}

func dueTime(t task.Task) time.Time {
	if t.DueDate == nil {
		return time.Time{}
	}
	return t.DueDate.Time()
}

// Recent - n последних созданных задач, новые первыми
func Recent(tasks []task.Task, n int) []task.Task {
	return limit(Sort(tasks, SortByCreatedAt, Desc), n)
}

// Upcoming - незавершённые задачи с дедлайном, ближайшие первыми
func Upcoming(tasks []task.Task, n int) []task.Task {
	withDue := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed && t.DueDate != nil {
			withDue = append(withDue, t)
		}
	}
	return limit(Sort(withDue, SortByDueDate, Asc), n)
}

// HighPriority - незавершённые задачи с высоким приоритетом в порядке коллекции
func HighPriority(tasks []task.Task, n int) []task.Task {
	res := make([]task.Task, 0, n)
	for _, t := range tasks {
		if len(res) >= n {
			break
		}
		if !t.Completed && t.Priority == task.PriorityHigh {
			res = append(res, t)
		}
	}
	return res
}

// CompletionRate - процент выполненных задач, округлённый до целого
func CompletionRate(stats service.Stats) int {
	if stats.Total == 0 {
		return 0
	}
	return int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
}

// IsOverdue - задача не выполнена, а дедлайн строго раньше сегодняшней даты
func IsOverdue(t task.Task, today task.Date) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(today)
}

func limit(tasks []task.Task, n int) []task.Task {
	if n < 0 {
		n = 0
	}
	if len(tasks) > n {
		return tasks[:n]
	}
	return tasks
}
