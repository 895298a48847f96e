package views_test

import (
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/service"
	"taskKeeper/internal/views"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *task.Date {
	return &task.Date{Year: y, Month: m, Day: d}
}

func ids(tasks []task.Task) []string {
	res := []string{}
	for _, t := range tasks {
		res = append(res, t.ID)
	}
	return res
}

func fixture() []task.Task {
	return []task.Task{
		{ID: "1", Title: "Buy milk", Description: "Semi-skimmed", Priority: task.PriorityLow, CreatedAt: base.Add(1 * time.Hour)},
		{ID: "2", Title: "File taxes", Description: "Before the deadline", Priority: task.PriorityHigh, CreatedAt: base.Add(2 * time.Hour), DueDate: date(2025, time.October, 1)},
		{ID: "3", Title: "Call mom", Priority: task.PriorityMedium, CreatedAt: base.Add(3 * time.Hour), DueDate: date(2025, time.September, 20)},
		{ID: "4", Title: "Archive MILK receipts", Priority: task.PriorityHigh, Completed: true, CreatedAt: base.Add(4 * time.Hour)},
		{ID: "5", Title: "Plan trip", Priority: task.PriorityMedium, CreatedAt: base.Add(5 * time.Hour)},
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name string
		term string
		want []string
	}{
		{name: "empty term is identity", term: "", want: []string{"1", "2", "3", "4", "5"}},
		{name: "case insensitive title", term: "milk", want: []string{"1", "4"}},
		{name: "matches description", term: "DEADLINE", want: []string{"2"}},
		{name: "no match", term: "dentist", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(views.Search(fixture(), tt.term)))
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name  string
		key   views.SortKey
		order views.Order
		want  []string
	}{
		{name: "createdAt asc", key: views.SortByCreatedAt, order: views.Asc, want: []string{"1", "2", "3", "4", "5"}},
		{name: "createdAt desc", key: views.SortByCreatedAt, order: views.Desc, want: []string{"5", "4", "3", "2", "1"}},
		{name: "title asc", key: views.SortByTitle, order: views.Asc, want: []string{"4", "1", "3", "2", "5"}},
		{name: "priority desc stable", key: views.SortByPriority, order: views.Desc, want: []string{"2", "4", "3", "5", "1"}},
		{name: "priority asc stable", key: views.SortByPriority, order: views.Asc, want: []string{"1", "3", "5", "2", "4"}},
		{name: "dueDate asc missing first", key: views.SortByDueDate, order: views.Asc, want: []string{"1", "4", "5", "3", "2"}},
		{name: "dueDate desc missing last", key: views.SortByDueDate, order: views.Desc, want: []string{"2", "3", "1", "4", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(views.Sort(fixture(), tt.key, tt.order)))
		})
	}
}

func TestSort_DoesNotModifyInput(t *testing.T) {
	in := fixture()
	_ = views.Sort(in, views.SortByCreatedAt, views.Desc)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(in))
}

func TestSort_UnknownPriorityRanksLowest(t *testing.T) {
	in := []task.Task{
		{ID: "x", Priority: "urgent"},
		{ID: "l", Priority: task.PriorityLow},
	}
	assert.Equal(t, []string{"l", "x"}, ids(views.Sort(in, views.SortByPriority, views.Desc)))
}

func TestSortKeyAndOrderValid(t *testing.T) {
	assert.True(t, views.SortByDueDate.Valid())
	assert.False(t, views.SortKey("status").Valid())
	assert.True(t, views.Desc.Valid())
	assert.False(t, views.Order("sideways").Valid())
}

func TestRecent(t *testing.T) {
	tasks := fixture()
	tasks = append(tasks, task.Task{ID: "6", CreatedAt: base.Add(6 * time.Hour)})

	assert.Equal(t, []string{"6", "5", "4", "3", "2"}, ids(views.Recent(tasks, views.RecentLimit)))
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids(tasks), "input untouched")
}

func TestUpcoming(t *testing.T) {
	tasks := fixture()
	tasks = append(tasks,
		task.Task{ID: "6", DueDate: date(2025, time.September, 10)},
		task.Task{ID: "7", DueDate: date(2025, time.September, 5), Completed: true},
		task.Task{ID: "8", DueDate: date(2025, time.December, 25)},
	)

	assert.Equal(t, []string{"6", "3", "2"}, ids(views.Upcoming(tasks, views.UpcomingLimit)))
}

func TestHighPriority(t *testing.T) {
	tasks := fixture()
	tasks = append(tasks,
		task.Task{ID: "6", Priority: task.PriorityHigh},
		task.Task{ID: "7", Priority: task.PriorityHigh},
		task.Task{ID: "8", Priority: task.PriorityHigh},
	)

	assert.Equal(t, []string{"2", "6", "7"}, ids(views.HighPriority(tasks, views.HighPriorityLimit)))
}

func TestEmptyInputs(t *testing.T) {
	assert.Empty(t, views.Recent(nil, 5))
	assert.Empty(t, views.Upcoming(nil, 3))
	assert.Empty(t, views.HighPriority(nil, 3))
	assert.Empty(t, views.Sort(nil, views.SortByTitle, views.Asc))
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0, views.CompletionRate(service.Stats{}))
	assert.Equal(t, 33, views.CompletionRate(service.Stats{Total: 3, Completed: 1, Active: 2}))
	assert.Equal(t, 67, views.CompletionRate(service.Stats{Total: 3, Completed: 2, Active: 1}))
	assert.Equal(t, 100, views.CompletionRate(service.Stats{Total: 4, Completed: 4}))
}

func TestIsOverdue(t *testing.T) {
	today := task.Date{Year: 2025, Month: time.September, Day: 15}

	assert.True(t, views.IsOverdue(task.Task{DueDate: date(2025, time.September, 14)}, today))
	assert.False(t, views.IsOverdue(task.Task{DueDate: date(2025, time.September, 15)}, today))
	assert.False(t, views.IsOverdue(task.Task{DueDate: date(2025, time.September, 14), Completed: true}, today))
	assert.False(t, views.IsOverdue(task.Task{}, today))
}
