package service

import (
	"context"
	"errors"
	"sync"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	rep "taskKeeper/internal/repository"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskStore - единственный источник правды для задач и фильтра.
// Все изменения идут через его методы, производные представления
// считаются на лету из текущего состояния.
type TaskStore struct {
	repo   Persistence
	mtx    sync.RWMutex
	tasks  []task.Task
	filter task.Filter
	now    func() time.Time
	newID  func() string
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
}

// сколько ждём запись коллекции в хранилище
const saveTimeout = 5 * time.Second

type StoreOption func(*TaskStore)

func WithClock(now func() time.Time) StoreOption {
	return func(s *TaskStore) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) StoreOption {
	return func(s *TaskStore) {
		s.newID = newID
	}
}

// NewTaskStore создаёт хранилище и один раз загружает сохранённую коллекцию.
// Пустой слот или битые данные дают пустую коллекцию.
func NewTaskStore(ctx context.Context, repo Persistence, options ...StoreOption) *TaskStore {
	s := &TaskStore{
		repo:   repo,
		tasks:  []task.Task{},
		filter: task.FilterAll,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range options {
		opt(s)
	}

	tasks, err := repo.Load(ctx)
	switch {
	case errors.Is(err, rep.ErrNotFound):
		logger.Info("Store: Сохранённых задач нет, начинаем с пустого списка")
	case err != nil:
		logger.Warn("Store: Не удалось загрузить задачи, начинаем с пустого списка", zap.Error(err))
	default:
		for _, t := range tasks {
			s.tasks = append(s.tasks, t.Clone())
		}
		logger.Info("Store: Задачи загружены", zap.Int("count", len(s.tasks)))
	}

	return s
}

func (s *TaskStore) AddTask(ctx context.Context, input task.NewTask) task.Task {
	priority := input.Priority
	if !priority.Valid() {
		priority = task.PriorityMedium
	}

	created := task.Task{
		ID:          s.newID(),
		Title:       input.Title,
		Description: input.Description,
		Completed:   false,
		Priority:    priority,
		CreatedAt:   s.now(),
	}
	if input.DueDate != nil && !input.DueDate.IsZero() {
		due := *input.DueDate
		created.DueDate = &due
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.tasks = append(s.tasks, created)
	s.persist(ctx, "add_task")

	return created.Clone()
}

// UpdateTask заменяет задачу с тем же id на месте.
// CreatedAt остаётся прежним. Возвращает false, если задачи нет.
func (s *TaskStore) UpdateTask(ctx context.Context, updated task.Task) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexOf(updated.ID)
	if i < 0 {
		logger.Debug("Store: Задача для обновления не найдена", zap.String("task_id", updated.ID))
		return false
	}

	replacement := updated.Clone()
	replacement.CreatedAt = s.tasks[i].CreatedAt
	if replacement.DueDate != nil && replacement.DueDate.IsZero() {
		replacement.DueDate = nil
	}
	s.tasks[i] = replacement
	s.persist(ctx, "update_task")
	return true
}

func (s *TaskStore) DeleteTask(ctx context.Context, id string) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		logger.Debug("Store: Задача для удаления не найдена", zap.String("task_id", id))
		return false
	}

	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.persist(ctx, "delete_task")
	return true
}

func (s *TaskStore) ToggleTask(ctx context.Context, id string) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		logger.Debug("Store: Задача для переключения не найдена", zap.String("task_id", id))
		return false
	}

	s.tasks[i].Completed = !s.tasks[i].Completed
	s.persist(ctx, "toggle_task")
	return true
}

// SetFilter меняет фильтр только в памяти. Неизвестное значение игнорируется.
func (s *TaskStore) SetFilter(filter task.Filter) bool {
	if !filter.Valid() {
		logger.Debug("Store: Неизвестный фильтр", zap.String("filter", string(filter)))
		return false
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.filter = filter
	return true
}

func (s *TaskStore) Filter() task.Filter {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.filter
}

// VisibleTasks - коллекция после активного фильтра, порядок сохраняется
func (s *TaskStore) VisibleTasks() []task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if s.filter.Match(t) {
			res = append(res, t.Clone())
		}
	}
	return res
}

func (s *TaskStore) AllTasks() []task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.snapshot()
}

func (s *TaskStore) TaskByID(id string) (task.Task, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

func (s *TaskStore) Stats() Stats {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stats := Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			stats.Completed++
		}
	}
	stats.Active = stats.Total - stats.Completed
	return stats
}

func (s *TaskStore) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func (s *TaskStore) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TaskStore) snapshot() []task.Task {
	res := make([]task.Task, len(s.tasks))
	for i, t := range s.tasks {
		res[i] = t.Clone()
	}
	return res
}

// persist пишет всю коллекцию. Вызывается под блокировкой записи.
// Ошибка только логируется: состояние в памяти остаётся главным,
// следующая удачная запись сохранит всё целиком.
// Отмена ctx вызывающего запись не прерывает: изменение уже применено.
func (s *TaskStore) persist(ctx context.Context, operation string) {
	start := time.Now()

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := s.repo.Save(saveCtx, s.snapshot()); err != nil {
		logger.Error("Store: Не удалось сохранить задачи", err,
			zap.String("operation", operation),
			zap.Int("count", len(s.tasks)))
		return
	}
	logger.Debug("Store: Задачи сохранены",
		zap.String("operation", operation),
		zap.Int("count", len(s.tasks)),
		zap.Duration("ms", time.Since(start)))
}
