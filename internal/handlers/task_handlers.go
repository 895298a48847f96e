package handlers

import (
	"encoding/json"
	"net/http"
	"taskKeeper/internal/handlers/dto"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/views"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	Store    TaskStore
	location *time.Location
	now      func() time.Time
}

type HandlerOption func(*TaskHandler)

// WithLocation задаёт зону, в которой определяется "сегодня"
func WithLocation(loc *time.Location) HandlerOption {
	return func(h *TaskHandler) {
		if loc != nil {
			h.location = loc
		}
	}
}

func WithNow(now func() time.Time) HandlerOption {
	return func(h *TaskHandler) {
		h.now = now
	}
}

func NewTaskHandler(store TaskStore, options ...HandlerOption) *TaskHandler {
	h := &TaskHandler{
		Store:    store,
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

// Routes регистрирует маршруты на переданном роутере
func (h *TaskHandler) Routes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.GetVisibleTasks) // GET /tasks?q=&sort=&order=
		r.Post("/", h.PostTask)       // POST /tasks
		r.Get("/all", h.GetAllTasks)  // GET /tasks/all

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", h.UpdateTaskByID)    // PUT /tasks/{id}
			r.Delete("/", h.DeleteTaskByID) // DELETE /tasks/{id}
			r.Post("/toggle", h.ToggleTask) // POST /tasks/{id}/toggle
		})
	})

	r.Get("/filter", h.GetFilter) // GET /filter
	r.Put("/filter", h.SetFilter) // PUT /filter
	r.Get("/stats", h.GetStats)   // GET /stats
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/health", h.HealthCheck)
}

func (h *TaskHandler) today() task.Date {
	return task.DateOf(h.now().In(h.location))
}

func (h *TaskHandler) GetVisibleTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sortKey := views.SortByCreatedAt
	if v := query.Get("sort"); v != "" {
		sortKey = views.SortKey(v)
		if !sortKey.Valid() {
			handleBusinessError(w, NewValidationError("sort", "допустимо createdAt, title, priority или dueDate"))
			return
		}
	}

	order := views.Desc
	if v := query.Get("order"); v != "" {
		order = views.Order(v)
		if !order.Valid() {
			handleBusinessError(w, NewValidationError("order", "допустимо asc или desc"))
			return
		}
	}

	visible := h.Store.VisibleTasks()
	found := views.Sort(views.Search(visible, query.Get("q")), sortKey, order)

	logger.Debug("HTTP: Список задач",
		zap.Int("visible", len(visible)),
		zap.Int("found", len(found)),
		zap.String("sort", string(sortKey)),
		zap.String("order", string(order)))

	writeJSON(w, http.StatusOK, dto.TaskListResponse{
		Tasks:  dto.FromTaskList(found, h.today()),
		Count:  len(found),
		Total:  h.Store.Stats().Total,
		Filter: string(h.Store.Filter()),
	})
}

func (h *TaskHandler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	all := h.Store.AllTasks()
	writeJSON(w, http.StatusOK, dto.TaskListResponse{
		Tasks:  dto.FromTaskList(all, h.today()),
		Count:  len(all),
		Total:  len(all),
		Filter: string(task.FilterAll),
	})
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	valid, verr := validateForm(form, h.today(), nil)
	if verr != nil {
		handleBusinessError(w, verr)
		return
	}

	created := h.Store.AddTask(r.Context(), task.NewTask{
		Title:       valid.Title,
		Description: valid.Description,
		Priority:    valid.Priority,
		DueDate:     valid.DueDate,
	})

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.FromTask(created, h.today()))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, ok := h.Store.TaskByID(id)
	if !ok {
		handleBusinessError(w, NewNotFound("задача", id))
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTask(found, h.today()))
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	logger.HttpRequestInfo(r, "HTTP_IN:", zap.String("task_id", id))

	current, ok := h.Store.TaskByID(id)
	if !ok {
		handleBusinessError(w, NewNotFound("задача", id))
		return
	}

	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	valid, verr := validateForm(form, h.today(), current.DueDate)
	if verr != nil {
		handleBusinessError(w, verr)
		return
	}

	options := []task.TaskOption{
		task.WithTitle(valid.Title),
		task.WithDescription(valid.Description),
		task.WithPriority(valid.Priority),
	}
	if valid.DueDate != nil {
		options = append(options, task.WithDueDate(*valid.DueDate))
	} else {
		options = append(options, task.WithoutDueDate())
	}
	updated := task.Apply(current, options...)
	if valid.Completed != nil {
		updated.Completed = *valid.Completed
	}

	if !h.Store.UpdateTask(r.Context(), updated) {
		// задачу удалили между чтением и записью
		handleBusinessError(w, NewNotFound("задача", id))
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	stored, _ := h.Store.TaskByID(id)
	writeJSON(w, http.StatusOK, dto.FromTask(stored, h.today()))
}

// DeleteTaskByID идемпотентен: удаление неизвестного id тоже 204
func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	logger.HttpRequestInfo(r, "HTTP_IN:", zap.String("task_id", id))

	deleted := h.Store.DeleteTask(r.Context(), id)
	logger.Info("HTTP_OUT: Удаление задачи",
		zap.String("task_id", id),
		zap.Bool("deleted", deleted),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	logger.HttpRequestInfo(r, "HTTP_IN:", zap.String("task_id", id))

	if !h.Store.ToggleTask(r.Context(), id) {
		handleBusinessError(w, NewNotFound("задача", id))
		return
	}

	toggled, _ := h.Store.TaskByID(id)
	logger.Info("HTTP_OUT: Статус задачи переключён",
		zap.String("task_id", id),
		zap.Bool("completed", toggled.Completed))

	writeJSON(w, http.StatusOK, dto.FromTask(toggled, h.today()))
}

func (h *TaskHandler) GetFilter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.FilterRequest{Filter: string(h.Store.Filter())})
}

func (h *TaskHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		handleBusinessError(w, NewBusinessError(CodeUnsupported, "Content-Type должен быть application/json"))
		return
	}

	var request dto.FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		handleBusinessError(w, NewBusinessError(CodeBadRequest, "неверное тело запроса: "+err.Error()))
		return
	}

	if !h.Store.SetFilter(task.Filter(request.Filter)) {
		handleBusinessError(w, NewValidationError("filter", "допустимо all, active или completed"))
		return
	}

	writeJSON(w, http.StatusOK, dto.FilterRequest{Filter: string(h.Store.Filter())})
}

func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Stats())
}

func (h *TaskHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	all := h.Store.AllTasks()
	stats := h.Store.Stats()
	today := h.today()

	writeJSON(w, http.StatusOK, dto.DashboardResponse{
		Stats:          stats,
		CompletionRate: views.CompletionRate(stats),
		Recent:         dto.FromTaskList(views.Recent(all, views.RecentLimit), today),
		Upcoming:       dto.FromTaskList(views.Upcoming(all, views.UpcomingLimit), today),
		HighPriority:   dto.FromTaskList(views.HighPriority(all, views.HighPriorityLimit), today),
	})
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.Store.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		handleBusinessError(w, &BusinessError{
			Code:    CodeUnavailable,
			Message: "хранилище недоступно",
			Details: map[string]any{},
			Err:     err,
		})
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

func (h *TaskHandler) decodeForm(w http.ResponseWriter, r *http.Request) (dto.TaskForm, bool) {
	var form dto.TaskForm

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		handleBusinessError(w, NewBusinessError(CodeUnsupported, "Content-Type должен быть application/json"))
		return form, false
	}

	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		handleBusinessError(w, NewBusinessError(CodeBadRequest, "неверное тело запроса: "+err.Error()))
		return form, false
	}

	return form, true
}
