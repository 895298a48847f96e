package handlers

import (
	"mime"
	"net/http"
	"strings"
	"taskKeeper/internal/handlers/dto"
	"taskKeeper/internal/models/task"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// validForm - форма после проверки и нормализации
type validForm struct {
	Title       string
	Description string
	Priority    task.Priority // пусто, если не передан
	DueDate     *task.Date
	Completed   *bool
}

// validateForm проверяет форму создания/редактирования.
// today - календарная дата в зоне из конфига: дедлайн раньше неё запрещён.
// current - дедлайн редактируемой задачи, его можно оставить как есть,
// даже если он уже прошёл.
func validateForm(form dto.TaskForm, today task.Date, current *task.Date) (validForm, *BusinessError) {
	res := validForm{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		Completed:   form.Completed,
	}

	if res.Title == "" {
		return validForm{}, NewValidationError("title", "название обязательно")
	}
	if utf8.RuneCountInString(res.Title) > MaxTitleLength {
		return validForm{}, NewValidationError("title", "название длиннее 100 символов")
	}
	if utf8.RuneCountInString(res.Description) > MaxDescriptionLength {
		return validForm{}, NewValidationError("description", "описание длиннее 500 символов")
	}

	if form.Priority != "" {
		priority := task.Priority(form.Priority)
		if !priority.Valid() {
			return validForm{}, NewValidationError("priority", "допустимо low, medium или high")
		}
		res.Priority = priority
	}

	if form.DueDate != nil && strings.TrimSpace(*form.DueDate) != "" {
		due, err := task.ParseDate(strings.TrimSpace(*form.DueDate))
		if err != nil {
			return validForm{}, NewValidationError("dueDate", "ожидается дата в формате YYYY-MM-DD")
		}
		unchanged := current != nil && *current == due
		if !unchanged && due.Before(today) {
			return validForm{}, NewValidationError("dueDate", "дедлайн не может быть в прошлом")
		}
		res.DueDate = &due
	}

	return res, nil
}
