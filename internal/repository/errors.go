package repository

import "errors"

// ErrNotFound - в слоте ещё ничего не сохранено
var ErrNotFound = errors.New("данные не найдены")

// DefaultKey - единственный ключ, под которым хранится вся коллекция
const DefaultKey = "tasks"
