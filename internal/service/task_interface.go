package service

import (
	"context"
	"taskKeeper/internal/models/task"
)

// Persistence - адаптер, который хранит всю коллекцию под одним ключом
type Persistence interface {
	Load(context.Context) ([]task.Task, error)
	Save(context.Context, []task.Task) error
	HealthCheck(context.Context) error
}
