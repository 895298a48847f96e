package inmemory

import (
	"context"
	"sync"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	repo "taskKeeper/internal/repository"

	"go.uber.org/zap"
)

// TaskStorage - плоское key-value хранилище в памяти процесса.
// Хранит сериализованные байты, а не структуры, как localStorage в браузере.
type TaskStorage struct {
	storage map[string][]byte
	mtx     *sync.RWMutex
	key     string
}

func NewTaskStorage(key string) *TaskStorage {
	if key == "" {
		key = repo.DefaultKey
	}
	return &TaskStorage{
		storage: make(map[string][]byte),
		mtx:     &sync.RWMutex{},
		key:     key,
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Хранилище в памяти доступно")
	return nil
}

func (s *TaskStorage) Load(ctx context.Context) ([]task.Task, error) {
	s.mtx.RLock()
	data, ok := s.storage[s.key]
	s.mtx.RUnlock()

	if !ok {
		return nil, repo.ErrNotFound
	}
	return repo.Decode(data)
}

func (s *TaskStorage) Save(ctx context.Context, tasks []task.Task) error {
	data, err := repo.Encode(tasks)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage[s.key] = data
	logger.Debug("Repository: Коллекция сохранена в памяти", zap.Int("count", len(tasks)))
	return nil
}

// SetRaw кладёт в слот произвольные байты - нужно для проверки битых данных
func (s *TaskStorage) SetRaw(data []byte) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.storage[s.key] = data
}

func (s *TaskStorage) Raw() ([]byte, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	data, ok := s.storage[s.key]
	return data, ok
}
