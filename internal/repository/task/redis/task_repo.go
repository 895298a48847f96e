// Package redis хранит коллекцию задач одним значением в Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	repo "taskKeeper/internal/repository"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Storage struct {
	client *redis.Client
	key    string
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

func New(ctx context.Context, opts Options) (*Storage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		logger.Error("Repository: Redis недоступен", err, zap.String("addr", opts.Addr))
		return nil, fmt.Errorf("проверка соединения redis: %w", err)
	}

	logger.Info("Repository: Успешное подключение к Redis", zap.String("addr", opts.Addr))
	return NewWithClient(client, opts.Key), nil
}

func NewWithClient(client *redis.Client, key string) *Storage {
	if key == "" {
		key = repo.DefaultKey
	}
	return &Storage{client: client, key: key}
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие соединения Redis")
	return s.client.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("проверка соединения redis: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) ([]task.Task, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("чтение коллекции: %w", err)
	}
	return repo.Decode(data)
}

func (s *Storage) Save(ctx context.Context, tasks []task.Task) error {
	start := time.Now()

	data, err := repo.Encode(tasks)
	if err != nil {
		return err
	}

	// без TTL: это основное хранилище, а не кэш
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("сохранение коллекции: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}
