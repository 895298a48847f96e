package postgres

import (
	"context"
	"errors"
	"fmt"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	repo "taskKeeper/internal/repository"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schema = `CREATE TABLE IF NOT EXISTS storage (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type Storage struct {
	pool *pgxpool.Pool
	key  string
}

func New(ctx context.Context, connString, key string) (*Storage, error) {
	if key == "" {
		key = repo.DefaultKey
	}

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnIdleTime = time.Minute * 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		logger.Error("Repository: Не удалось создать таблицу storage", err)
		return nil, fmt.Errorf("создание таблицы storage: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool, key: key}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) ([]task.Task, error) {
	start := time.Now()

	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM storage WHERE key = $1`, s.key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось прочитать коллекцию", err, zap.Duration("ms", time.Since(start)))
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

	query := `INSERT INTO storage (key, value, updated_at)
				VALUES ($1, $2, NOW())
				ON CONFLICT (key) DO UPDATE
				SET value = EXCLUDED.value,
					updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, s.key, string(data)); err != nil {
		logger.Error("Repository: Не удалось сохранить коллекцию", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("сохранение коллекции: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}
