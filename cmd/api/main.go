package main

import (
	"context"
	"fmt"
	"os"
	"taskKeeper/internal/app"
	"taskKeeper/internal/config"
	"taskKeeper/internal/logger"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "загрузка конфига: %v\n", err)
		os.Exit(1)
	}

	application, err := app.New(cfg).Init(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "инициализация приложения: %v\n", err)
		os.Exit(1)
	}

	go func() {
		if err := application.Run(); err != nil {
			logger.Error("Main: Сервер остановился с ошибкой", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"task-keeper": func(ctx context.Context) error {
				logger.Info("Main: Получен сигнал остановки")
				return application.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info("Main: Приложение завершено", zap.Int("exit_code", exitCode))
	os.Exit(exitCode)
}
