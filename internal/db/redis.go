package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions параметры подключения к Redis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Timeout ограничивает dial, чтение и запись одной команды.
	Timeout time.Duration
}

// NewRedis создаёт клиент Redis и проверяет соединение.
// Клиент безопасен для конкурентного использования и создаётся один раз на процесс.
func NewRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		// Повторы отключены: зависший Redis должен завершать запрос ошибкой.
		MaxRetries: -1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: не удалось подключиться к %s: %w", opts.Addr, err)
	}

	return client, nil
}
