// Package cache хранит в redis счётчики неудачных попыток входа.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/tasktracker/internal/config"
)

const attemptsPrefix = "login:attempts:"

// LoginGuard ограничивает число неудачных попыток входа для имени пользователя.
// После MaxAttempts неудач имя блокируется на Lockout с момента первой неудачи.
type LoginGuard struct {
	Db          *redis.Client
	maxAttempts int
	lockout     time.Duration
}

// InitServer подключается к redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.Redis) (*LoginGuard, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewLoginGuard(db, cfg.MaxAttempts, cfg.Lockout), nil
}

// NewLoginGuard создаёт ограничитель поверх готового клиента.
func NewLoginGuard(db *redis.Client, maxAttempts int, lockout time.Duration) *LoginGuard {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	return &LoginGuard{Db: db, maxAttempts: maxAttempts, lockout: lockout}
}

// Blocked сообщает, исчерпан ли лимит попыток для username.
func (g *LoginGuard) Blocked(ctx context.Context, username string) (bool, error) {
	const op = "cache.Blocked"
	n, err := g.Db.Get(ctx, attemptsPrefix+username).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n >= g.maxAttempts, nil
}

// Fail учитывает неудачную попытку. Окно блокировки отсчитывается от первой неудачи.
// INCR и EXPIRE NX выполняются в одной транзакции, поэтому счётчик не остаётся без TTL.
func (g *LoginGuard) Fail(ctx context.Context, username string) error {
	const op = "cache.Fail"
	key := attemptsPrefix + username
	_, err := g.Db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, g.lockout)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Reset сбрасывает счётчик после успешного входа.
func (g *LoginGuard) Reset(ctx context.Context, username string) error {
	const op = "cache.Reset"
	if err := g.Db.Del(ctx, attemptsPrefix+username).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение с redis.
func (g *LoginGuard) Close() error {
	return g.Db.Close()
}
