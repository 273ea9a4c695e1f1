package tasktracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/tasktracker/internal/cache"
	"github.com/magabrotheeeer/tasktracker/internal/config"
	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
	"github.com/magabrotheeeer/tasktracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tasktracker/internal/lib/jwt"
	"github.com/magabrotheeeer/tasktracker/internal/lib/sl"
	authservice "github.com/magabrotheeeer/tasktracker/internal/services/auth"
	taskservice "github.com/magabrotheeeer/tasktracker/internal/services/tasks"
	"github.com/magabrotheeeer/tasktracker/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-сервер трекера задач вместе с его внешними подключениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	guard  *cache.LoginGuard
}

// New подключается к хранилищу документов, готовит базу учётных записей
// и собирает маршруты. Redis подключается, только если задан его адрес.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.tasktracker.New"

	db, err := couchdb.New(cfg.CouchDB.URL, cfg.CouchDB.Username, cfg.CouchDB.Password, cfg.DBTimeout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users := repository.NewUsers(db, cfg.AuthDB)
	if err := users.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		guard      authservice.AttemptGuard
		loginGuard *cache.LoginGuard
	)
	if cfg.Redis.Address != "" {
		loginGuard, err = cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		guard = loginGuard
		logger.Info("login throttling enabled",
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("lockout", cfg.Lockout),
		)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecret, cfg.TokenTTL)
	authService := authservice.NewAuthService(users, jwtMaker, guard, logger)
	taskService := taskservice.NewTaskService(repository.NewTasks(db), logger)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:        logger,
		DB:            db,
		AuthService:   authService,
		TaskService:   taskService,
		Cookies:       middlewarectx.Cookies{TTL: jwtMaker.TTL(), Insecure: cfg.CookieInsecure},
		CheckIdentity: cfg.CheckIdentity,
		RateLimit:     cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		guard:  loginGuard,
	}, nil
}

// Run запускает сервер и блокируется до ошибки или отмены ctx.
// После отмены сервер завершается с таймаутом shutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeGuard()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.closeGuard()
		return err
	}
}

func (a *App) closeGuard() {
	if a.guard == nil {
		return
	}
	if err := a.guard.Close(); err != nil {
		a.logger.Warn("failed to close redis connection", sl.Err(err))
	}
}
