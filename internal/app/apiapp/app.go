package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iru21/datingapp/backend/internal/config"
	"github.com/iru21/datingapp/backend/internal/infra/telegram"
	"github.com/iru21/datingapp/backend/internal/jobs/cleanup"
	pgrepo "github.com/iru21/datingapp/backend/internal/repo/postgres"
	redrepo "github.com/iru21/datingapp/backend/internal/repo/redis"
	authsvc "github.com/iru21/datingapp/backend/internal/services/auth"
	matchessvc "github.com/iru21/datingapp/backend/internal/services/matches"
	messagesvc "github.com/iru21/datingapp/backend/internal/services/messages"
	notifysvc "github.com/iru21/datingapp/backend/internal/services/notifications"
	ratesvc "github.com/iru21/datingapp/backend/internal/services/rate"
	ratingsvc "github.com/iru21/datingapp/backend/internal/services/ratings"
	suggestsvc "github.com/iru21/datingapp/backend/internal/services/suggestions"
	userssvc "github.com/iru21/datingapp/backend/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	cleanupJob *cleanup.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	ratingRepo := pgrepo.NewRatingRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	notificationRepo := pgrepo.NewNotificationRepo(pool)
	preferenceRepo := pgrepo.NewPreferenceRepo(pool)

	var pusher notifysvc.Pusher
	if bot, err := telegram.NewNotifier(cfg.Bot.Token, log); err != nil {
		log.Warn("telegram init failed, push notifications disabled", zap.Error(err))
	} else {
		pusher = bot
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, userRepo, sessionRepo, cfg.Auth.RefreshTTL)
	usersService := userssvc.NewService(userRepo)
	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		cfg.Limits.ActionsPerMinute,
		cfg.Limits.ActionsPer10Sec,
	)
	notificationsService := notifysvc.NewService(notifysvc.Dependencies{
		Store:  notificationRepo,
		Users:  userRepo,
		Pusher: pusher,
	})
	ratingsService := ratingsvc.NewService(ratingsvc.Dependencies{
		Pool:        pool,
		RatingStore: ratingRepo,
		MatchStore:  matchRepo,
		UserStore:   userRepo,
		Notifier:    notificationsService,
		RateLimiter: rateLimiter,
	})
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:         pool,
		MatchStore:   matchRepo,
		MessageStore: messageRepo,
	})
	messagesService := messagesvc.NewService(messagesvc.Dependencies{
		Pool:         pool,
		MatchStore:   matchRepo,
		MessageStore: messageRepo,
		Notifier:     notificationsService,
		RateLimiter:  rateLimiter,
	})
	suggestionsService := suggestsvc.NewService(suggestsvc.Dependencies{
		UserStore:       userRepo,
		RatingStore:     ratingRepo,
		PreferenceStore: preferenceRepo,
	}, suggestsvc.Config{
		DefaultMinAge: cfg.Suggestions.AgeMin,
		DefaultMaxAge: cfg.Suggestions.AgeMax,
		DefaultLimit:  cfg.Suggestions.DefaultLimit,
	})
	cleanupJob := cleanup.New(notificationRepo, cfg.Notifications.ReadRetention, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:          authService,
		UsersService:         usersService,
		RatingsService:       ratingsService,
		MatchesService:       matchesService,
		MessagesService:      messagesService,
		NotificationsService: notificationsService,
		SuggestionsService:   suggestionsService,
		Logger:               log,
		Config:               cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		cleanupJob: cleanupJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartJobs launches background maintenance loops. They stop when ctx
// is cancelled.
func (a *App) StartJobs(ctx context.Context) {
	if a.cleanupJob == nil {
		return
	}
	go a.cleanupJob.RunEvery(ctx, a.cfg.Notifications.CleanupInterval)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
