package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/a1nn1997/realtime-blog-backend/internal/cache"
	"github.com/a1nn1997/realtime-blog-backend/internal/comments"
	blogconfig "github.com/a1nn1997/realtime-blog-backend/internal/config"
	"github.com/a1nn1997/realtime-blog-backend/internal/handlers"
	"github.com/a1nn1997/realtime-blog-backend/internal/notify"
	"github.com/a1nn1997/realtime-blog-backend/internal/platform/auth"
	"github.com/a1nn1997/realtime-blog-backend/internal/platform/config"
	"github.com/a1nn1997/realtime-blog-backend/internal/platform/db"
	"github.com/a1nn1997/realtime-blog-backend/internal/platform/httpserver"
	"github.com/a1nn1997/realtime-blog-backend/internal/platform/logging"
	"github.com/a1nn1997/realtime-blog-backend/internal/platform/run"
	"github.com/a1nn1997/realtime-blog-backend/internal/ratelimit"
	"github.com/a1nn1997/realtime-blog-backend/internal/render"
	"github.com/a1nn1997/realtime-blog-backend/internal/store"
	"github.com/a1nn1997/realtime-blog-backend/internal/ws"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Debug("no .env file found, using process environment")
	}

	isProd := cfg.IsProduction()
	blogCfg := blogconfig.Load()

	pool, closePool := initPool(log, blogCfg, isProd)
	if closePool != nil {
		defer closePool()
	}
	commentStore, postStore, userStore := buildStores(pool)

	redisClient, closeRedis := initRedis(log, blogCfg, isProd)
	if closeRedis != nil {
		defer closeRedis()
	}

	kv, err := cache.NewCache(redisClient, isProd)
	if err != nil {
		log.Error("cache init", zap.Error(err))
		run.Exit(1)
	}
	broker, err := notify.NewBroker(redisClient, log, isProd)
	if err != nil {
		log.Error("broker init", zap.Error(err))
		run.Exit(1)
	}

	if blogCfg.JWTSecret == "" {
		if isProd {
			log.Error("JWT_SECRET is required in production")
			run.Exit(1)
		}
		log.Warn("JWT_SECRET not set, bearer tokens will not verify (development only)")
	}
	verifier := auth.JWTVerifier{Secret: []byte(blogCfg.JWTSecret)}

	dispatcher := notify.NewDispatcher(log, broker, 0)

	svc := comments.NewService(comments.Config{
		Log:      log,
		Comments: commentStore,
		Posts:    postStore,
		Users:    userStore,
		Cache:    kv,
		Limiter:  ratelimit.NewCommentLimiter(kv),
		Renderer: render.NewMarkdown(),
		Broker:   broker,
		Events:   dispatcher,
	})

	relay := ws.NewHandler(log, verifier, broker)

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		Logger:    log,
		ReadyFunc: readiness(pool, redisClient),
	})

	// Comment routes (public read, auth required for write)
	r.Get("/api/posts/{id}/comments", handlers.GetPostComments(svc, log))
	r.Get("/api/posts/{id}/comments/count", handlers.GetCommentCount(svc))
	r.Get("/api/ws/notifications", relay.ServeNotifications)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Post("/api/posts/{id}/comments", handlers.CreateComment(svc))
		r.Delete("/api/comments/{id}", handlers.DeleteComment(svc))
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go dispatcher.Run(ctx)

		go func() {
			<-ctx.Done()
			runner.Graceful(cfg.ShutdownTimeout, srv.Shutdown)
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initPool initialises the Postgres connection pool shared by the comment,
// post and user stores. In production (APP_ENV=production) it requires a
// working connection and terminates the process otherwise.
func initPool(log *zap.Logger, cfg blogconfig.Config, isProd bool) (*pgxpool.Pool, func()) {
	if cfg.DatabaseURL == "" {
		if isProd {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory stores (development only)")
		return nil, nil
	}

	pool, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		if isProd {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory stores", zap.Error(err))
		return nil, nil
	}

	log.Info("postgres connected")
	return pool, pool.Close
}

// initRedis connects the Redis client shared by the cache, the rate
// limiter and the notification broker. In production it requires a working
// connection and terminates the process otherwise.
func initRedis(log *zap.Logger, cfg blogconfig.Config, isProd bool) (*redis.Client, func()) {
	if cfg.RedisAddr == "" {
		if isProd {
			log.Error("REDIS_ADDR is required in production")
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("REDIS_ADDR not set, using in-process cache and broker (development only)")
		return nil, nil
	}

	client, err := cache.Connect(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		if isProd {
			log.Error("redis is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("redis unavailable, falling back to in-process cache and broker", zap.Error(err))
		return nil, nil
	}

	log.Info("redis connected")
	return client, func() { _ = client.Close() }
}

// buildStores selects the store backends for the pool initPool produced.
// A nil pool means development mode with in-memory stores.
func buildStores(pool *pgxpool.Pool) (store.CommentStore, store.PostStore, store.UserStore) {
	if pool == nil {
		return store.NewInMemoryCommentStore(), store.NewInMemoryPostStore(), store.NewInMemoryUserStore()
	}
	return store.NewPostgresCommentStore(pool), store.NewPostgresPostStore(pool), store.NewPostgresUserStore(pool)
}

// readiness reports whether the backing services answer. Backends that were
// never configured are not checked.
func readiness(pool *pgxpool.Pool, client *redis.Client) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
		}
		if client != nil {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
}
