package initialize

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"task-tracker/backend/app/controllers"
	"task-tracker/backend/app/db"
	jwtutil "task-tracker/backend/app/jwt"
	"task-tracker/backend/app/middleware"
	"task-tracker/backend/app/repo"
	"task-tracker/backend/app/services"
	"task-tracker/backend/config"
	"task-tracker/backend/global"
	"task-tracker/backend/router"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Cfg         *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
	Router      http.Handler
	Users       *services.UserService
	Tasks       *services.TaskService
	Completions *services.CompletionService
	Signer      *jwtutil.Signer
}

// Build opens the stores, seeds the bootstrap admin and assembles the
// handler chain.
func Build(cfg *config.Config) (*App, error) {
	global.Config = *cfg

	gdb, err := db.Connect(db.Config{
		Driver: cfg.DB.Driver, Path: cfg.DB.Path,
		Host: cfg.DB.Host, Port: cfg.DB.Port, User: cfg.DB.User, Password: cfg.DB.Pass, DBName: cfg.DB.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	global.Mdb = gdb

	if err := db.Migrate(gdb); err != nil {
		_ = db.Close(gdb)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	var revocations repo.RevocationStore
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			_ = db.Close(gdb)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		global.Rdb = rdb
		revocations = repo.NewRedisRevocationStore(rdb)
		global.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("token revocations stored in redis")
	} else {
		sqlStore := repo.NewSQLRevocationStore(gdb)
		if n, err := sqlStore.PurgeExpired(time.Now()); err != nil {
			global.Logger.Warn().Err(err).Msg("purge expired revocations")
		} else if n > 0 {
			global.Logger.Info().Int64("purged", n).Msg("expired revocations removed")
		}
		revocations = sqlStore
	}

	userSvc := services.NewUserService(repo.NewUserRepository(gdb))
	taskSvc := services.NewTaskService(repo.NewTaskRepository(gdb))
	completionSvc := services.NewCompletionService(repo.NewCompletionRepository(gdb))

	ba := cfg.Auth.BootstrapAdmin
	if created, err := userSvc.EnsureAdmin(ba.Name, ba.Username, ba.Password); err != nil {
		global.Logger.Warn().Err(err).Str("username", ba.Username).Msg("bootstrap admin not created")
	} else if created {
		global.Logger.Info().Str("username", ba.Username).Msg("bootstrap admin created")
	}

	signer := &jwtutil.Signer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, ExpMin: cfg.JWT.ExpMin}
	mw := &middleware.Auth{Signer: signer, Revocations: revocations}

	h := router.NewRouter(router.Controllers{
		HTTP:        controllers.NewHTTPController(),
		Auth:        controllers.NewAuthController(userSvc, signer, revocations, cfg.Auth.OpenRegistration),
		Admin:       controllers.NewAdminController(userSvc),
		Tasks:       controllers.NewTaskController(taskSvc),
		Completions: controllers.NewCompletionController(completionSvc),
	}, mw, cfg.CORS.Origins)

	return &App{
		Cfg: cfg, DB: gdb, Redis: rdb, Router: h,
		Users: userSvc, Tasks: taskSvc, Completions: completionSvc, Signer: signer,
	}, nil
}

// Close releases the stores opened by Build.
func (a *App) Close() error {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			global.Logger.Warn().Err(err).Msg("close redis")
		}
	}
	return db.Close(a.DB)
}
