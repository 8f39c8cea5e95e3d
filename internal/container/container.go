package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	database "github.com/FACorreiaa/go-task-manager-api/app/db"
	"github.com/FACorreiaa/go-task-manager-api/config"
	"github.com/FACorreiaa/go-task-manager-api/internal/api/auth"
	"github.com/FACorreiaa/go-task-manager-api/internal/api/task"
	"github.com/FACorreiaa/go-task-manager-api/internal/api/user"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *slog.Logger
	Pool         *pgxpool.Pool
	MongoClient  *mongo.Client
	AuthHandler  *auth.HandlerImpl
	UserHandler  *user.HandlerImpl
	TaskHandler  *task.HandlerImpl
	Authenticate func(http.Handler) http.Handler
}

// repositories is what the selected storage driver provides.
type repositories struct {
	users user.UserRepo
	tasks task.Repository
}

// NewContainer connects to the configured store, waits for it and wires
// repositories, services and handlers on top of it.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	var (
		repos repositories
		err   error
	)
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		repos, err = c.initMongo(ctx)
	case config.DriverPostgres:
		repos, err = c.initPostgres(ctx)
	default:
		err = fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		c.Close(ctx)
		return nil, err
	}

	tokens := auth.NewTokenService(cfg.JWT)

	authService := auth.NewAuthService(repos.users, tokens, logger)
	c.AuthHandler = auth.NewAuthHandlerImpl(authService, logger)

	userService := user.NewUserService(repos.users, logger)
	c.UserHandler = user.NewHandlerImpl(userService, logger)

	taskService := task.NewServiceImpl(repos.tasks, logger)
	c.TaskHandler = task.NewHandlerImpl(taskService, logger)

	c.Authenticate = auth.Authenticate(logger, tokens, repos.users)

	return c, nil
}

func (c *Container) initMongo(ctx context.Context) (repositories, error) {
	cfg := c.Config.Repositories.Mongo

	client, err := database.ConnectMongo(ctx, cfg, c.Logger)
	if err != nil {
		c.Logger.Error("Failed to create MongoDB client", slog.Any("error", err))
		return repositories{}, err
	}
	c.MongoClient = client

	if !database.WaitForDB(ctx, database.MongoPinger{Client: client}, c.Logger) {
		return repositories{}, errors.New("mongodb not ready after waiting")
	}

	db := client.Database(cfg.Database)
	if err = database.EnsureIndexes(ctx, db, c.Logger); err != nil {
		c.Logger.Error("Failed to create MongoDB indexes", slog.Any("error", err))
		return repositories{}, err
	}

	return repositories{
		users: user.NewMongoUserRepo(db, c.Logger),
		tasks: task.NewMongoRepository(db, c.Logger),
	}, nil
}

func (c *Container) initPostgres(ctx context.Context) (repositories, error) {
	cfg := c.Config.Repositories.Postgres

	// Migrations run before the pool is opened.
	if err := database.RunMigrations(cfg.URL, c.Logger); err != nil {
		c.Logger.Error("Failed to run database migrations", slog.Any("error", err))
		return repositories{}, err
	}

	pool, err := database.InitPostgres(ctx, cfg, c.Logger)
	if err != nil {
		c.Logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return repositories{}, err
	}
	c.Pool = pool

	if !database.WaitForDB(ctx, pool, c.Logger) {
		return repositories{}, errors.New("postgres not ready after waiting")
	}

	return repositories{
		users: user.NewPostgresUserRepo(pool, c.Logger),
		tasks: task.NewPostgresRepository(pool, c.Logger),
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close(ctx context.Context) {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.MongoClient != nil {
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			c.Logger.Error("Failed to disconnect MongoDB client", slog.Any("error", err))
		}
	}
}
