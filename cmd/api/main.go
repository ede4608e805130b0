package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/hr-console/internal/api/http"
	"github.com/spec-kit/hr-console/internal/api/http/handlers"
	"github.com/spec-kit/hr-console/internal/api/socket"
	sockethandlers "github.com/spec-kit/hr-console/internal/api/socket/handlers"
	"github.com/spec-kit/hr-console/internal/auth"
	"github.com/spec-kit/hr-console/internal/config"
	"github.com/spec-kit/hr-console/internal/events"
	"github.com/spec-kit/hr-console/internal/imagehost"
	"github.com/spec-kit/hr-console/internal/observability"
	"github.com/spec-kit/hr-console/internal/persistence"
	"github.com/spec-kit/hr-console/internal/repository"
	"github.com/spec-kit/hr-console/internal/service"
	"github.com/spec-kit/hr-console/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics("hr_console")
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	departmentRepo := repository.NewDepartmentRepository(pool)
	designationRepo := repository.NewDesignationRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	policyRepo := repository.NewPolicyRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	userRepo := repository.NewConsoleUserRepository(pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(*cfg, userRepo, tokens)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	services := sockethandlers.Services{
		Departments: service.NewDepartmentService(service.DepartmentDependencies{
			DepartmentRepo: departmentRepo,
			Dispatcher:     dispatcher,
			Logger:         logger,
		}),
		Designations: service.NewDesignationService(service.DesignationDependencies{
			DesignationRepo: designationRepo,
			DepartmentRepo:  departmentRepo,
			Dispatcher:      dispatcher,
			Logger:          logger,
		}),
		Employees: service.NewEmployeeService(service.EmployeeDependencies{
			EmployeeRepo:    employeeRepo,
			DepartmentRepo:  departmentRepo,
			DesignationRepo: designationRepo,
			PolicyRepo:      policyRepo,
			Dispatcher:      dispatcher,
			Logger:          logger,
		}),
		Policies: service.NewPolicyService(service.PolicyDependencies{
			PolicyRepo:      policyRepo,
			DepartmentRepo:  departmentRepo,
			DesignationRepo: designationRepo,
			Dispatcher:      dispatcher,
			Logger:          logger,
			Location:        cfg.App.Location(),
		}),
		Tasks: service.NewTaskService(service.TaskDependencies{
			TaskRepo:    taskRepo,
			ProjectRepo: projectRepo,
			Dispatcher:  dispatcher,
			Logger:      logger,
		}),
		Projects: service.NewProjectService(projectRepo, dispatcher, logger),
	}

	hub := socket.NewHub(logger, metrics)
	broadcaster := socket.NewRedisBroadcaster(redis.Client, cfg.Redis.BroadcastChannel, hub, logger)
	service.NewChangeNotifier(dispatcher, broadcaster, logger).RegisterHandlers()
	relayDone := worker.StartBroadcastRelay(ctx, broadcaster, logger)

	router := socket.NewRouter(cfg.Socket.RequestTimeout(), logger, metrics)
	router.SetListLoadTimeout(cfg.Socket.ListLoadTimeout())
	sockethandlers.Register(router, services)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.ImageHost.MaxBytes) + 1<<20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:      cfg.App.RequestTimeout(),
		AllowOrigins: cfg.App.CORSAllowOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:    handlers.NewAuthHandler(authService),
		Uploads: handlers.NewUploadHandler(imagehost.New(cfg.ImageHost, nil, logger), logger),
		Socket: handlers.NewSocketHandler(ctx, hub, router, socket.ClientOptions{
			SendBuffer:      cfg.Socket.SendBufferSize,
			PingInterval:    cfg.Socket.PingInterval(),
			MaxMessageBytes: cfg.Socket.MaxMessageBytes,
		}, logger),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	<-relayDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
