package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/incident-service/internal/api/http"
	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/persistence"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/service"
	"github.com/spec-kit/incident-service/internal/validation"
	"github.com/spec-kit/incident-service/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	svc := cfg.Services
	httpClient := &http.Client{Timeout: svc.Timeout()}
	tokens := func(static, audience string) auth.TokenProvider {
		return auth.NewServiceTokenProvider(static, svc.UseSignedTokens, svc.TokenSecret, svc.TokenIssuer, audience, svc.TokenTTL())
	}
	userRepo := repository.NewUserRepository(svc.UserURL, httpClient, tokens(svc.UserToken, svc.UserURL))
	employeeRepo := repository.NewEmployeeRepository(svc.EmployeeURL, httpClient, tokens(svc.EmployeeToken, svc.EmployeeURL))
	incidentRepo := repository.NewIncidentRepository(svc.IncidentURL, httpClient, tokens(svc.IncidentToken, svc.IncidentURL))

	policy, err := auth.NewPolicy()
	if err != nil {
		logger.Fatal("failed to load authorization policy", zap.Error(err))
	}
	validator, err := validation.NewValidator(validation.IncidentSchemas(cfg.Validation)...)
	if err != nil {
		logger.Fatal("failed to compile schemas", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	var publisher service.Publisher
	var readiness handlers.Pinger
	if redis != nil {
		publisher = redis
		readiness = redis
	}
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, publisher, logger, cfg.Notification))

	incidentService := service.NewIncidentService(service.IncidentDependencies{
		Policy:       policy,
		Validator:    validator,
		UserRepo:     userRepo,
		EmployeeRepo: employeeRepo,
		IncidentRepo: incidentRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Metrics:   handlers.NewMetricsHandler(metrics),
		Incidents: handlers.NewIncidentsHandler(incidentService),
		Gateway:   auth.NewGatewayMiddleware(cfg.Gateway.UserInfoHeader, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("incident service started", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
