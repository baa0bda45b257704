package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	marketplacepb "github.com/Leganyst/services-marketplace/internal/api/marketplace/v1"
	"github.com/Leganyst/services-marketplace/internal/config"
	"github.com/Leganyst/services-marketplace/internal/db"
	"github.com/Leganyst/services-marketplace/internal/httpapi"
	"github.com/Leganyst/services-marketplace/internal/logger"
	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/notify"
	"github.com/Leganyst/services-marketplace/internal/repository"
	"github.com/Leganyst/services-marketplace/internal/rpc"
	"github.com/Leganyst/services-marketplace/internal/scheduler"
	"github.com/Leganyst/services-marketplace/internal/service"
)

func main() {
	// 1. Конфиг: config.yaml + env.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := logger.Init(logger.Options{Level: cfg.Log.Level, Output: cfg.Log.Output, File: cfg.Log.File}); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	// 2. БД и миграции.
	gormDB, err := db.NewGormDB(&cfg.Database)
	if err != nil {
		logger.Fatal("init db: %v", err)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		logger.Fatal("auto migrate: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 3. Репозитории (реализации на GORM).
	contractRepo := repository.NewGormContractRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	providerRepo := repository.NewGormProviderRepository(gormDB)
	messageRepo := repository.NewGormMessageRepository(gormDB)

	// 4. Уведомления: websocket-хаб за пулом воркеров.
	hub := notify.NewHub()
	dispatcher, err := notify.NewDispatcher(cfg.Notify.Workers, hub)
	if err != nil {
		logger.Fatal("init notifications: %v", err)
	}

	// 5. Сервисы.
	contractSvc := service.NewContractService(service.ContractDeps{
		Contracts:   contractRepo,
		Users:       userRepo,
		Providers:   providerRepo,
		Messages:    messageRepo,
		Settlements: repository.NewGormSettlementRepository(gormDB),
		Events:      repository.NewGormEventRepository(gormDB),
		Notifier:    dispatcher,
	}, service.Rates{
		Commission:      cfg.Market.Commission(),
		ClientSurcharge: cfg.Market.Surcharge(),
	})
	identitySvc := service.NewIdentityService(userRepo, providerRepo)
	messagingSvc := service.NewMessagingService(messageRepo, userRepo, dispatcher)

	if cfg.Bootstrap.AdminEmail != "" {
		admin, err := identitySvc.EnsureAdmin(context.Background(), cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminName)
		if err != nil {
			logger.Fatal("bootstrap admin: %v", err)
		}
		logger.Info("bootstrap admin: %s", admin.User.ID)
	}

	// 6. Планировщик.
	jobs, err := scheduler.NewManager()
	if err != nil {
		logger.Fatal("init scheduler: %v", err)
	}
	if cfg.Scheduler.DisputeDigestInterval > 0 {
		interval := time.Duration(cfg.Scheduler.DisputeDigestInterval) * time.Second
		if err := jobs.Register(scheduler.NewDisputeDigestJob(contractRepo, interval)); err != nil {
			logger.Fatal("register job: %v", err)
		}
	}
	jobs.Start()

	// 7. gRPC.
	grpcServer := grpc.NewServer()
	marketplacepb.RegisterContractServiceServer(grpcServer, rpc.NewContractServer(contractSvc))
	marketplacepb.RegisterIdentityServiceServer(grpcServer, rpc.NewIdentityServer(identitySvc))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		logger.Fatal("listen %s: %v", cfg.GRPC.Addr, err)
	}
	go func() {
		logger.Info("gRPC server listening on %s", cfg.GRPC.Addr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal("grpc serve: %v", err)
		}
	}()

	// 8. HTTP API.
	httpServer := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: httpapi.Setup(cfg.Server.Mode, httpapi.Services{
			Contracts: contractSvc,
			Identity:  identitySvc,
			Messaging: messagingSvc,
			Hub:       hub,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http serve: %v", err)
		}
	}()

	// 9. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("http shutdown: %v", err)
	}
	grpcServer.GracefulStop()
	jobs.Stop()
	if err := dispatcher.Close(5 * time.Second); err != nil {
		logger.Warn("notifications not drained: %v", err)
	}
}
