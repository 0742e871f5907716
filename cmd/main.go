package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	httpapi "github.com/sourpow/tbucks-server/internal/api/http"
	"github.com/sourpow/tbucks-server/internal/config"
	"github.com/sourpow/tbucks-server/internal/logger"
	"github.com/sourpow/tbucks-server/internal/model"
	"github.com/sourpow/tbucks-server/internal/realtime"
	"github.com/sourpow/tbucks-server/internal/repository/postgres"
	"github.com/sourpow/tbucks-server/internal/server"
	"github.com/sourpow/tbucks-server/internal/service"
	storage "github.com/sourpow/tbucks-server/internal/storage/minio"
	"github.com/sourpow/tbucks-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	itemRepo := postgres.NewItemRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	hub := realtime.NewHub(logger)

	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, userRepo, logger)
	authService := service.NewAuth(userRepo, tokenService, logger, cfg.Admin.InitialBalance)
	storeService := service.NewStore(itemRepo, userRepo, orderRepo, storageClient, hub, logger)
	orderService := service.NewOrder(orderRepo, hub, logger)
	userService := service.NewUser(userRepo, hub, logger)

	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:  httpapi.NewAuthHandler(authService, tokenService, userService, logger),
		Store: httpapi.NewStoreHandler(storeService, orderService, logger),
		Admin: httpapi.NewAdminHandler(orderService, userService, logger),
		WS:    httpapi.NewWSHandler(hub, storeService, orderService, userService, cfg.Admin.UnlockPhrase, logger),
	}, tokenService, logger)

	httpServer := server.NewHTTPServer(cfg.HTTP.Port, router, logger)

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
