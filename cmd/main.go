package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classlottery/internal/config"
	"classlottery/internal/database"
	"classlottery/internal/handlers"
	"classlottery/internal/repository"
	"classlottery/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

func main() {
	cfg := config.Get()

	// 1. Initialize logging
	logOut := io.Discard
	verbose := true
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			logger.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logOut = f
		verbose = !cfg.IsProduction()
	}
	defer logger.Init("classlottery", verbose, false, logOut).Close()
	if !cfg.EnvFileLoaded {
		logger.Info("No .env file found, using system environment")
	}

	databaseURL := database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)

	// Migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(databaseURL, os.Args[2:]); err != nil {
			logger.Fatalf("Migration error: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, databaseURL); err != nil {
		logger.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, databaseURL string) error {
	// 2. Connect to the database and bring the schema up to date
	if err := database.MigrateUp(databaseURL); err != nil {
		return err
	}
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	// 3. Initialize the services
	lotteryService := services.NewLotteryService(
		repository.NewStudentRepository(db),
		repository.NewDrawHistoryRepository(db),
		repository.NewGroupingHistoryRepository(db),
		repository.NewPrizeHistoryRepository(db),
		services.NewRandomizer(cfg.RandomSeed),
	)
	membershipService := services.NewMembershipService(repository.NewMembershipRepository(db))
	exportService := services.NewExportService(lotteryService, membershipService)

	// 4. Initialize the HTTP Handler
	httpHandler := handlers.NewHTTPHandler(lotteryService, membershipService, exportService, db)

	// 5. Set up the Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(handlers.CORSMiddleware(cfg.AllowedOrigins))
	httpHandler.RegisterRoutes(r)

	// 6. Expire overdue memberships in the background
	go membershipService.RunSweeper(ctx, cfg.MembershipSweepInterval)

	// 7. Run the server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to run server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal, shutting down gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func handleMigrationCommand(databaseURL string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: classlottery migrate [up|down|status] [args...]")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp(databaseURL)
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(databaseURL, steps)
	case "status":
		return database.MigrateStatus(databaseURL)
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}
