package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/ainote/internal/config"
	"github.com/xxxsen/ainote/internal/db"
	"github.com/xxxsen/ainote/internal/handler"
	"github.com/xxxsen/ainote/internal/job"
	"github.com/xxxsen/ainote/internal/middleware"
	"github.com/xxxsen/ainote/internal/repo"
	"github.com/xxxsen/ainote/internal/schedule"
	"github.com/xxxsen/ainote/internal/service"
	"github.com/xxxsen/ainote/internal/vault"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ainote",
		Short: "ainote backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run ainote server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func buildVault(cfg config.EncryptionConfig) (*vault.Vault, error) {
	if cfg.Key != "" {
		return vault.New(cfg.Key)
	}
	return vault.NewFromPassphrase(cfg.Passphrase, cfg.Salt)
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("resync_cron", cfg.ResyncCron),
	)

	keyVault, err := buildVault(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}

	noteRepo := repo.NewNoteRepo(database)
	embeddingRepo := repo.NewEmbeddingRepo(database)
	settingsRepo := repo.NewSettingsRepo(database)
	conversationRepo := repo.NewConversationRepo(database)
	workspaceRepo := repo.NewWorkspaceRepo(database)

	settingsService := service.NewSettingsService(settingsRepo, keyVault)
	aiService := service.NewAIService(settingsService, embeddingRepo)
	ragService := service.NewRagService(settingsService, aiService, workspaceRepo, cfg.SearchTopK)
	conversationService := service.NewConversationService(conversationRepo, workspaceRepo)

	deps := handler.RouterDeps{
		AI:            handler.NewAIHandler(aiService, ragService, conversationService),
		Settings:      handler.NewSettingsHandler(settingsService),
		Conversations: handler.NewConversationHandler(conversationService),
		JWTSecret:     []byte(cfg.JWTSecret),
		AIWindow:      time.Duration(cfg.AIWindowMS) * time.Millisecond,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	resyncJob := job.NewEmbeddingResyncJob(noteRepo, embeddingRepo, settingsService, aiService, cfg.ResyncBatch)
	if err := scheduler.AddJob(resyncJob, cfg.ResyncCron); err != nil {
		return fmt.Errorf("schedule resync job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
