package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ZhaoZeLuWei/HelpMe/configs"
	"github.com/ZhaoZeLuWei/HelpMe/internal/chat"
	"github.com/ZhaoZeLuWei/HelpMe/internal/database"
	"github.com/ZhaoZeLuWei/HelpMe/internal/logger"
	"github.com/ZhaoZeLuWei/HelpMe/internal/routes"
	"github.com/ZhaoZeLuWei/HelpMe/internal/seed"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := configs.LoadEnvFile(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	app := configs.GetAppConfig()

	zlog, err := logger.New(app.LogLevel, app.LogFormat)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(app, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(app *configs.AppConfig, zlog *zap.Logger) error {
	gin.SetMode(app.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := database.OpenMySQL(configs.GetDBConfig())
	if err != nil {
		return err
	}
	if err := database.Migrate(dbConn); err != nil {
		return err
	}

	chatStore, closeChat := openChatStore(ctx, zlog)
	defer closeChat()

	storage, err := util.NewImageStorage(configs.GetUploadConfig())
	if err != nil {
		return errors.Wrap(err, "prepare upload dir")
	}

	if err := seed.Seed(dbConn, app, zlog); err != nil {
		return errors.Wrap(err, "seed")
	}

	hub := util.NewHub(zlog.Named("hub"))
	notifier := chat.NewNotifier(chatStore, hub, zlog.Named("notifier"))

	r := gin.New()
	r.Use(logger.GinLogger(zlog.Named("http")))
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     app.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, &routes.Deps{
		DB:        dbConn,
		Hub:       hub,
		ChatStore: chatStore,
		Notifier:  notifier,
		Storage:   storage,
		JWT:       configs.GetTokenJWTConfig(),
		App:       app,
		Log:       zlog,
	})

	srv := &http.Server{
		Addr:              ":" + app.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openChatStore prefers MongoDB and falls back to the in-process store so the
// REST API stays available without it.
func openChatStore(ctx context.Context, zlog *zap.Logger) (chat.Store, func()) {
	cfg := configs.GetMongoConfig()
	client, err := database.ConnectMongo(ctx, cfg)
	if err != nil {
		zlog.Warn("mongodb unavailable, chat history is kept in memory", zap.Error(err))
		return chat.NewMemoryStore(), func() {}
	}

	store, err := chat.NewMongoStore(ctx, client.Database(cfg.Database))
	if err != nil {
		zlog.Warn("mongodb index setup failed, chat history is kept in memory", zap.Error(err))
		_ = client.Disconnect(context.Background())
		return chat.NewMemoryStore(), func() {}
	}

	zlog.Info("chat store connected", zap.String("database", cfg.Database))
	return store, func() {
		if err := client.Disconnect(context.Background()); err != nil {
			zlog.Warn("disconnect mongodb", zap.Error(err))
		}
	}
}
