package main

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"quizcraft/config"
	"quizcraft/handlers"
	"quizcraft/middleware"
	"quizcraft/models"
	"quizcraft/routes"
	"quizcraft/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	config.InitLogger(cfg)
	gin.SetMode(cfg.GinMode)

	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	if err := db.AutoMigrate(&models.User{}, &models.Quiz{}, &models.Question{}); err != nil {
		logrus.WithError(err).Fatal("failed to migrate database")
	}

	redisClient := config.InitRedis(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("redis is not reachable, taking sessions will fail until it is")
	}

	// The hub is the notifier for every editing service
	hub := services.NewHub()

	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, cfg.AdminEmails)
	quizService := services.NewQuizService(db, hub)
	questionService := services.NewQuestionService(db, quizService, hub)
	sessionService := services.NewSessionService(quizService, questionService, services.NewRedisSessionStore(redisClient), cfg.SessionTTL)
	imageStore := services.NewDiskImageStore(cfg.UploadDir, cfg.PublicBaseURL)
	hub.UseQuestionSource(questionService)

	authHandler := handlers.NewAuthHandler(authService)
	quizHandler := handlers.NewQuizHandler(quizService)
	questionHandler := handlers.NewQuestionHandler(questionService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	uploadHandler := handlers.NewUploadHandler(imageStore)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORS())
	router.Static("/uploads", cfg.UploadDir)

	routes.SetupRoutes(router, authService, quizService, authHandler, quizHandler, questionHandler, sessionHandler, uploadHandler, hub)

	server := &http.Server{
		Addr:    net.JoinHostPort(cfg.BindAddress, cfg.Port),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logrus.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logrus.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
	if err := redisClient.Close(); err != nil {
		logrus.WithError(err).Warn("closing redis")
	}
}
