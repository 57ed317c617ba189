package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"quizcraft/handlers"
	"quizcraft/middleware"
	"quizcraft/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func SetupRoutes(
	router *gin.Engine,
	authService *services.AuthService,
	quizService *services.QuizService,
	authHandler *handlers.AuthHandler,
	quizHandler *handlers.QuizHandler,
	questionHandler *handlers.QuestionHandler,
	sessionHandler *handlers.SessionHandler,
	uploadHandler *handlers.UploadHandler,
	hub *services.Hub,
) {
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
		}

		// Browsing and taking work for anonymous users too
		public := api.Group("/")
		public.Use(middleware.OptionalAuth(authService))
		{
			public.GET("/quizzes", quizHandler.ListPublished)
			public.GET("/quizzes/:id", quizHandler.GetQuizByID)
			public.GET("/quizzes/:id/questions", questionHandler.ListQuestions)

			sessions := public.Group("/sessions")
			{
				sessions.POST("", sessionHandler.StartSession)
				sessions.GET("/:id", sessionHandler.GetSession)
				sessions.DELETE("/:id", sessionHandler.DiscardSession)
				sessions.POST("/:id/answer", sessionHandler.Answer)
				sessions.POST("/:id/next", sessionHandler.Next)
				sessions.POST("/:id/previous", sessionHandler.Previous)
				sessions.POST("/:id/finish", sessionHandler.Finish)
				sessions.POST("/:id/reset", sessionHandler.Reset)
			}
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(authService))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)

			quizzes := protected.Group("/quizzes")
			{
				quizzes.POST("", quizHandler.CreateQuiz)
				quizzes.PUT("/:id", quizHandler.UpdateQuiz)
				quizzes.DELETE("/:id", quizHandler.DeleteQuiz)
				quizzes.POST("/:id/publish", quizHandler.Publish)
				quizzes.POST("/:id/unpublish", quizHandler.Unpublish)
				quizzes.POST("/:id/questions", questionHandler.CreateQuestion)
				quizzes.PUT("/:id/questions/order", questionHandler.ReorderQuestions)
			}

			questions := protected.Group("/questions")
			{
				questions.PUT("/:id", questionHandler.UpdateQuestion)
				questions.DELETE("/:id", questionHandler.DeleteQuestion)
			}

			admin := protected.Group("/")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/admin/quizzes", quizHandler.ListAuthored)
				admin.GET("/users", authHandler.ListUsers)
				admin.PUT("/users/:id/role", authHandler.SetRole)
				admin.POST("/uploads/cover", uploadHandler.UploadCover)
			}
		}
	}

	// WebSocket endpoint for editors watching a quiz. Browsers cannot set
	// headers on the upgrade request, so the token comes in the query string.
	router.GET("/ws/quizzes/:id", func(c *gin.Context) {
		quizID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil || quizID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz ID"})
			return
		}

		actor, err := authService.Authenticate(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		if _, err := quizService.Manageable(c.Request.Context(), actor, uint(quizID)); err != nil {
			switch {
			case errors.Is(err, services.ErrQuizNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
			case errors.Is(err, services.ErrForbidden):
				c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to edit this quiz"})
			default:
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not load quiz", "retryable": true})
			}
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithError(err).WithField("quiz_id", quizID).Warn("websocket upgrade failed")
			return
		}

		hub.RegisterClient(conn, uint(quizID), actor.UserID)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
