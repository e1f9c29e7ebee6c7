package main

import (
	"net/http"
	"os"

	"drinkbuddies/backend/internal/auth"
	"drinkbuddies/backend/internal/cache"
	"drinkbuddies/backend/internal/chat"
	"drinkbuddies/backend/internal/config"
	"drinkbuddies/backend/internal/database"
	"drinkbuddies/backend/internal/handler"
	"drinkbuddies/backend/internal/logging"
	"drinkbuddies/backend/internal/mw"
	"drinkbuddies/backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func init() {
	config.LoadConfig()
}

func main() {
	cfg := config.AppConfig
	logging.Init(cfg.Env)

	database.Connect(cfg.MongoURL, cfg.DatabaseName)
	defer database.Disconnect()

	cache.Connect(cfg.RedisURL)
	defer cache.Close()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("Failed to create upload directory")
	}

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(mw.CORS(cfg.Env))
	router.Static("/uploads", cfg.UploadDir)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to DrinkBuddies API"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Chat wiring. One relay per process; fan-out across processes goes
	// through Redis pub/sub.
	relay := chat.NewRelay(chat.NewRedisBridge(cache.RDB))
	chatHandler := chat.NewHandler(relay,
		store.NewMessageStore(database.DB),
		store.NewUserStore(database.DB),
		store.NewFriendshipStore(database.DB),
		cfg.JWTSecret)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", handler.Register)
			authRoutes.POST("/login", handler.Login)
		}

		userRoutes := api.Group("/users")
		{
			userRoutes.GET("/me", auth.AuthMiddleware(), handler.GetMe)
			userRoutes.PUT("/me", auth.AuthMiddleware(), handler.UpdateMe)
			userRoutes.GET("/:username", handler.GetUserByUsername)
		}

		drinkRoutes := api.Group("/drinks")
		{
			drinkRoutes.GET("", handler.GetAlcoholicDrinks)
			drinkRoutes.GET("/types", handler.GetDrinkTypes)
			drinkRoutes.GET("/czech-beers", handler.GetCzechBeers)
		}

		postRoutes := api.Group("/posts")
		{
			postRoutes.POST("/upload-image", auth.AuthMiddleware(), handler.UploadImage)
			postRoutes.POST("", auth.AuthMiddleware(), handler.CreatePost)
			postRoutes.GET("", auth.OptionalAuthMiddleware(), handler.GetPosts)
			postRoutes.GET("/:id", auth.OptionalAuthMiddleware(), handler.GetPost)
			postRoutes.PUT("/:id", auth.AuthMiddleware(), handler.UpdatePost)
			postRoutes.DELETE("/:id", auth.AuthMiddleware(), handler.DeletePost)
			postRoutes.POST("/:id/like", auth.AuthMiddleware(), handler.ToggleLike)
			postRoutes.POST("/:id/comments", auth.AuthMiddleware(), handler.CreateComment)
			postRoutes.GET("/:id/comments", handler.GetComments)
			postRoutes.DELETE("/:id/comments/:commentId", auth.AuthMiddleware(), handler.DeleteComment)
		}

		friendRoutes := api.Group("/friends")
		friendRoutes.Use(auth.AuthMiddleware())
		{
			friendRoutes.POST("/request", handler.SendFriendRequest)
			friendRoutes.GET("/requests", handler.GetFriendRequests)
			friendRoutes.POST("/accept/:id", handler.AcceptFriendRequest)
			friendRoutes.POST("/reject/:id", handler.RejectFriendRequest)
			friendRoutes.GET("/list", handler.GetFriends)
			friendRoutes.DELETE("/:friendID", handler.RemoveFriend)
			friendRoutes.POST("/messages", handler.SendPrivateMessage)
			friendRoutes.GET("/messages/:username", handler.GetConversation)
		}

		chatRoutes := api.Group("/chat")
		{
			// WebSocket auth happens after the upgrade so clients get a
			// proper close frame instead of a failed handshake.
			chatRoutes.GET("/ws", chatHandler.RoomWebSocket)
			chatRoutes.GET("/ws/private/:username", chatHandler.PrivateWebSocket)
			chatRoutes.GET("/messages", auth.AuthMiddleware(), chatHandler.RoomHistory)
		}
	}

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
