package auth

import (
	"drinkbuddies/backend/internal/config"
	"drinkbuddies/backend/internal/database"
	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// OptionalAuthMiddleware inspects for a token and sets the user if present and valid,
// but does not fail if the token is missing or invalid.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			if username, err := jwt.ParseToken(token, config.AppConfig.JWTSecret); err == nil {
				var user models.User
				if err := database.Users().FindOne(c.Request.Context(), bson.M{"username": username}).Decode(&user); err == nil && user.IsActive {
					c.Set("user", &user)
				}
			}
		}
		c.Next()
	}
}
