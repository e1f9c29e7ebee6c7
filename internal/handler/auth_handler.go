package handler

import (
	"net/http"
	"time"

	"drinkbuddies/backend/internal/config"
	"drinkbuddies/backend/internal/database"
	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration. Profile
// fields are optional at signup.
type RegisterInput struct {
	Username       string     `json:"username" binding:"required,min=3,max=50"`
	Email          string     `json:"email" binding:"required,email"`
	Password       string     `json:"password" binding:"required,min=8"`
	Bio            string     `json:"bio"`
	FavoriteDrinks []string   `json:"favorite_drinks"`
	SoberDate      *time.Time `json:"sober_date"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// TokenResponse is returned after a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// endregion

// Register creates a new account. Usernames and emails are unique; a
// duplicate of either is rejected before the insert.
func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	if err := database.Users().FindOne(ctx, bson.M{"username": input.Username}).Err(); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already registered"})
		return
	}
	if err := database.Users().FindOne(ctx, bson.M{"email": input.Email}).Err(); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	favorites := input.FavoriteDrinks
	if favorites == nil {
		favorites = []string{}
	}

	now := time.Now().UTC()
	user := models.User{
		ID:             primitive.NewObjectID(),
		Username:       input.Username,
		Email:          input.Email,
		HashedPassword: string(hashedPassword),
		Bio:            input.Bio,
		FavoriteDrinks: favorites,
		SoberDate:      input.SoberDate,
		CreatedAt:      now,
		UpdatedAt:      now,
		IsActive:       true,
	}
	if _, err := database.Users().InsertOne(ctx, &user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, buildUserResponse(c, &user))
}

// Login authenticates by username and password and returns a bearer token.
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.Users().FindOne(c.Request.Context(), bson.M{"username": input.Username}).Decode(&user); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Inactive user"})
		return
	}

	ttl := time.Duration(config.AppConfig.AccessTokenExpireMinutes) * time.Minute
	token, err := jwt.GenerateToken(user.Username, config.AppConfig.JWTSecret, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}
