package handler

import (
	"net/http"
	"time"

	"drinkbuddies/backend/internal/auth"
	"drinkbuddies/backend/internal/cache"
	"drinkbuddies/backend/internal/database"
	"drinkbuddies/backend/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// region --- DTOs ---

// UserResponse defines the structure for a user profile, own or public.
type UserResponse struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Bio            string     `json:"bio,omitempty"`
	FavoriteDrinks []string   `json:"favorite_drinks"`
	SoberDate      *time.Time `json:"sober_date,omitempty"`
	DaysSober      *int       `json:"days_sober,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	IsOnline       bool       `json:"is_online"`
}

// UserUpdateInput defines the structure for a partial profile update. Nil
// fields are left untouched.
type UserUpdateInput struct {
	Email          *string    `json:"email" binding:"omitempty,email"`
	Bio            *string    `json:"bio"`
	FavoriteDrinks *[]string  `json:"favorite_drinks"`
	SoberDate      *time.Time `json:"sober_date"`
}

// endregion

func buildUserResponse(c *gin.Context, user *models.User) UserResponse {
	return UserResponse{
		ID:             user.ID.Hex(),
		Username:       user.Username,
		Email:          user.Email,
		Bio:            user.Bio,
		FavoriteDrinks: user.FavoriteDrinks,
		SoberDate:      user.SoberDate,
		DaysSober:      user.DaysSober(),
		CreatedAt:      user.CreatedAt,
		IsOnline:       cache.IsOnline(c.Request.Context(), user.ID.Hex()),
	}
}

func profileCacheKey(username string) string {
	return "user:profile:" + username
}

// GetMe returns the authenticated user's own profile and refreshes their
// presence key as a side effect.
func GetMe(c *gin.Context) {
	user := auth.CurrentUser(c)
	cache.MarkOnline(c.Request.Context(), user.ID.Hex())
	c.JSON(http.StatusOK, buildUserResponse(c, user))
}

// GetUserByUsername returns a public profile, served from the cache when
// fresh.
func GetUserByUsername(c *gin.Context) {
	username := c.Param("username")
	ctx := c.Request.Context()

	var cached UserResponse
	if cache.GetJSON(ctx, profileCacheKey(username), &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	var user models.User
	if err := database.Users().FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	resp := buildUserResponse(c, &user)
	cache.SetJSON(ctx, profileCacheKey(username), resp, cache.ProfileTTL)
	c.JSON(http.StatusOK, resp)
}

// UpdateMe applies a partial update to the authenticated user's profile
// and invalidates their cached profile.
func UpdateMe(c *gin.Context) {
	user := auth.CurrentUser(c)

	var input UserUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if input.Email != nil {
		set["email"] = *input.Email
	}
	if input.Bio != nil {
		set["bio"] = *input.Bio
	}
	if input.FavoriteDrinks != nil {
		set["favorite_drinks"] = *input.FavoriteDrinks
	}
	if input.SoberDate != nil {
		set["sober_date"] = *input.SoberDate
	}

	ctx := c.Request.Context()
	if input.Email != nil && *input.Email != user.Email {
		if err := database.Users().FindOne(ctx, bson.M{"email": *input.Email}).Err(); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
	}

	if _, err := database.Users().UpdateByID(ctx, user.ID, bson.M{"$set": set}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	var updated models.User
	if err := database.Users().FindOne(ctx, bson.M{"_id": user.ID}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	cache.Invalidate(ctx, profileCacheKey(user.Username))
	c.JSON(http.StatusOK, buildUserResponse(c, &updated))
}
