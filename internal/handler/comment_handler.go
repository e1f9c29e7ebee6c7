package handler

import (
	"net/http"
	"strconv"
	"time"

	"drinkbuddies/backend/internal/auth"
	"drinkbuddies/backend/internal/cache"
	"drinkbuddies/backend/internal/database"
	"drinkbuddies/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	commentRateLimit  = 20
	commentRateWindow = time.Minute
)

// region --- DTOs ---

// CommentInput defines the structure for creating a comment.
type CommentInput struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// CommentResponse defines the structure for a comment.
type CommentResponse struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	PostID         string    `json:"post_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// endregion

func buildCommentResponse(cm *models.Comment) CommentResponse {
	return CommentResponse{
		ID:             cm.ID.Hex(),
		Content:        cm.Content,
		AuthorID:       cm.AuthorID.Hex(),
		AuthorUsername: cm.AuthorUsername,
		PostID:         cm.PostID.Hex(),
		CreatedAt:      cm.CreatedAt,
	}
}

func commentsCacheKey(postID string, skip, limit int64) string {
	return "comments:" + postID + ":" + strconv.FormatInt(skip, 10) + ":" + strconv.FormatInt(limit, 10)
}

func invalidateComments(c *gin.Context, postID string) {
	cache.InvalidatePattern(c.Request.Context(), "comments:"+postID+"*")
}

// CreateComment adds a comment to a post and bumps the post's comment
// counter. Authors are limited to 20 comments per minute.
func CreateComment(c *gin.Context) {
	user := auth.CurrentUser(c)
	post, ok := loadPost(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if !cache.Allow(ctx, "rate_limit:comment:"+user.ID.Hex(), commentRateLimit, commentRateWindow) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many comments, slow down"})
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:             primitive.NewObjectID(),
		Content:        input.Content,
		AuthorID:       user.ID,
		AuthorUsername: user.Username,
		PostID:         post.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := database.Comments().InsertOne(ctx, &comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}
	_, _ = database.Posts().UpdateByID(ctx, post.ID, bson.M{"$inc": bson.M{"comments_count": 1}})

	invalidateComments(c, post.ID.Hex())
	invalidateFeeds(c)
	c.JSON(http.StatusCreated, buildCommentResponse(&comment))
}

// GetComments returns a post's comments, oldest first. The first page is
// cached briefly.
func GetComments(c *gin.Context) {
	post, ok := loadPost(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	skip, _ := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	if skip < 0 {
		skip = 0
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)), 10, 64)
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	key := commentsCacheKey(post.ID.Hex(), skip, limit)
	if skip == 0 {
		var cached []CommentResponse
		if cache.GetJSON(ctx, key, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := database.Comments().Find(ctx, bson.M{"post_id": post.ID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	resp := lo.Map(comments, func(cm models.Comment, _ int) CommentResponse {
		return buildCommentResponse(&cm)
	})
	if skip == 0 {
		cache.SetJSON(ctx, key, resp, cache.ListTTL)
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteComment removes a comment. Only its author may delete it. The
// post's counter never drops below zero even if it drifted.
func DeleteComment(c *gin.Context) {
	user := auth.CurrentUser(c)

	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment id"})
		return
	}

	ctx := c.Request.Context()
	var comment models.Comment
	if err := database.Comments().FindOne(ctx, bson.M{"_id": commentID}).Decode(&comment); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if comment.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the author of this comment"})
		return
	}

	if _, err := database.Comments().DeleteOne(ctx, bson.M{"_id": commentID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}
	_, _ = database.Posts().UpdateOne(ctx,
		bson.M{"_id": comment.PostID, "comments_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"comments_count": -1}})

	invalidateComments(c, comment.PostID.Hex())
	invalidateFeeds(c)
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
