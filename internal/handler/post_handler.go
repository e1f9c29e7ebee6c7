package handler

import (
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"drinkbuddies/backend/internal/auth"
	"drinkbuddies/backend/internal/cache"
	"drinkbuddies/backend/internal/config"
	"drinkbuddies/backend/internal/database"
	"drinkbuddies/backend/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	maxUploadSize   = 5 << 20
	postRateLimit   = 10
	postRateWindow  = time.Minute
	defaultPageSize = 20
	maxPageSize     = 100
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// region --- DTOs ---

// PostInput defines the structure for creating or updating a post. Both
// JSON and form bodies are accepted.
type PostInput struct {
	Content  string `json:"content" form:"content" binding:"required,max=2000"`
	ImageURL string `json:"image_url" form:"image_url"`
}

// PostResponse defines the structure for a post as seen by the viewer.
type PostResponse struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	LikesCount     int       `json:"likes_count"`
	CommentsCount  int       `json:"comments_count"`
	LikedByUser    bool      `json:"liked_by_user"`
}

// endregion

func buildPostResponse(p *models.Post, viewer *models.User) PostResponse {
	resp := PostResponse{
		ID:             p.ID.Hex(),
		Content:        p.Content,
		AuthorID:       p.AuthorID.Hex(),
		AuthorUsername: p.AuthorUsername,
		ImageURL:       p.ImageURL,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		LikesCount:     p.LikesCount,
		CommentsCount:  p.CommentsCount,
	}
	if viewer != nil {
		resp.LikedByUser = p.LikedByUser(viewer.ID)
	}
	return resp
}

func feedCacheKey(viewerID string, skip, limit int64) string {
	return "posts:feed:" + viewerID + ":" + strconv.FormatInt(skip, 10) + ":" + strconv.FormatInt(limit, 10)
}

func invalidateFeeds(c *gin.Context) {
	cache.InvalidatePattern(c.Request.Context(), "posts:feed:*")
}

// UploadImage stores an uploaded image under a random name and returns its
// public URL. The content type is sniffed from the bytes, not trusted from
// the request.
func UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	mtype, err := mimetype.DetectReader(f)
	_ = f.Close()
	if err != nil || !lo.Contains(allowedImageTypes, mtype.String()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
		return
	}

	name := uuid.NewString() + mtype.Extension()
	dst := filepath.Join(config.AppConfig.UploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": "/uploads/" + name})
}

// CreatePost inserts a new post. Authors are limited to 10 posts per
// minute.
func CreatePost(c *gin.Context) {
	user := auth.CurrentUser(c)
	ctx := c.Request.Context()

	if !cache.Allow(ctx, "rate_limit:post:"+user.ID.Hex(), postRateLimit, postRateWindow) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many posts, slow down"})
		return
	}

	var input PostInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:             primitive.NewObjectID(),
		Content:        input.Content,
		AuthorID:       user.ID,
		AuthorUsername: user.Username,
		ImageURL:       input.ImageURL,
		CreatedAt:      now,
		UpdatedAt:      now,
		LikedBy:        []primitive.ObjectID{},
	}
	if _, err := database.Posts().InsertOne(ctx, &post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	invalidateFeeds(c)
	c.JSON(http.StatusCreated, buildPostResponse(&post, user))
}

// GetPosts returns the feed, newest first. The first page is cached per
// viewer because the liked_by_user flag differs between them.
func GetPosts(c *gin.Context) {
	viewer := auth.CurrentUser(c)
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

	viewerID := "anonymous"
	if viewer != nil {
		viewerID = viewer.ID.Hex()
	}
	key := feedCacheKey(viewerID, skip, limit)

	if skip == 0 {
		var cached []PostResponse
		if cache.GetJSON(ctx, key, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := database.Posts().Find(ctx, bson.M{}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	resp := lo.Map(posts, func(p models.Post, _ int) PostResponse {
		return buildPostResponse(&p, viewer)
	})
	if skip == 0 {
		cache.SetJSON(ctx, key, resp, cache.ListTTL)
	}
	c.JSON(http.StatusOK, resp)
}

// GetPost returns a single post.
func GetPost(c *gin.Context) {
	post, ok := loadPost(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildPostResponse(post, auth.CurrentUser(c)))
}

// UpdatePost replaces a post's content. Only the author may edit.
func UpdatePost(c *gin.Context) {
	user := auth.CurrentUser(c)
	post, ok := loadPost(c)
	if !ok {
		return
	}
	if post.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the author of this post"})
		return
	}

	var input PostInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	set := bson.M{
		"content":    input.Content,
		"image_url":  input.ImageURL,
		"updated_at": time.Now().UTC(),
	}
	if _, err := database.Posts().UpdateByID(ctx, post.ID, bson.M{"$set": set}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	post.Content = input.Content
	post.ImageURL = input.ImageURL
	invalidateFeeds(c)
	c.JSON(http.StatusOK, buildPostResponse(post, user))
}

// DeletePost removes a post and its comments. Only the author may delete.
func DeletePost(c *gin.Context) {
	user := auth.CurrentUser(c)
	post, ok := loadPost(c)
	if !ok {
		return
	}
	if post.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the author of this post"})
		return
	}

	ctx := c.Request.Context()
	if _, err := database.Posts().DeleteOne(ctx, bson.M{"_id": post.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	_, _ = database.Comments().DeleteMany(ctx, bson.M{"post_id": post.ID})

	invalidateFeeds(c)
	cache.InvalidatePattern(ctx, "comments:"+post.ID.Hex()+"*")
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// ToggleLike likes the post, or unlikes it when the user already liked it.
func ToggleLike(c *gin.Context) {
	user := auth.CurrentUser(c)
	post, ok := loadPost(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	liked := post.LikedByUser(user.ID)
	if liked {
		post.LikedBy = lo.Filter(post.LikedBy, func(id primitive.ObjectID, _ int) bool {
			return id != user.ID
		})
	} else {
		post.LikedBy = append(post.LikedBy, user.ID)
	}
	post.LikesCount = len(post.LikedBy)

	set := bson.M{"liked_by": post.LikedBy, "likes_count": post.LikesCount}
	if _, err := database.Posts().UpdateByID(ctx, post.ID, bson.M{"$set": set}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update like"})
		return
	}

	invalidateFeeds(c)
	c.JSON(http.StatusOK, gin.H{"liked": !liked, "likes_count": post.LikesCount})
}

// loadPost reads the :id param, fetches the post and writes the error
// response itself when either step fails.
func loadPost(c *gin.Context) (*models.Post, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return nil, false
	}
	var post models.Post
	if err := database.Posts().FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&post); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil, false
	}
	return &post, true
}
