package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"coolpress/internal/db"
	"coolpress/internal/middleware"
	"coolpress/internal/models"
	"coolpress/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the global handle at a fresh in-memory database.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	db.DB = gdb
}

// seedAuthor stores a user pair and returns the CoolUser.
func seedAuthor(t *testing.T, username string) *models.CoolUser {
	t.Helper()

	user := models.User{Username: username, Email: username + "@example.com"}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	cu := models.CoolUser{UserID: user.ID, User: user}
	if err := db.DB.Create(&cu).Error; err != nil {
		t.Fatalf("Failed to create cool user: %v", err)
	}
	return &cu
}

func seedPost(t *testing.T, author *models.CoolUser, title string) *models.Post {
	t.Helper()

	category := models.Category{Label: "General", Slug: "general"}
	if err := db.DB.Where(models.Category{Slug: "general"}).FirstOrCreate(&category).Error; err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	post := models.Post{
		Title:      title,
		Status:     models.PostStatusPublished,
		AuthorID:   author.ID,
		CategoryID: category.ID,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return &post
}

func seedComment(t *testing.T, author *models.CoolUser, post *models.Post, status string) {
	t.Helper()

	comment := models.Comment{
		Body:     "c",
		Votes:    10,
		Status:   status,
		AuthorID: author.ID,
		PostID:   post.ID,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
}

// List pages only surface published comments in their counts; the
// any-status counting is an exception owned by the trending ranker.
func TestFillCommentCountsPublishedOnly(t *testing.T) {
	setupTestDB(t)

	author := seedAuthor(t, "counter")
	post := seedPost(t, author, "Counted")
	seedComment(t, author, post, models.CommentStatusPublished)
	seedComment(t, author, post, models.CommentStatusNonPublished)

	posts := []models.Post{*post}
	fillCommentCounts(posts)

	if posts[0].CommentCount != 1 {
		t.Errorf("Expected 1 published comment, got %d", posts[0].CommentCount)
	}
}

func TestFillCommentCountsEmpty(t *testing.T) {
	setupTestDB(t)
	fillCommentCounts(nil)
}

// A new comment must drop both cached list pages: home shows comment
// counts and trending ranks by comment activity.
func TestCreateCommentInvalidatesCaches(t *testing.T) {
	setupTestDB(t)
	gin.SetMode(gin.TestMode)

	author := seedAuthor(t, "commenter")
	post := seedPost(t, author, "Commented")

	cache := utils.GetCache()
	cache.Set("posts:home", gin.H{"stale": true}, time.Minute)
	cache.Set("posts:trending", gin.H{"stale": true}, time.Minute)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/post/%d/comment", post.ID),
		strings.NewReader("body=Nice+read&votes=8"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(post.ID)}}
	c.Set(middleware.CheckUserKey, author)

	NewPostHandler().CreateComment(c)
	// The handler is invoked outside gin's engine loop, so flush the
	// buffered status to the recorder; a POST redirect has no body write
	// that would do it implicitly.
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusFound {
		t.Fatalf("Expected redirect, got status %d", w.Code)
	}
	if cache.Get("posts:home") != nil {
		t.Error("Expected posts:home to be invalidated")
	}
	if cache.Get("posts:trending") != nil {
		t.Error("Expected posts:trending to be invalidated")
	}

	var count int64
	db.DB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 stored comment, got %d", count)
	}
}
