package handlers

import (
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"time"

	"coolpress/internal/db"
	"coolpress/internal/middleware"
	"coolpress/internal/models"
	"coolpress/internal/services"
	"coolpress/internal/stats"
	"coolpress/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	postsPerPage = 20
	topCommentsN = 10
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// fillCommentCounts batch-fills the non-column CommentCount on a post list.
// Only PUBLISHED comments count here; the any-status exception belongs to
// the trending ranker alone.
func fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ? AND status = ?", postIDs, models.CommentStatusPublished).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

// Home shows every category with its post count plus the latest posts.
func (h *PostHandler) Home(c *gin.Context) {
	cacheKey := "posts:home"
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if hData, ok := cached.(gin.H); ok {
			Render(c, http.StatusOK, "home.html", hData)
			return
		}
	}

	var categories []models.Category
	db.DB.Order("label ASC").Find(&categories)

	type countResult struct {
		CategoryID uint
		Count      int
	}
	var results []countResult
	db.DB.Model(&models.Post{}).
		Select("category_id, COUNT(*) as count").
		Group("category_id").
		Scan(&results)
	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.CategoryID] = r.Count
	}
	for i := range categories {
		categories[i].PostCount = countMap[categories[i].ID]
	}

	var posts []models.Post
	db.DB.Preload("Author.User").Preload("Category").
		Order("created_at DESC").
		Limit(5).
		Find(&posts)
	fillCommentCounts(posts)

	renderData := gin.H{
		"Title":      "CoolPress",
		"Categories": categories,
		"Posts":      posts,
		"Active":     "home",
	}
	utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)

	Render(c, http.StatusOK, "home.html", renderData)
}

// List shows published posts, most recently updated first.
func (h *PostHandler) List(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	offset := (page - 1) * postsPerPage

	var total int64
	db.DB.Model(&models.Post{}).Where("status = ?", models.PostStatusPublished).Count(&total)

	totalPages := int(math.Ceil(float64(total) / float64(postsPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var posts []models.Post
	db.DB.Preload("Author.User").Preload("Category").
		Where("status = ?", models.PostStatusPublished).
		Order("updated_at DESC").
		Limit(postsPerPage).
		Offset(offset).
		Find(&posts)

	fillCommentCounts(posts)

	Render(c, http.StatusOK, "posts/list.html", gin.H{
		"Title":       "Posts",
		"Posts":       posts,
		"Active":      "posts",
		"CurrentPage": page,
		"TotalPages":  totalPages,
	})
}

// ListByCategory shows published posts under one category slug.
func (h *PostHandler) ListByCategory(c *gin.Context) {
	slug := c.Param("slug")

	var category models.Category
	if err := db.DB.Where("slug = ?", slug).First(&category).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Category not found")
		return
	}

	var posts []models.Post
	db.DB.Preload("Author.User").Preload("Category").
		Where("category_id = ? AND status = ?", category.ID, models.PostStatusPublished).
		Order("updated_at DESC").
		Limit(postsPerPage).
		Find(&posts)
	fillCommentCounts(posts)

	Render(c, http.StatusOK, "posts/list.html", gin.H{
		"Title":    category.Label,
		"Posts":    posts,
		"Category": category,
		"Active":   "posts",
	})
}

// TrendingList surfaces the posts with the most recent comment activity.
func (h *PostHandler) TrendingList(c *gin.Context) {
	cacheKey := "posts:trending"
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if hData, ok := cached.(gin.H); ok {
			Render(c, http.StatusOK, "posts/trending.html", hData)
			return
		}
	}

	var posts []models.Post
	db.DB.Preload("Author.User").Preload("Category").Preload("Comments").
		Find(&posts)

	trending := services.Trending(posts, services.DefaultTrendingThreshold, services.DefaultTrendingLimit)

	renderData := gin.H{
		"Title":  "Trending",
		"Posts":  trending,
		"Active": "trending",
	}
	utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)

	Render(c, http.StatusOK, "posts/trending.html", renderData)
}

// Detail renders a post with its published comments and the top-comment
// ranking from the analyzer.
func (h *PostHandler) Detail(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := db.DB.Preload("Author.User").Preload("Category").First(&post, postID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	var comments []models.Comment
	db.DB.Preload("Author.User").
		Where("post_id = ? AND status = ?", post.ID, models.CommentStatusPublished).
		Order("created_at DESC").
		Find(&comments)

	topComments := stats.Analyze(comments).Top(topCommentsN)

	var bodyHTML template.HTML
	if post.Body != nil {
		bodyHTML = utils.RenderMarkdown(*post.Body)
	}

	Render(c, http.StatusOK, "posts/detail.html", gin.H{
		"Title":       post.Title,
		"Post":        post,
		"BodyHTML":    bodyHTML,
		"Comments":    comments,
		"TopComments": topComments,
	})
}

// CreateComment adds a comment to a post. The vote weight comes from the
// form and defaults to 10.
func (h *PostHandler) CreateComment(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.CoolUser)

	postID := c.Param("id")
	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	body := c.PostForm("body")
	if body == "" {
		RenderError(c, http.StatusBadRequest, "Comment body cannot be empty")
		return
	}
	votes := utils.StringToIntDefault(c.PostForm("votes"), 10)

	comment := models.Comment{
		Body:     body,
		Votes:    votes,
		AuthorID: user.ID,
		PostID:   post.ID,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save comment")
		return
	}

	// Both cached list pages show comment activity.
	utils.GetCache().Delete("posts:home")
	utils.GetCache().Delete("posts:trending")

	c.Redirect(http.StatusFound, fmt.Sprintf("/post/%d", post.ID))
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	var categories []models.Category
	db.DB.Order("label ASC").Find(&categories)

	Render(c, http.StatusOK, "posts/form.html", gin.H{
		"Title":      "New post",
		"Categories": categories,
	})
}

// Create stores a manually authored post. Manually authored posts have no
// publish date; that field belongs to ingestion.
func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.CoolUser)

	title := c.PostForm("title")
	if title == "" {
		RenderError(c, http.StatusBadRequest, "Title cannot be empty")
		return
	}

	status := c.PostForm("status")
	if status != models.PostStatusPublished {
		status = models.PostStatusDraft
	}

	post := models.Post{
		Title:      title,
		Status:     status,
		AuthorID:   user.ID,
		CategoryID: uint(utils.StringToIntDefault(c.PostForm("category_id"), 1)),
	}
	if body := c.PostForm("body"); body != "" {
		post.Body = &body
	}
	if imageLink := c.PostForm("image_link"); imageLink != "" {
		post.ImageLink = &imageLink
	}

	if err := db.DB.Create(&post).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save post")
		return
	}

	utils.GetCache().Delete("posts:home")

	c.Redirect(http.StatusFound, fmt.Sprintf("/post/%d", post.ID))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.CoolUser)

	var post models.Post
	if err := db.DB.First(&post, c.Param("id")).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}
	if post.AuthorID != user.ID {
		RenderError(c, http.StatusBadRequest, "Not allowed to change others posts")
		return
	}

	var categories []models.Category
	db.DB.Order("label ASC").Find(&categories)

	Render(c, http.StatusOK, "posts/form.html", gin.H{
		"Title":      "Edit post",
		"Post":       post,
		"Categories": categories,
	})
}

// Update edits an existing post. Status only moves forward: a published
// post cannot go back to draft.
func (h *PostHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.CoolUser)

	var post models.Post
	if err := db.DB.First(&post, c.Param("id")).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}
	if post.AuthorID != user.ID {
		RenderError(c, http.StatusBadRequest, "Not allowed to change others posts")
		return
	}

	title := c.PostForm("title")
	if title == "" {
		RenderError(c, http.StatusBadRequest, "Title cannot be empty")
		return
	}
	post.Title = title

	if body := c.PostForm("body"); body != "" {
		post.Body = &body
	} else {
		post.Body = nil
	}
	if imageLink := c.PostForm("image_link"); imageLink != "" {
		post.ImageLink = &imageLink
	} else {
		post.ImageLink = nil
	}
	if categoryID := utils.StringToInt(c.PostForm("category_id")); categoryID > 0 {
		post.CategoryID = uint(categoryID)
	}

	status := c.PostForm("status")
	if post.Status == models.PostStatusPublished && status == models.PostStatusDraft {
		RenderError(c, http.StatusBadRequest, "A published post cannot go back to draft")
		return
	}
	if status == models.PostStatusPublished {
		post.Status = models.PostStatusPublished
	}

	if err := db.DB.Save(&post).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save post")
		return
	}

	utils.GetCache().Delete("posts:home")

	c.Redirect(http.StatusFound, fmt.Sprintf("/post/%d", post.ID))
}
