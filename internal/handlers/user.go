package handlers

import (
	"net/http"

	"coolpress/internal/db"
	"coolpress/internal/middleware"
	"coolpress/internal/models"
	"coolpress/internal/services"
	"coolpress/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// List shows every author on the platform.
func (h *UserHandler) List(c *gin.Context) {
	var authors []models.CoolUser
	db.DB.Preload("User").Order("id ASC").Find(&authors)

	Render(c, http.StatusOK, "authors/list.html", gin.H{
		"Title":   "Authors",
		"Authors": authors,
		"Active":  "authors",
	})
}

// Detail shows an author's profile and their published posts. Enrichment
// fields may be absent; the template just omits them.
func (h *UserHandler) Detail(c *gin.Context) {
	var author models.CoolUser
	if err := db.DB.Preload("User").First(&author, c.Param("id")).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Author not found")
		return
	}

	var posts []models.Post
	db.DB.Preload("Category").
		Where("author_id = ? AND status = ?", author.ID, models.PostStatusPublished).
		Order("updated_at DESC").
		Limit(50).
		Find(&posts)
	fillCommentCounts(posts)

	Render(c, http.StatusOK, "authors/detail.html", gin.H{
		"Title":     author.DisplayName(),
		"Author":    author,
		"Posts":     posts,
		"DaysSince": utils.GetDaysSinceJoined(author.CreatedAt),
	})
}

func (h *UserHandler) ShowSettings(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.CoolUser)
	Render(c, http.StatusOK, "authors/settings.html", gin.H{
		"Title":  "Settings",
		"Author": user,
	})
}

// UpdateSettings saves profile fields and re-runs enrichment, since both the
// email (gravatar) and the github handle may have changed.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.CoolUser)

	user.User.FirstName = c.PostForm("first_name")
	user.User.LastName = c.PostForm("last_name")
	if email := c.PostForm("email"); email != "" {
		user.User.Email = email
	}
	if github := c.PostForm("github_profile"); github != "" {
		user.GithubProfile = &github
	} else {
		user.GithubProfile = nil
	}

	services.GetEnrichmentService().EnrichUser(user)

	if err := db.DB.Save(&user.User).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	if err := db.DB.Save(user).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	Render(c, http.StatusOK, "authors/settings.html", gin.H{
		"Title":   "Settings",
		"Author":  user,
		"Success": "Settings saved",
	})
}
