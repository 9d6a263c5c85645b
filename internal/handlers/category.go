package handlers

import (
	"net/http"

	"coolpress/internal/db"
	"coolpress/internal/middleware"
	"coolpress/internal/models"
	"coolpress/internal/utils"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

func (h *CategoryHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "categories/form.html", gin.H{
		"Title": "New category",
	})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.CoolUser)

	label := c.PostForm("label")
	if label == "" {
		RenderError(c, http.StatusBadRequest, "Label cannot be empty")
		return
	}
	slug := c.PostForm("slug")
	if slug == "" {
		slug = utils.Slugify(label)
	}

	category := models.Category{
		Label:       label,
		Slug:        slug,
		CreatedByID: &user.ID,
	}
	if err := db.DB.Create(&category).Error; err != nil {
		Render(c, http.StatusConflict, "categories/form.html", gin.H{
			"Title": "New category",
			"Error": "A category with that slug already exists",
		})
		return
	}

	utils.GetCache().Delete("posts:home")

	c.Redirect(http.StatusFound, "/posts")
}
