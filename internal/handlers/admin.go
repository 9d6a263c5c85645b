package handlers

import (
	"net/http"
	"strings"
	"time"

	"coolpress/internal/services"
	"coolpress/internal/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

func (h *AdminHandler) ShowIngest(c *gin.Context) {
	Render(c, http.StatusOK, "admin/ingest.html", gin.H{
		"Title": "Import news",
	})
}

// Ingest pulls articles from the news API into the post table. Records that
// fail normalization or already exist are skipped, not fatal.
func (h *AdminHandler) Ingest(c *gin.Context) {
	params := services.SearchParams{
		Sources:    splitParam(c.PostForm("sources")),
		Languages:  splitParam(c.PostForm("languages")),
		Categories: splitParam(c.PostForm("categories")),
		Countries:  splitParam(c.PostForm("countries")),
		Keywords:   strings.Fields(c.PostForm("keywords")),
	}
	if d := c.PostForm("date"); d != "" {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			Render(c, http.StatusBadRequest, "admin/ingest.html", gin.H{
				"Title": "Import news",
				"Error": "Date must look like 2006-01-02",
			})
			return
		}
		params.Date = &date
	}

	created, skipped, err := services.GetMediastackService().Ingest(params)
	if err != nil {
		Render(c, http.StatusBadGateway, "admin/ingest.html", gin.H{
			"Title": "Import news",
			"Error": "News API request failed: " + err.Error(),
		})
		return
	}

	utils.GetCache().Delete("posts:home")
	utils.GetCache().Delete("posts:trending")

	Render(c, http.StatusOK, "admin/ingest.html", gin.H{
		"Title":   "Import news",
		"Created": created,
		"Skipped": skipped,
	})
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
