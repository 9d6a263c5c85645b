package main

import (
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"coolpress/internal/db"
	"coolpress/internal/handlers"
	"coolpress/internal/middleware"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	db.Init()

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("coolpress_session", store))

	r.HTMLRender = loadTemplates("./web/templates")
	r.Static("/static", "./web/static")

	// Middleware
	r.Use(middleware.LoadUser())

	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	categoryHandler := handlers.NewCategoryHandler()
	userHandler := handlers.NewUserHandler()
	adminHandler := handlers.NewAdminHandler()

	// Public Routes
	r.GET("/", postHandler.Home)
	r.GET("/posts", postHandler.List)
	r.GET("/posts/trending", postHandler.TrendingList)
	r.GET("/posts/category/:slug", postHandler.ListByCategory)
	r.GET("/post/:id", postHandler.Detail)
	r.GET("/authors", userHandler.List)
	r.GET("/author/:id", userHandler.Detail)

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/posts/add", postHandler.ShowCreate)
		authorized.POST("/posts/add", postHandler.Create)
		authorized.GET("/post/:id/edit", postHandler.ShowEdit)
		authorized.POST("/post/:id/edit", postHandler.Update)
		authorized.POST("/post/:id/comment", postHandler.CreateComment)

		authorized.GET("/category/add", categoryHandler.ShowCreate)
		authorized.POST("/category/add", categoryHandler.Create)

		authorized.GET("/settings", userHandler.ShowSettings)
		authorized.POST("/settings", userHandler.UpdateSettings)
	}

	// Admin Routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired())
	{
		admin.GET("/ingest", adminHandler.ShowIngest)
		admin.POST("/ingest", adminHandler.Ingest)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("CoolPress server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t interface{}) string {
			timeVal, ok := t.(time.Time)
			if !ok {
				return ""
			}

			duration := time.Since(timeVal)
			seconds := int(duration.Seconds())

			if seconds < 60 {
				return fmt.Sprintf("%ds ago", seconds)
			} else if seconds < 3600 {
				return fmt.Sprintf("%dm ago", seconds/60)
			} else if seconds < 86400 {
				return fmt.Sprintf("%dh ago", seconds/3600)
			} else if seconds < 2592000 {
				return fmt.Sprintf("%dd ago", seconds/86400)
			} else if seconds < 31536000 {
				return fmt.Sprintf("%dmo ago", seconds/2592000)
			}
			return fmt.Sprintf("%dy ago", seconds/31536000)
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	// Manual registration so keys match what handlers render
	r.AddFromFilesFuncs("home.html", funcMap, assemble(templatesDir+"/views/home.html")...)

	r.AddFromFilesFuncs("posts/list.html", funcMap, assemble(templatesDir+"/views/posts/list.html")...)
	r.AddFromFilesFuncs("posts/trending.html", funcMap, assemble(templatesDir+"/views/posts/trending.html")...)
	r.AddFromFilesFuncs("posts/detail.html", funcMap, assemble(templatesDir+"/views/posts/detail.html")...)
	r.AddFromFilesFuncs("posts/form.html", funcMap, assemble(templatesDir+"/views/posts/form.html")...)

	r.AddFromFilesFuncs("categories/form.html", funcMap, assemble(templatesDir+"/views/categories/form.html")...)

	r.AddFromFilesFuncs("authors/list.html", funcMap, assemble(templatesDir+"/views/authors/list.html")...)
	r.AddFromFilesFuncs("authors/detail.html", funcMap, assemble(templatesDir+"/views/authors/detail.html")...)
	r.AddFromFilesFuncs("authors/settings.html", funcMap, assemble(templatesDir+"/views/authors/settings.html")...)

	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)

	r.AddFromFilesFuncs("admin/ingest.html", funcMap, assemble(templatesDir+"/views/admin/ingest.html")...)

	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
