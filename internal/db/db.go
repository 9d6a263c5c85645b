package db

import (
	"log"
	"os"

	"coolpress/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=coolpress port=5432 sslmode=disable"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedCategories()
}

// Migrate runs the schema migration. Split out of Init so tests can point
// DB at their own database.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.CoolUser{},
		&models.Category{},
		&models.Post{},
		&models.Comment{},
	)
}

func seedCategories() {
	var count int64
	DB.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return
	}

	categories := []models.Category{
		{Label: "General", Slug: "general"},
		{Label: "Tech", Slug: "tech"},
		{Label: "Business", Slug: "business"},
		{Label: "Science", Slug: "science"},
	}

	for _, cat := range categories {
		if err := DB.Create(&cat).Error; err != nil {
			log.Printf("Failed to create category %s: %v", cat.Slug, err)
		}
	}
	log.Println("Initial categories created")
}
