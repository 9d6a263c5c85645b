package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"coolpress/internal/db"
	"coolpress/internal/models"
	"coolpress/internal/utils"

	"github.com/araddon/dateparse"
)

// Normalization failure taxonomy. The ingestion job decides per record
// whether a failure skips the record or aborts the batch.
var (
	ErrValidation = errors.New("article failed validation")
	ErrParse      = errors.New("article failed parsing")
)

// ExternalArticle mirrors one record of the mediastack /v1/news response.
type ExternalArticle struct {
	Author      string  `json:"author"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	Image       *string `json:"image"`
	Category    string  `json:"category"`
	Language    string  `json:"language"`
	Country     string  `json:"country"`
	PublishedAt string  `json:"published_at"`
}

// SearchParams are the query filters the news API accepts. Zero-value
// fields are omitted from the request.
type SearchParams struct {
	Sources    []string
	Date       *time.Time
	Languages  []string
	Categories []string
	Countries  []string
	Keywords   []string
}

// Human-readable labels for the categories mediastack emits. Anything not
// listed falls back to a capitalized slug.
var categoryLabels = map[string]string{
	"general":       "General",
	"business":      "Business",
	"entertainment": "Entertainment",
	"health":        "Health",
	"science":       "Science",
	"sports":        "Sports",
	"technology":    "Technology",
}

// MediastackService pulls articles from the mediastack news API and maps
// them into the internal schema.
type MediastackService struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewMediastackService() *MediastackService {
	baseURL := os.Getenv("MEDIASTACK_BASE_URL")
	if baseURL == "" {
		baseURL = "http://api.mediastack.com"
	}

	return &MediastackService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  os.Getenv("MEDIASTACK_API_KEY"),
	}
}

var (
	mediastackService *MediastackService
	mediastackOnce    sync.Once
)

// GetMediastackService returns the singleton mediastack client.
func GetMediastackService() *MediastackService {
	mediastackOnce.Do(func() {
		mediastackService = NewMediastackService()
	})
	return mediastackService
}

// Search calls /v1/news with the given filters and returns the raw records.
// Transport concerns (auth key, pagination) live here, not in the normalizer.
func (s *MediastackService) Search(params SearchParams) ([]ExternalArticle, error) {
	q := url.Values{}
	q.Set("access_key", s.apiKey)
	if len(params.Sources) > 0 {
		q.Set("sources", strings.Join(params.Sources, ","))
	}
	if params.Date != nil {
		q.Set("date", params.Date.Format("2006-01-02"))
	}
	if len(params.Languages) > 0 {
		q.Set("languages", strings.Join(params.Languages, ","))
	}
	if len(params.Categories) > 0 {
		q.Set("categories", strings.Join(params.Categories, ","))
	}
	if len(params.Countries) > 0 {
		q.Set("countries", strings.Join(params.Countries, ","))
	}
	if len(params.Keywords) > 0 {
		q.Set("keywords", strings.Join(params.Keywords, " "))
	}

	resp, err := s.client.Get(s.baseURL + "/v1/news?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("mediastack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mediastack returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading mediastack response failed: %w", err)
	}

	var payload struct {
		Data []ExternalArticle `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding mediastack response failed: %w", err)
	}

	return payload.Data, nil
}

// SerializeArticle maps one external record into an unsaved Post. The
// referenced author and category are resolved idempotently: a repeated
// import of the same identity reuses the existing rows instead of creating
// duplicates. The Post itself is not persisted.
func SerializeArticle(article ExternalArticle) (*models.Post, error) {
	if article.Title == "" {
		return nil, fmt.Errorf("missing title: %w", ErrValidation)
	}
	if article.URL == "" {
		return nil, fmt.Errorf("missing url: %w", ErrValidation)
	}

	publishedAt, err := dateparse.ParseStrict(article.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("bad published_at %q: %w", article.PublishedAt, ErrParse)
	}
	publishedAt = publishedAt.UTC()

	author, err := resolveAuthor(article.Author)
	if err != nil {
		return nil, err
	}

	category, err := resolveCategory(article.Category)
	if err != nil {
		return nil, err
	}

	body := article.Description + "\nsee more at: " + article.URL

	return &models.Post{
		Title:       article.Title,
		Body:        &body,
		ImageLink:   article.Image,
		Status:      models.PostStatusPublished, // external content is pre-vetted
		AuthorID:    author.ID,
		Author:      *author,
		CategoryID:  category.ID,
		Category:    *category,
		PublishDate: &publishedAt,
	}, nil
}

// resolveAuthor finds or creates the CoolUser behind an external byline.
// The account name is the compacted display name, so "CNN Super Staff"
// always lands on the same "cnnsuperstaff" account.
func resolveAuthor(displayName string) (*models.CoolUser, error) {
	username := utils.AccountName(displayName)
	if username == "" {
		return nil, fmt.Errorf("missing author: %w", ErrValidation)
	}
	first, last := utils.SplitDisplayName(displayName)

	var user models.User
	err := db.DB.Where(models.User{Username: username}).
		Attrs(models.User{FirstName: first, LastName: last}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("resolving author %q: %w", username, err)
	}

	var cu models.CoolUser
	err = db.DB.Where(models.CoolUser{UserID: user.ID}).FirstOrCreate(&cu).Error
	if err != nil {
		return nil, fmt.Errorf("resolving cool user for %q: %w", username, err)
	}
	cu.User = user
	return &cu, nil
}

// resolveCategory finds or creates the Category for an external slug.
func resolveCategory(raw string) (*models.Category, error) {
	slug := utils.Slugify(raw)
	if slug == "" {
		slug = "general"
	}
	label, ok := categoryLabels[slug]
	if !ok {
		label = strings.ToUpper(slug[:1]) + slug[1:]
	}

	var category models.Category
	err := db.DB.Where(models.Category{Slug: slug}).
		Attrs(models.Category{Label: label}).
		FirstOrCreate(&category).Error
	if err != nil {
		return nil, fmt.Errorf("resolving category %q: %w", slug, err)
	}
	return &category, nil
}

// Ingest runs a search and persists every article that normalizes cleanly
// and isn't already present. Per-record failures are logged and skipped;
// only a failed search aborts the batch.
func (s *MediastackService) Ingest(params SearchParams) (created, skipped int, err error) {
	articles, err := s.Search(params)
	if err != nil {
		return 0, 0, err
	}

	enricher := GetEnrichmentService()

	for _, article := range articles {
		post, serr := SerializeArticle(article)
		if serr != nil {
			log.Printf("Skipping article %q: %v", article.Title, serr)
			skipped++
			continue
		}

		if existingPost(post) {
			skipped++
			continue
		}

		if cerr := db.DB.Create(post).Error; cerr != nil {
			log.Printf("Failed to store article %q: %v", post.Title, cerr)
			skipped++
			continue
		}

		// Best-effort author enrichment; a network miss never fails the batch.
		author := post.Author
		enricher.EnrichUser(&author)
		if uerr := db.DB.Save(&author).Error; uerr != nil {
			log.Printf("Failed to save enrichment for %q: %v", author.User.Username, uerr)
		}

		created++
	}

	return created, skipped, nil
}

// existingPost reports whether a structurally equal post was already
// imported. Candidates are narrowed by title first so the comparison set
// stays small.
func existingPost(post *models.Post) bool {
	var candidates []models.Post
	db.DB.Preload("Author.User").Preload("Category").
		Where("title = ?", post.Title).
		Find(&candidates)

	for i := range candidates {
		if post.ContentEquals(&candidates[i]) {
			return true
		}
	}
	return false
}
