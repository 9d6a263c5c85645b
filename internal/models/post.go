package models

import (
	"time"
)

const (
	PostStatusDraft     = "DRAFT"
	PostStatusPublished = "PUBLISHED"
)

type Post struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Title      string   `gorm:"size:400;not null" json:"title"`
	Body       *string  `gorm:"type:text" json:"body"`
	ImageLink  *string  `json:"image_link"`
	Status     string   `gorm:"size:32;default:'DRAFT';not null" json:"status"`
	AuthorID   uint     `gorm:"not null;index" json:"author_id"`
	Author     CoolUser `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	CategoryID uint     `gorm:"not null;index" json:"category_id"`
	Category   Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"category"`

	// Set by ingestion; manually authored posts leave it nil.
	PublishDate *time.Time `json:"publish_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`

	// Filled by queries, not columns
	CommentCount int `gorm:"-" json:"comment_count"`
}

// ContentEquals reports structural equality over everything except database
// identity and the server-assigned timestamps. The author is compared by
// username and the category by slug, so it works on values that were never
// saved. Ingestion uses this to detect already-imported articles.
func (p *Post) ContentEquals(other *Post) bool {
	if other == nil {
		return false
	}
	if p.Title != other.Title || p.Status != other.Status {
		return false
	}
	if !strPtrEqual(p.Body, other.Body) || !strPtrEqual(p.ImageLink, other.ImageLink) {
		return false
	}
	if !timePtrEqual(p.PublishDate, other.PublishDate) {
		return false
	}
	if p.Author.User.Username != other.Author.User.Username {
		return false
	}
	return p.Category.Slug == other.Category.Slug
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
