package models

import (
	"time"
)

const (
	CommentStatusPublished    = "PUBLISHED"
	CommentStatusNonPublished = "NON_PUBLISHED"
)

type Comment struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Body   string `gorm:"type:text;not null" json:"body"`
	Status string `gorm:"size:32;default:'PUBLISHED';not null" json:"status"`
	Votes  int    `gorm:"not null" json:"votes"` // caller-supplied weight, may be negative

	// No delete cascade from the author: comments outlive deleted accounts
	// to keep the historical record.
	AuthorID uint     `gorm:"not null;index" json:"author_id"`
	Author   CoolUser `gorm:"constraint:OnUpdate:CASCADE,OnDelete:NO ACTION;" json:"author"`

	PostID uint `gorm:"not null;index" json:"post_id"`
	Post   Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
