package models

import (
	"time"
)

// Category groups posts. Slug is the stable machine identifier; ingestion
// resolves categories by slug so repeated imports never create duplicates.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Label       string    `gorm:"size:200;not null" json:"label"`
	Slug        string    `gorm:"uniqueIndex;size:200;not null" json:"slug"`
	CreatedByID *uint     `gorm:"index" json:"created_by_id"` // nil for ingested categories
	CreatedBy   *CoolUser `gorm:"foreignKey:CreatedByID" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Filled by queries, not a column
	PostCount int `gorm:"-" json:"post_count"`
}
