package models

import (
	"time"
)

// User is the base account identity. Enrichment metadata lives on CoolUser
// so the auth record stays small.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string    `gorm:"index" json:"email"`
	Password  string    `json:"-"` // Hash
	FirstName string    `gorm:"size:150" json:"first_name"`
	LastName  string    `gorm:"size:150" json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CoolUser wraps a User with best-effort enrichment fields. All of them are
// nullable: a profile renders fine with none of them present.
type CoolUser struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	GravatarLink      *string    `json:"gravatar_link"`
	GravatarUpdatedAt *time.Time `json:"gravatar_updated_at"`
	GithubProfile     *string    `json:"github_profile"`
	GithubRepos       *int       `json:"github_repos"`
	GithubStars       *int       `json:"github_stars"`
	LastGithubCheck   *time.Time `json:"last_github_check"` // gates scraping to once per calendar day

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName prefers the real name, falling back to the username.
func (cu *CoolUser) DisplayName() string {
	if cu.User.FirstName != "" {
		if cu.User.LastName != "" {
			return cu.User.FirstName + " " + cu.User.LastName
		}
		return cu.User.FirstName
	}
	return cu.User.Username
}
