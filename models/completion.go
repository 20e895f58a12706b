// models/completion.go
package models

import (
	"strings"
	"time"

	"race-challenge-system/utils"

	"gorm.io/gorm"
)

const (
	CompletionStatusActive   = "active"
	CompletionStatusArchived = "archived"
)

// ChallengeCompletion is one runner's proof of finishing a challenge.
type ChallengeCompletion struct {
	ID            string `json:"id" gorm:"primaryKey"`
	ChallengeSlug string `json:"challenge_slug" gorm:"index;not null"`
	ChallengeName string `json:"challenge_name" gorm:"not null"`

	// 🏃 Submitted by the runner
	FullName    string `json:"full_name" gorm:"not null"`
	State       string `json:"state" gorm:"type:varchar(2)"`
	City        string `json:"city"`
	Whatsapp    string `json:"whatsapp"`
	OrderNumber string `json:"order_number"`

	StravaScreenshotURL string `json:"strava_screenshot_url" gorm:"not null"`

	// 🛠️ Admin-owned state
	IsConfirmed bool   `json:"is_confirmed" gorm:"default:false"`
	Status      string `json:"status" gorm:"type:varchar(16);default:'active';index"`

	// Accent-folded, lowercased copy of the searchable columns.
	SearchText string `json:"-" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ChallengeCompletion) TableName() string {
	return "challenge_completions"
}

// BeforeCreate fills defaults and the search column. Submitted fields never change after insert.
func (c *ChallengeCompletion) BeforeCreate(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = CompletionStatusActive
	}
	c.SearchText = utils.FoldForSearch(strings.Join([]string{
		c.FullName,
		c.City,
		c.State,
		c.Whatsapp,
		c.OrderNumber,
		c.ChallengeName,
		c.ChallengeSlug,
	}, " "))
	return nil
}

// IsValidCompletionStatus reports whether s is a storable status.
func IsValidCompletionStatus(s string) bool {
	return s == CompletionStatusActive || s == CompletionStatusArchived
}
