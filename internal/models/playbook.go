package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Playbook is an advisory guide, optionally with a downloadable template file
type Playbook struct {
	gorm.Model `json:"-"`

	PlaybookID    string `json:"id" gorm:"uniqueIndex"`
	Slug          string `json:"slug" gorm:"uniqueIndex"`
	Title         string `json:"title"`
	TitleSw       string `json:"titleSw"`
	Description   string `json:"description"`
	DescriptionSw string `json:"descriptionSw"`
	Content       string `json:"content"`
	ContentSw     string `json:"contentSw"`
	Domain        string `json:"domain" gorm:"index"` // e.g. "cashflow", "compliance"
	Sector        string `json:"sector"`
	County        string `json:"county"`
	Effort        string `json:"effort"` // "low", "medium", "high"
	TimeMinutes   int    `json:"timeMinutes"`
	TemplateURL   string `json:"templateUrl"`
	TemplateKey   string `json:"-"` // object storage key for the template file
	Published     bool   `json:"published" gorm:"default:false"`
	Downloads     int    `json:"downloads" gorm:"default:0"`
	Views         int    `json:"views" gorm:"default:0"`
}

func (p *Playbook) BeforeCreate(tx *gorm.DB) error {
	if p.PlaybookID == "" {
		p.PlaybookID = uuid.NewString()
	}
	return nil
}

// PlaybookSummary is the listing shape; content bodies are omitted
type PlaybookSummary struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	TitleSw       string    `json:"titleSw"`
	Description   string    `json:"description"`
	DescriptionSw string    `json:"descriptionSw"`
	Domain        string    `json:"domain"`
	Sector        string    `json:"sector"`
	County        string    `json:"county"`
	Effort        string    `json:"effort"`
	TimeMinutes   int       `json:"timeMinutes"`
	Downloads     int       `json:"downloads"`
	Views         int       `json:"views"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p *Playbook) Summary() PlaybookSummary {
	return PlaybookSummary{
		ID:            p.PlaybookID,
		Slug:          p.Slug,
		Title:         p.Title,
		TitleSw:       p.TitleSw,
		Description:   p.Description,
		DescriptionSw: p.DescriptionSw,
		Domain:        p.Domain,
		Sector:        p.Sector,
		County:        p.County,
		Effort:        p.Effort,
		TimeMinutes:   p.TimeMinutes,
		Downloads:     p.Downloads,
		Views:         p.Views,
		Published:     p.Published,
		CreatedAt:     p.CreatedAt,
	}
}
