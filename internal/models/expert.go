package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expert represents a verified advisor users can book
type Expert struct {
	gorm.Model `json:"-"`

	ExpertID    string  `json:"id" gorm:"uniqueIndex"`
	Name        string  `json:"name"`
	Email       string  `json:"email" gorm:"uniqueIndex"`
	Phone       string  `json:"phone"`
	Domains     string  `json:"-" gorm:"index"` // comma-separated tags, e.g. "accounting,tax"
	County      string  `json:"county"`
	Bio         string  `json:"bio"`
	RateMin     int     `json:"rateMin"` // KES per session
	RateMax     int     `json:"rateMax"`
	Rating      float64 `json:"rating" gorm:"default:0"`
	ReviewCount int     `json:"reviewCount" gorm:"default:0"`
	Verified    bool    `json:"verified" gorm:"default:false"`
	Available   bool    `json:"available" gorm:"default:true"`
	PhotoURL    string  `json:"photoUrl"`
}

func (e *Expert) BeforeCreate(tx *gorm.DB) error {
	if e.ExpertID == "" {
		e.ExpertID = uuid.NewString()
	}
	return nil
}

// DomainTags returns the expert's domain tags as a slice
func (e *Expert) DomainTags() []string {
	if e.Domains == "" {
		return nil
	}
	parts := strings.Split(e.Domains, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// HasDomain reports whether the expert covers the given domain tag
func (e *Expert) HasDomain(domain string) bool {
	for _, t := range e.DomainTags() {
		if strings.EqualFold(t, domain) {
			return true
		}
	}
	return false
}

// SetDomainTags stores the given tags in the comma-separated column
func (e *Expert) SetDomainTags(tags []string) {
	e.Domains = strings.Join(tags, ",")
}

// ExpertCard is the public listing shape returned by the experts endpoint
type ExpertCard struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Domains     []string `json:"domain"`
	County      string   `json:"county"`
	Bio         string   `json:"bio"`
	RateMin     int      `json:"rateMin"`
	RateMax     int      `json:"rateMax"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"reviewCount"`
	PhotoURL    string   `json:"photoUrl"`
}

func (e *Expert) Card() ExpertCard {
	return ExpertCard{
		ID:          e.ExpertID,
		Name:        e.Name,
		Domains:     e.DomainTags(),
		County:      e.County,
		Bio:         e.Bio,
		RateMin:     e.RateMin,
		RateMax:     e.RateMax,
		Rating:      e.Rating,
		ReviewCount: e.ReviewCount,
		PhotoURL:    e.PhotoURL,
	}
}
