package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a business owner authenticated by phone number
type User struct {
	// gorm.Model gives us ID (uint), CreatedAt, UpdatedAt, DeletedAt automatically
	gorm.Model `json:"-"`

	UserID       string `json:"id" gorm:"uniqueIndex"`
	Phone        string `json:"phone" gorm:"uniqueIndex;not null"` // Format: 254XXXXXXXXX
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	County       string `json:"county"`
	Sector       string `json:"sector"`
	Stage        string `json:"stage"` // e.g., "idea", "early", "growing"
	Email        string `json:"email"`
	WhatsApp     string `json:"whatsapp"`
	Language     string `json:"language" gorm:"default:en"` // "en" or "sw"
}

// BeforeCreate hook to auto-generate UserID and seed defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}

	// WhatsApp defaults to the verified phone number
	if u.WhatsApp == "" {
		u.WhatsApp = u.Phone
	}

	if u.Language == "" {
		u.Language = "en"
	}

	return nil
}

// OnboardingUpdate carries the profile fields a user completes after first login
type OnboardingUpdate struct {
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	County       string `json:"county"`
	Sector       string `json:"sector"`
	Stage        string `json:"stage"`
}
