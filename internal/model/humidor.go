package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Humidor Types
type HumidorType string

const (
	HumidorTypeDesktop   HumidorType = "Desktop"
	HumidorTypeCabinet   HumidorType = "Cabinet"
	HumidorTypeTravel    HumidorType = "Travel"
	HumidorTypeTupperdor HumidorType = "Tupperdor"
	HumidorTypeCooler    HumidorType = "Cooler"
)

type Humidor struct {
	gorm.Model
	Name        string      `json:"name" gorm:"not null"`
	Slug        string      `json:"slug" gorm:"uniqueIndex:idx_user_humidor_slug;not null"`
	Description string      `json:"description" gorm:"type:text"`
	Type        HumidorType `json:"type"`
	Capacity    int         `json:"capacity"`

	// Target climate for the expiry/alert features
	TargetHumidity    float64 `json:"target_humidity" gorm:"default:70"`
	TargetTemperature float64 `json:"target_temperature" gorm:"default:68"`

	UserID uint `json:"user_id" gorm:"uniqueIndex:idx_user_humidor_slug"`

	User     User                 `json:"-" gorm:"foreignKey:UserID"`
	Cigars   []Cigar              `json:"cigars,omitempty" gorm:"foreignKey:HumidorID;constraint:OnDelete:CASCADE"`
	Readings []EnvironmentReading `json:"-" gorm:"foreignKey:HumidorID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate fills the slug from the name when none is given.
func (h *Humidor) BeforeCreate(tx *gorm.DB) error {
	if h.Slug == "" {
		s := slug.Make(h.Name)

		var count int64
		tx.Model(&Humidor{}).Where("user_id = ? AND slug = ?", h.UserID, s).Count(&count)
		if count > 0 {
			s = s + "-" + h.CreatedAt.Format("20060102")
		}

		h.Slug = s
	}
	return nil
}
