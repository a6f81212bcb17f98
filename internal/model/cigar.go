package model

import (
	"time"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cigar strength scale
type CigarStrength string

const (
	StrengthMild       CigarStrength = "Mild"
	StrengthMildMedium CigarStrength = "Mild-Medium"
	StrengthMedium     CigarStrength = "Medium"
	StrengthMediumFull CigarStrength = "Medium-Full"
	StrengthFull       CigarStrength = "Full"
)

type Cigar struct {
	gorm.Model
	Brand string `json:"brand" gorm:"not null"`
	Name  string `json:"name" gorm:"not null"`
	Slug  string `json:"slug" gorm:"index"`

	Shape     string        `json:"shape"`
	LengthIn  float64       `json:"length_in"`
	RingGauge int           `json:"ring_gauge"`
	Strength  CigarStrength `json:"strength"`
	Wrapper   string        `json:"wrapper"`
	Binder    string        `json:"binder"`
	Filler    string        `json:"filler"`
	Origin    string        `json:"origin"`

	Price    float64 `json:"price"`
	Rating   int     `json:"rating"`
	Quantity int     `json:"quantity" gorm:"default:1"`
	ImageURL string  `json:"image_url"`

	// Free-form attributes coming back from the AI autofill (tasting notes,
	// pairings, ...). Kept schemaless on purpose.
	AIAttributes datatypes.JSON `json:"ai_attributes,omitempty"`

	LastSmokedAt *time.Time `json:"last_smoked_at,omitempty"`

	HumidorID uint `json:"humidor_id" gorm:"index;not null"`
	UserID    uint `json:"user_id" gorm:"index;not null"`

	Humidor Humidor `json:"-" gorm:"foreignKey:HumidorID"`
	User    User    `json:"-" gorm:"foreignKey:UserID"`
}

func (c *Cigar) BeforeCreate(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Brand + " " + c.Name)
	}
	return nil
}
