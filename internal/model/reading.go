package model

import (
	"time"

	"gorm.io/gorm"
)

// Reading sources
const (
	ReadingSourceManual = "manual"
	ReadingSourceSensor = "sensor"
)

type EnvironmentReading struct {
	gorm.Model
	HumidorID uint `json:"humidor_id" gorm:"index;not null"`

	Temperature float64   `json:"temperature" gorm:"not null"` // Fahrenheit
	Humidity    float64   `json:"humidity" gorm:"not null"`    // relative %
	Source      string    `json:"source" gorm:"default:'manual'"`
	RecordedAt  time.Time `json:"recorded_at" gorm:"index;not null"`

	Humidor Humidor `json:"-" gorm:"foreignKey:HumidorID"`
}
