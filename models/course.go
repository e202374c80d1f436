package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course is the raw source material a script is generated from. It is
// created once per script-generation request and never mutated.
type Course struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Topic      string    `gorm:"not null" json:"topic"`
	RawContent string    `gorm:"type:text;not null" json:"raw_content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Scripts []Script `gorm:"foreignKey:CourseID" json:"scripts,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
