package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScriptStatus string

const (
	ScriptDraft     ScriptStatus = "DRAFT"
	ScriptPublished ScriptStatus = "PUBLISHED"
	ScriptArchived  ScriptStatus = "ARCHIVED"
)

// CanTransitionTo enforces the one-way DRAFT -> PUBLISHED -> ARCHIVED flow.
func (s ScriptStatus) CanTransitionTo(next ScriptStatus) bool {
	switch s {
	case ScriptDraft:
		return next == ScriptPublished
	case ScriptPublished:
		return next == ScriptArchived
	default:
		return false
	}
}

// Scene is one spoken unit of a script. For templated scripts the
// equivalent unit lives in TemplateData under scene_voice_text_<n>.
type Scene struct {
	Text              string  `json:"text"`
	VisualDescription string  `json:"visual_description"`
	EstimatedDuration float64 `json:"estimated_duration"`
}

// Script is the editable unit of content for one video: either a list
// of free-form scenes or a template id plus a fully populated variable
// map. OriginalScenes is a snapshot taken at creation and never
// mutated; the render path only ever reads Scenes.
type Script struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	CourseID       string         `gorm:"not null;index" json:"course_id"`
	Course         Course         `gorm:"foreignKey:CourseID" json:"-"`
	Scenes         datatypes.JSON `json:"scenes"`
	OriginalScenes datatypes.JSON `json:"original_scenes"`
	Status         ScriptStatus   `gorm:"size:16;default:DRAFT" json:"status"`
	IsTemplated    bool           `gorm:"default:false" json:"is_templated"`
	TemplateID     string         `json:"template_id,omitempty"`
	TemplateData   datatypes.JSON `json:"template_data,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Videos []RenderedVideo `gorm:"foreignKey:ScriptID" json:"videos,omitempty"`
}

func (Script) TableName() string {
	return "scripts"
}

func (s *Script) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SceneList decodes the current scenes column.
func (s *Script) SceneList() ([]Scene, error) {
	if len(s.Scenes) == 0 {
		return nil, nil
	}
	var scenes []Scene
	if err := json.Unmarshal(s.Scenes, &scenes); err != nil {
		return nil, fmt.Errorf("script %s has malformed scenes: %w", s.ID, err)
	}
	return scenes, nil
}

// TemplateDataMap decodes the template variable map.
func (s *Script) TemplateDataMap() (map[string]string, error) {
	if len(s.TemplateData) == 0 {
		return map[string]string{}, nil
	}
	var data map[string]string
	if err := json.Unmarshal(s.TemplateData, &data); err != nil {
		return nil, fmt.Errorf("script %s has malformed template data: %w", s.ID, err)
	}
	return data, nil
}

// MarshalScenes encodes a scene list for storage in the JSON columns.
func MarshalScenes(scenes []Scene) (datatypes.JSON, error) {
	if scenes == nil {
		scenes = []Scene{}
	}
	b, err := json.Marshal(scenes)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
