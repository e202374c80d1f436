package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Provider identifies which external rendering vendor owns a job.
type Provider string

const (
	ProviderHeyGen    Provider = "HEYGEN"
	ProviderSynthesia Provider = "SYNTHESIA"
)

// RenderStatus is the canonical four-state job vocabulary used
// internally, independent of vendor wording.
type RenderStatus string

const (
	RenderPending    RenderStatus = "PENDING"
	RenderProcessing RenderStatus = "PROCESSING"
	RenderCompleted  RenderStatus = "COMPLETED"
	RenderFailed     RenderStatus = "FAILED"
)

// IsTerminal reports whether a job can never transition again.
func (s RenderStatus) IsTerminal() bool {
	return s == RenderCompleted || s == RenderFailed
}

// RenderedVideo is one submission to a provider. ExternalID is
// assigned at submission and never changes; DownloadURL is set when
// the job completes and never cleared; RequestPayload is an opaque
// snapshot of exactly what was sent to the vendor.
type RenderedVideo struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	ScriptID       string         `gorm:"not null;index" json:"script_id"`
	Script         Script         `gorm:"foreignKey:ScriptID" json:"-"`
	Provider       Provider       `gorm:"size:16;not null" json:"provider"`
	ExternalID     string         `gorm:"not null" json:"external_id"`
	Status         RenderStatus   `gorm:"size:16;default:PENDING" json:"status"`
	DownloadURL    string         `json:"download_url,omitempty"`
	RequestPayload datatypes.JSON `json:"request_payload,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (RenderedVideo) TableName() string {
	return "rendered_videos"
}

func (v *RenderedVideo) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
