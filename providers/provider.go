package providers

import (
	"context"
	"errors"

	"github.com/riberomr/ia-generated-video-mvp/models"
)

var (
	// ErrMissingCredentials means the provider's API key is not
	// configured. Mutating calls fail with it; read-only catalog calls
	// return an empty list instead.
	ErrMissingCredentials = errors.New("provider API key is not configured")

	// ErrTemplateUnsupported means the provider has no template render
	// mode.
	ErrTemplateUnsupported = errors.New("provider does not support template mode")

	// ErrNoScenes means a basic-mode submission was attempted for a
	// script with no scene content.
	ErrNoScenes = errors.New("script has no scenes to render")
)

// Avatar is a presenter from a provider's catalog.
type Avatar struct {
	ID              string `json:"avatar_id"`
	Name            string `json:"avatar_name"`
	Gender          string `json:"gender,omitempty"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
}

// Voice is a speaking voice from a provider's catalog.
type Voice struct {
	ID       string `json:"voice_id"`
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
	Locale   string `json:"locale,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

// RenderOptions carries the caller's submission choices. For templated
// scripts avatar and voice ids are ignored: the template dictates the
// presenter.
type RenderOptions struct {
	AvatarID     string
	VoiceID      string
	Title        string
	Description  string
	Test         *bool
	TemplateData map[string]string
}

// Submission is the result of a successful render submission. Payload
// is the provider-native request body, kept for the persisted
// snapshot.
type Submission struct {
	ExternalID string
	Payload    interface{}
}

// StatusResult is one vendor status response. Raw is the vendor's own
// vocabulary; mapping to the canonical vocabulary happens through
// CanonicalStatus.
type StatusResult struct {
	Raw         string
	DownloadURL string
}

// RenderProvider is the capability set every rendering vendor
// implements.
type RenderProvider interface {
	Name() models.Provider
	SubmitRender(ctx context.Context, script *models.Script, opts RenderOptions) (*Submission, error)
	CheckStatus(ctx context.Context, externalID string) (*StatusResult, error)
	ListAvatars(ctx context.Context) ([]Avatar, error)
	ListVoices(ctx context.Context) ([]Voice, error)
}
