package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/riberomr/ia-generated-video-mvp/models"
	"github.com/riberomr/ia-generated-video-mvp/providers"
)

var (
	// ErrSubmissionFailed wraps a provider error during submission.
	// Fatal per attempt: no RenderedVideo record exists afterwards and
	// the caller retries the whole submission.
	ErrSubmissionFailed = errors.New("render submission failed")

	// ErrStatusCheckFailed wraps a provider error during a status
	// poll. Transient: the persisted record keeps its last known
	// status.
	ErrStatusCheckFailed = errors.New("render status check failed")

	// ErrUnknownProvider means the caller named a provider no variant
	// is registered for.
	ErrUnknownProvider = errors.New("unknown render provider")
)

// StatusChangedChannel carries render status change notifications.
const StatusChangedChannel = "render_status_changed"

// SubmitOptions carries the caller's submission choices. Provider is
// ignored for templated scripts, whose template fixes the provider.
type SubmitOptions struct {
	Provider     string
	AvatarID     string
	VoiceID      string
	Title        string
	Description  string
	Test         *bool
	TemplateData map[string]string
}

type statusEvent struct {
	VideoID     string              `json:"video_id"`
	ScriptID    string              `json:"script_id"`
	Provider    models.Provider     `json:"provider"`
	Status      models.RenderStatus `json:"status"`
	DownloadURL string              `json:"download_url,omitempty"`
}

// Orchestrator coordinates render jobs: picks the provider variant and
// mode from script state, submits, persists the job record, and
// reconciles status on poll.
type Orchestrator struct {
	db        *gorm.DB
	rdb       *redis.Client
	providers map[models.Provider]providers.RenderProvider
}

func NewOrchestrator(db *gorm.DB, rdb *redis.Client, variants ...providers.RenderProvider) *Orchestrator {
	registry := make(map[models.Provider]providers.RenderProvider, len(variants))
	for _, p := range variants {
		registry[p.Name()] = p
	}
	return &Orchestrator{db: db, rdb: rdb, providers: registry}
}

// SubmitRender submits a script to a provider and persists the
// resulting job as PENDING. Templated scripts always go template-mode
// to the provider owning the template, regardless of any avatar or
// voice ids in the options. A provider failure persists nothing.
func (o *Orchestrator) SubmitRender(ctx context.Context, scriptID string, opts SubmitOptions) (*models.RenderedVideo, error) {
	var script models.Script
	if err := o.db.WithContext(ctx).First(&script, "id = ?", scriptID).Error; err != nil {
		return nil, err
	}

	provider, err := o.selectProvider(&script, opts.Provider)
	if err != nil {
		return nil, err
	}

	renderOpts := providers.RenderOptions{
		AvatarID:     opts.AvatarID,
		VoiceID:      opts.VoiceID,
		Title:        opts.Title,
		Description:  opts.Description,
		Test:         opts.Test,
		TemplateData: opts.TemplateData,
	}

	// Basic mode with neither id chosen: fill deterministic defaults
	// from the provider's catalog snapshot.
	if !script.IsTemplated && opts.AvatarID == "" && opts.VoiceID == "" {
		avatarID, voiceID, err := o.defaultSelection(ctx, provider)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		}
		renderOpts.AvatarID = avatarID
		renderOpts.VoiceID = voiceID
		log.Printf("Using default avatar %s and voice %s for script %s", avatarID, voiceID, scriptID)
	}

	submission, err := provider.SubmitRender(ctx, &script, renderOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	snapshot, err := json.Marshal(submission.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding payload snapshot: %v", ErrSubmissionFailed, err)
	}

	video := models.RenderedVideo{
		ScriptID:       script.ID,
		Provider:       provider.Name(),
		ExternalID:     submission.ExternalID,
		Status:         models.RenderPending,
		RequestPayload: datatypes.JSON(snapshot),
	}
	if err := o.db.WithContext(ctx).Create(&video).Error; err != nil {
		return nil, fmt.Errorf("persisting render job: %w", err)
	}

	o.publish(ctx, &video)
	return &video, nil
}

// CheckStatus re-queries the provider for one job and persists the
// latest canonical status. Idempotent, callable any number of times; a
// terminal record never transitions again, and a provider failure
// leaves the record untouched.
func (o *Orchestrator) CheckStatus(ctx context.Context, videoID string) (*models.RenderedVideo, error) {
	var video models.RenderedVideo
	if err := o.db.WithContext(ctx).First(&video, "id = ?", videoID).Error; err != nil {
		return nil, err
	}

	// The persisted provider field is authoritative; the id shape
	// never is.
	provider, ok := o.providers[video.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, video.Provider)
	}

	result, err := provider.CheckStatus(ctx, video.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatusCheckFailed, err)
	}

	previous := video.Status

	newStatus := video.Status
	if canonical, known := providers.CanonicalStatus(strings.ToLower(result.Raw)); known && !video.Status.IsTerminal() {
		newStatus = canonical
	}

	newDownloadURL := video.DownloadURL
	if newDownloadURL == "" && result.DownloadURL != "" && newStatus == models.RenderCompleted {
		newDownloadURL = result.DownloadURL
	}

	updates := map[string]interface{}{
		"status":       newStatus,
		"download_url": newDownloadURL,
	}
	if err := o.db.WithContext(ctx).Model(&video).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("persisting render status: %w", err)
	}
	video.Status = newStatus
	video.DownloadURL = newDownloadURL

	log.Printf("Checked status for %s (%s): %s -> %s", video.ExternalID, video.Provider, result.Raw, newStatus)

	if newStatus != previous {
		o.publish(ctx, &video)
	}
	return &video, nil
}

// selectProvider resolves the provider variant once per operation. A
// templated script is owned by Synthesia, the only vendor with
// templates; otherwise the caller's explicit choice wins, defaulting
// to HeyGen.
func (o *Orchestrator) selectProvider(script *models.Script, choice string) (providers.RenderProvider, error) {
	var name models.Provider
	switch {
	case script.IsTemplated:
		name = models.ProviderSynthesia
	case choice == "":
		name = models.ProviderHeyGen
	default:
		switch strings.ToUpper(choice) {
		case string(models.ProviderHeyGen):
			name = models.ProviderHeyGen
		case string(models.ProviderSynthesia):
			name = models.ProviderSynthesia
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, choice)
		}
	}

	provider, ok := o.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return provider, nil
}

// defaultSelection picks the first English (or en-US) voice, falling
// back to the first voice, plus the first avatar. Deterministic for a
// given catalog snapshot.
func (o *Orchestrator) defaultSelection(ctx context.Context, provider providers.RenderProvider) (avatarID, voiceID string, err error) {
	var (
		avatars []providers.Avatar
		voices  []providers.Voice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		avatars, err = provider.ListAvatars(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		voices, err = provider.ListVoices(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}

	if len(avatars) == 0 || len(voices) == 0 {
		return "", "", fmt.Errorf("provider %s has an empty catalog", provider.Name())
	}

	avatarID = avatars[0].ID
	voiceID = voices[0].ID
	for _, v := range voices {
		if v.Language == "English" || v.Locale == "en-US" {
			voiceID = v.ID
			break
		}
	}
	return avatarID, voiceID, nil
}

// publish notifies listeners of a status change. Best effort: a
// missing or failing redis never blocks the render path.
func (o *Orchestrator) publish(ctx context.Context, video *models.RenderedVideo) {
	if o.rdb == nil {
		return
	}

	payload, err := json.Marshal(statusEvent{
		VideoID:     video.ID,
		ScriptID:    video.ScriptID,
		Provider:    video.Provider,
		Status:      video.Status,
		DownloadURL: video.DownloadURL,
	})
	if err != nil {
		log.Printf("Error marshalling status event: %v", err)
		return
	}
	if err := o.rdb.Publish(ctx, StatusChangedChannel, payload).Err(); err != nil {
		log.Printf("Error publishing to redis: %v", err)
	}
}
