package videos

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/riberomr/ia-generated-video-mvp/providers"
	"github.com/riberomr/ia-generated-video-mvp/render"
)

type Handler struct {
	Orchestrator *render.Orchestrator
	HeyGen       *providers.HeyGen
	Synthesia    *providers.Synthesia
}

func NewHandler(orchestrator *render.Orchestrator, heygen *providers.HeyGen, synthesia *providers.Synthesia) *Handler {
	return &Handler{Orchestrator: orchestrator, HeyGen: heygen, Synthesia: synthesia}
}

func (h *Handler) catalogProvider(c *gin.Context) providers.RenderProvider {
	switch c.Query("provider") {
	case "", "heygen":
		return h.HeyGen
	case "synthesia":
		return h.Synthesia
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown provider"})
		return nil
	}
}

// GetAvatars lists a provider's avatar catalog.
func (h *Handler) GetAvatars(c *gin.Context) {
	provider := h.catalogProvider(c)
	if provider == nil {
		return
	}

	avatars, err := provider.ListAvatars(c.Request.Context())
	if err != nil {
		log.Printf("Error listing avatars: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve avatars"})
		return
	}
	c.JSON(http.StatusOK, avatars)
}

// GetVoices lists a provider's voice catalog.
func (h *Handler) GetVoices(c *gin.Context) {
	provider := h.catalogProvider(c)
	if provider == nil {
		return
	}

	voices, err := provider.ListVoices(c.Request.Context())
	if err != nil {
		log.Printf("Error listing voices: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve voices"})
		return
	}
	c.JSON(http.StatusOK, voices)
}

// GetTemplates lists the Synthesia template catalog.
func (h *Handler) GetTemplates(c *gin.Context) {
	templates, err := h.Synthesia.ListTemplates(c.Request.Context(), c.Query("source"))
	if err != nil {
		log.Printf("Error listing templates: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve templates"})
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplateDetails returns one template with its variable schema and
// derived scene count.
func (h *Handler) GetTemplateDetails(c *gin.Context) {
	details, err := h.Synthesia.GetTemplateDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.Printf("Error loading template %s: %v", c.Param("id"), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve template"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          details.ID,
		"title":       details.Title,
		"description": details.Description,
		"variables":   details.Variables,
		"scene_count": details.SceneCount(),
	})
}

type GenerateVideoRequest struct {
	Provider     string            `json:"provider"`
	AvatarID     string            `json:"avatar_id"`
	VoiceID      string            `json:"voice_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Test         *bool             `json:"test"`
	TemplateData map[string]string `json:"template_data"`
}

// GenerateVideo submits a script for rendering and returns the
// persisted job record.
func (h *Handler) GenerateVideo(c *gin.Context) {
	var req GenerateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, err := h.Orchestrator.SubmitRender(c.Request.Context(), c.Param("scriptId"), render.SubmitOptions{
		Provider:     req.Provider,
		AvatarID:     req.AvatarID,
		VoiceID:      req.VoiceID,
		Title:        req.Title,
		Description:  req.Description,
		Test:         req.Test,
		TemplateData: req.TemplateData,
	})
	if err != nil {
		log.Printf("Error submitting render for script %s: %v", c.Param("scriptId"), err)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Script not found"})
		case errors.Is(err, render.ErrUnknownProvider):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown provider"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Video generation could not be started"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Video generation started",
		"video_id":    video.ID,
		"external_id": video.ExternalID,
		"status":      video.Status,
		"provider":    video.Provider,
	})
}

// CheckStatus re-queries the provider for one render job. A provider
// failure keeps the previously persisted status rather than showing a
// state that could be mistaken for FAILED.
func (h *Handler) CheckStatus(c *gin.Context) {
	video, err := h.Orchestrator.CheckStatus(c.Request.Context(), c.Param("videoId"))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		case errors.Is(err, render.ErrStatusCheckFailed):
			log.Printf("Transient status check failure for video %s: %v", c.Param("videoId"), err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Status check failed, last known status unchanged"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"video_id":     video.ID,
		"status":       video.Status,
		"download_url": video.DownloadURL,
		"provider":     video.Provider,
	})
}
