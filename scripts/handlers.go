package scripts

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/riberomr/ia-generated-video-mvp/generation"
	"github.com/riberomr/ia-generated-video-mvp/models"
	"github.com/riberomr/ia-generated-video-mvp/providers"
)

type Handler struct {
	DB        *gorm.DB
	Mapper    *generation.TemplateMapper
	Composer  *generation.Composer
	Synthesia *providers.Synthesia
}

func NewHandler(db *gorm.DB, mapper *generation.TemplateMapper, composer *generation.Composer, synthesia *providers.Synthesia) *Handler {
	return &Handler{DB: db, Mapper: mapper, Composer: composer, Synthesia: synthesia}
}

type CreateScriptRequest struct {
	CourseID     string            `json:"course_id" binding:"required"`
	Scenes       []models.Scene    `json:"scenes"`
	IsTemplated  bool              `json:"is_templated"`
	TemplateID   string            `json:"template_id"`
	TemplateData map[string]string `json:"template_data"`
}

// CreateScript persists a script. Templated scripts must arrive with
// their template id and a variable map; the scene snapshot is taken
// here and never rewritten.
func (h *Handler) CreateScript(c *gin.Context) {
	var req CreateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.IsTemplated && (req.TemplateID == "" || len(req.TemplateData) == 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Templated scripts require template_id and template_data"})
		return
	}

	var course models.Course
	if err := h.DB.First(&course, "id = ?", req.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	sceneJSON, err := models.MarshalScenes(req.Scenes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scenes"})
		return
	}

	script := models.Script{
		CourseID:       course.ID,
		Scenes:         sceneJSON,
		OriginalScenes: sceneJSON,
		Status:         models.ScriptDraft,
		IsTemplated:    req.IsTemplated,
		TemplateID:     req.TemplateID,
	}
	if req.TemplateData != nil {
		data, err := marshalTemplateData(req.TemplateData)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template data"})
			return
		}
		script.TemplateData = data
	}

	if err := h.DB.Create(&script).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create script"})
		return
	}

	c.JSON(http.StatusOK, script)
}

type AnalyzeAndMapRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
	Topic      string `json:"topic" binding:"required"`
	SourceText string `json:"source_text" binding:"required"`
}

// AnalyzeAndMap fetches a template's variable schema, derives its
// scene count and maps the source text onto every variable.
func (h *Handler) AnalyzeAndMap(c *gin.Context) {
	var req AnalyzeAndMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details, err := h.Synthesia.GetTemplateDetails(c.Request.Context(), req.TemplateID)
	if err != nil {
		log.Printf("Error loading template %s: %v", req.TemplateID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load template"})
		return
	}

	variables := make([]generation.TemplateVariable, 0, len(details.Variables))
	for _, v := range details.Variables {
		variables = append(variables, generation.TemplateVariable{Key: v.Label, Preset: v.Value})
	}

	sceneCount := details.SceneCount()
	log.Printf("Mapping source text onto template %s (%d scenes)", req.TemplateID, sceneCount)

	result, err := h.Mapper.MapTemplate(c.Request.Context(), req.Topic, req.SourceText, variables, sceneCount)
	if err != nil {
		log.Printf("Error mapping template %s: %v", req.TemplateID, err)
		switch {
		case errors.Is(err, generation.ErrIncompleteMapping):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Mapping incomplete, retry or fill manually"})
		case errors.Is(err, generation.ErrMissingCredentials):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Text generation is not configured"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to analyze script"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

type UpdateScriptRequest struct {
	Scenes       []models.Scene      `json:"scenes"`
	TemplateData map[string]string   `json:"template_data"`
	Status       models.ScriptStatus `json:"status"`
}

// UpdateScript applies a partial edit: only the fields present in the
// request are written, nothing else is clobbered.
func (h *Handler) UpdateScript(c *gin.Context) {
	script, ok := h.loadScript(c)
	if !ok {
		return
	}

	var req UpdateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Scenes != nil {
		sceneJSON, err := models.MarshalScenes(req.Scenes)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scenes"})
			return
		}
		updates["scenes"] = sceneJSON
	}
	if req.TemplateData != nil {
		data, err := marshalTemplateData(req.TemplateData)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template data"})
			return
		}
		updates["template_data"] = data
	}
	if req.Status != "" {
		if !script.Status.CanTransitionTo(req.Status) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Invalid status transition from " + string(script.Status) + " to " + string(req.Status),
			})
			return
		}
		updates["status"] = req.Status
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, script)
		return
	}

	if err := h.DB.Model(script).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update script"})
		return
	}

	c.JSON(http.StatusOK, script)
}

// PublishScript marks an edit pass final: DRAFT -> PUBLISHED. Only a
// human confirmation reaches this endpoint, never an automatic step.
func (h *Handler) PublishScript(c *gin.Context) {
	h.transitionScript(c, models.ScriptPublished)
}

// ArchiveScript retires a published script: PUBLISHED -> ARCHIVED.
// Archival is a status flag; nothing is deleted.
func (h *Handler) ArchiveScript(c *gin.Context) {
	h.transitionScript(c, models.ScriptArchived)
}

func (h *Handler) transitionScript(c *gin.Context, next models.ScriptStatus) {
	script, ok := h.loadScript(c)
	if !ok {
		return
	}

	if !script.Status.CanTransitionTo(next) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Invalid status transition from " + string(script.Status) + " to " + string(next),
		})
		return
	}

	if err := h.DB.Model(script).Update("status", next).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	script.Status = next
	c.JSON(http.StatusOK, script)
}

type ComposeRequest struct {
	Title      string                   `json:"title" binding:"required"`
	SourceText string                   `json:"source_text" binding:"required"`
	SceneCount int                      `json:"scene_count" binding:"required,min=1"`
	Scenes     []generation.SceneConfig `json:"scenes" binding:"required"`
}

// Compose generates a full from-scratch script from per-scene
// configuration. The result is returned for editing, not persisted.
func (h *Handler) Compose(c *gin.Context) {
	var req ComposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	script, err := h.Composer.ComposeFromScratch(c.Request.Context(), req.Title, req.SourceText, req.SceneCount, req.Scenes)
	if err != nil {
		log.Printf("Error composing script %q: %v", req.Title, err)
		respondComposerError(c, err)
		return
	}

	c.JSON(http.StatusOK, script)
}

type RegenerateSceneRequest struct {
	SourceContentText string                     `json:"source_content_text" binding:"required"`
	AllScenes         []generation.ComposedScene `json:"all_scenes" binding:"required"`
	TargetSceneIndex  *int                       `json:"target_scene_index" binding:"required"`
	CurrentSceneData  generation.SceneConfig     `json:"current_scene_data"`
	PreviousText      string                     `json:"previous_text"`
	UserFeedback      string                     `json:"user_feedback"`
}

// RegenerateScene rewrites a single scene under its word budget.
func (h *Handler) RegenerateScene(c *gin.Context) {
	var req RegenerateSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scene, err := h.Composer.RegenerateScene(c.Request.Context(), generation.RegenerateInput{
		SourceText:   req.SourceContentText,
		Scenes:       req.AllScenes,
		TargetIndex:  *req.TargetSceneIndex,
		Config:       req.CurrentSceneData,
		PreviousText: req.PreviousText,
		Feedback:     req.UserFeedback,
	})
	if err != nil {
		log.Printf("Error regenerating scene %d: %v", *req.TargetSceneIndex, err)
		respondComposerError(c, err)
		return
	}

	c.JSON(http.StatusOK, scene)
}

func respondComposerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, generation.ErrWordBudgetExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not fit the scene into its word budget"})
	case errors.Is(err, generation.ErrMissingCredentials):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Text generation is not configured"})
	case errors.Is(err, generation.ErrGenerationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Text generation returned unusable output"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func marshalTemplateData(data map[string]string) (datatypes.JSON, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func (h *Handler) loadScript(c *gin.Context) (*models.Script, bool) {
	var script models.Script
	if err := h.DB.First(&script, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Script not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return nil, false
	}
	return &script, true
}
