package courses

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/riberomr/ia-generated-video-mvp/generation"
	"github.com/riberomr/ia-generated-video-mvp/models"
)

type Handler struct {
	DB  *gorm.DB
	Gen generation.Generator
}

func NewHandler(db *gorm.DB, gen generation.Generator) *Handler {
	return &Handler{DB: db, Gen: gen}
}

type GenerateScriptRequest struct {
	Topic   string `json:"topic" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// GenerateScript turns raw content into a scene script and persists
// the Course and its DRAFT Script in one transaction. Nothing is
// written if generation fails.
func (h *Handler) GenerateScript(c *gin.Context) {
	var req GenerateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scenes, err := generation.GenerateScenes(c.Request.Context(), h.Gen, req.Content)
	if err != nil {
		log.Printf("Error generating script for topic %q: %v", req.Topic, err)
		status := http.StatusBadGateway
		if errors.Is(err, generation.ErrMissingCredentials) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": "Failed to generate script"})
		return
	}

	sceneJSON, err := models.MarshalScenes(scenes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode scenes"})
		return
	}

	course := models.Course{
		Topic:      req.Topic,
		RawContent: req.Content,
	}
	script := models.Script{
		Scenes:         sceneJSON,
		OriginalScenes: sceneJSON,
		Status:         models.ScriptDraft,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		script.CourseID = course.ID
		return tx.Create(&script).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save course and script"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course_id":        course.ID,
		"script_id":        script.ID,
		"course_topic":     course.Topic,
		"generated_script": scenes,
	})
}

// ListCourses returns every course with its scripts and their rendered
// videos, newest first.
func (h *Handler) ListCourses(c *gin.Context) {
	var courses []models.Course
	err := h.DB.Preload("Scripts.Videos").Preload("Scripts").
		Order("created_at desc").Find(&courses).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve courses"})
		return
	}

	c.JSON(http.StatusOK, courses)
}
