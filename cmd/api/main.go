// main.go
package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/riberomr/ia-generated-video-mvp/courses"
	"github.com/riberomr/ia-generated-video-mvp/generation"
	"github.com/riberomr/ia-generated-video-mvp/internal/platform"
	"github.com/riberomr/ia-generated-video-mvp/models"
	"github.com/riberomr/ia-generated-video-mvp/providers"
	"github.com/riberomr/ia-generated-video-mvp/render"
	"github.com/riberomr/ia-generated-video-mvp/scripts"
	"github.com/riberomr/ia-generated-video-mvp/videos"
)

type Server struct {
	Config *platform.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine
}

func NewServer() (*Server, error) {
	cfg := platform.LoadConfig()

	// Use the shared connection initializers
	db := platform.NewDBConnection(cfg)
	rdb := platform.NewRedisClient(cfg)

	if err := db.AutoMigrate(
		&models.Course{},
		&models.Script{},
		&models.RenderedVideo{},
		&models.SynthesiaAvatar{},
		&models.SynthesiaVoice{},
	); err != nil {
		return nil, err
	}

	router := gin.Default()

	// Add CORS middleware for the frontend
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.FrontendURL)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	server := &Server{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Router: router,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		sqlDB, err := s.DB.DB()
		if err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}

		if err := sqlDB.Ping(); err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{
			"status":   "healthy",
			"database": "connected",
		})
	})

	s.Router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "IA Generated Video API v1"})
	})

	// Shared service wiring
	groq := generation.NewGroqGenerator(s.Config.GroqAPIKey, s.Config.GroqModel)
	heygen := providers.NewHeyGen(s.Config.HeyGenAPIKey, s.Redis)
	synthesia := providers.NewSynthesia(s.Config.SynthesiaAPIKey, s.Config.SynthesiaTest, s.DB, s.Redis)
	orchestrator := render.NewOrchestrator(s.DB, s.Redis, heygen, synthesia)

	courseHandler := courses.NewHandler(s.DB, groq)
	scriptHandler := scripts.NewHandler(s.DB, generation.NewTemplateMapper(groq), generation.NewComposer(groq), synthesia)
	videoHandler := videos.NewHandler(orchestrator, heygen, synthesia)

	courseRoutes := s.Router.Group("/courses")
	{
		courseRoutes.POST("/generate-script", courseHandler.GenerateScript)
		courseRoutes.GET("", courseHandler.ListCourses)
	}

	scriptRoutes := s.Router.Group("/scripts")
	{
		scriptRoutes.POST("", scriptHandler.CreateScript)
		scriptRoutes.POST("/analyze-and-map", scriptHandler.AnalyzeAndMap)
		scriptRoutes.POST("/compose", scriptHandler.Compose)
		scriptRoutes.POST("/regenerate-scene", scriptHandler.RegenerateScene)
		scriptRoutes.PATCH("/:id", scriptHandler.UpdateScript)
		scriptRoutes.POST("/:id/publish", scriptHandler.PublishScript)
		scriptRoutes.POST("/:id/archive", scriptHandler.ArchiveScript)
	}

	videoRoutes := s.Router.Group("/videos")
	{
		videoRoutes.GET("/avatars", videoHandler.GetAvatars)
		videoRoutes.GET("/voices", videoHandler.GetVoices)
		videoRoutes.GET("/templates", videoHandler.GetTemplates)
		videoRoutes.GET("/templates/:id", videoHandler.GetTemplateDetails)
		videoRoutes.POST("/generate/:scriptId", videoHandler.GenerateVideo)
		videoRoutes.GET("/status/:videoId", videoHandler.CheckStatus)
	}
}

func (s *Server) Run() error {
	log.Printf("Server starting on port %s", s.Config.Port)
	return s.Router.Run(":" + s.Config.Port)
}

func main() {
	server, err := NewServer()
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	if err := server.Run(); err != nil {
		log.Fatal("Failed to run server:", err)
	}
}
