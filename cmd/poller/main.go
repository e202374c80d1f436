package main

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/riberomr/ia-generated-video-mvp/internal/platform"
	"github.com/riberomr/ia-generated-video-mvp/models"
	"github.com/riberomr/ia-generated-video-mvp/providers"
	"github.com/riberomr/ia-generated-video-mvp/render"
)

const pollSchedule = "@every 1m"

func main() {
	cfg := platform.LoadConfig()

	// Use the shared initializers
	db := platform.NewDBConnection(cfg)
	rdb := platform.NewRedisClient(cfg)
	ctx := context.Background()

	heygen := providers.NewHeyGen(cfg.HeyGenAPIKey, rdb)
	synthesia := providers.NewSynthesia(cfg.SynthesiaAPIKey, cfg.SynthesiaTest, db, rdb)
	orchestrator := render.NewOrchestrator(db, rdb, heygen, synthesia)

	c := cron.New()

	_, err := c.AddFunc(pollSchedule, func() {
		pollPendingVideos(ctx, db, orchestrator)
	})
	if err != nil {
		log.Fatalf("Error scheduling poll job: %v", err)
	}

	c.Start()
	defer c.Stop()

	log.Printf("Render status poller started (%s)", pollSchedule)
	// Keep the main thread alive
	select {}
}

// pollPendingVideos re-checks every non-terminal render job. The check is
// idempotent, so overlapping runs or manual status requests are harmless.
func pollPendingVideos(ctx context.Context, db *gorm.DB, orchestrator *render.Orchestrator) {
	var videoIDs []string
	err := db.Model(&models.RenderedVideo{}).
		Where("status IN ?", []models.RenderStatus{models.RenderPending, models.RenderProcessing}).
		Pluck("id", &videoIDs).Error
	if err != nil {
		log.Printf("Error listing non-terminal videos: %v", err)
		return
	}

	if len(videoIDs) == 0 {
		return
	}

	log.Printf("Polling %d non-terminal render jobs", len(videoIDs))

	for _, id := range videoIDs {
		video, err := orchestrator.CheckStatus(ctx, id)
		if err != nil {
			log.Printf("Error checking status for video %s: %v", id, err)
			continue
		}
		log.Printf("Video %s status: %s", video.ID, video.Status)
	}
}
