package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/riberomr/ia-generated-video-mvp/models"
)

// sceneItem is the structured output for script generation from raw
// course content.
type sceneItem struct {
	Text              string  `json:"text" jsonschema_description:"The spoken script for the avatar."`
	VisualDescription string  `json:"visual_description" jsonschema_description:"A detailed description of what should be shown on screen (charts, bullet points, stock footage description)."`
	EstimatedDuration float64 `json:"estimated_duration" jsonschema_description:"Estimated duration of the scene in seconds."`
}

type sceneScriptResponse struct {
	Scenes []sceneItem `json:"scenes" jsonschema_description:"The ordered list of scenes that make up the video script."`
}

var sceneScriptSchema = GenerateSchema[sceneScriptResponse]()

const generateScenesSystemPrompt = `You are an expert educational video scriptwriter.
Your task is to convert the provided educational content into a structured video script.
The output must be a valid JSON object with a "scenes" array.
Each scene must have:
- "text": The spoken script for the avatar.
- "visual_description": A detailed description of what should be shown on screen (charts, bullet points, stock footage description).
- "estimated_duration": Estimated duration in seconds.

Keep the tone engaging and educational.
RETURN ONLY THE JSON. DO NOT WRAP IN MARKDOWN CODE BLOCKS.`

// GenerateScenes turns raw course content into an ordered scene list.
func GenerateScenes(ctx context.Context, g Generator, content string) ([]models.Scene, error) {
	raw, err := g.CompleteWithSchema(ctx, generateScenesSystemPrompt, content, "video_script", sceneScriptSchema)
	if err != nil {
		return nil, err
	}

	var resp sceneScriptResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Scenes) == 0 {
		return nil, fmt.Errorf("%w: model returned no scenes", ErrGenerationFailed)
	}

	scenes := make([]models.Scene, 0, len(resp.Scenes))
	for _, s := range resp.Scenes {
		scenes = append(scenes, models.Scene{
			Text:              s.Text,
			VisualDescription: s.VisualDescription,
			EstimatedDuration: s.EstimatedDuration,
		})
	}
	return scenes, nil
}
