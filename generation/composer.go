package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// Spoken pace assumed when converting a scene duration into a word
	// target: 150 words per minute.
	wordsPerSecond = 2.5

	// Extra words tolerated above the target before a regeneration is
	// rejected.
	wordBudgetMargin = 10

	// How many times an overlength regeneration is re-requested before
	// giving up.
	maxRegenerateAttempts = 3

	defaultSceneDuration = 10
	defaultAvatar        = "anna_costume1_cameraA"
	defaultBackground    = "green_screen"
)

// SceneConfig is the per-scene authoring configuration.
type SceneConfig struct {
	Topic         string   `json:"topic"`
	Duration      float64  `json:"duration,omitempty"`
	Emotion       string   `json:"emotion,omitempty"`
	VisualContext string   `json:"visual_context,omitempty"`
	Objective     string   `json:"objective,omitempty"`
	Complexity    string   `json:"complexity,omitempty"`
	POV           string   `json:"pov,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
}

func (c SceneConfig) durationOrDefault() float64 {
	if c.Duration > 0 {
		return c.Duration
	}
	return defaultSceneDuration
}

// SceneMetadata echoes the configuration a scene was generated from so
// downstream editing can reconstruct context.
type SceneMetadata struct {
	SceneIndex    int     `json:"scene_index"`
	Topic         string  `json:"topic"`
	DurationSec   float64 `json:"duration_sec"`
	Emotion       string  `json:"emotion"`
	VisualContext string  `json:"visual_context"`
}

// ComposedScene is one scene of a from-scratch script in the shape the
// basic render mode consumes.
type ComposedScene struct {
	ScriptText string        `json:"scriptText"`
	Avatar     string        `json:"avatar"`
	Background string        `json:"background"`
	Metadata   SceneMetadata `json:"metadata"`
}

// ComposedScript is a full from-scratch script.
type ComposedScript struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Visibility  string          `json:"visibility"`
	Input       []ComposedScene `json:"input"`
}

// WordBudget returns the target and maximum word counts for a scene of
// the given duration in seconds.
func WordBudget(duration float64) (target, max int) {
	target = int(duration * wordsPerSecond)
	return target, target + wordBudgetMargin
}

// Composer produces and edits individual scene scripts.
type Composer struct {
	gen Generator
}

func NewComposer(g Generator) *Composer {
	return &Composer{gen: g}
}

// ComposeFromScratch generates exactly sceneCount scene scripts, one
// per configuration entry. Emotion is carried purely through the text:
// word choice, punctuation and sentence length.
func (c *Composer) ComposeFromScratch(ctx context.Context, title, sourceText string, sceneCount int, configs []SceneConfig) (*ComposedScript, error) {
	if sceneCount < 1 {
		return nil, fmt.Errorf("scene count must be >= 1, got %d", sceneCount)
	}
	if len(configs) != sceneCount {
		return nil, fmt.Errorf("got %d scene configs for %d scenes", len(configs), sceneCount)
	}

	raw, err := c.gen.Complete(ctx,
		composeSystemPrompt(sceneCount),
		composeUserPrompt(title, sourceText, sceneCount, configs),
	)
	if err != nil {
		return nil, err
	}

	var script ComposedScript
	if err := json.Unmarshal([]byte(raw), &script); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(script.Input) != sceneCount {
		return nil, fmt.Errorf("%w: expected %d scenes, model returned %d",
			ErrGenerationFailed, sceneCount, len(script.Input))
	}

	if script.Visibility == "" {
		script.Visibility = "private"
	}
	for i := range script.Input {
		normalizeScene(&script.Input[i], i, configs[i])
	}

	return &script, nil
}

// RegenerateInput describes a single-scene rewrite request.
type RegenerateInput struct {
	SourceText   string
	Scenes       []ComposedScene
	TargetIndex  int
	Config       SceneConfig
	PreviousText string
	// Feedback is optional; when empty the rewrite target is simply to
	// match the configured topic and tone.
	Feedback string
}

// RegenerateScene rewrites exactly one scene under a hard word budget
// of floor(duration * 2.5) + 10 words. An overlength result is
// re-requested rather than truncated; if the model never fits the
// budget the call fails with ErrWordBudgetExceeded.
func (c *Composer) RegenerateScene(ctx context.Context, in RegenerateInput) (*ComposedScene, error) {
	if in.TargetIndex < 0 || in.TargetIndex >= len(in.Scenes) {
		return nil, fmt.Errorf("target scene index %d out of range (%d scenes)", in.TargetIndex, len(in.Scenes))
	}

	duration := in.Config.durationOrDefault()
	_, maxWords := WordBudget(duration)

	userPrompt := regenerateUserPrompt(in, duration)
	lastCount := 0
	for attempt := 0; attempt < maxRegenerateAttempts; attempt++ {
		raw, err := c.gen.Complete(ctx, regenerateSystemPrompt(in.TargetIndex), userPrompt)
		if err != nil {
			return nil, err
		}

		var scene ComposedScene
		if err := json.Unmarshal([]byte(raw), &scene); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		if strings.TrimSpace(scene.ScriptText) == "" {
			return nil, fmt.Errorf("%w: regenerated scene has empty script text", ErrGenerationFailed)
		}

		lastCount = len(strings.Fields(scene.ScriptText))
		if lastCount <= maxWords {
			normalizeScene(&scene, in.TargetIndex, in.Config)
			return &scene, nil
		}

		// Re-request with the violation spelled out instead of
		// truncating mid-sentence.
		userPrompt += fmt.Sprintf(
			"\n\n# PREVIOUS ATTEMPT REJECTED\nYour last script was %d words, over the hard limit of %d. Cut lower-priority detail and answer again within the limit.",
			lastCount, maxWords)
	}

	return nil, fmt.Errorf("%w: %d words after %d attempts (limit %d)",
		ErrWordBudgetExceeded, lastCount, maxRegenerateAttempts, maxWords)
}

func normalizeScene(s *ComposedScene, index int, cfg SceneConfig) {
	if s.Avatar == "" {
		s.Avatar = defaultAvatar
	}
	if s.Background == "" {
		s.Background = defaultBackground
	}
	s.Metadata = SceneMetadata{
		SceneIndex:    index,
		Topic:         cfg.Topic,
		DurationSec:   cfg.durationOrDefault(),
		Emotion:       orDefault(cfg.Emotion, "neutral"),
		VisualContext: cfg.VisualContext,
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func composeSystemPrompt(sceneCount int) string {
	return fmt.Sprintf(`You are an expert educational video scriptwriter and a strict JSON generator.
Your output must be ONLY a JSON object with this structure:

{
  "title": string,
  "description": string,
  "visibility": "private",
  "input": [
    {
      "scriptText": string,
      "avatar": "%s",
      "background": "%s"
    }
  ]
}

General rules:
1. The "input" array must have EXACTLY %d elements.
2. "avatar" is always "%s" and "background" is always "%s".

Script generation rules (CRITICAL - EMOTION LIVES IN THE TEXT):
1. **Duration**: Respect the stated duration (approx 150 words per minute).
2. **Emotion**: The avatar has no controllable facial expressions. THE EMOTION MUST BE IN THE TEXT.
   - 'excited': exclamations, short sentences, energetic words.
   - 'serious': formal language, structured sentences, calm tone.
   - 'empathetic': soft words, rhetorical questions, personal connection.
3. **Visuals**: If a 'visual context' is provided, reference it ("As we can see here...").
4. **Complexity**: Adapt the vocabulary ('child' = simple, 'technical' = technical jargon).
5. **POV**: Strictly respect the pronouns (first person = "I/we", second person = "you").
6. **Keywords**: Weave the required keywords in naturally.`,
		defaultAvatar, defaultBackground, sceneCount, defaultAvatar, defaultBackground)
}

func composeUserPrompt(title, sourceText string, sceneCount int, configs []SceneConfig) string {
	var sb strings.Builder
	for i, s := range configs {
		fmt.Fprintf(&sb, `Write the text for **Scene %d**.
- **Topic:** %q
- **Objective:** %q (Hook -> grab attention; CTA -> clear action)
- **Complexity:** %q
- **POV:** %q
- **Emotion:** %q (reflect it in punctuation and tone)
- **Duration:** %g seconds.
- **Visual context:** %q
- **Required keywords:** %s

`, i+1, s.Topic, orDefault(s.Objective, "educational"), orDefault(s.Complexity, "general"),
			orDefault(s.POV, "second_person"), orDefault(s.Emotion, "neutral"),
			s.durationOrDefault(), orDefault(s.VisualContext, "N/A"), keywordList(s.Keywords))
	}

	return fmt.Sprintf(`Base context: %s

Video title: %q
Scene count: %d

Per-scene instructions:
%s
Generate the full JSON:`, sourceText, title, sceneCount, sb.String())
}

func regenerateSystemPrompt(targetIndex int) string {
	return fmt.Sprintf(`You are an expert Script Editor known for brevity and precision.
Your task is to REWRITE a single scene (Scene #%d) based on User Feedback.

CRITICAL RULE: The output must strictly adhere to the duration constraints.
Verbose or overly long scripts will cause the video generation to fail.

The output must be a valid JSON object representing ONLY the SINGLE regenerated scene.
Do NOT return an array.

Structure:
{
  "scriptText": string,
  "avatar": "%s",
  "background": "%s"
}`, targetIndex+1, defaultAvatar, defaultBackground)
}

func regenerateUserPrompt(in RegenerateInput, duration float64) string {
	target, maxWords := WordBudget(duration)

	var summary strings.Builder
	for i, s := range in.Scenes {
		text := s.ScriptText
		if len(text) > 50 {
			text = text[:50]
		}
		fmt.Fprintf(&summary, "Scene %d: %s - %s...\n", i+1, s.Metadata.Topic, text)
	}

	feedback := in.Feedback
	if feedback == "" {
		feedback = "Update the script to match the provided topic and configuration."
	}

	return fmt.Sprintf(`# Context
Source material: %q

# Scenes summary (to avoid repetition)
%s
# The scene to fix (scene index: %d)
Current config:
- **Topic:** %q
- **Objective:** %q
- **Complexity:** %q
- **POV:** %q
- **Emotion:** %q (reflect this in tone and punctuation)
- **Duration:** %g seconds.
- **Visual context:** %q
- **Keywords:** %s

# LENGTH CONSTRAINTS (STRICT)
- Allocated duration: %g seconds.
- Target word count: ~%d words.
- MAXIMUM ALLOWED WORDS: %d words.

Previous script (reference ONLY - do not expand on this):
%q

# User feedback:
%q

# Instructions
1. Rewrite the scriptText to address the feedback.
2. STRICTLY respect the %d word limit. If the feedback requires adding information, you must REMOVE other less important details to keep the balance.
3. Do NOT make the text longer than the previous script unless the previous script was too short for its duration.
4. Maintain the tone defined by the emotion.
5. Do not simply append sentences. Rephrase the entire paragraph to be concise.`,
		in.SourceText, summary.String(), in.TargetIndex,
		in.Config.Topic, orDefault(in.Config.Objective, "educational"),
		orDefault(in.Config.Complexity, "general"), orDefault(in.Config.POV, "second_person"),
		orDefault(in.Config.Emotion, "neutral"), duration,
		orDefault(in.Config.VisualContext, "N/A"), keywordList(in.Config.Keywords),
		duration, target, maxWords, in.PreviousText, feedback, maxWords)
}

func keywordList(keywords []string) string {
	if len(keywords) == 0 {
		return "None"
	}
	return strings.Join(keywords, ", ")
}
