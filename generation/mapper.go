package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// TemplateVariable is one fill-in slot of a provider template. Key is
// the human-readable label from the template schema (never the
// internal variable id). A non-empty Preset is copied into the output
// verbatim and is never handed to text generation for rewriting.
type TemplateVariable struct {
	Key    string `json:"key"`
	Preset string `json:"preset,omitempty"`
}

// MappingMeta describes how a mapping run interpreted the source text.
type MappingMeta struct {
	Topic                string `json:"topic"`
	DetectedScenes       int    `json:"detected_scenes"`
	CalendarSceneApplied bool   `json:"calendar_scene_applied"`
}

// MappingResult is a total variable map over the template's keys: no
// missing keys, no extra keys, placeholders as a single space.
type MappingResult struct {
	Meta         MappingMeta       `json:"meta"`
	TemplateData map[string]string `json:"template_data"`
}

var sceneVoiceKeyPattern = regexp.MustCompile(`^scene_voice_text_(\d+)$`)

// TemplateMapper maps freeform source text onto a template's variable
// schema through a Generator.
type TemplateMapper struct {
	gen Generator
}

func NewTemplateMapper(g Generator) *TemplateMapper {
	return &TemplateMapper{gen: g}
}

// CalendarSceneIndex is the 1-based scene reserved for schedule/date
// content when the source text carries any: the second-to-last scene,
// or scene 1 for single-scene templates. Computed here, not by the
// model, so the index stays deterministic.
func CalendarSceneIndex(sceneCount int) int {
	if sceneCount > 1 {
		return sceneCount - 1
	}
	return 1
}

// MapTemplate produces a variable map covering every key in variables.
// Preset values pass through verbatim; every other key is generated
// from the source text, falling back to a single space when the text
// cannot fill it. A result missing any required key fails with
// ErrIncompleteMapping and is never auto-patched.
func (m *TemplateMapper) MapTemplate(ctx context.Context, topic, sourceText string, variables []TemplateVariable, sceneCount int) (*MappingResult, error) {
	if sceneCount < 1 {
		return nil, fmt.Errorf("scene count must be >= 1, got %d", sceneCount)
	}
	if err := validateSceneKeys(variables, sceneCount); err != nil {
		return nil, err
	}

	calendarIndex := CalendarSceneIndex(sceneCount)

	// Presets are resolved locally; only open variables reach the model.
	var open []TemplateVariable
	presets := make(map[string]string)
	for _, v := range variables {
		if v.Preset != "" {
			presets[v.Key] = v.Preset
		} else {
			open = append(open, v)
		}
	}

	raw, err := m.gen.Complete(ctx,
		mapperSystemPrompt(topic, sceneCount, calendarIndex),
		mapperUserPrompt(sourceText, open),
	)
	if err != nil {
		return nil, err
	}

	var parsed MappingResult
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if parsed.TemplateData == nil {
		return nil, fmt.Errorf("%w: response has no template_data", ErrGenerationFailed)
	}

	// Rebuild the output over exactly the template's key set. Extra
	// keys invented by the model are dropped; a missing open key is a
	// hard failure.
	out := make(map[string]string, len(variables))
	var missing []string
	for _, v := range variables {
		if preset, ok := presets[v.Key]; ok {
			out[v.Key] = preset
			continue
		}
		value, ok := parsed.TemplateData[v.Key]
		if !ok {
			missing = append(missing, v.Key)
			continue
		}
		if strings.TrimSpace(value) == "" {
			value = " "
		}
		out[v.Key] = value
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncompleteMapping, strings.Join(missing, ", "))
	}

	return &MappingResult{
		Meta: MappingMeta{
			Topic:                topic,
			DetectedScenes:       sceneCount,
			CalendarSceneApplied: parsed.Meta.CalendarSceneApplied,
		},
		TemplateData: out,
	}, nil
}

// validateSceneKeys checks that templates carrying scene_voice_text_<n>
// variables carry exactly sceneCount of them.
func validateSceneKeys(variables []TemplateVariable, sceneCount int) error {
	count := 0
	for _, v := range variables {
		if sceneVoiceKeyPattern.MatchString(v.Key) {
			count++
		}
	}
	if count > 0 && count != sceneCount {
		return fmt.Errorf("%w: template has %d scene voice variables but scene count is %d",
			ErrIncompleteMapping, count, sceneCount)
	}
	return nil
}

func mapperSystemPrompt(topic string, sceneCount, calendarIndex int) string {
	return fmt.Sprintf(`# Role & Objective
You are an expert Video Editor and Scriptwriter.
Your goal is to transform a "Source Text" into a perfectly mapped Video Script for a specific video template.

# Input Data
1. **Source Text**: The raw content (article, notes, docs) provided by the user.
2. **Template Structure**: A JSON array where each object contains a "key".
3. **Scene Count**: The target number of scenes (%d).

# Mission
1. **Analyze**: Read the Source Text and extract the most important concepts matching the User's Topic: "%s".

2. **DETECT CALENDAR DATA (CRITICAL)**:
- Scan the source text specifically for dates, schedules, deadlines, or timeline steps.
- IF found: You MUST reserve **Scene #%d** specifically for this calendarization info.
- IF NOT found: Generate Scene #%d as normal narrative content.

3. **Distribute Script**: detailed narrative text for the avatar to speak.
- You MUST generate exactly %d blocks of text.
- Each text generated will be spoken by the avatar in a different scene, saved in the variable "scene_voice_text_n".
- **Scene #%d Rule**: If calendar data exists, the text for "scene_voice_text_%d" must focus strictly on the dates/schedule.

4. **Fill Visuals**: Extract phrases, keywords, or short titles from the Source Text to fill the "template_data".
- If variables are named "agenda_text_1", "agenda_text_2", find 2 distinct points.
- If variables are "title_scene1", generate a relevant title for that scene.
- If variables are "scene_voice_text_1", "scene_voice_text_2", fill them with the narrative blocks from the previous step.

# Rules
- **KEY NAMING (Critical)**: the keys of the output JSON MUST be exactly the "key" fields from the Template Structure.
- **Constraint**: If the template asks for X items (e.g. 5 bullets) but the source text only justifies Y items (e.g. 3), fill the remaining X-Y items with a single space " ".
- **ALL Variables Required**: You MUST include every single key found in the "Template Structure" in your output JSON. Missing keys will cause a crash.
- **Conditional Logic**: If the source text does not provide enough information to fill a specific variable, YOU MUST fill it with a single space " " (do not use null or omit the key).
- **Tone**: Professional, clear, and engaging.
- **Output**: STRICT JSON. No markdown.

# Output JSON Structure
{
  "meta": {
    "topic": "%s",
    "detected_scenes": %d,
    "calendar_scene_applied": boolean
  },
  "template_data": {
    "variable_name": "Extracted Content"
  }
}`, sceneCount, topic, calendarIndex, calendarIndex, sceneCount, calendarIndex, calendarIndex, topic, sceneCount)
}

func mapperUserPrompt(sourceText string, open []TemplateVariable) string {
	keys := make([]map[string]string, 0, len(open))
	for _, v := range open {
		keys = append(keys, map[string]string{"key": v.Key})
	}
	templateJSON, _ := json.MarshalIndent(keys, "", "  ")

	return fmt.Sprintf(`# Source Text
%s

# Template Structure (Variables)
%s

# Generate the JSON
`, sourceText, templateJSON)
}
