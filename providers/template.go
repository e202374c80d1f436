package providers

import (
	"regexp"
	"strconv"
)

// Template is a vendor-defined, pre-built video layout.
type Template struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// TemplateVariable is one fill-in slot of a template. Label is the
// human-readable key callers fill; ID is the vendor's internal
// identifier and never appears in a variable map.
type TemplateVariable struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// TemplateDetails is a template plus its variable schema.
type TemplateDetails struct {
	Template
	Variables []TemplateVariable `json:"variables"`
}

var (
	sceneVoiceVarPattern = regexp.MustCompile(`^scene_voice_text_\d+$`)
	scenesTotalPattern   = regexp.MustCompile(`(?i)(\d+)\s+scenes?\s+total`)
)

const defaultTemplateSceneCount = 3

// SceneCount derives how many scenes a template supports. Counting
// scene_voice_text_<n> variables is the reliable signal; the "N scenes
// total" phrase some template descriptions end with is the fallback.
func (t *TemplateDetails) SceneCount() int {
	count := 0
	for _, v := range t.Variables {
		if sceneVoiceVarPattern.MatchString(v.Label) {
			count++
		}
	}
	if count > 0 {
		return count
	}

	if m := scenesTotalPattern.FindStringSubmatch(t.Description); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}

	return defaultTemplateSceneCount
}
