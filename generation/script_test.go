package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateScenes(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{`{
		"scenes": [
			{"text": "Photosynthesis converts light into energy.", "visual_description": "Leaf diagram", "estimated_duration": 12},
			{"text": "Chlorophyll absorbs red and blue light.", "visual_description": "Absorption chart", "estimated_duration": 9.5}
		]
	}`}}

	scenes, err := GenerateScenes(context.Background(), gen, "Photosynthesis lecture notes")
	require.NoError(t, err)

	require.Len(t, scenes, 2)
	assert.Equal(t, "Photosynthesis converts light into energy.", scenes[0].Text)
	assert.Equal(t, "Absorption chart", scenes[1].VisualDescription)
	assert.Equal(t, 9.5, scenes[1].EstimatedDuration)

	require.Len(t, gen.schemaNames, 1)
	assert.Equal(t, "video_script", gen.schemaNames[0])
}

func TestGenerateScenesEmptyResult(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{`{"scenes": []}`}}
	_, err := GenerateScenes(context.Background(), gen, "content")
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateScenesInvalidJSON(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{"```json\n{}\n```"}}
	_, err := GenerateScenes(context.Background(), gen, "content")
	require.ErrorIs(t, err, ErrGenerationFailed)
}
