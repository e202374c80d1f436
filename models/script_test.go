package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptStatusTransitions(t *testing.T) {
	t.Parallel()

	assert.True(t, ScriptDraft.CanTransitionTo(ScriptPublished))
	assert.True(t, ScriptPublished.CanTransitionTo(ScriptArchived))

	// The flow is one-way: no skipping, no reviving.
	assert.False(t, ScriptDraft.CanTransitionTo(ScriptArchived))
	assert.False(t, ScriptPublished.CanTransitionTo(ScriptDraft))
	assert.False(t, ScriptArchived.CanTransitionTo(ScriptDraft))
	assert.False(t, ScriptArchived.CanTransitionTo(ScriptPublished))
	assert.False(t, ScriptDraft.CanTransitionTo(ScriptDraft))
}

func TestRenderStatusIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, RenderPending.IsTerminal())
	assert.False(t, RenderProcessing.IsTerminal())
	assert.True(t, RenderCompleted.IsTerminal())
	assert.True(t, RenderFailed.IsTerminal())
}

func TestSceneListRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := MarshalScenes([]Scene{
		{Text: "Hello", VisualDescription: "Title card", EstimatedDuration: 5},
	})
	require.NoError(t, err)

	script := Script{ID: "s1", Scenes: raw}
	scenes, err := script.SceneList()
	require.NoError(t, err)
	require.Len(t, scenes, 1)
	assert.Equal(t, "Hello", scenes[0].Text)
}

func TestSceneListEmptyAndMalformed(t *testing.T) {
	t.Parallel()

	var script Script
	scenes, err := script.SceneList()
	require.NoError(t, err)
	assert.Nil(t, scenes)

	script.Scenes = []byte("{broken")
	_, err = script.SceneList()
	require.Error(t, err)
}

func TestTemplateDataMap(t *testing.T) {
	t.Parallel()

	script := Script{TemplateData: []byte(`{"title": "Welcome", "blank": " "}`)}
	data, err := script.TemplateDataMap()
	require.NoError(t, err)
	assert.Equal(t, "Welcome", data["title"])
	assert.Equal(t, " ", data["blank"])

	empty := Script{}
	data, err = empty.TemplateDataMap()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestMarshalScenesNil(t *testing.T) {
	t.Parallel()

	raw, err := MarshalScenes(nil)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
}
