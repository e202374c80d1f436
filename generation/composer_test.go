package generation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordBudget(t *testing.T) {
	t.Parallel()

	target, max := WordBudget(10)
	assert.Equal(t, 25, target)
	assert.Equal(t, 35, max)

	target, max = WordBudget(7)
	assert.Equal(t, 17, target)
	assert.Equal(t, 27, max)
}

func composedSceneJSON(words int) string {
	text := strings.TrimSpace(strings.Repeat("word ", words))
	return fmt.Sprintf(`{"scriptText": %q, "avatar": "", "background": ""}`, text)
}

func TestComposeFromScratch(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{`{
		"title": "Intro to Compost",
		"description": "Two scene explainer",
		"visibility": "",
		"input": [
			{"scriptText": "Composting turns scraps into soil!", "avatar": "", "background": ""},
			{"scriptText": "Start with a simple bin.", "avatar": "custom_avatar", "background": "office"}
		]
	}`}}

	composer := NewComposer(gen)
	configs := []SceneConfig{
		{Topic: "Why compost", Duration: 8, Emotion: "excited"},
		{Topic: "Getting started"},
	}

	script, err := composer.ComposeFromScratch(context.Background(), "Compost 101", "Compost notes", 2, configs)
	require.NoError(t, err)

	assert.Equal(t, "private", script.Visibility)
	require.Len(t, script.Input, 2)

	first := script.Input[0]
	assert.Equal(t, "anna_costume1_cameraA", first.Avatar)
	assert.Equal(t, "green_screen", first.Background)
	assert.Equal(t, 0, first.Metadata.SceneIndex)
	assert.Equal(t, "Why compost", first.Metadata.Topic)
	assert.Equal(t, 8.0, first.Metadata.DurationSec)
	assert.Equal(t, "excited", first.Metadata.Emotion)

	second := script.Input[1]
	assert.Equal(t, "custom_avatar", second.Avatar)
	assert.Equal(t, 10.0, second.Metadata.DurationSec)
	assert.Equal(t, "neutral", second.Metadata.Emotion)
}

func TestComposeFromScratchSceneCountMismatch(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{`{
		"title": "T", "description": "", "visibility": "private",
		"input": [{"scriptText": "only one", "avatar": "", "background": ""}]
	}`}}

	composer := NewComposer(gen)
	configs := []SceneConfig{{Topic: "a"}, {Topic: "b"}}

	_, err := composer.ComposeFromScratch(context.Background(), "T", "src", 2, configs)
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestComposeFromScratchConfigCountMustMatch(t *testing.T) {
	t.Parallel()

	composer := NewComposer(&fakeGenerator{})

	_, err := composer.ComposeFromScratch(context.Background(), "T", "src", 3, []SceneConfig{{Topic: "a"}})
	require.Error(t, err)

	_, err = composer.ComposeFromScratch(context.Background(), "T", "src", 0, nil)
	require.Error(t, err)
}

func TestRegenerateSceneWithinBudget(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{composedSceneJSON(30)}}
	composer := NewComposer(gen)

	scene, err := composer.RegenerateScene(context.Background(), RegenerateInput{
		SourceText:  "source",
		Scenes:      []ComposedScene{{ScriptText: "old text"}},
		TargetIndex: 0,
		Config:      SceneConfig{Topic: "Budgeting", Duration: 10, Emotion: "serious"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 30, len(strings.Fields(scene.ScriptText)))
	assert.Equal(t, "anna_costume1_cameraA", scene.Avatar)
	assert.Equal(t, "serious", scene.Metadata.Emotion)
}

func TestRegenerateSceneRetriesOverlengthThenSucceeds(t *testing.T) {
	t.Parallel()

	// 10s scene: limit is 35 words. First attempt is over, second fits.
	gen := &fakeGenerator{responses: []string{composedSceneJSON(60), composedSceneJSON(34)}}
	composer := NewComposer(gen)

	scene, err := composer.RegenerateScene(context.Background(), RegenerateInput{
		Scenes:      []ComposedScene{{ScriptText: "old"}},
		TargetIndex: 0,
		Config:      SceneConfig{Topic: "T", Duration: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, 34, len(strings.Fields(scene.ScriptText)))

	// The retry prompt spells out the violation instead of truncating.
	require.Len(t, gen.userSeen, 2)
	assert.Contains(t, gen.userSeen[1], "PREVIOUS ATTEMPT REJECTED")
	assert.Contains(t, gen.userSeen[1], "60 words")
}

func TestRegenerateSceneGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{composedSceneJSON(80)}}
	composer := NewComposer(gen)

	_, err := composer.RegenerateScene(context.Background(), RegenerateInput{
		Scenes:      []ComposedScene{{ScriptText: "old"}},
		TargetIndex: 0,
		Config:      SceneConfig{Topic: "T", Duration: 10},
	})
	require.ErrorIs(t, err, ErrWordBudgetExceeded)
	assert.Equal(t, maxRegenerateAttempts, gen.calls)
}

func TestRegenerateSceneIndexOutOfRange(t *testing.T) {
	t.Parallel()

	composer := NewComposer(&fakeGenerator{})

	_, err := composer.RegenerateScene(context.Background(), RegenerateInput{
		Scenes:      []ComposedScene{{ScriptText: "only"}},
		TargetIndex: 1,
		Config:      SceneConfig{Topic: "T"},
	})
	require.Error(t, err)
}

func TestRegenerateSceneEmptyTextFails(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{`{"scriptText": "   ", "avatar": "", "background": ""}`}}
	composer := NewComposer(gen)

	_, err := composer.RegenerateScene(context.Background(), RegenerateInput{
		Scenes:      []ComposedScene{{ScriptText: "old"}},
		TargetIndex: 0,
		Config:      SceneConfig{Topic: "T"},
	})
	require.ErrorIs(t, err, ErrGenerationFailed)
}
