package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/riberomr/ia-generated-video-mvp/models"
)

func newCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SynthesiaAvatar{}, &models.SynthesiaVoice{}))
	return db
}

func templatedScript(t *testing.T, data map[string]string) *models.Script {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &models.Script{
		ID:           "script-1",
		IsTemplated:  true,
		TemplateID:   "tpl-9",
		TemplateData: raw,
	}
}

func TestSynthesiaSubmitTemplateMode(t *testing.T) {
	t.Parallel()

	var captured synthesiaTemplatePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/videos/fromTemplate", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"id": "syn-55"}`))
	}))
	defer srv.Close()

	s := NewSynthesia("test-key", true, nil, nil)
	s.client.baseURL = srv.URL

	script := templatedScript(t, map[string]string{
		"title_scene1":       "Welcome",
		"scene_voice_text_1": "Hello everyone.",
	})

	sub, err := s.SubmitRender(context.Background(), script, RenderOptions{
		Title:        "Onboarding video",
		TemplateData: map[string]string{"title_scene1": "Override title"},
	})
	require.NoError(t, err)

	assert.Equal(t, "syn-55", sub.ExternalID)
	assert.True(t, captured.Test)
	assert.Equal(t, "tpl-9", captured.TemplateID)
	assert.Equal(t, "Onboarding video", captured.Title)
	// Request overrides win key by key; untouched keys pass through.
	assert.Equal(t, "Override title", captured.TemplateData["title_scene1"])
	assert.Equal(t, "Hello everyone.", captured.TemplateData["scene_voice_text_1"])
}

func TestSynthesiaSubmitBasicMode(t *testing.T) {
	t.Parallel()

	var captured synthesiaBasicPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"id": "syn-56"}`))
	}))
	defer srv.Close()

	s := NewSynthesia("test-key", false, nil, nil)
	s.client.baseURL = srv.URL

	script := testScript(t, "First scene.", "Second scene.")
	sub, err := s.SubmitRender(context.Background(), script, RenderOptions{AvatarID: "anna_costume1_cameraA"})
	require.NoError(t, err)

	assert.Equal(t, "syn-56", sub.ExternalID)
	assert.False(t, captured.Test)
	assert.Equal(t, "private", captured.Visibility)
	assert.Equal(t, "Script script-1", captured.Title)
	require.Len(t, captured.Input, 1)
	assert.Equal(t, "First scene.", captured.Input[0].ScriptText)
	assert.Equal(t, "anna_costume1_cameraA", captured.Input[0].Avatar)
	assert.Equal(t, "green_screen", captured.Input[0].Background)
}

func TestSynthesiaTestFlagOverride(t *testing.T) {
	t.Parallel()

	var captured synthesiaBasicPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"id": "syn-57"}`))
	}))
	defer srv.Close()

	s := NewSynthesia("test-key", true, nil, nil)
	s.client.baseURL = srv.URL

	live := false
	_, err := s.SubmitRender(context.Background(), testScript(t, "text"), RenderOptions{Test: &live})
	require.NoError(t, err)
	assert.False(t, captured.Test)
}

func TestSynthesiaSubmitWithoutKey(t *testing.T) {
	t.Parallel()

	s := NewSynthesia("", false, nil, nil)
	_, err := s.SubmitRender(context.Background(), testScript(t, "text"), RenderOptions{})
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestSynthesiaCheckStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos/syn-55", r.URL.Path)
		w.Write([]byte(`{"status": "in_progress", "download": ""}`))
	}))
	defer srv.Close()

	s := NewSynthesia("test-key", false, nil, nil)
	s.client.baseURL = srv.URL

	res, err := s.CheckStatus(context.Background(), "syn-55")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", res.Raw)
	assert.Empty(t, res.DownloadURL)
}

func TestSynthesiaCatalogsFromSeededTables(t *testing.T) {
	t.Parallel()

	db := newCatalogDB(t)
	require.NoError(t, db.Create(&models.SynthesiaAvatar{ID: "anna_costume1_cameraA", Name: "Anna", Gender: "female"}).Error)
	require.NoError(t, db.Create(&models.SynthesiaAvatar{ID: "zack_casual", Name: "Zack", Gender: "male"}).Error)
	require.NoError(t, db.Create(&models.SynthesiaVoice{ID: "voice-es", Name: "Lucia", Language: "Spanish", Locale: "es-ES"}).Error)
	require.NoError(t, db.Create(&models.SynthesiaVoice{ID: "voice-en", Name: "Sam", Language: "English", Locale: "en-US"}).Error)

	s := NewSynthesia("test-key", false, db, nil)

	avatars, err := s.ListAvatars(context.Background())
	require.NoError(t, err)
	require.Len(t, avatars, 2)
	assert.Equal(t, "Anna", avatars[0].Name) // ordered by name

	voices, err := s.ListVoices(context.Background())
	require.NoError(t, err)
	require.Len(t, voices, 2)
	assert.Equal(t, "English", voices[0].Language) // ordered by language
}

func TestSynthesiaListTemplates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/templates", r.URL.Path)
		assert.Equal(t, "workspace", r.URL.Query().Get("source"))
		w.Write([]byte(`{"templates": [{"id": "tpl-1", "title": "Corporate intro"}]}`))
	}))
	defer srv.Close()

	s := NewSynthesia("test-key", false, nil, nil)
	s.client.baseURL = srv.URL

	templates, err := s.ListTemplates(context.Background(), "workspace")
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "tpl-1", templates[0].ID)

	// Without a key the catalog read is a silent no-op.
	unkeyed := NewSynthesia("", false, nil, nil)
	templates, err = unkeyed.ListTemplates(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestSynthesiaGetTemplateDetails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/templates/tpl-9", r.URL.Path)
		w.Write([]byte(`{
			"id": "tpl-9",
			"title": "Two scene layout",
			"variables": [
				{"id": "v1", "label": "scene_voice_text_1", "type": "text"},
				{"id": "v2", "label": "scene_voice_text_2", "type": "text"},
				{"id": "v3", "label": "company_name", "type": "text", "value": "Acme Corp"}
			]
		}`))
	}))
	defer srv.Close()

	s := NewSynthesia("test-key", false, nil, nil)
	s.client.baseURL = srv.URL

	details, err := s.GetTemplateDetails(context.Background(), "tpl-9")
	require.NoError(t, err)
	assert.Equal(t, 2, details.SceneCount())
	require.Len(t, details.Variables, 3)
	assert.Equal(t, "Acme Corp", details.Variables[2].Value)

	// Details need a key: there is no useful empty fallback here.
	unkeyed := NewSynthesia("", false, nil, nil)
	_, err = unkeyed.GetTemplateDetails(context.Background(), "tpl-9")
	require.ErrorIs(t, err, ErrMissingCredentials)
}
