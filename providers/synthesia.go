package providers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/riberomr/ia-generated-video-mvp/models"
)

const synthesiaBaseURL = "https://api.synthesia.io/v2"

// Synthesia renders both template-mode jobs (a template id plus its
// fully populated variable map) and basic-mode jobs (first scene
// only). Avatar and voice catalogs are served from locally seeded
// tables; template catalogs come from the vendor API.
type Synthesia struct {
	apiKey string
	// testMode watermarks submissions instead of spending credits,
	// unless a request overrides it.
	testMode bool
	client   *apiClient
	db       *gorm.DB
	cache    *catalogCache
}

func NewSynthesia(apiKey string, testMode bool, db *gorm.DB, rdb *redis.Client) *Synthesia {
	return &Synthesia{
		apiKey:   apiKey,
		testMode: testMode,
		client: newAPIClient("synthesia", synthesiaBaseURL, func(req *http.Request) {
			req.Header.Set("Authorization", apiKey)
		}),
		db:    db,
		cache: &catalogCache{rdb: rdb},
	}
}

func (s *Synthesia) Name() models.Provider {
	return models.ProviderSynthesia
}

type synthesiaTemplatePayload struct {
	Test         bool              `json:"test"`
	TemplateID   string            `json:"templateId"`
	TemplateData map[string]string `json:"templateData"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
}

type synthesiaSceneInput struct {
	ScriptText string `json:"scriptText"`
	Avatar     string `json:"avatar"`
	Background string `json:"background"`
}

type synthesiaBasicPayload struct {
	Test        bool                  `json:"test"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Visibility  string                `json:"visibility"`
	Input       []synthesiaSceneInput `json:"input"`
}

func (s *Synthesia) SubmitRender(ctx context.Context, script *models.Script, opts RenderOptions) (*Submission, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("synthesia: %w", ErrMissingCredentials)
	}

	test := s.testMode
	if opts.Test != nil {
		test = *opts.Test
	}

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Script %s", script.ID)
	}

	var (
		endpoint string
		payload  interface{}
	)
	if script.IsTemplated && script.TemplateID != "" {
		// Template data on the script is the source of truth; request
		// overrides win key by key. The full map is always submitted,
		// there are no partial template calls.
		templateData, err := script.TemplateDataMap()
		if err != nil {
			return nil, err
		}
		for k, v := range opts.TemplateData {
			templateData[k] = v
		}

		endpoint = "/videos/fromTemplate"
		payload = synthesiaTemplatePayload{
			Test:         test,
			TemplateID:   script.TemplateID,
			TemplateData: templateData,
			Title:        title,
			Description:  opts.Description,
		}
	} else {
		scenes, err := script.SceneList()
		if err != nil {
			return nil, err
		}
		if len(scenes) == 0 {
			return nil, fmt.Errorf("synthesia: %w", ErrNoScenes)
		}

		// First scene only, to save credits.
		endpoint = "/videos"
		payload = synthesiaBasicPayload{
			Test:        test,
			Title:       title,
			Description: opts.Description,
			Visibility:  "private",
			Input: []synthesiaSceneInput{{
				ScriptText: scenes[0].Text,
				Avatar:     opts.AvatarID,
				Background: "green_screen",
			}},
		}
	}

	var res struct {
		ID string `json:"id"`
	}
	if err := s.client.do(ctx, http.MethodPost, endpoint, payload, &res); err != nil {
		return nil, err
	}
	if res.ID == "" {
		return nil, fmt.Errorf("synthesia: %s response has no video id", endpoint)
	}

	log.Printf("Synthesia video generation started, external id %s", res.ID)
	return &Submission{ExternalID: res.ID, Payload: payload}, nil
}

func (s *Synthesia) CheckStatus(ctx context.Context, externalID string) (*StatusResult, error) {
	var res struct {
		Status   string `json:"status"`
		Download string `json:"download"`
	}
	if err := s.client.do(ctx, http.MethodGet, "/videos/"+externalID, nil, &res); err != nil {
		return nil, err
	}

	return &StatusResult{Raw: res.Status, DownloadURL: res.Download}, nil
}

// ListAvatars serves the locally seeded catalog, ordered by name so a
// given snapshot always lists the same first avatar.
func (s *Synthesia) ListAvatars(ctx context.Context) ([]Avatar, error) {
	var rows []models.SynthesiaAvatar
	if err := s.db.WithContext(ctx).Order("name asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("synthesia: loading avatar catalog: %w", err)
	}

	avatars := make([]Avatar, 0, len(rows))
	for _, a := range rows {
		avatars = append(avatars, Avatar{ID: a.ID, Name: a.Name, Gender: a.Gender})
	}
	return avatars, nil
}

// ListVoices serves the locally seeded catalog, ordered by language.
func (s *Synthesia) ListVoices(ctx context.Context) ([]Voice, error) {
	var rows []models.SynthesiaVoice
	if err := s.db.WithContext(ctx).Order("language asc, id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("synthesia: loading voice catalog: %w", err)
	}

	voices := make([]Voice, 0, len(rows))
	for _, v := range rows {
		voices = append(voices, Voice{ID: v.ID, Name: v.Name, Language: v.Language, Locale: v.Locale, Gender: v.Gender})
	}
	return voices, nil
}

// ListTemplates queries the vendor's template catalog.
func (s *Synthesia) ListTemplates(ctx context.Context, source string) ([]Template, error) {
	if s.apiKey == "" {
		return []Template{}, nil
	}

	endpoint := "/templates"
	if source != "" {
		endpoint += "?source=" + source
	}

	cacheKey := "catalog:synthesia:templates:" + source
	var templates []Template
	if s.cache.get(ctx, cacheKey, &templates) {
		return templates, nil
	}

	var res struct {
		Templates []Template `json:"templates"`
	}
	if err := s.client.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, err
	}

	templates = res.Templates
	if templates == nil {
		templates = []Template{}
	}
	s.cache.set(ctx, cacheKey, templates)
	return templates, nil
}

// GetTemplateDetails fetches a template's variable schema.
func (s *Synthesia) GetTemplateDetails(ctx context.Context, templateID string) (*TemplateDetails, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("synthesia: %w", ErrMissingCredentials)
	}

	cacheKey := "catalog:synthesia:template:" + templateID
	var cached TemplateDetails
	if s.cache.get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var details TemplateDetails
	if err := s.client.do(ctx, http.MethodGet, "/templates/"+templateID, nil, &details); err != nil {
		return nil, err
	}

	s.cache.set(ctx, cacheKey, details)
	return &details, nil
}
