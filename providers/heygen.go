package providers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-redis/redis/v8"

	"github.com/riberomr/ia-generated-video-mvp/models"
)

const heygenBaseURL = "https://api.heygen.com"

// HeyGen renders basic-mode jobs only: an explicit avatar and voice
// speaking one scene's text. The account is credit-constrained, so
// only the first scene of a script is ever submitted.
type HeyGen struct {
	apiKey string
	client *apiClient
	cache  *catalogCache
}

func NewHeyGen(apiKey string, rdb *redis.Client) *HeyGen {
	return &HeyGen{
		apiKey: apiKey,
		client: newAPIClient("heygen", heygenBaseURL, func(req *http.Request) {
			req.Header.Set("X-Api-Key", apiKey)
		}),
		cache: &catalogCache{rdb: rdb},
	}
}

func (h *HeyGen) Name() models.Provider {
	return models.ProviderHeyGen
}

type heygenCharacter struct {
	Type        string `json:"type"`
	AvatarID    string `json:"avatar_id"`
	AvatarStyle string `json:"avatar_style"`
}

type heygenVoice struct {
	Type      string `json:"type"`
	VoiceID   string `json:"voice_id"`
	InputText string `json:"input_text"`
}

type heygenBackground struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type heygenVideoInput struct {
	Character  heygenCharacter  `json:"character"`
	Voice      heygenVoice      `json:"voice"`
	Background heygenBackground `json:"background"`
}

type heygenGeneratePayload struct {
	VideoInputs []heygenVideoInput `json:"video_inputs"`
	Dimension   struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"dimension"`
}

func (h *HeyGen) SubmitRender(ctx context.Context, script *models.Script, opts RenderOptions) (*Submission, error) {
	if h.apiKey == "" {
		return nil, fmt.Errorf("heygen: %w", ErrMissingCredentials)
	}
	if script.IsTemplated {
		return nil, fmt.Errorf("heygen: %w", ErrTemplateUnsupported)
	}

	scenes, err := script.SceneList()
	if err != nil {
		return nil, err
	}
	if len(scenes) == 0 {
		return nil, fmt.Errorf("heygen: %w", ErrNoScenes)
	}

	// First scene only, to save credits.
	payload := heygenGeneratePayload{
		VideoInputs: []heygenVideoInput{{
			Character: heygenCharacter{
				Type:        "avatar",
				AvatarID:    opts.AvatarID,
				AvatarStyle: "normal",
			},
			Voice: heygenVoice{
				Type:      "text",
				VoiceID:   opts.VoiceID,
				InputText: scenes[0].Text,
			},
			Background: heygenBackground{
				Type:  "color",
				Value: "#ffffff",
			},
		}},
	}
	// 720p is safer for free tiers.
	payload.Dimension.Width = 1280
	payload.Dimension.Height = 720

	var res struct {
		Data struct {
			VideoID string `json:"video_id"`
		} `json:"data"`
	}
	if err := h.client.do(ctx, http.MethodPost, "/v2/video/generate", payload, &res); err != nil {
		return nil, err
	}
	if res.Data.VideoID == "" {
		return nil, fmt.Errorf("heygen: /v2/video/generate response has no video_id")
	}

	log.Printf("HeyGen video generation started, external id %s", res.Data.VideoID)
	return &Submission{ExternalID: res.Data.VideoID, Payload: payload}, nil
}

func (h *HeyGen) CheckStatus(ctx context.Context, externalID string) (*StatusResult, error) {
	var res struct {
		Data struct {
			Status   string `json:"status"`
			VideoURL string `json:"video_url"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("/v1/video_status.get?video_id=%s", externalID)
	if err := h.client.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, err
	}

	return &StatusResult{Raw: res.Data.Status, DownloadURL: res.Data.VideoURL}, nil
}

func (h *HeyGen) ListAvatars(ctx context.Context) ([]Avatar, error) {
	// Catalog reads are no-ops without a key; only mutations fail.
	if h.apiKey == "" {
		return []Avatar{}, nil
	}

	var avatars []Avatar
	if h.cache.get(ctx, "catalog:heygen:avatars", &avatars) {
		return avatars, nil
	}

	var res struct {
		Data struct {
			Avatars []Avatar `json:"avatars"`
		} `json:"data"`
	}
	if err := h.client.do(ctx, http.MethodGet, "/v2/avatars", nil, &res); err != nil {
		return nil, err
	}

	avatars = res.Data.Avatars
	if avatars == nil {
		avatars = []Avatar{}
	}
	h.cache.set(ctx, "catalog:heygen:avatars", avatars)
	return avatars, nil
}

func (h *HeyGen) ListVoices(ctx context.Context) ([]Voice, error) {
	if h.apiKey == "" {
		return []Voice{}, nil
	}

	var voices []Voice
	if h.cache.get(ctx, "catalog:heygen:voices", &voices) {
		return voices, nil
	}

	var res struct {
		Data struct {
			Voices []Voice `json:"voices"`
		} `json:"data"`
	}
	if err := h.client.do(ctx, http.MethodGet, "/v2/voices", nil, &res); err != nil {
		return nil, err
	}

	voices = res.Data.Voices
	if voices == nil {
		voices = []Voice{}
	}
	h.cache.set(ctx, "catalog:heygen:voices", voices)
	return voices, nil
}
