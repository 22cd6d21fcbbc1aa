package heygen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/casecraft/casecraft_server/config"
	"github.com/casecraft/casecraft_server/internal/provider"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	apiKey        string
	baseURL       string
	statusBaseURL string
	client        *http.Client
}

func NewClient(cfg config.HeyGenConfig) *Client {
	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		statusBaseURL: cfg.StatusBaseURL,
		client:        &http.Client{Timeout: defaultTimeout},
	}
}

// GenerateRequest 视频生成参数，数字人/声音/背景均为固定常量
type GenerateRequest struct {
	AvatarID      string
	VoiceID       string
	InputText     string
	BackgroundURL string
}

type generatePayload struct {
	Caption     bool         `json:"caption"`
	Dimension   dimension    `json:"dimension"`
	VideoInputs []videoInput `json:"video_inputs"`
}

type dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type videoInput struct {
	Character  character  `json:"character"`
	Voice      voice      `json:"voice"`
	Background background `json:"background"`
}

type character struct {
	Type        string  `json:"type"`
	AvatarID    string  `json:"avatar_id"`
	Scale       float64 `json:"scale"`
	AvatarStyle string  `json:"avatar_style"`
	Offset      offset  `json:"offset"`
}

type offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type voice struct {
	Type      string  `json:"type"`
	VoiceID   string  `json:"voice_id"`
	InputText string  `json:"input_text"`
	Speed     float64 `json:"speed"`
	Pitch     int     `json:"pitch"`
	Emotion   string  `json:"emotion"`
}

type background struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type generateResponse struct {
	Data struct {
		VideoID string `json:"video_id"`
	} `json:"data"`
}

// VideoStatus 状态查询结果
type VideoStatus struct {
	Status   string
	VideoURL string
	Error    string
}

type statusResponse struct {
	Data struct {
		Status   string `json:"status"`
		VideoURL string `json:"video_url"`
		Error    string `json:"error"`
	} `json:"data"`
}

// GenerateVideo 发起视频生成，返回供应商任务 ID
func (c *Client) GenerateVideo(ctx context.Context, req GenerateRequest) (string, error) {
	payload := generatePayload{
		Caption:   false,
		Dimension: dimension{Width: 1280, Height: 720},
		VideoInputs: []videoInput{
			{
				Character: character{
					Type:        "avatar",
					AvatarID:    req.AvatarID,
					Scale:       1.0,
					AvatarStyle: "normal",
				},
				Voice: voice{
					Type:      "text",
					VoiceID:   req.VoiceID,
					InputText: req.InputText,
					Speed:     1.0,
					Pitch:     35,
					Emotion:   "Excited",
				},
				Background: background{
					Type: "image",
					URL:  req.BackgroundURL,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/video/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("accept", "application/json")
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to connect to HeyGen API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", provider.NewError(resp.StatusCode, "HeyGen API error: %s", string(raw))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode HeyGen response: %w", err)
	}
	if result.Data.VideoID == "" {
		return "", fmt.Errorf("no video ID received from HeyGen API")
	}

	return result.Data.VideoID, nil
}

// CheckStatus 查询视频任务状态，404 返回 provider.ErrNotReady
func (c *Client) CheckStatus(ctx context.Context, videoID string) (*VideoStatus, error) {
	endpoint := fmt.Sprintf("%s/video_status.get?%s", c.statusBaseURL, url.Values{"video_id": {videoID}}.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("accept", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to HeyGen API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, provider.ErrNotReady
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, provider.NewError(resp.StatusCode, "HeyGen API error: %s", string(raw))
	}

	var result statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode HeyGen response: %w", err)
	}

	return &VideoStatus{
		Status:   result.Data.Status,
		VideoURL: result.Data.VideoURL,
		Error:    result.Data.Error,
	}, nil
}
