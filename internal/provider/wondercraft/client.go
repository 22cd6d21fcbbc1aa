package wondercraft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/casecraft/casecraft_server/config"
	"github.com/casecraft/casecraft_server/internal/provider"
)

// 播客合成较慢，创建接口给 2 分钟；状态查询 10 秒；拉音频 60 秒
const (
	createTimeout = 120 * time.Second
	statusTimeout = 10 * time.Second
	audioTimeout  = 60 * time.Second
)

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(cfg config.WondercraftConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: createTimeout},
	}
}

type createResponse struct {
	JobID string `json:"job_id"`
}

type validationError struct {
	Detail []struct {
		Type string `json:"type"`
		Msg  string `json:"msg"`
	} `json:"detail"`
}

// PodcastJob 状态查询结果，finished+url 才算真正完成
type PodcastJob struct {
	Finished bool   `json:"finished"`
	Error    bool   `json:"error"`
	URL      string `json:"url"`
	Script   string `json:"script"`
}

// CreatePodcast 发起播客生成，返回任务 ID
func (c *Client) CreatePodcast(ctx context.Context, prompt string, voiceIDs []string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"prompt":    prompt,
		"voice_ids": voiceIDs,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/podcast", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to connect to Wondercraft API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.createError(resp)
	}

	var result createResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode Wondercraft response: %w", err)
	}
	if result.JobID == "" {
		return "", fmt.Errorf("no job ID received from Wondercraft API")
	}

	return result.JobID, nil
}

// createError 把 422/429/400 转成更清晰的提示，其余原样透传
func (c *Client) createError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnprocessableEntity:
		return provider.NewError(resp.StatusCode, "%s", validationMessage(raw))
	case http.StatusTooManyRequests:
		return provider.NewError(resp.StatusCode,
			"Rate limit exceeded. Too many concurrent jobs (max 5). Please try again later.")
	case http.StatusBadRequest:
		return provider.NewError(resp.StatusCode, "Bad request: %s", string(raw))
	default:
		return provider.NewError(resp.StatusCode,
			"Wondercraft API error (Status %d): %s", resp.StatusCode, string(raw))
	}
}

func validationMessage(raw []byte) string {
	var data validationError
	if err := json.Unmarshal(raw, &data); err != nil || len(data.Detail) == 0 {
		return fmt.Sprintf("Validation Error: %s", string(raw))
	}

	message := "Validation error occurred"
	for _, detail := range data.Detail {
		msg := strings.ToLower(detail.Msg)
		switch {
		case strings.Contains(msg, "voice_ids") && strings.Contains(msg, "unique"):
			message = "Voice IDs must be unique. Please check your voice configuration."
		case strings.Contains(msg, "voice_ids") || strings.Contains(msg, "music_ids"):
			message = "Invalid voice IDs or music IDs provided."
		case strings.Contains(msg, "music_spec") || strings.Contains(msg, "music_id"):
			message = "Music configuration error. Please try again without music settings."
		case detail.Msg != "":
			message = detail.Msg
		case detail.Type != "":
			message = fmt.Sprintf("%s: Validation failed", detail.Type)
		}
	}
	return message
}

// CheckStatus 查询播客任务状态，404 返回 provider.ErrNotReady
func (c *Client) CheckStatus(ctx context.Context, jobID string) (*PodcastJob, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/podcast/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Wondercraft API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, provider.ErrNotReady
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, provider.NewError(resp.StatusCode, "Wondercraft API error: %s", string(raw))
	}

	var job PodcastJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("failed to decode Wondercraft response: %w", err)
	}

	return &job, nil
}

// FetchAudio 下载已完成播客的音频字节，供落库持久化
func (c *Client) FetchAudio(ctx context.Context, audioURL string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, audioTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("audio fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read audio body: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("audio fetch returned empty body")
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/mpeg"
	}

	return data, mime, nil
}
