package pictory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/casecraft/casecraft_server/config"
	"github.com/casecraft/casecraft_server/internal/provider"
)

const defaultTimeout = 30 * time.Second

// TokenCache 访问令牌缓存，见 cache.go 的 Redis 实现；为 nil 时每次都取新令牌
type TokenCache interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, token string, ttl time.Duration)
}

type Client struct {
	clientID     string
	clientSecret string
	userID       string
	baseURL      string
	client       *http.Client
	tokens       TokenCache
}

func NewClient(cfg config.PictoryConfig, tokens TokenCache) *Client {
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		userID:       cfg.UserID,
		baseURL:      cfg.BaseURL,
		client:       &http.Client{Timeout: defaultTimeout},
		tokens:       tokens,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type jobIDResponse struct {
	Data struct {
		JobID string `json:"jobId"`
	} `json:"data"`
}

// Job 任务状态。供应商对结果 URL 的字段命名不一致，统一走 VideoResultURL
type Job struct {
	Status       string                 `json:"status"`
	RenderParams map[string]interface{} `json:"renderParams"`
	VideoURL     string                 `json:"videoURL"`
	VideoURLAlt  string                 `json:"videoUrl"`
	Output       struct {
		VideoURL    string `json:"videoURL"`
		VideoURLAlt string `json:"videoUrl"`
	} `json:"output"`
}

type jobResponse struct {
	Data json.RawMessage `json:"data"`
}

// VideoResultURL 按候选字段顺序取第一个非空的结果 URL
func (j *Job) VideoResultURL() string {
	for _, candidate := range []string{
		j.VideoURL,
		j.VideoURLAlt,
		j.Output.VideoURLAlt,
		j.Output.VideoURL,
	} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// AccessToken 获取访问令牌，优先命中缓存
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.tokens != nil {
		if token, ok := c.tokens.Get(ctx); ok {
			return token, nil
		}
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/pictoryapis/v1/oauth2/token", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to connect to Pictory API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", provider.NewError(resp.StatusCode, "Pictory token error: %s", string(raw))
	}

	var result tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode Pictory token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("failed to get Pictory access token")
	}

	if c.tokens != nil {
		ttl := time.Duration(result.ExpiresIn) * time.Second
		if ttl <= 0 {
			ttl = 50 * time.Minute
		}
		c.tokens.Set(ctx, result.AccessToken, ttl)
	}

	return result.AccessToken, nil
}

// CreateStoryboard 创建故事板任务（竖屏短视频模板），返回任务 ID
func (c *Client) CreateStoryboard(ctx context.Context, token, videoName, story string) (string, error) {
	payload := map[string]interface{}{
		"videoName":   videoName,
		"videoWidth":  1080,
		"videoHeight": 1920,
		"language":    "en",
		"saveProject": true,
		"scenes": []map[string]interface{}{
			{
				"story":                      story,
				"createSceneOnNewLine":       false,
				"createSceneOnEndOfSentence": true,
			},
		},
		"voiceOver": map[string]interface{}{
			"enabled": true,
			"aiVoices": []map[string]interface{}{
				{
					"speaker":            "Adison",
					"speed":              100,
					"amplificationLevel": 0,
				},
			},
		},
		"backgroundMusic": map[string]interface{}{
			"enabled":   true,
			"autoMusic": true,
			"volume":    0.3,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/pictoryapis/v2/video/storyboard", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setAuthHeaders(httpReq, token)

	return c.doJobRequest(httpReq, "storyboard")
}

// RenderVideo 基于已完成的故事板发起渲染，返回渲染任务 ID
func (c *Client) RenderVideo(ctx context.Context, token, storyboardJobID string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/pictoryapis/v2/video/render/"+storyboardJobID, nil)
	if err != nil {
		return "", err
	}
	c.setAuthHeaders(httpReq, token)

	return c.doJobRequest(httpReq, "render")
}

// JobStatus 查询任意任务（故事板或渲染）的状态
func (c *Client) JobStatus(ctx context.Context, token, jobID string) (*Job, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/pictoryapis/v1/jobs/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	c.setAuthHeaders(httpReq, token)
	httpReq.Header.Set("accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Pictory API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, provider.ErrNotReady
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, provider.NewError(resp.StatusCode, "Pictory job status error: %s", string(raw))
	}

	var wrapper jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode Pictory job response: %w", err)
	}

	var job Job
	if err := json.Unmarshal(wrapper.Data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode Pictory job data: %w", err)
	}

	return &job, nil
}

func (c *Client) setAuthHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Pictory-User-Id", c.userID)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) doJobRequest(req *http.Request, action string) (string, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to connect to Pictory API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", provider.NewError(resp.StatusCode, "Pictory %s error: %s", action, string(raw))
	}

	var result jobIDResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode Pictory %s response: %w", action, err)
	}
	if result.Data.JobID == "" {
		return "", fmt.Errorf("no job ID received from Pictory %s API", action)
	}

	return result.Data.JobID, nil
}
