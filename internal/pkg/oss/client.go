package oss

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/casecraft/casecraft_server/config"
)

// Client 已生成媒体的归档存储。供应商的结果 URL 会过期，
// 视频完成后把文件转存一份到 OSS
type Client struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
	fetcher    *http.Client
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
		fetcher:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// ArchiveVideo 把供应商视频转存到 OSS，返回归档 URL
func (c *Client) ArchiveVideo(caseStudyID int64, mediaType, sourceURL string) (string, error) {
	objectKey := fmt.Sprintf("videos/%d/%s_%d.mp4", caseStudyID, mediaType, time.Now().Unix())
	return c.archiveFromURL(sourceURL, objectKey)
}

func (c *Client) archiveFromURL(sourceURL, objectKey string) (string, error) {
	resp, err := c.fetcher.Get(sourceURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("source fetch returned status %d", resp.StatusCode)
	}

	options := []oss.Option{}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		options = append(options, oss.ContentType(ct))
	}

	// 单个文件最大 1GB，防止异常响应撑爆内存
	if err := c.bucket.PutObject(objectKey, io.LimitReader(resp.Body, 1<<30), options...); err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	return c.GetURL(objectKey), nil
}

// GetURL 获取文件访问 URL
func (c *Client) GetURL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, c.client.Config.Endpoint, objectKey)
}
