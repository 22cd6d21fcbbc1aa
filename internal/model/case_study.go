package model

import (
	"time"
)

// 媒体任务状态（由轮询接口写入，客户端不能直接改）
const (
	MediaStatusProcessing = "processing"
	MediaStatusPending    = "pending"
	MediaStatusRendering  = "rendering"
	MediaStatusCompleted  = "completed"
	MediaStatusFailed     = "failed"
	MediaStatusNotReady   = "not_ready"

	// Pictory 故事板阶段的初始状态
	MediaStatusStoryboardProcessing = "storyboard_processing"
)

type CaseStudy struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"not null;index" json:"user_id"`
	Title        string    `gorm:"size:200" json:"title"`
	FinalSummary string    `gorm:"type:text" json:"final_summary,omitempty"`
	LinkedInPost string    `gorm:"column:linkedin_post;type:text" json:"linkedin_post,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// HeyGen 视频任务
	VideoID        *string    `gorm:"size:100;index" json:"video_id,omitempty"`
	VideoURL       string     `gorm:"type:text" json:"video_url,omitempty"`
	VideoStatus    string     `gorm:"size:50" json:"video_status,omitempty"`
	VideoCreatedAt *time.Time `json:"video_created_at,omitempty"`

	// HeyGen 快讯视频任务（30 秒，不同数字人）
	NewsflashVideoID        *string    `gorm:"size:100;index" json:"newsflash_video_id,omitempty"`
	NewsflashVideoURL       string     `gorm:"type:text" json:"newsflash_video_url,omitempty"`
	NewsflashVideoStatus    string     `gorm:"size:50" json:"newsflash_video_status,omitempty"`
	NewsflashVideoCreatedAt *time.Time `json:"newsflash_video_created_at,omitempty"`

	// Pictory 故事板/渲染两段式任务
	PictoryStoryboardID   *string    `gorm:"size:100;index" json:"pictory_storyboard_id,omitempty"`
	PictoryRenderID       *string    `gorm:"size:100" json:"pictory_render_id,omitempty"`
	PictoryVideoURL       string     `gorm:"type:text" json:"pictory_video_url,omitempty"`
	PictoryVideoStatus    string     `gorm:"size:50" json:"pictory_video_status,omitempty"`
	PictoryVideoCreatedAt *time.Time `json:"pictory_video_created_at,omitempty"`

	// Wondercraft 播客任务，音频字节落库避免外链过期
	PodcastJobID     *string    `gorm:"size:100;index" json:"podcast_job_id,omitempty"`
	PodcastURL       string     `gorm:"type:text" json:"podcast_url,omitempty"`
	PodcastStatus    string     `gorm:"size:50" json:"podcast_status,omitempty"`
	PodcastCreatedAt *time.Time `json:"podcast_created_at,omitempty"`
	PodcastScript    string     `gorm:"type:text" json:"podcast_script,omitempty"`
	PodcastAudioData []byte     `gorm:"type:mediumblob" json:"-"`
	PodcastAudioMime string     `gorm:"size:100" json:"-"`
	PodcastAudioSize int        `json:"-"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (CaseStudy) TableName() string {
	return "case_studies"
}
