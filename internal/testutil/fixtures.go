package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/casecraft/casecraft_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	user := &model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        fmt.Sprintf("test_%d@example.com", time.Now().UnixNano()),
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		IsVerified:   true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = hash
	}
}

// Unverified 设置为未验证邮箱
func Unverified() func(*model.User) {
	return func(u *model.User) {
		u.IsVerified = false
	}
}

// TestCaseStudy 创建测试案例
func TestCaseStudy(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.CaseStudy)) *model.CaseStudy {
	t.Helper()

	caseStudy := &model.CaseStudy{
		UserID:       userID,
		Title:        "Acme Rollout",
		FinalSummary: "Acme Corp cut onboarding time in half after rolling out the new workflow.",
	}

	for _, opt := range opts {
		opt(caseStudy)
	}

	if err := db.Create(caseStudy).Error; err != nil {
		t.Fatalf("Failed to create test case study: %v", err)
	}

	return caseStudy
}

// WithTitle 设置标题
func WithTitle(title string) func(*model.CaseStudy) {
	return func(cs *model.CaseStudy) {
		cs.Title = title
	}
}

// WithoutSummary 清空总结
func WithoutSummary() func(*model.CaseStudy) {
	return func(cs *model.CaseStudy) {
		cs.FinalSummary = ""
	}
}

// WithVideoJob 预置 HeyGen 视频任务
func WithVideoJob(videoID, status string) func(*model.CaseStudy) {
	return func(cs *model.CaseStudy) {
		now := time.Now()
		cs.VideoID = &videoID
		cs.VideoStatus = status
		cs.VideoCreatedAt = &now
	}
}

// WithNewsflashJob 预置快讯视频任务
func WithNewsflashJob(videoID, status string) func(*model.CaseStudy) {
	return func(cs *model.CaseStudy) {
		now := time.Now()
		cs.NewsflashVideoID = &videoID
		cs.NewsflashVideoStatus = status
		cs.NewsflashVideoCreatedAt = &now
	}
}

// WithStoryboardJob 预置 Pictory 故事板任务
func WithStoryboardJob(jobID, status string) func(*model.CaseStudy) {
	return func(cs *model.CaseStudy) {
		now := time.Now()
		cs.PictoryStoryboardID = &jobID
		cs.PictoryVideoStatus = status
		cs.PictoryVideoCreatedAt = &now
	}
}

// WithRenderJob 预置 Pictory 渲染任务
func WithRenderJob(renderJobID string) func(*model.CaseStudy) {
	return func(cs *model.CaseStudy) {
		cs.PictoryRenderID = &renderJobID
		cs.PictoryVideoStatus = model.MediaStatusRendering
	}
}

// WithPodcastJob 预置播客任务
func WithPodcastJob(jobID, status string) func(*model.CaseStudy) {
	return func(cs *model.CaseStudy) {
		now := time.Now()
		cs.PodcastJobID = &jobID
		cs.PodcastStatus = status
		cs.PodcastCreatedAt = &now
	}
}

// WithPodcastAudio 预置已落库的播客音频
func WithPodcastAudio(data []byte, mime string) func(*model.CaseStudy) {
	return func(cs *model.CaseStudy) {
		cs.PodcastAudioData = data
		cs.PodcastAudioMime = mime
		cs.PodcastAudioSize = len(data)
	}
}

// WithPodcastURL 预置播客外链
func WithPodcastURL(url string) func(*model.CaseStudy) {
	return func(cs *model.CaseStudy) {
		cs.PodcastURL = url
	}
}
