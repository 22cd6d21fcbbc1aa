package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/casecraft/casecraft_server/internal/model"
)

type CaseStudyRepository struct {
	db *gorm.DB
}

func NewCaseStudyRepository(db *gorm.DB) *CaseStudyRepository {
	return &CaseStudyRepository{db: db}
}

func (r *CaseStudyRepository) Create(caseStudy *model.CaseStudy) error {
	return r.db.Create(caseStudy).Error
}

func (r *CaseStudyRepository) GetByID(id int64) (*model.CaseStudy, error) {
	var caseStudy model.CaseStudy
	err := r.db.Where("id = ?", id).First(&caseStudy).Error
	if err != nil {
		return nil, err
	}
	return &caseStudy, nil
}

func (r *CaseStudyRepository) Update(caseStudy *model.CaseStudy) error {
	return r.db.Save(caseStudy).Error
}

func (r *CaseStudyRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.CaseStudy{}).Where("id = ?", id).Updates(fields).Error
}

func (r *CaseStudyRepository) Delete(id int64) error {
	return r.db.Delete(&model.CaseStudy{}, id).Error
}

// ListByUserID 获取用户的案例列表
func (r *CaseStudyRepository) ListByUserID(userID int64, page, pageSize int) ([]*model.CaseStudy, int64, error) {
	var caseStudies []*model.CaseStudy
	var total int64

	query := r.db.Model(&model.CaseStudy{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&caseStudies).Error; err != nil {
		return nil, 0, err
	}

	return caseStudies, total, nil
}

// GetByVideoID 按 HeyGen 任务 ID 反查案例。
// 先查普通视频列，再查快讯视频列，第二个返回值标记命中的是哪一列
func (r *CaseStudyRepository) GetByVideoID(videoID string) (*model.CaseStudy, bool, error) {
	var caseStudy model.CaseStudy
	err := r.db.Where("video_id = ?", videoID).First(&caseStudy).Error
	if err == nil {
		return &caseStudy, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	err = r.db.Where("newsflash_video_id = ?", videoID).First(&caseStudy).Error
	if err != nil {
		return nil, false, err
	}
	return &caseStudy, true, nil
}

func (r *CaseStudyRepository) GetByStoryboardID(storyboardJobID string) (*model.CaseStudy, error) {
	var caseStudy model.CaseStudy
	err := r.db.Where("pictory_storyboard_id = ?", storyboardJobID).First(&caseStudy).Error
	if err != nil {
		return nil, err
	}
	return &caseStudy, nil
}

func (r *CaseStudyRepository) GetByPodcastJobID(jobID string) (*model.CaseStudy, error) {
	var caseStudy model.CaseStudy
	err := r.db.Where("podcast_job_id = ?", jobID).First(&caseStudy).Error
	if err != nil {
		return nil, err
	}
	return &caseStudy, nil
}

// ClaimVideoJob 条件更新占用视频任务槽位。
// WHERE video_id IS NULL 保证并发派发只有一个能写入，返回是否占用成功
func (r *CaseStudyRepository) ClaimVideoJob(id int64, videoID string, now time.Time) (bool, error) {
	result := r.db.Model(&model.CaseStudy{}).
		Where("id = ? AND video_id IS NULL", id).
		Updates(map[string]interface{}{
			"video_id":         videoID,
			"video_status":     model.MediaStatusProcessing,
			"video_created_at": now,
		})
	return result.RowsAffected > 0, result.Error
}

// ClaimNewsflashVideoJob 占用快讯视频任务槽位
func (r *CaseStudyRepository) ClaimNewsflashVideoJob(id int64, videoID string, now time.Time) (bool, error) {
	result := r.db.Model(&model.CaseStudy{}).
		Where("id = ? AND newsflash_video_id IS NULL", id).
		Updates(map[string]interface{}{
			"newsflash_video_id":         videoID,
			"newsflash_video_status":     model.MediaStatusProcessing,
			"newsflash_video_created_at": now,
		})
	return result.RowsAffected > 0, result.Error
}

// ClaimStoryboardJob 占用 Pictory 故事板任务槽位
func (r *CaseStudyRepository) ClaimStoryboardJob(id int64, storyboardJobID string, now time.Time) (bool, error) {
	result := r.db.Model(&model.CaseStudy{}).
		Where("id = ? AND pictory_storyboard_id IS NULL", id).
		Updates(map[string]interface{}{
			"pictory_storyboard_id":    storyboardJobID,
			"pictory_video_status":     model.MediaStatusStoryboardProcessing,
			"pictory_video_created_at": now,
		})
	return result.RowsAffected > 0, result.Error
}

// ClaimRenderJob 占用渲染任务槽位，每个故事板只会创建一次渲染任务
func (r *CaseStudyRepository) ClaimRenderJob(id int64, renderJobID string) (bool, error) {
	result := r.db.Model(&model.CaseStudy{}).
		Where("id = ? AND pictory_render_id IS NULL", id).
		Updates(map[string]interface{}{
			"pictory_render_id":    renderJobID,
			"pictory_video_status": model.MediaStatusRendering,
		})
	return result.RowsAffected > 0, result.Error
}

// ClaimPodcastJob 占用播客任务槽位
func (r *CaseStudyRepository) ClaimPodcastJob(id int64, jobID string, now time.Time) (bool, error) {
	result := r.db.Model(&model.CaseStudy{}).
		Where("id = ? AND podcast_job_id IS NULL", id).
		Updates(map[string]interface{}{
			"podcast_job_id":     jobID,
			"podcast_status":     model.MediaStatusProcessing,
			"podcast_created_at": now,
		})
	return result.RowsAffected > 0, result.Error
}

// ResetPodcast 清空失败的播客任务字段，允许重新派发
func (r *CaseStudyRepository) ResetPodcast(id int64) error {
	return r.db.Model(&model.CaseStudy{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"podcast_job_id":     nil,
			"podcast_url":        "",
			"podcast_script":     "",
			"podcast_status":     "",
			"podcast_created_at": nil,
		}).Error
}
