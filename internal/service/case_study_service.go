package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/casecraft/casecraft_server/internal/model"
	"github.com/casecraft/casecraft_server/internal/model/dto"
	"github.com/casecraft/casecraft_server/internal/repository"
)

// CaseStudyService 案例的增删改查与文案衍生
type CaseStudyService struct {
	repo *repository.CaseStudyRepository
	ai   *AIService
}

func NewCaseStudyService(repo *repository.CaseStudyRepository, ai *AIService) *CaseStudyService {
	return &CaseStudyService{repo: repo, ai: ai}
}

func (s *CaseStudyService) Create(userID int64, req *dto.CreateCaseStudyRequest) (*dto.CaseStudyDetail, error) {
	caseStudy := &model.CaseStudy{
		UserID:       userID,
		Title:        req.Title,
		FinalSummary: req.FinalSummary,
	}
	if err := s.repo.Create(caseStudy); err != nil {
		return nil, err
	}
	return buildCaseStudyDetail(caseStudy), nil
}

func (s *CaseStudyService) Get(userID, id int64) (*dto.CaseStudyDetail, error) {
	caseStudy, err := s.loadOwned(userID, id)
	if err != nil {
		return nil, err
	}
	return buildCaseStudyDetail(caseStudy), nil
}

func (s *CaseStudyService) List(userID int64, page, pageSize int) ([]*dto.CaseStudyListItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	caseStudies, total, err := s.repo.ListByUserID(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.CaseStudyListItem, 0, len(caseStudies))
	for _, caseStudy := range caseStudies {
		items = append(items, &dto.CaseStudyListItem{
			ID:                 caseStudy.ID,
			Title:              caseStudy.Title,
			VideoStatus:        caseStudy.VideoStatus,
			NewsflashStatus:    caseStudy.NewsflashVideoStatus,
			PictoryVideoStatus: caseStudy.PictoryVideoStatus,
			PodcastStatus:      caseStudy.PodcastStatus,
			CreatedAt:          caseStudy.CreatedAt.Format(time.RFC3339),
			UpdatedAt:          caseStudy.UpdatedAt.Format(time.RFC3339),
		})
	}
	return items, total, nil
}

func (s *CaseStudyService) Update(userID, id int64, req *dto.UpdateCaseStudyRequest) (*dto.CaseStudyDetail, error) {
	caseStudy, err := s.loadOwned(userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		caseStudy.Title = *req.Title
	}
	if req.FinalSummary != nil {
		caseStudy.FinalSummary = *req.FinalSummary
	}

	if err := s.repo.Update(caseStudy); err != nil {
		return nil, err
	}
	return buildCaseStudyDetail(caseStudy), nil
}

func (s *CaseStudyService) Delete(userID, id int64) error {
	caseStudy, err := s.loadOwned(userID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(caseStudy.ID)
}

// GenerateLinkedInPost 基于总结生成 LinkedIn 文案并存到案例上
func (s *CaseStudyService) GenerateLinkedInPost(ctx context.Context, userID, id int64) (*dto.LinkedInPostResponse, error) {
	caseStudy, err := s.loadOwned(userID, id)
	if err != nil {
		return nil, err
	}
	if caseStudy.FinalSummary == "" {
		return nil, ErrSummaryRequired
	}

	post, err := s.ai.LinkedInPost(ctx, caseStudy.FinalSummary)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFields(caseStudy.ID, map[string]interface{}{
		"linkedin_post": post,
	}); err != nil {
		return nil, err
	}

	return &dto.LinkedInPostResponse{
		Status:       "success",
		LinkedInPost: post,
		Message:      "LinkedIn post generated",
	}, nil
}

func (s *CaseStudyService) loadOwned(userID, id int64) (*model.CaseStudy, error) {
	caseStudy, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseStudyNotFound
		}
		return nil, err
	}
	if caseStudy.UserID != userID {
		return nil, ErrNotOwner
	}
	return caseStudy, nil
}

func buildCaseStudyDetail(caseStudy *model.CaseStudy) *dto.CaseStudyDetail {
	detail := &dto.CaseStudyDetail{
		ID:           caseStudy.ID,
		Title:        caseStudy.Title,
		FinalSummary: caseStudy.FinalSummary,
		LinkedInPost: caseStudy.LinkedInPost,
		CreatedAt:    caseStudy.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    caseStudy.UpdatedAt.Format(time.RFC3339),

		VideoURL:    caseStudy.VideoURL,
		VideoStatus: caseStudy.VideoStatus,

		NewsflashVideoURL:    caseStudy.NewsflashVideoURL,
		NewsflashVideoStatus: caseStudy.NewsflashVideoStatus,

		PictoryVideoURL:    caseStudy.PictoryVideoURL,
		PictoryVideoStatus: caseStudy.PictoryVideoStatus,

		PodcastURL:    caseStudy.PodcastURL,
		PodcastStatus: caseStudy.PodcastStatus,
		PodcastScript: caseStudy.PodcastScript,
	}

	if caseStudy.VideoID != nil {
		detail.VideoID = *caseStudy.VideoID
	}
	if caseStudy.NewsflashVideoID != nil {
		detail.NewsflashVideoID = *caseStudy.NewsflashVideoID
	}
	if caseStudy.PictoryStoryboardID != nil {
		detail.PictoryStoryboardID = *caseStudy.PictoryStoryboardID
	}
	if caseStudy.PictoryRenderID != nil {
		detail.PictoryRenderID = *caseStudy.PictoryRenderID
	}
	if caseStudy.PodcastJobID != nil {
		detail.PodcastJobID = *caseStudy.PodcastJobID
	}

	return detail
}
