package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/casecraft/casecraft_server/config"
	"github.com/casecraft/casecraft_server/internal/model"
	"github.com/casecraft/casecraft_server/internal/model/dto"
	"github.com/casecraft/casecraft_server/internal/pkg/oss"
	"github.com/casecraft/casecraft_server/internal/pkg/ws"
	"github.com/casecraft/casecraft_server/internal/provider"
	"github.com/casecraft/casecraft_server/internal/provider/heygen"
	"github.com/casecraft/casecraft_server/internal/provider/pictory"
	"github.com/casecraft/casecraft_server/internal/provider/wondercraft"
	"github.com/casecraft/casecraft_server/internal/repository"
)

var (
	ErrCaseStudyNotFound = errors.New("case study not found")
	ErrNotOwner          = errors.New("no permission to access this case study")
	ErrSummaryRequired   = errors.New("final summary is required")
	ErrVideoExists       = errors.New("video already generated")
	ErrNewsflashExists   = errors.New("newsflash video already generated")
	ErrPictoryExists     = errors.New("pictory video already generated")
	ErrPodcastExists     = errors.New("podcast already generated")
	ErrNoResultURL       = errors.New("video completed but no URL found")
	ErrRenderFailed      = errors.New("video rendering failed")
	ErrPodcastNotFound   = errors.New("podcast not found")
	ErrAudioFetchFailed  = errors.New("failed to fetch audio file")
)

// videoProvider HeyGen 客户端依赖
type videoProvider interface {
	GenerateVideo(ctx context.Context, req heygen.GenerateRequest) (string, error)
	CheckStatus(ctx context.Context, videoID string) (*heygen.VideoStatus, error)
}

// storyboardProvider Pictory 客户端依赖
type storyboardProvider interface {
	AccessToken(ctx context.Context) (string, error)
	CreateStoryboard(ctx context.Context, token, videoName, story string) (string, error)
	RenderVideo(ctx context.Context, token, storyboardJobID string) (string, error)
	JobStatus(ctx context.Context, token, jobID string) (*pictory.Job, error)
}

// podcastProvider Wondercraft 客户端依赖
type podcastProvider interface {
	CreatePodcast(ctx context.Context, prompt string, voiceIDs []string) (string, error)
	CheckStatus(ctx context.Context, jobID string) (*wondercraft.PodcastJob, error)
	FetchAudio(ctx context.Context, audioURL string) ([]byte, string, error)
}

// notifier 状态变化推送，可为 nil
type notifier interface {
	NotifyMediaStatus(userID int64, event ws.MediaStatusEvent)
}

// videoArchiver 完成视频的归档存储，可为 nil
type videoArchiver interface {
	ArchiveVideo(caseStudyID int64, mediaType, sourceURL string) (string, error)
}

// MediaService 媒体任务的派发与状态跟踪。
// 状态只在客户端轮询时推进，服务端没有后台轮询
type MediaService struct {
	repo        *repository.CaseStudyRepository
	ai          *AIService
	heygen      videoProvider
	pictory     storyboardProvider
	wondercraft podcastProvider
	heygenCfg   config.HeyGenConfig
	voiceIDs    []string
	hub         notifier
	archiver    videoArchiver
}

func NewMediaService(
	repo *repository.CaseStudyRepository,
	ai *AIService,
	heygenClient videoProvider,
	pictoryClient storyboardProvider,
	wondercraftClient podcastProvider,
	heygenCfg config.HeyGenConfig,
	voiceIDs []string,
	hub *ws.Hub,
	archiver *oss.Client,
) *MediaService {
	s := &MediaService{
		repo:        repo,
		ai:          ai,
		heygen:      heygenClient,
		pictory:     pictoryClient,
		wondercraft: wondercraftClient,
		heygenCfg:   heygenCfg,
		voiceIDs:    voiceIDs,
	}
	// 空指针不能直接赋给接口字段，否则 nil 判断会失效
	if hub != nil {
		s.hub = hub
	}
	if archiver != nil {
		s.archiver = archiver
	}
	return s
}

// loadForDispatch 派发前置检查：存在 → 归属 → 有总结
func (s *MediaService) loadForDispatch(userID, caseStudyID int64) (*model.CaseStudy, error) {
	caseStudy, err := s.repo.GetByID(caseStudyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseStudyNotFound
		}
		return nil, err
	}
	if caseStudy.UserID != userID {
		return nil, ErrNotOwner
	}
	if caseStudy.FinalSummary == "" {
		return nil, ErrSummaryRequired
	}
	return caseStudy, nil
}

// GenerateVideo 派发 1 分钟数字人视频任务
func (s *MediaService) GenerateVideo(ctx context.Context, userID, caseStudyID int64) (*dto.GenerateVideoResponse, error) {
	caseStudy, err := s.loadForDispatch(userID, caseStudyID)
	if err != nil {
		return nil, err
	}
	if caseStudy.VideoID != nil {
		return nil, ErrVideoExists
	}

	script := s.ai.VideoScript(ctx, caseStudy.FinalSummary)

	videoID, err := s.heygen.GenerateVideo(ctx, heygen.GenerateRequest{
		AvatarID:      s.heygenCfg.AvatarID,
		VoiceID:       s.heygenCfg.VoiceID,
		InputText:     script,
		BackgroundURL: s.heygenCfg.BackgroundURL,
	})
	if err != nil {
		return nil, err
	}

	// 条件更新占位，并发派发只有一个能成功
	claimed, err := s.repo.ClaimVideoJob(caseStudy.ID, videoID, time.Now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrVideoExists
	}

	return &dto.GenerateVideoResponse{
		Status:  "success",
		VideoID: videoID,
		Message: "Video generation started",
	}, nil
}

// GenerateNewsflashVideo 派发 30 秒快讯视频任务，数字人不同、声音相同
func (s *MediaService) GenerateNewsflashVideo(ctx context.Context, userID, caseStudyID int64) (*dto.GenerateVideoResponse, error) {
	caseStudy, err := s.loadForDispatch(userID, caseStudyID)
	if err != nil {
		return nil, err
	}
	if caseStudy.NewsflashVideoID != nil {
		return nil, ErrNewsflashExists
	}

	script := s.ai.NewsflashScript(ctx, caseStudy.FinalSummary)

	videoID, err := s.heygen.GenerateVideo(ctx, heygen.GenerateRequest{
		AvatarID:      s.heygenCfg.NewsflashAvatarID,
		VoiceID:       s.heygenCfg.VoiceID,
		InputText:     script,
		BackgroundURL: s.heygenCfg.BackgroundURL,
	})
	if err != nil {
		return nil, err
	}

	claimed, err := s.repo.ClaimNewsflashVideoJob(caseStudy.ID, videoID, time.Now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrNewsflashExists
	}

	return &dto.GenerateVideoResponse{
		Status:  "success",
		VideoID: videoID,
		Message: "Newsflash video generation started",
	}, nil
}

// GeneratePictoryVideo 派发故事板任务，渲染在状态轮询中二段触发
func (s *MediaService) GeneratePictoryVideo(ctx context.Context, userID, caseStudyID int64) (*dto.GeneratePictoryVideoResponse, error) {
	caseStudy, err := s.loadForDispatch(userID, caseStudyID)
	if err != nil {
		return nil, err
	}
	if caseStudy.PictoryStoryboardID != nil {
		return nil, ErrPictoryExists
	}

	story := s.ai.PictoryStory(ctx, caseStudy.FinalSummary)

	token, err := s.pictory.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	videoName := fmt.Sprintf("Case Study %d - Short Form Video", caseStudy.ID)
	storyboardJobID, err := s.pictory.CreateStoryboard(ctx, token, videoName, story)
	if err != nil {
		return nil, err
	}

	claimed, err := s.repo.ClaimStoryboardJob(caseStudy.ID, storyboardJobID, time.Now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrPictoryExists
	}

	return &dto.GeneratePictoryVideoResponse{
		Status:          "success",
		StoryboardJobID: storyboardJobID,
		Message:         "Pictory video storyboard creation started",
	}, nil
}

// GeneratePodcast 派发播客任务。上次失败的任务先重置再重新派发
func (s *MediaService) GeneratePodcast(ctx context.Context, userID, caseStudyID int64) (*dto.GeneratePodcastResponse, error) {
	caseStudy, err := s.loadForDispatch(userID, caseStudyID)
	if err != nil {
		return nil, err
	}

	if caseStudy.PodcastStatus == model.MediaStatusFailed {
		if err := s.repo.ResetPodcast(caseStudy.ID); err != nil {
			return nil, err
		}
		caseStudy.PodcastJobID = nil
	}
	if caseStudy.PodcastJobID != nil {
		return nil, ErrPodcastExists
	}

	prompt := s.ai.PodcastPrompt(ctx, caseStudy.FinalSummary)

	jobID, err := s.wondercraft.CreatePodcast(ctx, prompt, s.voiceIDs)
	if err != nil {
		return nil, err
	}

	claimed, err := s.repo.ClaimPodcastJob(caseStudy.ID, jobID, time.Now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrPodcastExists
	}

	return &dto.GeneratePodcastResponse{
		Status:  "success",
		JobID:   jobID,
		Message: "Podcast generation started",
	}, nil
}

// CheckVideoStatus 轮询 HeyGen 视频任务并落库。
// 供应商 404 视为任务尚未就绪，不改动任何状态
func (s *MediaService) CheckVideoStatus(ctx context.Context, videoID string) (*dto.VideoStatusResponse, error) {
	status, err := s.heygen.CheckStatus(ctx, videoID)
	if err != nil {
		if errors.Is(err, provider.ErrNotReady) {
			return &dto.VideoStatusResponse{
				Status:  model.MediaStatusNotReady,
				Message: "Video not ready yet",
			}, nil
		}
		return nil, err
	}

	caseStudy, isNewsflash, err := s.repo.GetByVideoID(videoID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	statusCol, urlCol, mediaType := "video_status", "video_url", "video"
	if isNewsflash {
		statusCol, urlCol, mediaType = "newsflash_video_status", "newsflash_video_url", "newsflash_video"
	}

	switch status.Status {
	case model.MediaStatusCompleted:
		if status.VideoURL == "" {
			if caseStudy != nil {
				if err := s.repo.UpdateFields(caseStudy.ID, map[string]interface{}{statusCol: status.Status}); err != nil {
					return nil, err
				}
			}
			return &dto.VideoStatusResponse{
				Status:  model.MediaStatusCompleted,
				Message: "Video completed but URL not available yet",
			}, nil
		}
		if caseStudy != nil {
			if err := s.repo.UpdateFields(caseStudy.ID, map[string]interface{}{
				statusCol: status.Status,
				urlCol:    status.VideoURL,
			}); err != nil {
				return nil, err
			}
			s.notify(caseStudy, mediaType, model.MediaStatusCompleted, status.VideoURL)
			s.archive(caseStudy, mediaType, urlCol, status.VideoURL)
		}
		return &dto.VideoStatusResponse{
			Status:   model.MediaStatusCompleted,
			VideoURL: status.VideoURL,
		}, nil

	case model.MediaStatusFailed:
		if caseStudy != nil {
			if err := s.repo.UpdateFields(caseStudy.ID, map[string]interface{}{statusCol: status.Status}); err != nil {
				return nil, err
			}
			s.notify(caseStudy, mediaType, model.MediaStatusFailed, "")
		}
		message := "Video generation failed"
		if status.Error != "" {
			message = fmt.Sprintf("Video generation failed: %s", status.Error)
		}
		return &dto.VideoStatusResponse{
			Status:  model.MediaStatusFailed,
			Message: message,
		}, nil

	case model.MediaStatusProcessing, model.MediaStatusPending:
		if caseStudy != nil {
			if err := s.repo.UpdateFields(caseStudy.ID, map[string]interface{}{statusCol: status.Status}); err != nil {
				return nil, err
			}
		}
		return &dto.VideoStatusResponse{
			Status:  status.Status,
			Message: "Video is being processed",
		}, nil

	default:
		// 未知状态也原样落库，客户端据此决定是否继续轮询
		if caseStudy != nil {
			if err := s.repo.UpdateFields(caseStudy.ID, map[string]interface{}{statusCol: status.Status}); err != nil {
				return nil, err
			}
		}
		return &dto.VideoStatusResponse{
			Status:  status.Status,
			Message: fmt.Sprintf("Video is %s", status.Status),
		}, nil
	}
}

// CheckPictoryStatus 轮询 Pictory 两段式任务。
// 故事板完成后恰好创建一次渲染任务，之后轮询渲染任务
func (s *MediaService) CheckPictoryStatus(ctx context.Context, storyboardJobID string) (*dto.PictoryVideoStatusResponse, error) {
	token, err := s.pictory.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	storyboard, err := s.pictory.JobStatus(ctx, token, storyboardJobID)
	if err != nil {
		if errors.Is(err, provider.ErrNotReady) {
			return &dto.PictoryVideoStatusResponse{
				Status:  model.MediaStatusNotReady,
				Message: "Storyboard not ready yet",
			}, nil
		}
		return nil, err
	}

	caseStudy, err := s.repo.GetByStoryboardID(storyboardJobID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		caseStudy = nil
	}

	// 故事板完成且可渲染：触发渲染，条件更新保证只创建一次
	if storyboard.Status == model.MediaStatusCompleted && len(storyboard.RenderParams) > 0 &&
		caseStudy != nil && caseStudy.PictoryRenderID == nil {
		renderJobID, err := s.pictory.RenderVideo(ctx, token, storyboardJobID)
		if err != nil {
			return nil, err
		}

		claimed, err := s.repo.ClaimRenderJob(caseStudy.ID, renderJobID)
		if err != nil {
			return nil, err
		}
		if claimed {
			s.notify(caseStudy, "pictory_video", model.MediaStatusRendering, "")
			return &dto.PictoryVideoStatusResponse{
				Status:      model.MediaStatusRendering,
				RenderJobID: renderJobID,
				Message:     "Video rendering started",
			}, nil
		}
		// 并发轮询抢先创建了渲染任务，重新读取后继续走渲染分支
		caseStudy, err = s.repo.GetByStoryboardID(storyboardJobID)
		if err != nil {
			return nil, err
		}
	}

	// 部分模板的故事板完成时直接携带成片 URL
	if storyboard.Status == model.MediaStatusCompleted && storyboard.VideoURL != "" && caseStudy != nil {
		if err := s.repo.UpdateFields(caseStudy.ID, map[string]interface{}{
			"pictory_video_url":    storyboard.VideoURL,
			"pictory_video_status": model.MediaStatusCompleted,
		}); err != nil {
			return nil, err
		}
		s.notify(caseStudy, "pictory_video", model.MediaStatusCompleted, storyboard.VideoURL)
		s.archive(caseStudy, "pictory_video", "pictory_video_url", storyboard.VideoURL)
		return &dto.PictoryVideoStatusResponse{
			Status:   model.MediaStatusCompleted,
			VideoURL: storyboard.VideoURL,
			Message:  "Video is ready",
		}, nil
	}

	if caseStudy != nil && caseStudy.PictoryRenderID != nil {
		return s.checkRenderStatus(ctx, token, caseStudy)
	}

	return &dto.PictoryVideoStatusResponse{
		Status:  storyboard.Status,
		Message: fmt.Sprintf("Storyboard is %s", storyboard.Status),
	}, nil
}

func (s *MediaService) checkRenderStatus(ctx context.Context, token string, caseStudy *model.CaseStudy) (*dto.PictoryVideoStatusResponse, error) {
	render, err := s.pictory.JobStatus(ctx, token, *caseStudy.PictoryRenderID)
	if err != nil {
		if errors.Is(err, provider.ErrNotReady) {
			return &dto.PictoryVideoStatusResponse{
				Status:  model.MediaStatusRendering,
				Message: "Video is rendering",
			}, nil
		}
		return nil, err
	}

	switch render.Status {
	case model.MediaStatusCompleted:
		videoURL := render.VideoResultURL()
		if videoURL == "" {
			return nil, ErrNoResultURL
		}
		if err := s.repo.UpdateFields(caseStudy.ID, map[string]interface{}{
			"pictory_video_url":    videoURL,
			"pictory_video_status": model.MediaStatusCompleted,
		}); err != nil {
			return nil, err
		}
		s.notify(caseStudy, "pictory_video", model.MediaStatusCompleted, videoURL)
		s.archive(caseStudy, "pictory_video", "pictory_video_url", videoURL)
		return &dto.PictoryVideoStatusResponse{
			Status:   model.MediaStatusCompleted,
			VideoURL: videoURL,
			Message:  "Video is ready",
		}, nil

	case model.MediaStatusFailed:
		if err := s.repo.UpdateFields(caseStudy.ID, map[string]interface{}{
			"pictory_video_status": model.MediaStatusFailed,
		}); err != nil {
			return nil, err
		}
		s.notify(caseStudy, "pictory_video", model.MediaStatusFailed, "")
		return nil, ErrRenderFailed

	default:
		return &dto.PictoryVideoStatusResponse{
			Status:  model.MediaStatusRendering,
			Message: fmt.Sprintf("Video is %s", render.Status),
		}, nil
	}
}

// CheckPodcastStatus 轮询 Wondercraft 播客任务。
// 完成时顺带拉取音频字节落库，拉取失败只保留外链
func (s *MediaService) CheckPodcastStatus(ctx context.Context, jobID string) (*dto.PodcastStatusResponse, error) {
	job, err := s.wondercraft.CheckStatus(ctx, jobID)
	if err != nil {
		if errors.Is(err, provider.ErrNotReady) {
			return &dto.PodcastStatusResponse{
				Status:  model.MediaStatusNotReady,
				Message: "Podcast not ready yet",
			}, nil
		}
		return nil, err
	}

	caseStudy, err := s.repo.GetByPodcastJobID(jobID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		caseStudy = nil
	}

	if job.Finished && !job.Error && job.URL != "" {
		if caseStudy != nil {
			fields := map[string]interface{}{
				"podcast_status": model.MediaStatusCompleted,
				"podcast_url":    job.URL,
				"podcast_script": job.Script,
			}
			if data, mime, err := s.wondercraft.FetchAudio(ctx, job.URL); err == nil {
				fields["podcast_audio_data"] = data
				fields["podcast_audio_mime"] = mime
				fields["podcast_audio_size"] = len(data)
			} else {
				log.Printf("CheckPodcastStatus audio fetch failed for job %s: %v", jobID, err)
			}
			if err := s.repo.UpdateFields(caseStudy.ID, fields); err != nil {
				return nil, err
			}
			s.notify(caseStudy, "podcast", model.MediaStatusCompleted, job.URL)
		}
		return &dto.PodcastStatusResponse{
			Status:  model.MediaStatusCompleted,
			URL:     job.URL,
			Script:  job.Script,
			Message: "Podcast generation completed",
		}, nil
	}

	if job.Finished && job.Error {
		if caseStudy != nil {
			if err := s.repo.UpdateFields(caseStudy.ID, map[string]interface{}{
				"podcast_status": model.MediaStatusFailed,
			}); err != nil {
				return nil, err
			}
			s.notify(caseStudy, "podcast", model.MediaStatusFailed, "")
		}
		return &dto.PodcastStatusResponse{
			Status:  model.MediaStatusFailed,
			Message: "Podcast generation failed",
		}, nil
	}

	return &dto.PodcastStatusResponse{
		Status:  model.MediaStatusProcessing,
		Message: "Podcast is being generated",
	}, nil
}

// AudioSource 播客音频来源，优先数据库字节
type AudioSource struct {
	Data   []byte
	Mime   string
	Size   int
	FromDB bool
}

// PodcastAudio 取播客音频。数据库有字节直接返回，
// 否则同步回源 podcast_url 拉取
func (s *MediaService) PodcastAudio(ctx context.Context, caseStudyID int64) (*AudioSource, error) {
	caseStudy, err := s.repo.GetByID(caseStudyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPodcastNotFound
		}
		return nil, err
	}

	if len(caseStudy.PodcastAudioData) > 0 {
		mime := caseStudy.PodcastAudioMime
		if mime == "" {
			mime = "audio/mpeg"
		}
		size := caseStudy.PodcastAudioSize
		if size == 0 {
			size = len(caseStudy.PodcastAudioData)
		}
		return &AudioSource{
			Data:   caseStudy.PodcastAudioData,
			Mime:   mime,
			Size:   size,
			FromDB: true,
		}, nil
	}

	if caseStudy.PodcastURL == "" {
		return nil, ErrPodcastNotFound
	}

	data, mime, err := s.wondercraft.FetchAudio(ctx, caseStudy.PodcastURL)
	if err != nil {
		log.Printf("PodcastAudio fetch failed for case study %d: %v", caseStudyID, err)
		return nil, ErrAudioFetchFailed
	}

	return &AudioSource{
		Data: data,
		Mime: mime,
		Size: len(data),
	}, nil
}

func (s *MediaService) notify(caseStudy *model.CaseStudy, mediaType, status, resultURL string) {
	if s.hub == nil {
		return
	}
	s.hub.NotifyMediaStatus(caseStudy.UserID, ws.MediaStatusEvent{
		CaseStudyID: caseStudy.ID,
		MediaType:   mediaType,
		Status:      status,
		ResultURL:   resultURL,
	})
}

// archive 异步把成片转存 OSS，成功后覆盖结果 URL。
// 供应商外链会过期，归档失败不影响本次轮询结果
func (s *MediaService) archive(caseStudy *model.CaseStudy, mediaType, urlCol, sourceURL string) {
	if s.archiver == nil {
		return
	}
	id := caseStudy.ID
	go func() {
		archivedURL, err := s.archiver.ArchiveVideo(id, mediaType, sourceURL)
		if err != nil {
			log.Printf("archive %s for case study %d failed: %v", mediaType, id, err)
			return
		}
		if err := s.repo.UpdateFields(id, map[string]interface{}{urlCol: archivedURL}); err != nil {
			log.Printf("archive %s for case study %d: update url failed: %v", mediaType, id, err)
		}
	}()
}
