package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/casecraft/casecraft_server/internal/api/middleware"
	"github.com/casecraft/casecraft_server/internal/model/dto"
	"github.com/casecraft/casecraft_server/internal/pkg/response"
	"github.com/casecraft/casecraft_server/internal/provider"
	"github.com/casecraft/casecraft_server/internal/service"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
	}
}

// GenerateVideo 派发 1 分钟数字人视频任务
// POST /api/generate_video
func (h *MediaHandler) GenerateVideo(c *gin.Context) {
	h.dispatch(c, func(userID, caseStudyID int64) (interface{}, error) {
		return h.mediaService.GenerateVideo(c.Request.Context(), userID, caseStudyID)
	})
}

// GenerateNewsflashVideo 派发 30 秒快讯视频任务
// POST /api/generate_newsflash_video
func (h *MediaHandler) GenerateNewsflashVideo(c *gin.Context) {
	h.dispatch(c, func(userID, caseStudyID int64) (interface{}, error) {
		return h.mediaService.GenerateNewsflashVideo(c.Request.Context(), userID, caseStudyID)
	})
}

// GeneratePictoryVideo 派发 Pictory 故事板任务
// POST /api/generate_pictory_video
func (h *MediaHandler) GeneratePictoryVideo(c *gin.Context) {
	h.dispatch(c, func(userID, caseStudyID int64) (interface{}, error) {
		return h.mediaService.GeneratePictoryVideo(c.Request.Context(), userID, caseStudyID)
	})
}

// GeneratePodcast 派发播客任务
// POST /api/generate_podcast
func (h *MediaHandler) GeneratePodcast(c *gin.Context) {
	h.dispatch(c, func(userID, caseStudyID int64) (interface{}, error) {
		return h.mediaService.GeneratePodcast(c.Request.Context(), userID, caseStudyID)
	})
}

func (h *MediaHandler) dispatch(c *gin.Context, fn func(userID, caseStudyID int64) (interface{}, error)) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.GenerateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Case study ID is required")
		return
	}

	resp, err := fn(userID, req.CaseStudyID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VideoStatus 查询 HeyGen 视频任务状态
// GET /api/video_status/:video_id
func (h *MediaHandler) VideoStatus(c *gin.Context) {
	videoID := c.Param("video_id")
	if videoID == "" {
		response.ParamError(c, "Video ID is required")
		return
	}

	resp, err := h.mediaService.CheckVideoStatus(c.Request.Context(), videoID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PictoryVideoStatus 查询 Pictory 任务状态
// GET /api/pictory_video_status/:storyboard_job_id
func (h *MediaHandler) PictoryVideoStatus(c *gin.Context) {
	storyboardJobID := c.Param("storyboard_job_id")
	if storyboardJobID == "" {
		response.ParamError(c, "Storyboard job ID is required")
		return
	}

	resp, err := h.mediaService.CheckPictoryStatus(c.Request.Context(), storyboardJobID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PodcastStatus 查询播客任务状态
// GET /api/podcast_status/:job_id
func (h *MediaHandler) PodcastStatus(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		response.ParamError(c, "Job ID is required")
		return
	}

	resp, err := h.mediaService.CheckPodcastStatus(c.Request.Context(), jobID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PodcastAudio 播客音频代理，前端 audio 元素直接访问，无认证。
// GET /api/podcast_audio/:case_study_id
func (h *MediaHandler) PodcastAudio(c *gin.Context) {
	caseStudyID, err := strconv.ParseInt(c.Param("case_study_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid case study ID")
		return
	}

	audio, err := h.mediaService.PodcastAudio(c.Request.Context(), caseStudyID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPodcastNotFound):
			response.NotFoundError(c, "Podcast not found")
		case errors.Is(err, service.ErrAudioFetchFailed):
			response.ServerError(c, "Failed to fetch audio file")
		default:
			response.ServerError(c, "")
		}
		return
	}

	setAudioCORSHeaders(c)
	c.Header("Content-Length", strconv.Itoa(audio.Size))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "public, max-age=3600")
	if audio.FromDB {
		c.Header("X-Audio-Source", "database")
	}

	c.Data(http.StatusOK, audio.Mime, audio.Data)
}

// PodcastAudioOptions CORS 预检
// OPTIONS /api/podcast_audio/:case_study_id
func (h *MediaHandler) PodcastAudioOptions(c *gin.Context) {
	setAudioCORSHeaders(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func setAudioCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Range, Content-Type")
}

// handleError 媒体错误映射：供应商错误透传状态码，业务错误映射语义状态码
func (h *MediaHandler) handleError(c *gin.Context, err error) {
	if providerErr, ok := provider.AsError(err); ok {
		response.UpstreamError(c, providerErr.StatusCode, providerErr.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrCaseStudyNotFound):
		response.NotFoundError(c, "Case study not found")
	case errors.Is(err, service.ErrNotOwner):
		response.PermissionError(c, "")
	case errors.Is(err, service.ErrSummaryRequired):
		response.ParamError(c, "Final summary is required for media generation")
	case errors.Is(err, service.ErrVideoExists):
		response.ConflictError(c, "A video has already been generated for this case study.")
	case errors.Is(err, service.ErrNewsflashExists):
		response.ConflictError(c, "A newsflash video has already been generated for this case study.")
	case errors.Is(err, service.ErrPictoryExists):
		response.ConflictError(c, "A Pictory video has already been generated for this case study.")
	case errors.Is(err, service.ErrPodcastExists):
		response.ConflictError(c, "A podcast has already been generated for this case study.")
	case errors.Is(err, service.ErrNoResultURL):
		response.ServerError(c, "Video completed but no URL found")
	case errors.Is(err, service.ErrRenderFailed):
		response.ServerError(c, "Video rendering failed")
	default:
		response.ServerError(c, "")
	}
}
