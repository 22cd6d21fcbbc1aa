package dto

// GenerateMediaRequest 四类媒体生成共用的请求体
type GenerateMediaRequest struct {
	CaseStudyID int64 `json:"case_study_id" binding:"required"`
}

type GenerateVideoResponse struct {
	Status  string `json:"status"`
	VideoID string `json:"video_id"`
	Message string `json:"message"`
}

type VideoStatusResponse struct {
	Status   string `json:"status"`
	VideoURL string `json:"video_url,omitempty"`
	Message  string `json:"message,omitempty"`
}

type GeneratePictoryVideoResponse struct {
	Status          string `json:"status"`
	StoryboardJobID string `json:"storyboard_job_id"`
	Message         string `json:"message"`
}

type PictoryVideoStatusResponse struct {
	Status      string `json:"status"`
	VideoURL    string `json:"video_url,omitempty"`
	RenderJobID string `json:"render_job_id,omitempty"`
	Message     string `json:"message,omitempty"`
}

type GeneratePodcastResponse struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

type PodcastStatusResponse struct {
	Status  string `json:"status"`
	URL     string `json:"url,omitempty"`
	Script  string `json:"script,omitempty"`
	Message string `json:"message,omitempty"`
}
