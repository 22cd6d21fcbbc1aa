package dto

type CreateCaseStudyRequest struct {
	Title        string `json:"title" binding:"required,max=200"`
	FinalSummary string `json:"final_summary"`
}

type UpdateCaseStudyRequest struct {
	Title        *string `json:"title"`
	FinalSummary *string `json:"final_summary"`
}

type CaseStudyListItem struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	VideoStatus        string `json:"video_status,omitempty"`
	NewsflashStatus    string `json:"newsflash_video_status,omitempty"`
	PictoryVideoStatus string `json:"pictory_video_status,omitempty"`
	PodcastStatus      string `json:"podcast_status,omitempty"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type CaseStudyDetail struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	FinalSummary string `json:"final_summary,omitempty"`
	LinkedInPost string `json:"linkedin_post,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`

	VideoID     string `json:"video_id,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
	VideoStatus string `json:"video_status,omitempty"`

	NewsflashVideoID     string `json:"newsflash_video_id,omitempty"`
	NewsflashVideoURL    string `json:"newsflash_video_url,omitempty"`
	NewsflashVideoStatus string `json:"newsflash_video_status,omitempty"`

	PictoryStoryboardID string `json:"pictory_storyboard_id,omitempty"`
	PictoryRenderID     string `json:"pictory_render_id,omitempty"`
	PictoryVideoURL     string `json:"pictory_video_url,omitempty"`
	PictoryVideoStatus  string `json:"pictory_video_status,omitempty"`

	PodcastJobID  string `json:"podcast_job_id,omitempty"`
	PodcastURL    string `json:"podcast_url,omitempty"`
	PodcastStatus string `json:"podcast_status,omitempty"`
	PodcastScript string `json:"podcast_script,omitempty"`
}

type LinkedInPostResponse struct {
	Status       string `json:"status"`
	LinkedInPost string `json:"linkedin_post"`
	Message      string `json:"message"`
}
