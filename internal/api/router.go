package api

import (
	"github.com/gin-gonic/gin"

	"github.com/casecraft/casecraft_server/config"
	"github.com/casecraft/casecraft_server/internal/api/handler"
	"github.com/casecraft/casecraft_server/internal/api/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	caseStudyHandler *handler.CaseStudyHandler
	mediaHandler     *handler.MediaHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	caseStudyHandler *handler.CaseStudyHandler,
	mediaHandler *handler.MediaHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		caseStudyHandler: caseStudyHandler,
		mediaHandler:     mediaHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify_email", r.authHandler.VerifyEmail)
		}

		// 公开接口 - 播客音频代理（前端 audio 元素无法携带认证头）
		api.GET("/podcast_audio/:case_study_id", r.mediaHandler.PodcastAudio)
		api.OPTIONS("/podcast_audio/:case_study_id", r.mediaHandler.PodcastAudioOptions)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.GET("/auth/profile", r.authHandler.Profile)

			// 案例
			caseStudies := authenticated.Group("/case_studies")
			{
				caseStudies.POST("", r.caseStudyHandler.Create)
				caseStudies.GET("", r.caseStudyHandler.List)
				caseStudies.GET("/:id", r.caseStudyHandler.Get)
				caseStudies.PUT("/:id", r.caseStudyHandler.Update)
				caseStudies.DELETE("/:id", r.caseStudyHandler.Delete)
				caseStudies.POST("/:id/linkedin_post", r.caseStudyHandler.GenerateLinkedInPost)
			}

			// 媒体派发
			authenticated.POST("/generate_video", r.mediaHandler.GenerateVideo)
			authenticated.POST("/generate_newsflash_video", r.mediaHandler.GenerateNewsflashVideo)
			authenticated.POST("/generate_pictory_video", r.mediaHandler.GeneratePictoryVideo)
			authenticated.POST("/generate_podcast", r.mediaHandler.GeneratePodcast)

			// 媒体状态轮询
			authenticated.GET("/video_status/:video_id", r.mediaHandler.VideoStatus)
			authenticated.GET("/pictory_video_status/:storyboard_job_id", r.mediaHandler.PictoryVideoStatus)
			authenticated.GET("/podcast_status/:job_id", r.mediaHandler.PodcastStatus)
		}
	}

	return engine
}
