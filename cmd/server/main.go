package main

import (
	"fmt"
	"log"

	"github.com/casecraft/casecraft_server/config"
	"github.com/casecraft/casecraft_server/internal/api"
	"github.com/casecraft/casecraft_server/internal/api/handler"
	"github.com/casecraft/casecraft_server/internal/database"
	"github.com/casecraft/casecraft_server/internal/pkg/email"
	"github.com/casecraft/casecraft_server/internal/pkg/oss"
	"github.com/casecraft/casecraft_server/internal/pkg/ws"
	"github.com/casecraft/casecraft_server/internal/provider/heygen"
	"github.com/casecraft/casecraft_server/internal/provider/openai"
	"github.com/casecraft/casecraft_server/internal/provider/pictory"
	"github.com/casecraft/casecraft_server/internal/provider/wondercraft"
	"github.com/casecraft/casecraft_server/internal/repository"
	"github.com/casecraft/casecraft_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis（仅用于 Pictory 令牌缓存，连不上时降级为每次取新令牌）
	var tokenCache pictory.TokenCache
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, pictory token cache disabled: %v", err)
	} else {
		tokenCache = pictory.NewRedisTokenCache(rdb)
		log.Println("Redis connected")
	}

	// 初始化 OSS（未配置时跳过，成片不做归档）
	var ossClient *oss.Client
	if cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Fatalf("Failed to init OSS client: %v", err)
		}
		log.Println("OSS client initialized")
	}

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	caseStudyRepo := repository.NewCaseStudyRepository(db)

	// 初始化供应商客户端
	heygenClient := heygen.NewClient(cfg.HeyGen)
	pictoryClient := pictory.NewClient(cfg.Pictory, tokenCache)
	wondercraftClient := wondercraft.NewClient(cfg.Wondercraft)
	openaiClient := openai.NewClient(cfg.OpenAI)

	// 初始化 Service
	emailService := email.NewService(&cfg.Email)
	aiService := service.NewAIService(openaiClient)
	authService := service.NewAuthService(userRepo, cfg, emailService)
	caseStudyService := service.NewCaseStudyService(caseStudyRepo, aiService)
	mediaService := service.NewMediaService(
		caseStudyRepo,
		aiService,
		heygenClient,
		pictoryClient,
		wondercraftClient,
		cfg.HeyGen,
		cfg.Wondercraft.VoiceIDs,
		wsHub,
		ossClient,
	)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	caseStudyHandler := handler.NewCaseStudyHandler(caseStudyService)
	mediaHandler := handler.NewMediaHandler(mediaService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		caseStudyHandler,
		mediaHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
