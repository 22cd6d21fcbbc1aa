package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Email       EmailConfig       `mapstructure:"email"`
	CORS        CORSConfig        `mapstructure:"cors"`
	HeyGen      HeyGenConfig      `mapstructure:"heygen"`
	Pictory     PictoryConfig     `mapstructure:"pictory"`
	Wondercraft WondercraftConfig `mapstructure:"wondercraft"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	OSS         OSSConfig         `mapstructure:"oss"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// HeyGenConfig HeyGen 数字人视频接口配置
type HeyGenConfig struct {
	APIKey            string `mapstructure:"api_key"`
	BaseURL           string `mapstructure:"base_url"`
	StatusBaseURL     string `mapstructure:"status_base_url"`
	AvatarID          string `mapstructure:"avatar_id"`
	NewsflashAvatarID string `mapstructure:"newsflash_avatar_id"`
	VoiceID           string `mapstructure:"voice_id"`
	BackgroundURL     string `mapstructure:"background_url"`
}

// PictoryConfig Pictory 故事板视频接口配置
type PictoryConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	UserID       string `mapstructure:"user_id"`
	BaseURL      string `mapstructure:"base_url"`
}

// WondercraftConfig Wondercraft 播客接口配置
type WondercraftConfig struct {
	APIKey   string   `mapstructure:"api_key"`
	BaseURL  string   `mapstructure:"base_url"`
	VoiceIDs []string `mapstructure:"voice_ids"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

func Load(configPath string) (*Config, error) {
	// 优先读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HeyGen.BaseURL == "" {
		cfg.HeyGen.BaseURL = "https://api.heygen.com/v2"
	}
	if cfg.HeyGen.StatusBaseURL == "" {
		cfg.HeyGen.StatusBaseURL = "https://api.heygen.com/v1"
	}
	if cfg.HeyGen.AvatarID == "" {
		cfg.HeyGen.AvatarID = "Giulia_sitting_sofa_front"
	}
	if cfg.HeyGen.NewsflashAvatarID == "" {
		cfg.HeyGen.NewsflashAvatarID = "Annie_Casual_Standing_Front_2_public"
	}
	if cfg.HeyGen.VoiceID == "" {
		cfg.HeyGen.VoiceID = "4754e1ec667544b0bd18cdf4bec7d6a7"
	}
	if cfg.HeyGen.BackgroundURL == "" {
		cfg.HeyGen.BackgroundURL = "https://i.postimg.cc/g0tpPn1y/background3.jpg"
	}
	if cfg.Pictory.BaseURL == "" {
		cfg.Pictory.BaseURL = "https://api.pictory.ai"
	}
	if cfg.Wondercraft.BaseURL == "" {
		cfg.Wondercraft.BaseURL = "https://api.wondercraft.ai/v1"
	}
	if len(cfg.Wondercraft.VoiceIDs) == 0 {
		cfg.Wondercraft.VoiceIDs = []string{
			"5acfb17c-dd70-4af3-b17e-750a8a312ef8",
			"331fbe9e-8efb-48f2-99d2-e81f3f7ccf84",
		}
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
}
