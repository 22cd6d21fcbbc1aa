package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/casecraft/casecraft_server/config"
)

// CORS 跨域中间件
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.AllowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
		c.Header("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			// 音频代理的预检有自己的路由，带宽松 CORS 头
			if strings.HasPrefix(c.Request.URL.Path, "/api/podcast_audio/") {
				c.Next()
				return
			}
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
