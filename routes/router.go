package routes

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/controllers"
	"github.com/haidershah700/china-pakistan-connect/services"
	"github.com/haidershah700/china-pakistan-connect/utils"
)

// Paths the site's upload helpers have posted to over time.
var uploadProxyPaths = []string{
	"/.netlify/functions/upload-to-drive",
	"/.netlify/functions/create-attachment-url",
	"/functions/upload-attachment",
}

type Dependencies struct {
	Config       *config.Config
	Orchestrator *services.SubmissionOrchestrator
	Guard        services.SubmissionGuard
	ChatLinks    *services.ChatLinks
	Backend      utils.UploadBackend
	// Optional; nil disables rate limiting.
	RateLimit gin.HandlerFunc
}

func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := r.Group("/api")
	api.Use(apiCORS(cfg.Server.AllowedOriginSet()))
	if deps.RateLimit != nil {
		api.Use(deps.RateLimit)
	}
	{
		api.POST("/quotation-requests", controllers.CreateQuotationRequest(
			deps.Orchestrator, deps.Guard, controllers.QuotationLimits{
				MaxFiles:    cfg.Upload.MaxFileCount,
				MaxFileSize: cfg.Upload.MaxFileSizeBytes(),
			}))
		api.GET("/chat-links", controllers.GetChatLinks(deps.ChatLinks))
		api.GET("/chat-links/:section", controllers.GetChatLink(deps.ChatLinks))
	}

	proxy := controllers.UploadProxy(deps.Backend, controllers.UploadProxyLimits{
		MaxFiles:    cfg.Upload.ProxyMaxFiles,
		MaxFileSize: cfg.Upload.ProxyMaxFileSizeBytes(),
	})
	for _, p := range uploadProxyPaths {
		if deps.RateLimit != nil {
			r.Any(p, proxyCORSOnReject(deps.RateLimit), proxy)
		} else {
			r.Any(p, proxy)
		}
	}

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	r.NoRoute(staticOrNotFound(cfg.Server.StaticDir))

	return r
}

func apiCORS(allowedOrigins map[string]bool) gin.HandlerFunc {
	log.Printf("Allowed origins: %v", allowedOrigins)
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// proxyCORSOnReject makes a 429 from the limiter readable cross-origin.
func proxyCORSOnReject(limit gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		controllers.SetProxyCORSHeaders(c)
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		limit(c)
	}
}

// staticOrNotFound serves the built site when STATIC_DIR is set, falling
// back to index.html for client-side routes.
func staticOrNotFound(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir == "" || c.Request.Method != http.MethodGet ||
			strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		clean := filepath.Clean("/" + c.Request.URL.Path)
		file := filepath.Join(dir, filepath.FromSlash(clean))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(index)
	}
}
