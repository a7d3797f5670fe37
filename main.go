package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/database"
	"github.com/haidershah700/china-pakistan-connect/logging"
	"github.com/haidershah700/china-pakistan-connect/middleware"
	"github.com/haidershah700/china-pakistan-connect/routes"
	"github.com/haidershah700/china-pakistan-connect/services"
	"github.com/haidershah700/china-pakistan-connect/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	sink := logging.Setup(cfg.Server.GELFAddr, "china-pakistan-connect")
	defer sink.Close()
	if w, ok := sink.(io.Writer); ok {
		gin.DefaultWriter = io.MultiWriter(os.Stdout, w)
	}

	ctx := context.Background()

	backend := utils.MustUploadBackend(ctx, cfg)
	if c, ok := backend.(io.Closer); ok {
		defer c.Close()
	}

	validator := utils.NewFileValidator(
		cfg.Upload.AllowedMimeTypes, cfg.Upload.MaxFileSizeBytes(), cfg.Upload.MaxFileCount)
	relay := services.NewEmailRelay(cfg.Email)
	orchestrator := services.NewSubmissionOrchestrator(
		validator,
		services.NewAttachmentUploader(backend, cfg.Upload.Parallelism),
		services.NewChatDispatcher(cfg.Chat.BaseURL, cfg.Chat.QuotationNumber),
		services.NewEmailDispatcher(relay, cfg.Email.Timeout),
		cfg.Email.SettleWait,
	)
	log.Printf("Email relay: %s (configured: %v)", relay.Name(), relay.Configured())

	var guard services.SubmissionGuard = services.NewMemoryGuard(cfg.Guard.LockTTL)
	rdb, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		log.Printf("Warning: %v; using in-process submission guard", err)
	} else if rdb != nil {
		defer rdb.Close()
		guard = services.NewRedisGuard(rdb, cfg.Guard.LockTTL)
	}

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	defer limiter.Stop()

	r := routes.SetupRouter(routes.Dependencies{
		Config:       cfg,
		Orchestrator: orchestrator,
		Guard:        guard,
		ChatLinks:    services.NewChatLinks(cfg.Chat),
		Backend:      backend,
		RateLimit:    limiter.Middleware(),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
