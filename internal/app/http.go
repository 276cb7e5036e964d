package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	aurahttp "github.com/yungbote/aura-backend/internal/http"
	httpH "github.com/yungbote/aura-backend/internal/http/handlers"
	httpMW "github.com/yungbote/aura-backend/internal/http/middleware"
	"github.com/yungbote/aura-backend/internal/observability"
	"github.com/yungbote/aura-backend/internal/platform/envutil"
	"github.com/yungbote/aura-backend/internal/platform/logger"
	"github.com/yungbote/aura-backend/internal/platform/redisx"
)

func wireRouter(db *gorm.DB, log *logger.Logger, cfg Config, c Clients, s Services, metrics *observability.Metrics) *gin.Engine {
	log.Info("Wiring router...")
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	rc := aurahttp.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		CORSOrigins:        cfg.CORSOrigins,
		TwilioAuthToken:    envutil.String("TWILIO_AUTH_TOKEN", ""),
		PublicBaseURL:      cfg.PublicBaseURL,
		VoiceWebhookSecret: envutil.String("ELEVENLABS_WEBHOOK_SECRET", ""),
		AuthMiddleware:     httpMW.NewAuthMiddleware(log, cfg.JWTSecret, cfg.JWTIssuer),
		HealthHandler:      httpH.NewHealthHandler(db),
		ChatHandler:        httpH.NewChatHandler(s.Companion),
		AlertHandler:       httpH.NewAlertHandler(s.Alerts),
		HookHandler:        httpH.NewHookHandler(log, s.Delivery),
	}
	if c.Redis != nil {
		rc.StreamHandler = httpH.NewStreamHandler(log, redisx.NewSubscriber(log, c.Redis))
	}
	return aurahttp.NewRouter(rc)
}
