package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/aura-backend/internal/domain"
	httpH "github.com/yungbote/aura-backend/internal/http/handlers"
	httpMW "github.com/yungbote/aura-backend/internal/http/middleware"
	"github.com/yungbote/aura-backend/internal/observability"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

const serviceName = "aura-api"

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	CORSOrigins        []string
	// TwilioAuthToken enables signature checks on /hooks/sms/status.
	TwilioAuthToken    string
	PublicBaseURL      string
	// VoiceWebhookSecret enables signature checks on /hooks/voice/status.
	VoiceWebhookSecret string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler *httpH.HealthHandler
	ChatHandler   *httpH.ChatHandler
	AlertHandler  *httpH.AlertHandler
	HookHandler   *httpH.HookHandler
	StreamHandler *httpH.StreamHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Provider callbacks (no user auth)
	if cfg.HookHandler != nil {
		hooks := r.Group("/hooks")
		hooks.POST("/voice/status", httpMW.VoiceSignature(cfg.Log, cfg.VoiceWebhookSecret, nil), cfg.HookHandler.VoiceStatus)
		hooks.POST("/sms/status", httpMW.TwilioSignature(cfg.Log, cfg.TwilioAuthToken, cfg.PublicBaseURL), cfg.HookHandler.SMSStatus)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	patient := api.Group("/")
	patient.Use(httpMW.RequireRole(types.RolePatient))
	{
		if cfg.ChatHandler != nil {
			patient.POST("/chat", cfg.ChatHandler.Chat)
		}
		if cfg.AlertHandler != nil {
			patient.GET("/me/doctor", cfg.AlertHandler.MyDoctor)
		}
	}

	doctor := api.Group("/")
	doctor.Use(httpMW.RequireRole(types.RoleDoctor))
	{
		if cfg.StreamHandler != nil {
			doctor.GET("/alerts/stream", cfg.StreamHandler.AlertStream)
		}
		if cfg.AlertHandler != nil {
			doctor.GET("/alerts", cfg.AlertHandler.ListAlerts)
			doctor.GET("/alerts/:id/notifications", cfg.AlertHandler.ListNotifications)
			doctor.POST("/alerts/:id/acknowledge", cfg.AlertHandler.Acknowledge)
			doctor.POST("/alerts/:id/resolve", cfg.AlertHandler.Resolve)
			doctor.GET("/patients/:id/mood", cfg.AlertHandler.PatientMood)
		}
	}

	return r
}
