package http

import (
	"net/http"

	"github.com/dkeye/VoiceStats/internal/adapters/rtc"
	"github.com/dkeye/VoiceStats/internal/config"
	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/dkeye/VoiceStats/internal/metrics"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "client_token"

// FeedbackSink is the telemetry side of the HTTP surface.
type FeedbackSink interface {
	Name() domain.RoomName
	Registered() int
	SendUserFeedback(fb core.Feedback, cb core.ResultFunc)
}

// TrackControl mutes and unmutes local tracks.
type TrackControl interface {
	Tracks() []domain.Track
	SetEnabled(id domain.TrackID, on bool) error
}

// RemoteTracks reports inbound media counters.
type RemoteTracks interface {
	Snapshot() []rtc.RemoteTrackStats
}

type Deps struct {
	Binder    FeedbackSink
	Tracks    TrackControl
	Receivers RemoteTracks
	Metrics   *metrics.Metrics
}

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware keeps a per-browser token in the cookie session.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get("ct").(string)
		if token == "" {
			token = genClientToken()
			sess.Set("ct", token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("trusted proxies")
	}
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("VoiceStatsSessions", store))
	r.Use(ClientTokenMiddleware())

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) {
		resp := gin.H{"status": "ok"}
		if deps.Binder != nil {
			resp["room"] = deps.Binder.Name()
			resp["fabrics"] = deps.Binder.Registered()
		}
		c.JSON(http.StatusOK, resp)
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")

	api := r.Group("/api")

	fb := newFeedbackHandler(deps.Binder, deps.Metrics, newClientLimiter(cfg.Feedback.RatePerMinute, cfg.Feedback.Burst))
	api.POST("/feedback", fb.handle)

	tracks := &trackHandler{tracks: deps.Tracks}
	api.GET("/tracks", tracks.list)
	api.POST("/tracks/:id/disable", tracks.toggle(false))
	api.POST("/tracks/:id/enable", tracks.toggle(true))
	api.GET("/remote-tracks", func(c *gin.Context) {
		stats := []rtc.RemoteTrackStats{}
		if deps.Receivers != nil {
			stats = deps.Receivers.Snapshot()
		}
		c.JSON(http.StatusOK, gin.H{"tracks": stats})
	})

	return r
}
