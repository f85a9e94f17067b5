package http

import (
	"net/http"

	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type feedbackRequest struct {
	UserID  string `json:"userID"`
	Overall int    `json:"overall"`
	Audio   int    `json:"audio"`
	Video   int    `json:"video"`
	Comment string `json:"comment"`
}

func validRating(v int, optional bool) bool {
	if optional && v == 0 {
		return true
	}
	return v >= 1 && v <= 5
}

type feedbackHandler struct {
	sink    FeedbackSink
	metrics *metrics.Metrics
	limiter *clientLimiter
}

func newFeedbackHandler(sink FeedbackSink, m *metrics.Metrics, l *clientLimiter) *feedbackHandler {
	return &feedbackHandler{sink: sink, metrics: m, limiter: l}
}

// handle accepts a rating and forwards it without waiting for the monitor.
func (h *feedbackHandler) handle(c *gin.Context) {
	if h.sink == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no session"})
		return
	}
	token := c.GetString(clientTokenKey)
	if !h.limiter.Allow(c.ClientIP()) {
		if h.metrics != nil {
			h.metrics.FeedbackRateLimited()
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many feedback submissions"})
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}
	if !validRating(req.Overall, false) || !validRating(req.Audio, true) || !validRating(req.Video, true) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ratings must be between 1 and 5"})
		return
	}
	if req.UserID == "" {
		req.UserID = token
	}

	fb := core.Feedback{
		UserID:             req.UserID,
		OverallRating:      req.Overall,
		AudioQualityRating: req.Audio,
		VideoQualityRating: req.Video,
		Comment:            req.Comment,
	}
	h.sink.SendUserFeedback(fb, func(err error) {
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Str("user", fb.UserID).Msg("feedback failed")
		}
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
