package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/VoiceStats/internal/adapters/session"
	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/gin-gonic/gin"
)

type trackHandler struct {
	tracks TrackControl
}

func (h *trackHandler) list(c *gin.Context) {
	if h.tracks == nil {
		c.JSON(http.StatusOK, gin.H{"tracks": []domain.Track{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracks": h.tracks.Tracks()})
}

func (h *trackHandler) toggle(on bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.tracks == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no session"})
			return
		}
		id := domain.TrackID(c.Param("id"))
		err := h.tracks.SetEnabled(id, on)
		switch {
		case errors.Is(err, session.ErrTrackNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "track not found"})
		case errors.Is(err, session.ErrRoomClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "room closed"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, gin.H{"id": id, "enabled": on})
		}
	}
}
