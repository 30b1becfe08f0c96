package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/capture"
	"github.com/Sharjeelbaig/DeepVision-AI/pkg/dto"
)

type CapturesHandler struct {
	pipeline *capture.Pipeline
}

func NewCapturesHandler(pipeline *capture.Pipeline) *CapturesHandler {
	return &CapturesHandler{pipeline: pipeline}
}

// Capture runs the monitored capture pipeline on one submitted frame and
// returns the merged detection payload.
func (h *CapturesHandler) Capture(c *gin.Context) {
	var req dto.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := h.pipeline.Run(c.Request.Context(), capture.Request{
		SystemID:    req.SystemID,
		RoomCode:    req.RoomCode,
		ImageBase64: req.ImageBase64,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payload})
}

// statusForError maps pipeline error kinds to transport status codes.
func statusForError(err error) int {
	switch capture.KindOf(err) {
	case capture.KindInvalidArgument:
		return http.StatusBadRequest
	case capture.KindNotFound:
		return http.StatusNotFound
	case capture.KindRemoteFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
