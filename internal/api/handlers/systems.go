package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/capture"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/ident"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/queue"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/storage"
	"github.com/Sharjeelbaig/DeepVision-AI/pkg/dto"
)

type SystemsHandler struct {
	db       *storage.PostgresStore
	minio    *storage.MinIOStore
	producer *queue.Producer
	resolver *capture.Resolver
}

func NewSystemsHandler(db *storage.PostgresStore, minio *storage.MinIOStore, producer *queue.Producer) *SystemsHandler {
	return &SystemsHandler{
		db:       db,
		minio:    minio,
		producer: producer,
		resolver: capture.NewResolver(db),
	}
}

func systemResponse(sys *models.System) dto.SystemResponse {
	return dto.SystemResponse{
		ID:                sys.ID,
		OwnerID:           sys.OwnerID,
		SystemName:        sys.SystemName,
		RoomCode:          sys.RoomCode,
		Alert:             sys.Alert,
		MonitoredImageURL: sys.MonitoredImageURL,
		MonitoredData:     sys.MonitoredData,
		Faces:             sys.Faces,
		CreatedAt:         sys.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         sys.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *SystemsHandler) Create(c *gin.Context) {
	var req dto.CreateSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sys, err := h.db.CreateSystem(c.Request.Context(), req.OwnerID, req.SystemName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": systemResponse(sys)})
}

func (h *SystemsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid system id"})
		return
	}

	sys, err := h.db.GetSystem(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sys == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "system not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": systemResponse(sys)})
}

func (h *SystemsHandler) List(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id query parameter required"})
		return
	}

	systems, err := h.db.ListSystemsByOwner(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.SystemResponse, 0, len(systems))
	for i := range systems {
		resp = append(resp, systemResponse(&systems[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": resp, "total": len(resp)})
}

// SetRoomCode assigns the shareable lookup code. Uniqueness is a database
// constraint; a second system claiming the same code fails here.
func (h *SystemsHandler) SetRoomCode(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid system id"})
		return
	}

	var req dto.RoomCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := strings.TrimSpace(req.RoomCode)
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_code required"})
		return
	}

	if err := h.db.SetRoomCode(c.Request.Context(), id, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "room_code": code}})
}

// Alert toggles the system's alert flag. The system is addressed directly or
// by room code, same as a capture.
func (h *SystemsHandler) Alert(c *gin.Context) {
	var req dto.AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alert_status required"})
		return
	}

	resolved, err := h.resolver.Resolve(c.Request.Context(), req.SystemID, req.RoomCode)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	id, ok := resolved.Int()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid system_id"})
		return
	}

	if err := h.db.SetAlert(c.Request.Context(), id, *req.AlertStatus); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.producer != nil {
		event := models.MonitorEvent{
			Type:      "alert",
			SystemID:  id,
			Alert:     req.AlertStatus,
			Timestamp: time.Now().UTC(),
		}
		// Best-effort fan-out; the flag is already persisted.
		_ = h.producer.PublishEvent(c.Request.Context(), event)
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "alert": *req.AlertStatus}})
}

// AddFace registers a face on the system's roster: the reference image goes
// to object storage, its public URL into the roster entry.
func (h *SystemsHandler) AddFace(c *gin.Context) {
	var req dto.AddFaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "system_id, face_base64 and name_of_person required"})
		return
	}

	id, ok := ident.Normalize(req.SystemID).Int()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid system_id"})
		return
	}

	data, err := base64.StdEncoding.DecodeString(capture.NormalizeBase64Payload(req.FaceBase64))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid face_base64"})
		return
	}

	faceID := fmt.Sprintf("%d_%s", id, req.NameOfPerson)
	faceURL, err := h.minio.UploadFaceImage(c.Request.Context(), id, faceID, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist face image"})
		return
	}

	roster, err := h.db.AddFace(c.Request.Context(), id, models.FaceEntry{
		FaceID:       faceID,
		NameOfPerson: req.NameOfPerson,
		FaceURL:      faceURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"faces": roster}})
}

// RemoveFace deletes the stored reference image first, then the roster
// entry, mirroring the registration order in reverse.
func (h *SystemsHandler) RemoveFace(c *gin.Context) {
	var req dto.RemoveFaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "system_id and face_id required"})
		return
	}

	id, ok := ident.Normalize(req.SystemID).Int()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid system_id"})
		return
	}
	faceID := ident.Normalize(req.FaceID).String()
	if faceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "face_id required"})
		return
	}

	if err := h.minio.DeleteFaceImage(c.Request.Context(), id, faceID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete face image: " + err.Error()})
		return
	}

	removed, err := h.db.RemoveFace(c.Request.Context(), id, faceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"removed": removed}})
}
