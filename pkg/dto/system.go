package dto

import (
	"encoding/json"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
)

type CreateSystemRequest struct {
	OwnerID    string `json:"user_id" binding:"required"`
	SystemName string `json:"system_name" binding:"required"`
}

type SystemResponse struct {
	ID                int64              `json:"id"`
	OwnerID           string             `json:"owner_id"`
	SystemName        string             `json:"system_name"`
	RoomCode          *string            `json:"room_code,omitempty"`
	Alert             bool               `json:"alert"`
	MonitoredImageURL *string            `json:"monitored_image_url,omitempty"`
	MonitoredData     json.RawMessage    `json:"monitored_data,omitempty"`
	Faces             []models.FaceEntry `json:"faces"`
	CreatedAt         string             `json:"created_at"`
	UpdatedAt         string             `json:"updated_at"`
}

type RoomCodeRequest struct {
	RoomCode string `json:"room_code" binding:"required"`
}

// AlertRequest addresses the system either directly or by room code; exactly
// like a capture request.
type AlertRequest struct {
	SystemID    any    `json:"system_id"`
	RoomCode    string `json:"room_code"`
	AlertStatus *bool  `json:"alert_status" binding:"required"`
}

type AddFaceRequest struct {
	SystemID     any    `json:"system_id" binding:"required"`
	FaceBase64   string `json:"face_base64" binding:"required"`
	NameOfPerson string `json:"name_of_person" binding:"required"`
}

type RemoveFaceRequest struct {
	SystemID any `json:"system_id" binding:"required"`
	FaceID   any `json:"face_id" binding:"required"`
}
