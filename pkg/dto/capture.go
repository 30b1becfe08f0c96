package dto

import "encoding/json"

// CaptureRequest submits one frame for the monitored capture pipeline.
// Either system_id or room_code addresses the target system.
type CaptureRequest struct {
	SystemID    any    `json:"system_id"`
	RoomCode    string `json:"room_code"`
	ImageBase64 string `json:"base64_image"`
}

// WSEvent is a WebSocket message for real-time monitor delivery.
type WSEvent struct {
	Type      string          `json:"type"` // capture, alert
	SystemID  int64           `json:"system_id"`
	ImageURL  string          `json:"image_url,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Alert     *bool           `json:"alert,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}
