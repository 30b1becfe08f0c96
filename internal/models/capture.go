package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MatchResult is the outcome of comparing one roster face against a captured
// frame. When the comparison itself failed, Error is set and the result
// reports no match.
type MatchResult struct {
	FaceID       *string `json:"face_id"`
	NameOfPerson *string `json:"name_of_person"`
	FaceURL      string  `json:"face_url"`
	IsMatch      bool    `json:"isMatch"`
	// Confidence is the verifier's distance score: lower means more similar.
	// 0.0 on failed comparisons.
	Confidence float64 `json:"confidence"`
	Result     string  `json:"result,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Box is a labeled region in pixel coordinates.
type Box struct {
	XMin int `json:"xmin"`
	YMin int `json:"ymin"`
	XMax int `json:"xmax"`
	YMax int `json:"ymax"`
}

// Detection is one labeled region reported by the threat detector.
type Detection struct {
	Label *string  `json:"label"`
	Score *float64 `json:"score"`
	Box   *Box     `json:"box"`
}

// PayloadElement is one entry of the merged detection payload. The full
// match list rides on the first element only; the other elements omit the
// recognized_faces key entirely, which is why the field is a slice pointer.
type PayloadElement struct {
	Detection
	RecognizedFaces *[]MatchResult `json:"recognized_faces,omitempty"`
}

// Payload is the unified detection record persisted per capture. It marshals
// as a JSON array (list form) or as a single JSON object, matching whichever
// shape the threat detector produced.
type Payload struct {
	Elements []PayloadElement
	Object   map[string]any
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if p.Object != nil {
		return json.Marshal(p.Object)
	}
	return json.Marshal(p.Elements)
}

// MonitorEvent is the message published to NATS after a capture or an alert
// change, fanned out to dashboard WebSocket clients.
type MonitorEvent struct {
	Type      string          `json:"type"` // "capture" or "alert"
	SystemID  int64           `json:"system_id"`
	CaptureID *uuid.UUID      `json:"capture_id,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Alert     *bool           `json:"alert,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
