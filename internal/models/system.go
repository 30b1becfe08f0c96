package models

import (
	"encoding/json"
	"time"
)

// System is one monitored camera endpoint: its roster of registered faces,
// its shareable room code, its alert flag, and the products of its most
// recent capture.
type System struct {
	ID                int64           `json:"id" db:"id"`
	OwnerID           string          `json:"owner_id" db:"owner_id"`
	SystemName        string          `json:"system_name" db:"system_name"`
	RoomCode          *string         `json:"room_code,omitempty" db:"room_code"`
	Alert             bool            `json:"alert" db:"alert"`
	MonitoredImageURL *string         `json:"monitored_image_url,omitempty" db:"monitored_image_url"`
	MonitoredData     json.RawMessage `json:"monitored_data,omitempty" db:"monitored_data"`
	Faces             []FaceEntry     `json:"faces" db:"faces"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// FaceEntry is one registered face in a system's roster. Roster order is
// registration order; FaceID is unique within its system and not reused
// after deletion.
type FaceEntry struct {
	FaceID       string `json:"face_id"`
	NameOfPerson string `json:"name_of_person"`
	FaceURL      string `json:"face_url"`
}
