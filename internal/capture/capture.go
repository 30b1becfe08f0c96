// Package capture implements the monitored capture aggregation pipeline:
// resolving which system a frame belongs to, verifying the frame against the
// system's face roster, running threat detection, and merging both judgments
// into the detection record persisted on the system.
package capture

import (
	"context"
	"encoding/json"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/oracle"
)

// SystemStore is the relational collaborator the pipeline reads and writes.
// *storage.PostgresStore satisfies it.
type SystemStore interface {
	FindSystemByRoomCode(ctx context.Context, code string) (*models.System, error)
	GetRoster(ctx context.Context, systemID int64) ([]models.FaceEntry, error)
	SetMonitoredImageURL(ctx context.Context, systemID int64, url string) error
	SetMonitoredData(ctx context.Context, systemID int64, data json.RawMessage) error
}

// ObjectStore persists captured frames. *storage.MinIOStore satisfies it.
type ObjectStore interface {
	UploadCapture(ctx context.Context, systemID int64, data []byte, contentType string) (string, error)
}

// FaceVerifier is the face-verification oracle boundary.
type FaceVerifier interface {
	Verify(ctx context.Context, referenceURL, captureBase64 string) (oracle.Verification, error)
}

// ThreatDetector is the threat-detection oracle boundary.
type ThreatDetector interface {
	Detect(ctx context.Context, imageBase64 string) (oracle.Result, error)
}

// Publisher emits monitor events for dashboard fan-out. Optional; a nil
// publisher disables event emission.
type Publisher interface {
	PublishEvent(ctx context.Context, event models.MonitorEvent) error
}

// Request is one submitted frame and its target system. SystemID may arrive
// as a string or a number; RoomCode is the alternate lookup key.
type Request struct {
	SystemID    any
	RoomCode    string
	ImageBase64 string
}
