package capture

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/oracle"
)

// fakeStore is a SystemStore double with per-call hooks and call counters.
type fakeStore struct {
	mu sync.Mutex

	findByRoomCode func(code string) (*models.System, error)
	getRoster      func(systemID int64) ([]models.FaceEntry, error)
	setImageURL    func(systemID int64, url string) error
	setData        func(systemID int64, data json.RawMessage) error

	roomCodeLookups int
	savedImageURL   string
	savedData       json.RawMessage
}

func (f *fakeStore) FindSystemByRoomCode(_ context.Context, code string) (*models.System, error) {
	f.mu.Lock()
	f.roomCodeLookups++
	f.mu.Unlock()
	if f.findByRoomCode == nil {
		return nil, nil
	}
	return f.findByRoomCode(code)
}

func (f *fakeStore) GetRoster(_ context.Context, systemID int64) ([]models.FaceEntry, error) {
	if f.getRoster == nil {
		return nil, nil
	}
	return f.getRoster(systemID)
}

func (f *fakeStore) SetMonitoredImageURL(_ context.Context, systemID int64, url string) error {
	f.mu.Lock()
	f.savedImageURL = url
	f.mu.Unlock()
	if f.setImageURL == nil {
		return nil
	}
	return f.setImageURL(systemID, url)
}

func (f *fakeStore) SetMonitoredData(_ context.Context, systemID int64, data json.RawMessage) error {
	f.mu.Lock()
	f.savedData = data
	f.mu.Unlock()
	if f.setData == nil {
		return nil
	}
	return f.setData(systemID, data)
}

type fakeObjects struct {
	upload  func(systemID int64, data []byte) (string, error)
	uploads int
}

func (f *fakeObjects) UploadCapture(_ context.Context, systemID int64, data []byte, _ string) (string, error) {
	f.uploads++
	if f.upload == nil {
		return "http://storage.local/captures/image.jpg", nil
	}
	return f.upload(systemID, data)
}

// fakeVerifier routes each reference URL to a canned verdict or error.
type fakeVerifier struct {
	mu      sync.Mutex
	verify  func(referenceURL string) (oracle.Verification, error)
	called  []string
}

func (f *fakeVerifier) Verify(_ context.Context, referenceURL, _ string) (oracle.Verification, error) {
	f.mu.Lock()
	f.called = append(f.called, referenceURL)
	f.mu.Unlock()
	if f.verify == nil {
		return oracle.Verification{}, nil
	}
	return f.verify(referenceURL)
}

func (f *fakeVerifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.called)
}

type fakeDetector struct {
	detect func() (oracle.Result, error)
}

func (f *fakeDetector) Detect(_ context.Context, _ string) (oracle.Result, error) {
	if f.detect == nil {
		return oracle.Result{Kind: oracle.ResultList, List: []models.Detection{}}, nil
	}
	return f.detect()
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.MonitorEvent
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, event models.MonitorEvent) error {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
	return f.err
}
