package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	// Frame payloads are JPEG in practice but PNG captures show up from
	// browser canvases.
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/observability"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/oracle"
)

// Pipeline runs the monitored capture flow for one frame:
// resolve → decode → upload → detect + match → merge → persist.
//
// Each run is one independent unit of work; there are no retries and no
// rollback of completed steps. All collaborators are injected so tests can
// double them.
type Pipeline struct {
	store     SystemStore
	objects   ObjectStore
	verifier  FaceVerifier
	detector  ThreatDetector
	publisher Publisher
	resolver  *Resolver
}

func NewPipeline(store SystemStore, objects ObjectStore, verifier FaceVerifier, detector ThreatDetector, publisher Publisher) *Pipeline {
	return &Pipeline{
		store:     store,
		objects:   objects,
		verifier:  verifier,
		detector:  detector,
		publisher: publisher,
		resolver:  NewResolver(store),
	}
}

// Resolver exposes the pipeline's system resolver for operations that share
// its addressing (the alert toggle).
func (p *Pipeline) Resolver() *Resolver {
	return p.resolver
}

// Run processes one capture request end to end and returns the merged
// detection payload. The alert flag is never touched here; alerting is a
// separate explicit operation.
func (p *Pipeline) Run(ctx context.Context, req Request) (models.Payload, error) {
	var zero models.Payload

	if strings.TrimSpace(req.ImageBase64) == "" {
		return zero, newError(KindInvalidArgument, "base64_image required")
	}

	resolved, err := p.resolver.Resolve(ctx, req.SystemID, req.RoomCode)
	if err != nil {
		observability.CaptureFailures.WithLabelValues(KindOf(err).String()).Inc()
		return zero, err
	}
	systemID, ok := resolved.Int()
	if !ok {
		observability.CaptureFailures.WithLabelValues(KindInvalidArgument.String()).Inc()
		return zero, newError(KindInvalidArgument, "invalid system_id")
	}

	frameBase64 := NormalizeBase64Payload(req.ImageBase64)
	frame, err := decodeFrame(frameBase64)
	if err != nil {
		observability.CaptureFailures.WithLabelValues(KindDecodeFailed.String()).Inc()
		return zero, wrapError(KindDecodeFailed, "decode frame", err)
	}

	// Upload before any detection: nothing is judged on an unpersisted frame.
	start := time.Now()
	imageURL, err := p.objects.UploadCapture(ctx, systemID, frame, "image/jpeg")
	observability.CaptureStageDuration.WithLabelValues("upload").Observe(time.Since(start).Seconds())
	if err != nil {
		observability.CaptureFailures.WithLabelValues(KindUploadFailed.String()).Inc()
		return zero, wrapError(KindUploadFailed, "upload monitored image", err)
	}

	if imageURL != "" {
		// Best-effort: a failed URL write must not fail the capture.
		if err := p.store.SetMonitoredImageURL(ctx, systemID, imageURL); err != nil {
			slog.Warn("persist monitored image url", "system_id", systemID, "error", err)
		}
	}

	// Threat detection and the face-match batch have no data dependency on
	// each other; run both at once.
	var (
		wg        sync.WaitGroup
		detection oracle.Result
		detectErr error
		matches   []models.MatchResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		detection, detectErr = p.detector.Detect(ctx, frameBase64)
		observability.CaptureStageDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		matches = MatchAll(ctx, p.verifier, p.fetchRoster(ctx, systemID), frameBase64)
		observability.CaptureStageDuration.WithLabelValues("match").Observe(time.Since(start).Seconds())
	}()
	wg.Wait()

	if detectErr != nil {
		var remote *oracle.RemoteError
		if errors.As(detectErr, &remote) {
			observability.CaptureFailures.WithLabelValues(KindRemoteFetch.String()).Inc()
			return zero, wrapError(KindRemoteFetch, "threat detection", detectErr)
		}
		observability.CaptureFailures.WithLabelValues(KindInternal.String()).Inc()
		return zero, wrapError(KindInternal, "threat detection", detectErr)
	}

	payload := Merge(detection, matches)

	data, err := json.Marshal(payload)
	if err != nil {
		return zero, wrapError(KindInternal, "encode detection payload", err)
	}
	if err := p.store.SetMonitoredData(ctx, systemID, data); err != nil {
		observability.CaptureFailures.WithLabelValues(KindInternal.String()).Inc()
		return zero, wrapError(KindInternal, "persist monitored data", err)
	}

	p.publish(ctx, systemID, imageURL, data, matches)
	observability.CapturesProcessed.WithLabelValues(strconv.FormatInt(systemID, 10)).Inc()

	return payload, nil
}

// fetchRoster returns the system's registered faces. Roster-read problems
// never abort a capture: the run proceeds with zero comparisons instead.
func (p *Pipeline) fetchRoster(ctx context.Context, systemID int64) []models.FaceEntry {
	roster, err := p.store.GetRoster(ctx, systemID)
	if err != nil {
		slog.Warn("fetch roster", "system_id", systemID, "error", err)
		return nil
	}
	return roster
}

func (p *Pipeline) publish(ctx context.Context, systemID int64, imageURL string, payload json.RawMessage, matches []models.MatchResult) {
	if p.publisher == nil {
		return
	}
	captureID := uuid.New()
	event := models.MonitorEvent{
		Type:      "capture",
		SystemID:  systemID,
		CaptureID: &captureID,
		ImageURL:  imageURL,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	if err := p.publisher.PublishEvent(ctx, event); err != nil {
		slog.Warn("publish capture event", "system_id", systemID, "error", err)
	}
}

// NormalizeBase64Payload strips data-URI metadata ("data:image/...;base64,")
// and surrounding whitespace, returning a pure base64 string.
func NormalizeBase64Payload(imageData string) string {
	_, after, found := strings.Cut(imageData, ",")
	if found && strings.TrimSpace(after) != "" {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(imageData)
}

// decodeFrame decodes the base64 payload and checks it holds a readable
// image before anything is uploaded or judged.
func decodeFrame(b64 string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return data, nil
}
