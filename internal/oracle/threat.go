package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/config"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/observability"
)

// ResultKind discriminates the shapes a threat-detector response can take.
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultList
	ResultObject
)

// Result is the threat detector's output as a tagged union: a list of
// labeled regions, a single region record, or nothing recognizable.
type Result struct {
	Kind   ResultKind
	List   []models.Detection
	Object *models.Detection
}

// ThreatDetector asks the zero-shot detector to judge a frame against the
// configured candidate labels.
type ThreatDetector struct {
	url       string
	labels    []string
	threshold float64
	http      *http.Client
}

func NewThreatDetector(cfg config.OraclesConfig) *ThreatDetector {
	return &ThreatDetector{
		url:       cfg.ThreatDetectURL,
		labels:    cfg.CandidateLabels,
		threshold: cfg.DetectionThreshold,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
}

type detectRequest struct {
	ImageBase64     string   `json:"image_base64"`
	CandidateLabels []string `json:"candidate_labels"`
	Threshold       float64  `json:"threshold"`
}

// Detect runs threat detection on one frame. Transport-level failures come
// back as *RemoteError.
func (t *ThreatDetector) Detect(ctx context.Context, imageBase64 string) (Result, error) {
	start := time.Now()
	defer func() {
		observability.OracleRequestDuration.WithLabelValues("threat_detect").Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(detectRequest{
		ImageBase64:     imageBase64,
		CandidateLabels: t.labels,
		Threshold:       t.threshold,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal detect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return Result{}, &RemoteError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &RemoteError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("detector returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	return ParseResult(raw), nil
}

// ParseResult classifies a detector response body into the Result union.
// Bodies that are neither a detection list nor a single record come back as
// ResultNone rather than an error: the merge step has a defined shape for
// them.
func ParseResult(raw []byte) Result {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Result{Kind: ResultNone}
	}

	switch trimmed[0] {
	case '[':
		var list []models.Detection
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return Result{Kind: ResultNone}
		}
		if list == nil {
			list = []models.Detection{}
		}
		return Result{Kind: ResultList, List: list}
	case '{':
		var obj models.Detection
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return Result{Kind: ResultNone}
		}
		return Result{Kind: ResultObject, Object: &obj}
	default:
		return Result{Kind: ResultNone}
	}
}
