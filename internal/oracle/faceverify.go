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
	"github.com/Sharjeelbaig/DeepVision-AI/internal/observability"
)

// Verification is the normalized verdict of one face comparison.
type Verification struct {
	IsMatch bool
	// Confidence is the verifier's reported distance: lower means more
	// similar. Shape variants without a score report 1.0 / 0.0.
	Confidence float64
	// Result carries the oracle's raw textual verdict when it produced one.
	Result string
}

// FaceVerifier compares a reference face image against a captured frame.
type FaceVerifier struct {
	url  string
	http *http.Client
}

func NewFaceVerifier(cfg config.OraclesConfig) *FaceVerifier {
	return &FaceVerifier{
		url:  cfg.FaceVerifyURL,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type verifyRequest struct {
	ReferenceURL string `json:"reference_url"`
	ImageBase64  string `json:"image_base64"`
}

// Verify submits one comparison. Transport-level failures come back as
// *RemoteError; oracle-level rejections as plain errors.
func (v *FaceVerifier) Verify(ctx context.Context, referenceURL, captureBase64 string) (Verification, error) {
	start := time.Now()
	defer func() {
		observability.OracleRequestDuration.WithLabelValues("face_verify").Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(verifyRequest{ReferenceURL: referenceURL, ImageBase64: captureBase64})
	if err != nil {
		return Verification{}, fmt.Errorf("marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return Verification{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.http.Do(req)
	if err != nil {
		return Verification{}, &RemoteError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Verification{}, &RemoteError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusBadGateway, resp.StatusCode == http.StatusGatewayTimeout:
		// The oracle could not fetch the reference asset.
		return Verification{}, &RemoteError{Err: fmt.Errorf("verifier returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))}
	case resp.StatusCode != http.StatusOK:
		return Verification{}, fmt.Errorf("verifier returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	return normalizeVerification(raw), nil
}

// normalizeVerification folds the oracle's three known response shapes into
// the Verification contract:
//
//	{isMatch, confidence}  -> passed through
//	{success, result}      -> success maps to match with confidence 1.0/0.0
//	anything else          -> free text compared against the "OK" sentinel
func normalizeVerification(raw []byte) Verification {
	var shaped struct {
		IsMatch    *bool    `json:"isMatch"`
		Confidence *float64 `json:"confidence"`
		Success    *bool    `json:"success"`
		Result     any      `json:"result"`
	}
	if err := json.Unmarshal(raw, &shaped); err == nil {
		if shaped.IsMatch != nil && shaped.Confidence != nil {
			return Verification{
				IsMatch:    *shaped.IsMatch,
				Confidence: *shaped.Confidence,
				Result:     resultText(shaped.Result),
			}
		}
		if shaped.Success != nil {
			v := Verification{IsMatch: *shaped.Success, Result: resultText(shaped.Result)}
			if v.IsMatch {
				v.Confidence = 1.0
			}
			return v
		}
	}

	text := strings.TrimSpace(string(raw))
	// The raw body may be a JSON-encoded string.
	var unquoted string
	if err := json.Unmarshal(raw, &unquoted); err == nil {
		text = strings.TrimSpace(unquoted)
	}

	v := Verification{Result: text}
	if strings.EqualFold(text, "OK") {
		v.IsMatch = true
		v.Confidence = 1.0
	}
	return v
}

func resultText(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
