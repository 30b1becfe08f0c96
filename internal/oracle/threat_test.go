package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/config"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
)

const detectURL = "http://oracle.local/detect"

func newTestDetector(t *testing.T) *ThreatDetector {
	t.Helper()
	d := NewThreatDetector(config.OraclesConfig{
		ThreatDetectURL:    detectURL,
		CandidateLabels:    []string{"person with weapon", "normal person"},
		DetectionThreshold: 0.25,
		Timeout:            5 * time.Second,
	})
	httpmock.ActivateNonDefault(d.http)
	t.Cleanup(httpmock.DeactivateAndReset)
	return d
}

func TestDetectSendsLabelsAndThreshold(t *testing.T) {
	d := newTestDetector(t)

	httpmock.RegisterResponder(http.MethodPost, detectURL,
		func(req *http.Request) (*http.Response, error) {
			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			var got struct {
				ImageBase64     string   `json:"image_base64"`
				CandidateLabels []string `json:"candidate_labels"`
				Threshold       float64  `json:"threshold"`
			}
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, "ZnJhbWU=", got.ImageBase64)
			assert.Equal(t, []string{"person with weapon", "normal person"}, got.CandidateLabels)
			assert.InDelta(t, 0.25, got.Threshold, 1e-9)
			return httpmock.NewStringResponse(http.StatusOK,
				`[{"label":"person with weapon","score":0.81,"box":{"xmin":1,"ymin":2,"xmax":3,"ymax":4}}]`), nil
		})

	got, err := d.Detect(context.Background(), "ZnJhbWU=")
	require.NoError(t, err)
	require.Equal(t, ResultList, got.Kind)
	require.Len(t, got.List, 1)
	assert.Equal(t, "person with weapon", *got.List[0].Label)
	assert.InDelta(t, 0.81, *got.List[0].Score, 1e-9)
	assert.Equal(t, models.Box{XMin: 1, YMin: 2, XMax: 3, YMax: 4}, *got.List[0].Box)
}

func TestDetectTransportFailureIsRemoteError(t *testing.T) {
	d := newTestDetector(t)

	httpmock.RegisterResponder(http.MethodPost, detectURL,
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := d.Detect(context.Background(), "ZnJhbWU=")
	require.Error(t, err)
	var remote *RemoteError
	assert.True(t, errors.As(err, &remote))
}

func TestDetectNonOKStatus(t *testing.T) {
	d := newTestDetector(t)

	httpmock.RegisterResponder(http.MethodPost, detectURL,
		httpmock.NewStringResponder(http.StatusServiceUnavailable, "model loading"))

	_, err := d.Detect(context.Background(), "ZnJhbWU=")
	require.Error(t, err)
	var remote *RemoteError
	assert.False(t, errors.As(err, &remote))
	assert.Contains(t, err.Error(), "503")
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ResultKind
	}{
		{"detection list", `[{"label":"person with knife","score":0.4,"box":null}]`, ResultList},
		{"empty list", `[]`, ResultList},
		{"single record", `{"label":"normal person","score":0.9}`, ResultObject},
		{"empty body", ``, ResultNone},
		{"whitespace body", "  \n ", ResultNone},
		{"json null", `null`, ResultNone},
		{"free text", `no objects found`, ResultNone},
		{"malformed list", `[{"label":`, ResultNone},
		{"malformed object", `{"label"`, ResultNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseResult([]byte(tt.raw)).Kind)
		})
	}
}

func TestParseResultNilListNormalized(t *testing.T) {
	got := ParseResult([]byte(`[]`))
	require.Equal(t, ResultList, got.Kind)
	assert.NotNil(t, got.List)
	assert.Empty(t, got.List)
}
