package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/oracle"
)

// testFrame returns a tiny JPEG as a base64 string.
func testFrame(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestPipeline(store *fakeStore, objects *fakeObjects, verifier *fakeVerifier, detector *fakeDetector, publisher *fakePublisher) *Pipeline {
	if objects == nil {
		objects = &fakeObjects{}
	}
	if verifier == nil {
		verifier = &fakeVerifier{}
	}
	if detector == nil {
		detector = &fakeDetector{}
	}
	var pub Publisher
	if publisher != nil {
		pub = publisher
	}
	return NewPipeline(store, objects, verifier, detector, pub)
}

func TestRunRequiresFrame(t *testing.T) {
	p := newTestPipeline(&fakeStore{}, nil, nil, nil, nil)

	_, err := p.Run(context.Background(), Request{SystemID: 7})
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestRunRejectsNonNumericSystemID(t *testing.T) {
	p := newTestPipeline(&fakeStore{}, nil, nil, nil, nil)

	_, err := p.Run(context.Background(), Request{SystemID: "not-a-number", ImageBase64: testFrame(t)})
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestRunDecodeFailure(t *testing.T) {
	objects := &fakeObjects{}
	p := newTestPipeline(&fakeStore{}, objects, nil, nil, nil)

	_, err := p.Run(context.Background(), Request{SystemID: 7, ImageBase64: "!!not base64!!"})
	require.Error(t, err)
	assert.Equal(t, KindDecodeFailed, KindOf(err))

	// Valid base64 that is not an image also fails before upload.
	_, err = p.Run(context.Background(), Request{
		SystemID:    7,
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("plain text")),
	})
	require.Error(t, err)
	assert.Equal(t, KindDecodeFailed, KindOf(err))
	assert.Equal(t, 0, objects.uploads)
}

func TestRunUploadFailureAborts(t *testing.T) {
	store := &fakeStore{}
	objects := &fakeObjects{
		upload: func(int64, []byte) (string, error) { return "", errors.New("bucket gone") },
	}
	detector := &fakeDetector{}
	p := newTestPipeline(store, objects, nil, detector, nil)

	_, err := p.Run(context.Background(), Request{SystemID: 7, ImageBase64: testFrame(t)})
	require.Error(t, err)
	assert.Equal(t, KindUploadFailed, KindOf(err))
	// Nothing was persisted for the aborted run.
	assert.Nil(t, store.savedData)
}

func TestRunImageURLWriteIsBestEffort(t *testing.T) {
	store := &fakeStore{
		setImageURL: func(int64, string) error { return errors.New("transient write error") },
	}
	p := newTestPipeline(store, nil, nil, nil, nil)

	payload, err := p.Run(context.Background(), Request{SystemID: 7, ImageBase64: testFrame(t)})
	require.NoError(t, err)
	require.Len(t, payload.Elements, 1)
}

func TestRunRoomCodeEmptyRosterWithDetection(t *testing.T) {
	store := &fakeStore{
		findByRoomCode: func(code string) (*models.System, error) {
			require.Equal(t, "ROOM9", code)
			return &models.System{ID: 9}, nil
		},
	}
	verifier := &fakeVerifier{}
	detector := &fakeDetector{
		detect: func() (oracle.Result, error) {
			return oracle.Result{Kind: oracle.ResultList, List: []models.Detection{
				{Label: strPtr("person with weapon"), Score: f64Ptr(0.81)},
			}}, nil
		},
	}
	p := newTestPipeline(store, nil, verifier, detector, nil)

	payload, err := p.Run(context.Background(), Request{RoomCode: "ROOM9", ImageBase64: testFrame(t)})
	require.NoError(t, err)

	require.Len(t, payload.Elements, 1)
	elem := payload.Elements[0]
	assert.Equal(t, "person with weapon", *elem.Label)
	assert.InDelta(t, 0.81, *elem.Score, 1e-9)
	require.NotNil(t, elem.RecognizedFaces)
	assert.Empty(t, *elem.RecognizedFaces)

	// Empty roster means no verifier calls at all.
	assert.Equal(t, 0, verifier.callCount())

	// The merged payload was persisted as-is.
	want, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(store.savedData))
}

func TestRunFailedReferenceFetchStillSucceeds(t *testing.T) {
	store := &fakeStore{
		getRoster: func(int64) ([]models.FaceEntry, error) {
			return []models.FaceEntry{{
				FaceID:       "7_Sam",
				NameOfPerson: "Sam",
				FaceURL:      "http://storage.local/faces/7/7_Sam.jpg",
			}}, nil
		},
	}
	verifier := &fakeVerifier{
		verify: func(string) (oracle.Verification, error) {
			return oracle.Verification{}, &oracle.RemoteError{Err: errors.New("asset unreachable")}
		},
	}
	p := newTestPipeline(store, nil, verifier, nil, nil)

	payload, err := p.Run(context.Background(), Request{SystemID: 7, ImageBase64: testFrame(t)})
	require.NoError(t, err)

	require.Len(t, payload.Elements, 1)
	require.NotNil(t, payload.Elements[0].RecognizedFaces)
	faces := *payload.Elements[0].RecognizedFaces
	require.Len(t, faces, 1)
	assert.False(t, faces[0].IsMatch)
	assert.Equal(t, 0.0, faces[0].Confidence)
	assert.NotEmpty(t, faces[0].Error)
}

func TestRunRosterReadFailureProceedsWithoutComparisons(t *testing.T) {
	store := &fakeStore{
		getRoster: func(int64) ([]models.FaceEntry, error) {
			return nil, errors.New("query timeout")
		},
	}
	verifier := &fakeVerifier{}
	p := newTestPipeline(store, nil, verifier, nil, nil)

	payload, err := p.Run(context.Background(), Request{SystemID: 7, ImageBase64: testFrame(t)})
	require.NoError(t, err)
	require.Len(t, payload.Elements, 1)
	assert.Equal(t, 0, verifier.callCount())
}

func TestRunThreatDetectorFailure(t *testing.T) {
	detector := &fakeDetector{
		detect: func() (oracle.Result, error) {
			return oracle.Result{}, &oracle.RemoteError{Err: errors.New("detector down")}
		},
	}
	p := newTestPipeline(&fakeStore{}, nil, nil, detector, nil)

	_, err := p.Run(context.Background(), Request{SystemID: 7, ImageBase64: testFrame(t)})
	require.Error(t, err)
	assert.Equal(t, KindRemoteFetch, KindOf(err))
}

func TestRunStripsDataURIPrefix(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(store, nil, nil, nil, nil)

	_, err := p.Run(context.Background(), Request{
		SystemID:    7,
		ImageBase64: "data:image/jpeg;base64," + testFrame(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://storage.local/captures/image.jpg", store.savedImageURL)
}

func TestRunPublishesCaptureEvent(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	p := newTestPipeline(store, nil, nil, nil, publisher)

	_, err := p.Run(context.Background(), Request{SystemID: 7, ImageBase64: testFrame(t)})
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, "capture", event.Type)
	assert.Equal(t, int64(7), event.SystemID)
	assert.NotNil(t, event.CaptureID)
	assert.JSONEq(t, string(store.savedData), string(event.Payload))
}

func TestRunPublishFailureIsNonFatal(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("nats down")}
	p := newTestPipeline(&fakeStore{}, nil, nil, nil, publisher)

	_, err := p.Run(context.Background(), Request{SystemID: 7, ImageBase64: testFrame(t)})
	require.NoError(t, err)
}

func TestNormalizeBase64Payload(t *testing.T) {
	assert.Equal(t, "abc123", NormalizeBase64Payload("data:image/png;base64,abc123"))
	assert.Equal(t, "abc123", NormalizeBase64Payload("  abc123  "))
	// A trailing comma with nothing after it leaves the payload alone.
	assert.Equal(t, "abc123,", NormalizeBase64Payload("abc123,"))
}
