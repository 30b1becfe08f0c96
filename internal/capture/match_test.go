package capture

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/oracle"
)

func roster(n int) []models.FaceEntry {
	entries := make([]models.FaceEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, models.FaceEntry{
			FaceID:       fmt.Sprintf("7_face%d", i),
			NameOfPerson: fmt.Sprintf("person%d", i),
			FaceURL:      fmt.Sprintf("http://storage.local/faces/7/face%d.jpg", i),
		})
	}
	return entries
}

func TestMatchAllEmptyCapture(t *testing.T) {
	v := &fakeVerifier{}

	results := MatchAll(context.Background(), v, roster(3), "")

	assert.Empty(t, results)
	assert.Equal(t, 0, v.callCount())
}

func TestMatchAllOneResultPerUsableEntry(t *testing.T) {
	v := &fakeVerifier{
		verify: func(string) (oracle.Verification, error) {
			return oracle.Verification{IsMatch: true, Confidence: 0.2}, nil
		},
	}

	results := MatchAll(context.Background(), v, roster(4), "b64data")

	require.Len(t, results, 4)
	assert.Equal(t, 4, v.callCount())
	for i, res := range results {
		require.NotNil(t, res.FaceID)
		assert.Equal(t, fmt.Sprintf("7_face%d", i), *res.FaceID)
		assert.True(t, res.IsMatch)
	}
}

func TestMatchAllSkipsEntriesWithoutReference(t *testing.T) {
	entries := roster(3)
	entries[1].FaceURL = "   "

	v := &fakeVerifier{
		verify: func(string) (oracle.Verification, error) {
			return oracle.Verification{}, nil
		},
	}

	results := MatchAll(context.Background(), v, entries, "b64data")

	// Skipped entries produce no result at all, not a placeholder error.
	require.Len(t, results, 2)
	assert.Equal(t, "7_face0", *results[0].FaceID)
	assert.Equal(t, "7_face2", *results[1].FaceID)
}

func TestMatchAllIsolatesSingleFailure(t *testing.T) {
	entries := roster(3)

	v := &fakeVerifier{
		verify: func(url string) (oracle.Verification, error) {
			if url == entries[1].FaceURL {
				return oracle.Verification{}, &oracle.RemoteError{Err: errors.New("404 fetching reference")}
			}
			return oracle.Verification{IsMatch: true, Confidence: 0.3}, nil
		},
	}

	results := MatchAll(context.Background(), v, entries, "b64data")

	require.Len(t, results, 3)

	assert.True(t, results[0].IsMatch)
	assert.True(t, results[2].IsMatch)
	assert.Empty(t, results[0].Error)
	assert.Empty(t, results[2].Error)

	failed := results[1]
	assert.False(t, failed.IsMatch)
	assert.Equal(t, 0.0, failed.Confidence)
	assert.Contains(t, failed.Error, "face asset fetch failed")
	require.NotNil(t, failed.FaceID)
	assert.Equal(t, "7_face1", *failed.FaceID)
	assert.Equal(t, entries[1].FaceURL, failed.FaceURL)
}

func TestMatchAllKeepsRosterOrder(t *testing.T) {
	entries := roster(8)
	v := &fakeVerifier{
		verify: func(url string) (oracle.Verification, error) {
			return oracle.Verification{Result: url}, nil
		},
	}

	results := MatchAll(context.Background(), v, entries, "b64data")

	require.Len(t, results, 8)
	for i, res := range results {
		assert.Equal(t, entries[i].FaceURL, res.FaceURL)
	}
}

func TestMatchAllNonRemoteErrorText(t *testing.T) {
	entries := roster(1)
	v := &fakeVerifier{
		verify: func(string) (oracle.Verification, error) {
			return oracle.Verification{}, errors.New("no face found in frame")
		},
	}

	results := MatchAll(context.Background(), v, entries, "b64data")

	require.Len(t, results, 1)
	assert.Equal(t, "no face found in frame", results[0].Error)
}
