package capture

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/observability"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/oracle"
)

// MatchAll compares the captured frame against every roster entry. Entries
// without a usable reference image are skipped outright. The comparisons run
// concurrently (rosters are small) but results come back in roster order,
// and one entry's failure never aborts the rest: it becomes a no-match
// result carrying the error text.
func MatchAll(ctx context.Context, verifier FaceVerifier, roster []models.FaceEntry, captureBase64 string) []models.MatchResult {
	if captureBase64 == "" {
		return nil
	}

	var eligible []models.FaceEntry
	for _, entry := range roster {
		if strings.TrimSpace(entry.FaceURL) == "" {
			continue
		}
		eligible = append(eligible, entry)
	}
	if len(eligible) == 0 {
		return nil
	}

	results := make([]models.MatchResult, len(eligible))
	var wg sync.WaitGroup
	for i, entry := range eligible {
		wg.Add(1)
		go func(i int, entry models.FaceEntry) {
			defer wg.Done()
			results[i] = verifyOne(ctx, verifier, entry, captureBase64)
		}(i, entry)
	}
	wg.Wait()

	return results
}

func verifyOne(ctx context.Context, verifier FaceVerifier, entry models.FaceEntry, captureBase64 string) models.MatchResult {
	res := models.MatchResult{FaceURL: entry.FaceURL}
	if entry.FaceID != "" {
		id := entry.FaceID
		res.FaceID = &id
	}
	if entry.NameOfPerson != "" {
		name := entry.NameOfPerson
		res.NameOfPerson = &name
	}

	v, err := verifier.Verify(ctx, entry.FaceURL, captureBase64)
	if err != nil {
		var remote *oracle.RemoteError
		if errors.As(err, &remote) {
			res.Error = "face asset fetch failed: " + remote.Err.Error()
		} else {
			res.Error = err.Error()
		}
		observability.FaceComparisons.WithLabelValues("error").Inc()
		return res
	}

	res.IsMatch = v.IsMatch
	res.Confidence = v.Confidence
	res.Result = v.Result

	outcome := "unmatched"
	if res.IsMatch {
		outcome = "matched"
	}
	observability.FaceComparisons.WithLabelValues(outcome).Inc()

	return res
}
