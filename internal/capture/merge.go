package capture

import (
	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/oracle"
)

// Merge combines the threat detector's output with the face-match results
// into the payload persisted for one capture. The full match list rides on
// the first detection only: recognized faces describe the whole frame, not
// any single region, but the payload stays a flat list for consumers that
// iterate detections. When the detector returned an empty list a placeholder
// element is synthesized so the payload is never an empty sequence. Inputs
// are copied, never mutated.
func Merge(detections oracle.Result, matches []models.MatchResult) models.Payload {
	faces := make([]models.MatchResult, 0, len(matches))
	faces = append(faces, matches...)

	switch detections.Kind {
	case oracle.ResultList:
		if len(detections.List) == 0 {
			return models.Payload{Elements: []models.PayloadElement{
				{RecognizedFaces: &faces},
			}}
		}
		elements := make([]models.PayloadElement, len(detections.List))
		for i, d := range detections.List {
			elements[i] = models.PayloadElement{Detection: d}
		}
		elements[0].RecognizedFaces = &faces
		return models.Payload{Elements: elements}

	case oracle.ResultObject:
		obj := map[string]any{
			"label":            detections.Object.Label,
			"score":            detections.Object.Score,
			"box":              detections.Object.Box,
			"recognized_faces": faces,
		}
		return models.Payload{Object: obj}

	default:
		return models.Payload{Object: map[string]any{"recognized_faces": faces}}
	}
}
