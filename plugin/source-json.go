package plugin

/*
	JSONPoseSource

	This plugin allows external detector output in JSON
	to be used as the pose data.

	The wire format is one array entry per video frame.
	A null entry means the detector found no body in that frame.
	Joints are matched by their wire name, unknown names are
	skipped so newer detectors with extra joints still parse.
*/

import (
	"encoding/json"
	"fmt"
	"log/slog"

	Mt "github.com/maroda/tempo/types"
)

// visThreshold is the detector confidence below which
// a joint is treated as not seen
const visThreshold = 0.5

type jsonLandmark struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

type jsonFrame struct {
	Landmarks []jsonLandmark `json:"landmarks"`
}

type JSONPoseSource struct{}

// NewJSONPoseSource returns a parser for detector JSON
func NewJSONPoseSource() *JSONPoseSource {
	return &JSONPoseSource{}
}

// Poses parses one clip's worth of detector output
func (js *JSONPoseSource) Poses(raw []byte) ([]*Mt.LandmarkSet, error) {
	var frames []*jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		slog.Error("Error unmarshalling pose json", slog.Any("error", err))
		return nil, fmt.Errorf("error unmarshalling pose json: %w", err)
	}

	poses := make([]*Mt.LandmarkSet, len(frames))
	for i, f := range frames {
		if f == nil || len(f.Landmarks) == 0 {
			continue // no body in this frame
		}

		ls := &Mt.LandmarkSet{}
		seen := 0
		for _, lm := range f.Landmarks {
			j, ok := jointByName(lm.Name)
			if !ok {
				continue
			}
			if lm.Visibility < visThreshold {
				continue
			}
			ls.Set(j, Mt.Point3{X: lm.X, Y: lm.Y, Z: lm.Z})
			seen++
		}
		if seen > 0 {
			poses[i] = ls
		}
	}

	return poses, nil
}

func (js *JSONPoseSource) Type() string { return "JSONLandmarks" }

func jointByName(name string) (Mt.Joint, bool) {
	for j, n := range Mt.JointNames {
		if n == name {
			return Mt.Joint(j), true
		}
	}
	return 0, false
}
