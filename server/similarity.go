package tempo

import (
	"math"

	Mt "github.com/maroda/tempo/types"
)

const (
	// simDecay controls how fast similarity falls off with distance
	simDecay = 4.0

	// simFloor keeps every (phase, frame) cell reachable so the
	// aligner never paints itself into a zero-probability corner
	simFloor = 0.05

	// handWeight over-weights the hand features against body metrics,
	// hand position separates the phases better than posture does
	handWeight = 2.0
)

// metricScale normalizes each metric's absolute difference into a
// comparable unitless distance. Angles span tens of degrees,
// normalized distances span fractions of the frame.
var metricScale = [Mt.MetricCount]float64{
	Mt.ShoulderTilt:          90,
	Mt.HipTilt:               90,
	Mt.HipShoulderSeparation: 90,
	Mt.SpineAngle:            90,
	Mt.LeftKneeAngle:         180,
	Mt.RightKneeAngle:        180,
	Mt.LeftArmAngle:          180,
	Mt.RightArmAngle:         180,
	Mt.HeadSway:              0.5,
	Mt.LeftWristHeight:       1.0,
	Mt.RightWristHeight:      1.0,
	Mt.StanceWidth:           0.5,
}

// handScale normalizes the three hand-feature distances
var handScale = Mt.HandProfile{
	AvgWristHeight:      1.0,
	WristAboveShoulders: 1.0,
	WristLateralOffset:  0.5,
}

// Similarity scores one frame's observed metrics against one phase
// profile, in (0, 1]. Only metrics the profile defines AND the frame
// derived take part. A frame with nothing comparable lands on the floor.
func Similarity(bm *Mt.BodyMetrics, hands Mt.HandProfile, handsOK bool, prof *Mt.PhaseProfile) float64 {
	if prof == nil {
		return simFloor
	}

	dist := 0.0
	weight := 0.0

	if bm != nil {
		for m := Mt.MetricID(0); m < Mt.MetricCount; m++ {
			ref, refOK := prof.Metrics.Get(m)
			obs, obsOK := bm.Get(m)
			if !refOK || !obsOK {
				continue
			}
			dist += math.Abs(obs-ref) / metricScale[m]
			weight += 1.0
		}
	}

	if handsOK {
		dist += handWeight * math.Abs(hands.AvgWristHeight-prof.Hands.AvgWristHeight) / handScale.AvgWristHeight
		dist += handWeight * math.Abs(hands.WristAboveShoulders-prof.Hands.WristAboveShoulders) / handScale.WristAboveShoulders
		dist += handWeight * math.Abs(hands.WristLateralOffset-prof.Hands.WristLateralOffset) / handScale.WristLateralOffset
		weight += 3 * handWeight
	}

	if weight == 0 {
		return simFloor
	}

	sim := math.Exp(-simDecay * dist / weight)
	if sim < simFloor {
		sim = simFloor
	}
	return sim
}

// SimilarityMatrix is sim[phase][frame] over a frame range
type SimilarityMatrix [Mt.PhaseCount][]float64

// BuildSimilarityMatrix evaluates every phase profile against every
// frame in [start, end] inclusive. Column f corresponds to absolute
// frame index start+f.
func BuildSimilarityMatrix(poses []*Mt.LandmarkSet, start, end int, store *ProfileStore) SimilarityMatrix {
	var sm SimilarityMatrix
	width := end - start + 1
	if width < 1 {
		return sm
	}

	metrics := make([]Mt.BodyMetrics, width)
	hands := make([]Mt.HandProfile, width)
	handsOK := make([]bool, width)
	for f := 0; f < width; f++ {
		metrics[f] = ExtractBodyMetrics(poses[start+f])
		hands[f], handsOK[f] = HandFeatures(poses[start+f])
	}

	for p := Mt.Phase(0); p < Mt.PhaseCount; p++ {
		sm[p] = make([]float64, width)
		prof := store.Profile(p)
		for f := 0; f < width; f++ {
			sm[p][f] = Similarity(&metrics[f], hands[f], handsOK[f], prof)
		}
	}

	return sm
}
