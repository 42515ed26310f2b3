package tempo

import (
	"log/slog"
	"math"

	Mt "github.com/maroda/tempo/types"
)

// DataQuality is the closed set of input conditions, evaluated once
// up front. Each maps to exactly one segmentation path, degraded
// input is a branch here and never an error.
type DataQuality int

const (
	QualityFull DataQuality = iota
	QualityShort
	QualitySparse
	QualityNoProfiles
	QualityCount
)

var QualityNames = [QualityCount]string{
	"full",
	"short_clip",
	"sparse_landmarks",
	"no_profiles",
}

func (q DataQuality) String() string {
	if q < 0 || q >= QualityCount {
		return "unknown"
	}
	return QualityNames[q]
}

// proportionalFracs is the fixed split used when pose data is too
// sparse to trust geometry, address at ~6% through finish at ~97%
var proportionalFracs = [Mt.PhaseCount]float64{
	0.06, 0.18, 0.32, 0.47, 0.60, 0.72, 0.87, 0.97,
}

// SegmentPhases maps the eight canonical phases onto frame indices.
// It always returns a complete, monotonic, in-bounds assignment, no
// input degrades it into an error. The quality tag reports which
// path produced the result.
func SegmentPhases(poses []*Mt.LandmarkSet, n int, frames []Mt.Frame, store *ProfileStore) (Mt.PhaseAssignment, DataQuality) {
	quality := classifyQuality(poses, n, store)

	switch quality {
	case QualityShort:
		return evenSplit(n), quality
	case QualitySparse:
		return proportionalSplit(n), quality
	case QualityNoProfiles:
		return heuristicSplit(poses, n, frames), quality
	}

	motion := MotionSignal(poses, frames)
	start, end := IsolateWindowSignal(motion)

	// The DP needs room for eight strictly ordered picks
	if end-start+1 < int(Mt.PhaseCount) {
		start, end = 0, n-1
	}

	sm := BuildSimilarityMatrix(poses, start, end, store)
	rel := alignDP(sm, end-start+1)

	var pa Mt.PhaseAssignment
	for p := range rel {
		pa[p] = start + rel[p]
	}

	slog.Debug("Phase alignment complete",
		slog.Int("window_start", start),
		slog.Int("window_end", end),
		slog.String("quality", quality.String()))

	return pa, quality
}

// classifyQuality picks the single branch for this input
func classifyQuality(poses []*Mt.LandmarkSet, n int, store *ProfileStore) DataQuality {
	if n < int(Mt.PhaseCount) {
		return QualityShort
	}
	if countValidPoses(poses) < int(math.Ceil(float64(n)*validPoseFrac)) {
		return QualitySparse
	}
	if !store.Complete() {
		return QualityNoProfiles
	}
	return QualityFull
}

// alignDP finds the monotonic assignment maximizing total similarity.
// One left-to-right sweep per phase carries a running maximum of the
// previous phase's best scores, so the whole table is O(width * 8).
// Back-pointers recover the exact optimum, frame indices come out
// strictly increasing.
func alignDP(sm SimilarityMatrix, width int) [Mt.PhaseCount]int {
	var pa [Mt.PhaseCount]int
	if width < 1 {
		return pa
	}

	negInf := math.Inf(-1)
	phases := int(Mt.PhaseCount)

	best := make([][]float64, phases)
	back := make([][]int, phases)
	for p := 0; p < phases; p++ {
		best[p] = make([]float64, width)
		back[p] = make([]int, width)
	}

	for f := 0; f < width; f++ {
		best[0][f] = sm[0][f]
		back[0][f] = -1
	}

	for p := 1; p < phases; p++ {
		runBest := negInf
		runIdx := -1
		for f := 0; f < width; f++ {
			// Predecessor must sit strictly left of f
			if f > 0 && best[p-1][f-1] > runBest {
				runBest = best[p-1][f-1]
				runIdx = f - 1
			}
			if runIdx < 0 {
				best[p][f] = negInf
				back[p][f] = -1
				continue
			}
			best[p][f] = sm[p][f] + runBest
			back[p][f] = runIdx
		}
	}

	last := phases - 1
	endIdx := width - 1
	for f := 0; f < width; f++ {
		if best[last][f] > best[last][endIdx] {
			endIdx = f
		}
	}

	f := endIdx
	for p := last; p >= 0; p-- {
		pa[p] = f
		f = back[p][f]
		if f < 0 && p > 0 {
			// Unreachable when width >= 8, kept as a floor guard
			f = 0
		}
	}

	return pa
}

// evenSplit spaces the eight phases evenly across the clip,
// duplicates allowed when there are fewer than eight frames
func evenSplit(n int) Mt.PhaseAssignment {
	var pa Mt.PhaseAssignment
	if n < 1 {
		return pa
	}
	for p := 0; p < int(Mt.PhaseCount); p++ {
		pa[p] = int(math.Round(float64(p) * float64(n-1) / float64(Mt.PhaseCount-1)))
	}
	return pa
}

// proportionalSplit places each phase at its fixed fraction of the clip
func proportionalSplit(n int) Mt.PhaseAssignment {
	var pa Mt.PhaseAssignment
	if n < 1 {
		return pa
	}
	for p, frac := range proportionalFracs {
		idx := int(math.Round(frac * float64(n-1)))
		if idx > n-1 {
			idx = n - 1
		}
		pa[p] = idx
	}
	return monotonicFixup(pa, n)
}

// heuristicSplit anchors impact on the motion peak and top on the
// wrist-height minimum before it, then interpolates the rest.
// This is the path when profiles are unavailable.
func heuristicSplit(poses []*Mt.LandmarkSet, n int, frames []Mt.Frame) Mt.PhaseAssignment {
	motion := SmoothSignal(MotionSignal(poses, frames))
	wrist := SmoothSignal(WristHeightSignal(poses))

	// Address: the stillest early frame
	address := argMinRange(motion, 0, n/5)

	// Impact: the motion peak past the setup
	impact := argMaxRange(motion, n/4, n-n/8)
	if impact <= address {
		impact = address + (n-1-address)/2
	}

	// Top: hands at their highest (smallest y) before impact
	topLo := address + (impact-address)/4
	top := argMinRange(wrist, topLo, impact)
	if top <= address {
		top = (address + impact) / 2
	}

	var pa Mt.PhaseAssignment
	pa[Mt.Address] = address
	pa[Mt.Takeaway] = address + (top-address)/3
	pa[Mt.Backswing] = address + 2*(top-address)/3
	pa[Mt.Top] = top
	pa[Mt.Downswing] = (top + impact) / 2
	pa[Mt.Impact] = impact

	remaining := n - 1 - impact
	pa[Mt.FollowThrough] = impact + remaining/3
	pa[Mt.Finish] = impact + 2*remaining/3

	pa = refineInterpolated(pa, wrist, n)

	return monotonicFixup(pa, n)
}

// refineInterpolated nudges the interpolated middles within a small
// local window, blending the expected wrist-height trend for that
// phase with proximity to the initial estimate
func refineInterpolated(pa Mt.PhaseAssignment, wrist []float64, n int) Mt.PhaseAssignment {
	// Hands rise (y falls) through the backswing, drop after the top
	trend := map[Mt.Phase]float64{
		Mt.Takeaway:      -1,
		Mt.Backswing:     -1,
		Mt.Downswing:     1,
		Mt.FollowThrough: -1,
	}

	for phase, dir := range trend {
		base := pa[phase]
		bestIdx := base
		bestScore := math.Inf(-1)
		for f := base - 2; f <= base+2; f++ {
			if f < 1 || f > n-1 {
				continue
			}
			delta := wrist[f] - wrist[f-1]
			score := dir*delta - 0.01*math.Abs(float64(f-base))
			if score > bestScore {
				bestScore = score
				bestIdx = f
			}
		}
		pa[phase] = bestIdx
	}

	return pa
}

// monotonicFixup enforces non-decreasing in-bounds indices
func monotonicFixup(pa Mt.PhaseAssignment, n int) Mt.PhaseAssignment {
	for p := 0; p < int(Mt.PhaseCount); p++ {
		if pa[p] < 0 {
			pa[p] = 0
		}
		if pa[p] > n-1 {
			pa[p] = n - 1
		}
		if p > 0 && pa[p] < pa[p-1] {
			pa[p] = pa[p-1]
		}
	}
	return pa
}

func argMinRange(sig []float64, lo, hi int) int {
	if lo < 0 {
		lo = 0
	}
	if hi > len(sig) {
		hi = len(sig)
	}
	if lo >= hi {
		return lo
	}
	idx := lo
	for i := lo + 1; i < hi; i++ {
		if sig[i] < sig[idx] {
			idx = i
		}
	}
	return idx
}

func argMaxRange(sig []float64, lo, hi int) int {
	if lo < 0 {
		lo = 0
	}
	if hi > len(sig) {
		hi = len(sig)
	}
	if lo >= hi {
		return lo
	}
	idx := lo
	for i := lo + 1; i < hi; i++ {
		if sig[i] > sig[idx] {
			idx = i
		}
	}
	return idx
}
