package tempo_test

import (
	"testing"

	Ms "github.com/maroda/tempo/server"
	Mt "github.com/maroda/tempo/types"
)

// swingAnchors traces the wrist height of a clean swing,
// address down through the top and back up to the finish
var swingAnchorFracs = []float64{0.04, 0.17, 0.30, 0.43, 0.57, 0.70, 0.83, 0.96}
var swingAnchorHeights = []float64{0.68, 0.55, 0.38, 0.20, 0.42, 0.65, 0.52, 0.40}

// makeSwingPoses builds a synthetic clip whose wrist height tracks a
// full swing, piecewise linear between the anchors above
func makeSwingPoses(n int) []*Mt.LandmarkSet {
	poses := make([]*Mt.LandmarkSet, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)

		h := swingAnchorHeights[0]
		for a := 0; a < len(swingAnchorFracs)-1; a++ {
			lo, hi := swingAnchorFracs[a], swingAnchorFracs[a+1]
			if frac >= hi {
				h = swingAnchorHeights[a+1]
				continue
			}
			if frac >= lo {
				t := (frac - lo) / (hi - lo)
				h = swingAnchorHeights[a] + t*(swingAnchorHeights[a+1]-swingAnchorHeights[a])
				break
			}
		}

		poses[i] = makeTestPose(h)
	}
	return poses
}

func TestSegmentPhases(t *testing.T) {
	store := Ms.NewProfileStore()

	t.Run("Full path returns ordered in-bounds phases", func(t *testing.T) {
		poses := makeSwingPoses(60)
		pa, quality := Ms.SegmentPhases(poses, 60, nil, store)

		assertString(t, quality.String(), "full")
		assertAssignment(t, pa, 60)
		for p := 1; p < int(Mt.PhaseCount); p++ {
			if pa[p] <= pa[p-1] {
				t.Errorf("expected strictly increasing indices on the full path, %v", pa)
			}
		}
	})

	t.Run("Full path finds the top and impact regions", func(t *testing.T) {
		poses := makeSwingPoses(60)
		pa, _ := Ms.SegmentPhases(poses, 60, nil, store)

		if pa[Mt.Top] < 18 || pa[Mt.Top] > 34 {
			t.Errorf("top placed at %d, expected near the wrist minimum around 26", pa[Mt.Top])
		}
		if pa[Mt.Impact] < 34 || pa[Mt.Impact] > 52 {
			t.Errorf("impact placed at %d, expected in the downswing return around 42", pa[Mt.Impact])
		}
		if !(pa[Mt.Address] < pa[Mt.Top] && pa[Mt.Top] < pa[Mt.Impact]) {
			t.Errorf("phase ordering broken, %v", pa)
		}
	})

	t.Run("Short clips get an even split", func(t *testing.T) {
		poses := makeSwingPoses(5)
		pa, quality := Ms.SegmentPhases(poses, 5, nil, store)

		assertString(t, quality.String(), "short_clip")
		assertAssignment(t, pa, 5)
		assertInt(t, pa[Mt.Address], 0)
		assertInt(t, pa[Mt.Finish], 4)
	})

	t.Run("Sparse landmarks get the proportional split", func(t *testing.T) {
		poses := make([]*Mt.LandmarkSet, 20) // no landmarks at all
		pa, quality := Ms.SegmentPhases(poses, 20, nil, store)

		assertString(t, quality.String(), "sparse_landmarks")
		assertAssignment(t, pa, 20)
		assertInt(t, pa[Mt.Address], 1)  // 6% of 19
		assertInt(t, pa[Mt.Finish], 18) // 97% of 19
	})

	t.Run("Incomplete profiles route to the heuristic", func(t *testing.T) {
		partial := Ms.NewProfileStore()
		partial.Profiles[Mt.Downswing] = nil

		poses := makeSwingPoses(60)
		pa, quality := Ms.SegmentPhases(poses, 60, nil, partial)

		assertString(t, quality.String(), "no_profiles")
		assertAssignment(t, pa, 60)
		if !(pa[Mt.Address] < pa[Mt.Top] && pa[Mt.Top] < pa[Mt.Impact]) {
			t.Errorf("heuristic ordering broken, %v", pa)
		}
		if pa[Mt.Top] < 15 || pa[Mt.Top] > 36 {
			t.Errorf("heuristic top placed at %d, expected near the wrist minimum", pa[Mt.Top])
		}
	})

	t.Run("Degenerate input never panics", func(t *testing.T) {
		poses := make([]*Mt.LandmarkSet, 20)
		pa, _ := Ms.SegmentPhases(poses, 20, nil, store)
		assertAssignment(t, pa, 20)
	})

	t.Run("Single frame maps everything to it", func(t *testing.T) {
		poses := makeSwingPoses(2)[:1]
		pa, quality := Ms.SegmentPhases(poses, 1, nil, store)

		assertString(t, quality.String(), "short_clip")
		for p := 0; p < int(Mt.PhaseCount); p++ {
			assertInt(t, pa[p], 0)
		}
	})
}

func TestDataQualityString(t *testing.T) {
	assertString(t, Ms.QualityFull.String(), "full")
	assertString(t, Ms.QualityNoProfiles.String(), "no_profiles")
	assertString(t, Ms.DataQuality(99).String(), "unknown")
}

// assertAssignment checks the monotonic in-bounds guarantee
func assertAssignment(t *testing.T, pa Mt.PhaseAssignment, n int) {
	t.Helper()
	for p := 0; p < int(Mt.PhaseCount); p++ {
		if pa[p] < 0 || pa[p] > n-1 {
			t.Errorf("phase %s out of bounds at %d (n=%d)", Mt.PhaseNames[p], pa[p], n)
		}
		if p > 0 && pa[p] < pa[p-1] {
			t.Errorf("phase %s at %d breaks ordering, %v", Mt.PhaseNames[p], pa[p], pa)
		}
	}
}
