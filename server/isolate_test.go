package tempo_test

import (
	"math"
	"testing"

	Ms "github.com/maroda/tempo/server"
	Mt "github.com/maroda/tempo/types"
)

// makeBurstSignal is a quiet signal with one motion burst
func makeBurstSignal(n, burstStart, burstEnd int) []float64 {
	sig := make([]float64, n)
	for i := burstStart; i < burstEnd && i < n; i++ {
		sig[i] = 1.0
	}
	return sig
}

func TestSmoothSignal(t *testing.T) {
	t.Run("Output length matches input", func(t *testing.T) {
		sig := makeBurstSignal(100, 40, 60)
		assertInt(t, len(Ms.SmoothSignal(sig)), 100)
	})

	t.Run("Empty input gives empty output", func(t *testing.T) {
		if Ms.SmoothSignal(nil) != nil {
			t.Errorf("expected nil for empty input")
		}
	})

	t.Run("Constant signal is unchanged", func(t *testing.T) {
		sig := []float64{2, 2, 2, 2, 2, 2, 2, 2}
		for _, v := range Ms.SmoothSignal(sig) {
			assertFloatNear(t, v, 2, 1e-9)
		}
	})

	t.Run("A spike is spread across the window", func(t *testing.T) {
		sig := make([]float64, 50)
		sig[25] = 1.0
		smooth := Ms.SmoothSignal(sig)
		if smooth[25] >= 1.0 {
			t.Errorf("spike not attenuated, got %f", smooth[25])
		}
		if smooth[24] <= 0 {
			t.Errorf("spike not spread to neighbors, got %f", smooth[24])
		}
	})
}

func TestIsolateWindowSignal(t *testing.T) {
	t.Run("Window contains the burst", func(t *testing.T) {
		sig := makeBurstSignal(200, 100, 140)
		start, end := Ms.IsolateWindowSignal(sig)

		if start > 100 {
			t.Errorf("window starts after the burst, start %d", start)
		}
		if end < 139 {
			t.Errorf("window ends before the burst, end %d", end)
		}
		if start == 0 && end == 199 {
			t.Errorf("isolation did nothing for a clear burst")
		}
	})

	t.Run("Padding is heavier before the peak", func(t *testing.T) {
		sig := makeBurstSignal(200, 100, 140)
		start, end := Ms.IsolateWindowSignal(sig)

		before := 100 - start
		after := end - 139
		if before <= after {
			t.Errorf("expected more pad before the burst, before %d, after %d", before, after)
		}
	})

	t.Run("Short signals return the full range", func(t *testing.T) {
		sig := makeBurstSignal(6, 2, 4)
		start, end := Ms.IsolateWindowSignal(sig)
		assertInt(t, start, 0)
		assertInt(t, end, 5)
	})

	t.Run("Flat signals return the full range", func(t *testing.T) {
		sig := make([]float64, 50)
		start, end := Ms.IsolateWindowSignal(sig)
		assertInt(t, start, 0)
		assertInt(t, end, 49)
	})

	t.Run("Empty input is safe", func(t *testing.T) {
		start, end := Ms.IsolateWindowSignal(nil)
		assertInt(t, start, 0)
		assertInt(t, end, 0)
	})
}

func TestPoseMotionSignal(t *testing.T) {
	t.Run("Still poses read as zero motion", func(t *testing.T) {
		poses := []*Mt.LandmarkSet{makeTestPose(0.65), makeTestPose(0.65), makeTestPose(0.65)}
		motion := Ms.PoseMotionSignal(poses)
		for _, v := range motion {
			assertFloatNear(t, v, 0, 1e-9)
		}
	})

	t.Run("Moving wrists register motion", func(t *testing.T) {
		poses := []*Mt.LandmarkSet{makeTestPose(0.65), makeTestPose(0.45)}
		motion := Ms.PoseMotionSignal(poses)
		if motion[1] <= 0 {
			t.Errorf("expected motion from moving wrists, got %f", motion[1])
		}
	})

	t.Run("Detector gaps hold the last value", func(t *testing.T) {
		poses := []*Mt.LandmarkSet{makeTestPose(0.65), makeTestPose(0.45), nil, makeTestPose(0.45)}
		motion := Ms.PoseMotionSignal(poses)
		assertFloatNear(t, motion[2], motion[1], 1e-9)
		assertFloatNear(t, motion[3], motion[2], 1e-9)
	})
}

func TestFrameDiffSignal(t *testing.T) {
	makeFrame := func(fill uint8) Mt.Frame {
		gray := make([]uint8, 64*64)
		for i := range gray {
			gray[i] = fill
		}
		return Mt.Frame{Width: 64, Height: 64, Gray: gray}
	}

	t.Run("Identical frames read as zero", func(t *testing.T) {
		frames := []Mt.Frame{makeFrame(100), makeFrame(100)}
		motion := Ms.FrameDiffSignal(frames)
		assertFloatNear(t, motion[1], 0, 1e-9)
	})

	t.Run("Changed frames register scaled difference", func(t *testing.T) {
		frames := []Mt.Frame{makeFrame(100), makeFrame(150)}
		motion := Ms.FrameDiffSignal(frames)
		assertFloatNear(t, motion[1], 50.0/255.0, 1e-9)
	})

	t.Run("Mismatched dimensions hold the last value", func(t *testing.T) {
		small := Mt.Frame{Width: 8, Height: 8, Gray: make([]uint8, 64)}
		frames := []Mt.Frame{makeFrame(100), makeFrame(150), small}
		motion := Ms.FrameDiffSignal(frames)
		assertFloatNear(t, motion[2], motion[1], 1e-9)
	})
}

func TestMotionSignal(t *testing.T) {
	t.Run("Valid poses drive the signal", func(t *testing.T) {
		poses := []*Mt.LandmarkSet{}
		for i := 0; i < 20; i++ {
			poses = append(poses, makeTestPose(0.65-float64(i)*0.01))
		}
		motion := Ms.MotionSignal(poses, nil)
		assertInt(t, len(motion), 20)
		if motion[10] <= 0 {
			t.Errorf("expected pose-driven motion, got %f", motion[10])
		}
	})

	t.Run("No data at all yields a synthetic burst", func(t *testing.T) {
		poses := make([]*Mt.LandmarkSet, 30)
		motion := Ms.MotionSignal(poses, nil)
		assertInt(t, len(motion), 30)

		peak := 0
		for i, v := range motion {
			if v > motion[peak] {
				peak = i
			}
		}
		// The synthetic curve peaks around 60% of the clip
		if math.Abs(float64(peak)-0.6*29) > 2 {
			t.Errorf("synthetic peak at %d, expected near 17", peak)
		}
	})

	t.Run("Empty input is safe", func(t *testing.T) {
		if Ms.MotionSignal(nil, nil) != nil {
			t.Errorf("expected nil for empty input")
		}
	})
}

func TestWristHeightSignal(t *testing.T) {
	t.Run("Heights track the wrists", func(t *testing.T) {
		poses := []*Mt.LandmarkSet{makeTestPose(0.65), makeTestPose(0.40)}
		heights := Ms.WristHeightSignal(poses)
		assertFloatNear(t, heights[0], 0.65, 1e-9)
		assertFloatNear(t, heights[1], 0.40, 1e-9)
	})

	t.Run("Gaps hold the last height", func(t *testing.T) {
		poses := []*Mt.LandmarkSet{makeTestPose(0.65), nil, nil}
		heights := Ms.WristHeightSignal(poses)
		assertFloatNear(t, heights[1], 0.65, 1e-9)
		assertFloatNear(t, heights[2], 0.65, 1e-9)
	})

	t.Run("Leading gap defaults to mid-frame", func(t *testing.T) {
		poses := []*Mt.LandmarkSet{nil, makeTestPose(0.40)}
		heights := Ms.WristHeightSignal(poses)
		assertFloatNear(t, heights[0], 0.5, 1e-9)
	})
}
