package tempo

import (
	"log/slog"
	"math"

	Mt "github.com/maroda/tempo/types"
)

const (
	// minIsolateFrames is the floor below which isolation is skipped
	minIsolateFrames = 10

	// motionThresholdFrac of the smoothed peak marks "in motion"
	motionThresholdFrac = 0.2

	// frameDiffStride downsamples pixel differencing for speed
	frameDiffStride = 4

	// validPoseFrac is the minimum share of frames with landmarks
	// before the pose-delta motion signal can be trusted
	validPoseFrac = 0.3
)

// motionJoints drive the pose-delta motion signal,
// wrists move fastest, hips and shoulders anchor it
var motionJoints = []Mt.Joint{
	Mt.LeftWrist, Mt.RightWrist,
	Mt.LeftHip, Mt.RightHip,
	Mt.LeftShoulder, Mt.RightShoulder,
}

// MotionSignal builds a per-frame motion magnitude from pose deltas
// when enough frames carry landmarks, falling back to grayscale frame
// differencing, and finally to a synthetic single-burst curve so the
// callers downstream always have a usable signal.
func MotionSignal(poses []*Mt.LandmarkSet, frames []Mt.Frame) []float64 {
	n := len(poses)
	if n == 0 {
		return nil
	}

	if countValidPoses(poses) >= int(math.Ceil(float64(n)*validPoseFrac)) {
		return PoseMotionSignal(poses)
	}

	if len(frames) == n {
		return FrameDiffSignal(frames)
	}

	slog.Debug("No pose or frame data for motion, using synthetic curve",
		slog.Int("frames", n))

	// Bell curve peaking at ~60% of the clip, where impact usually is
	motion := make([]float64, n)
	for i := range motion {
		t := float64(i) / math.Max(float64(n-1), 1)
		motion[i] = math.Exp(-((t-0.6)*(t-0.6))/0.02) * 0.5
	}
	return motion
}

// PoseMotionSignal is the mean landmark displacement between
// consecutive frames over the motion joints. Gaps hold the last value.
func PoseMotionSignal(poses []*Mt.LandmarkSet) []float64 {
	n := len(poses)
	motion := make([]float64, n)

	for i := 1; i < n; i++ {
		if poses[i] == nil || poses[i-1] == nil {
			motion[i] = motion[i-1]
			continue
		}

		delta := 0.0
		count := 0
		for _, j := range motionJoints {
			prev, prevOK := poses[i-1].Get(j)
			curr, currOK := poses[i].Get(j)
			if !prevOK || !currOK {
				continue
			}
			delta += math.Hypot(curr.X-prev.X, curr.Y-prev.Y)
			count++
		}
		motion[i] = delta / math.Max(float64(count), 1)
	}

	return motion
}

// FrameDiffSignal is the mean absolute grayscale difference between
// consecutive frames, sampled on a coarse pixel grid, scaled to [0,1]
func FrameDiffSignal(frames []Mt.Frame) []float64 {
	n := len(frames)
	motion := make([]float64, n)

	for i := 1; i < n; i++ {
		prev, curr := frames[i-1], frames[i]
		if len(prev.Gray) == 0 || len(curr.Gray) == 0 ||
			prev.Width != curr.Width || prev.Height != curr.Height {
			motion[i] = motion[i-1]
			continue
		}

		sum := 0.0
		count := 0
		for y := 0; y < curr.Height; y += frameDiffStride {
			row := y * curr.Width
			for x := 0; x < curr.Width; x += frameDiffStride {
				d := float64(curr.Gray[row+x]) - float64(prev.Gray[row+x])
				sum += math.Abs(d)
				count++
			}
		}
		if count > 0 {
			motion[i] = sum / float64(count) / 255.0
		}
	}

	return motion
}

// WristHeightSignal is the per-frame mean wrist y. Frames without a
// body hold the previous value, the first defaults to mid-frame.
func WristHeightSignal(poses []*Mt.LandmarkSet) []float64 {
	n := len(poses)
	heights := make([]float64, n)

	for i, p := range poses {
		hp, ok := HandFeatures(p)
		if !ok {
			if i > 0 {
				heights[i] = heights[i-1]
			} else {
				heights[i] = 0.5
			}
			continue
		}
		heights[i] = hp.AvgWristHeight
	}

	return heights
}

// SmoothSignal applies a moving average whose window scales with the
// sequence length (~1/20th of N, forced odd, minimum 3), same-length output
func SmoothSignal(sig []float64) []float64 {
	n := len(sig)
	if n == 0 {
		return nil
	}

	window := n / 20
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	out := make([]float64, n)
	for i := range sig {
		sum := 0.0
		count := 0
		for k := i - half; k <= i+half; k++ {
			if k < 0 || k >= n {
				continue
			}
			sum += sig[k]
			count++
		}
		out[i] = sum / float64(count)
	}

	return out
}

// IsolateWindow locates the sub-range of frames containing the actual
// motion, inclusive on both ends. Pure over buffers already in memory.
func IsolateWindow(frames []Mt.Frame) (int, int) {
	return IsolateWindowSignal(FrameDiffSignal(frames))
}

// IsolateWindowSignal runs isolation over a pre-computed motion signal.
// Short or near-flat signals skip isolation and return the full range.
func IsolateWindowSignal(motion []float64) (int, int) {
	n := len(motion)
	if n == 0 {
		return 0, 0
	}
	if n < minIsolateFrames {
		return 0, n - 1
	}

	smooth := SmoothSignal(motion)

	peak := 0
	peakVal, minVal := smooth[0], smooth[0]
	for i, v := range smooth {
		if v > peakVal {
			peakVal = v
			peak = i
		}
		if v < minVal {
			minVal = v
		}
	}

	// No meaningful burst means the whole clip is the window
	if peakVal-minVal < 1e-3 {
		slog.Debug("Motion signal near-constant, skipping isolation",
			slog.Float64("range", peakVal-minVal))
		return 0, n - 1
	}

	threshold := peakVal * motionThresholdFrac

	start := peak
	for start > 0 && smooth[start-1] >= threshold {
		start--
	}
	end := peak
	for end < n-1 && smooth[end+1] >= threshold {
		end++
	}

	// Pad asymmetrically: the slow setup and backswing sit below
	// threshold and would be clipped without the larger front pad
	padBefore := n / 8
	if padBefore < 3 {
		padBefore = 3
	}
	padAfter := n / 16
	if padAfter < 2 {
		padAfter = 2
	}

	start -= padBefore
	if start < 0 {
		start = 0
	}
	end += padAfter
	if end > n-1 {
		end = n - 1
	}

	return start, end
}

func countValidPoses(poses []*Mt.LandmarkSet) int {
	count := 0
	for _, p := range poses {
		if p != nil {
			count++
		}
	}
	return count
}
