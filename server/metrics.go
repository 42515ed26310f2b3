package tempo

import (
	"math"

	Mt "github.com/maroda/tempo/types"
)

// epsilon guards divisions where two landmarks can coincide
const epsilon = 1e-8

// ExtractBodyMetrics derives the fixed metric vector from one frame's
// landmarks. It is total: a nil set or missing joints leave the
// dependent metrics zeroed and absent, nothing here can fail.
func ExtractBodyMetrics(ls *Mt.LandmarkSet) Mt.BodyMetrics {
	var bm Mt.BodyMetrics
	if ls == nil {
		return bm
	}

	lsh, lshOK := ls.Get(Mt.LeftShoulder)
	rsh, rshOK := ls.Get(Mt.RightShoulder)
	lhp, lhpOK := ls.Get(Mt.LeftHip)
	rhp, rhpOK := ls.Get(Mt.RightHip)

	// Shoulder tilt, signed degrees around horizontal
	if lshOK && rshOK {
		bm.Set(Mt.ShoulderTilt, FoldTilt(tiltDegrees(lsh, rsh)))
	}

	// Hip tilt
	if lhpOK && rhpOK {
		bm.Set(Mt.HipTilt, FoldTilt(tiltDegrees(lhp, rhp)))
	}

	// X-factor proxy: how far the trunk leads or lags the pelvis
	if st, ok := bm.Get(Mt.ShoulderTilt); ok {
		if ht, ok := bm.Get(Mt.HipTilt); ok {
			bm.Set(Mt.HipShoulderSeparation, math.Abs(st-ht))
		}
	}

	// Spine angle: mid-shoulder to mid-hip segment against true vertical
	if lshOK && rshOK && lhpOK && rhpOK {
		midS := midpoint(lsh, rsh)
		midH := midpoint(lhp, rhp)
		spine := math.Atan2(midS.X-midH.X, midH.Y-midS.Y+epsilon)
		bm.Set(Mt.SpineAngle, math.Abs(spine*180/math.Pi))
	}

	// Knee flex, both sides
	if lk, ok := ls.Get(Mt.LeftKnee); ok {
		if la, ok := ls.Get(Mt.LeftAnkle); ok && lhpOK {
			bm.Set(Mt.LeftKneeAngle, VertexAngle(lhp, lk, la))
		}
	}
	if rk, ok := ls.Get(Mt.RightKnee); ok {
		if ra, ok := ls.Get(Mt.RightAnkle); ok && rhpOK {
			bm.Set(Mt.RightKneeAngle, VertexAngle(rhp, rk, ra))
		}
	}

	// Arm straightness, elbow as the vertex
	if le, ok := ls.Get(Mt.LeftElbow); ok {
		if lw, ok := ls.Get(Mt.LeftWrist); ok && lshOK {
			bm.Set(Mt.LeftArmAngle, VertexAngle(lsh, le, lw))
		}
	}
	if re, ok := ls.Get(Mt.RightElbow); ok {
		if rw, ok := ls.Get(Mt.RightWrist); ok && rshOK {
			bm.Set(Mt.RightArmAngle, VertexAngle(rsh, re, rw))
		}
	}

	// Head stability: horizontal drift of the nose off mid-hip
	if nose, ok := ls.Get(Mt.Nose); ok && lhpOK && rhpOK {
		midH := midpoint(lhp, rhp)
		bm.Set(Mt.HeadSway, math.Abs(nose.X-midH.X))
	}

	// Wrist heights are the club-position proxy
	if lw, ok := ls.Get(Mt.LeftWrist); ok {
		bm.Set(Mt.LeftWristHeight, lw.Y)
	}
	if rw, ok := ls.Get(Mt.RightWrist); ok {
		bm.Set(Mt.RightWristHeight, rw.Y)
	}

	// Stance width between the ankles
	if la, ok := ls.Get(Mt.LeftAnkle); ok {
		if ra, ok := ls.Get(Mt.RightAnkle); ok {
			bm.Set(Mt.StanceWidth, math.Abs(la.X-ra.X))
		}
	}

	return bm
}

// VertexAngle is the planar angle at vertex /b/ formed by a-b-c, in degrees.
// The cosine is clamped before arccos to guard float overshoot.
func VertexAngle(a, b, c Mt.Point3) float64 {
	v1x, v1y := a.X-b.X, a.Y-b.Y
	v2x, v2y := c.X-b.X, c.Y-b.Y

	dot := v1x*v2x + v1y*v2y
	n1 := math.Hypot(v1x, v1y)
	n2 := math.Hypot(v2x, v2y)

	den := n1 * n2
	if den < epsilon {
		den = epsilon
	}
	cos := dot / den
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi
}

// FoldTilt maps a raw cross-body angle into the ±90° band.
// Detectors occasionally swap left/right which reads as a
// ~180° flip of the same posture.
func FoldTilt(deg float64) float64 {
	switch {
	case deg > 90:
		return deg - 180
	case deg < -90:
		return deg + 180
	default:
		return deg
	}
}

// tiltDegrees is the signed angle of the left→right cross-body vector
func tiltDegrees(left, right Mt.Point3) float64 {
	return math.Atan2(right.Y-left.Y, right.X-left.X+epsilon) * 180 / math.Pi
}

func midpoint(a, b Mt.Point3) Mt.Point3 {
	return Mt.Point3{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}

// HandFeatures derives the auxiliary hand-position features for one frame.
// The bool reports whether enough joints were visible to compute them.
func HandFeatures(ls *Mt.LandmarkSet) (Mt.HandProfile, bool) {
	var hp Mt.HandProfile
	if ls == nil {
		return hp, false
	}

	lw, lwOK := ls.Get(Mt.LeftWrist)
	rw, rwOK := ls.Get(Mt.RightWrist)
	if !lwOK || !rwOK {
		return hp, false
	}

	avgX := (lw.X + rw.X) / 2
	hp.AvgWristHeight = (lw.Y + rw.Y) / 2

	// y grows downward: positive means hands above the shoulder line
	if lsh, ok := ls.Get(Mt.LeftShoulder); ok {
		if rsh, ok := ls.Get(Mt.RightShoulder); ok {
			hp.WristAboveShoulders = (lsh.Y+rsh.Y)/2 - hp.AvgWristHeight
		}
	}

	if lhp, ok := ls.Get(Mt.LeftHip); ok {
		if rhp, ok := ls.Get(Mt.RightHip); ok {
			hp.WristLateralOffset = avgX - (lhp.X+rhp.X)/2
		}
	}

	return hp, true
}
