package types

/*

	These are the "immutable" core types of Tempo,
	provided for cross-package use (e.g. Plugins) and testing.

	Struct constructors and all geometry live in their own
	packages. Methods taking these types should create local
	aliases, for example: type Reports []Mt.ScoreReport

*/

import "time"

// Joint is one of the fixed body points the external
// pose detector reports. The numbering is stable, it is
// used to index LandmarkSet arrays.
type Joint int

const (
	Nose Joint = iota
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	JointCount
)

// JointNames match the detector's wire names for each Joint
var JointNames = [JointCount]string{
	"nose",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
}

// Point3 is a detector coordinate, x and y are
// normalized to [0,1] of the frame, y grows downward.
type Point3 struct {
	X float64
	Y float64
	Z float64
}

// LandmarkSet is one frame's worth of detected joints.
// A nil *LandmarkSet means the detector found no body at all.
// Joints the detector did not report stay invisible.
type LandmarkSet struct {
	Points  [JointCount]Point3
	Visible [JointCount]bool
}

// Get returns the point for a joint and whether it was detected
func (ls *LandmarkSet) Get(j Joint) (Point3, bool) {
	if ls == nil || j < 0 || j >= JointCount {
		return Point3{}, false
	}
	return ls.Points[j], ls.Visible[j]
}

// Set marks a joint as detected at the given point
func (ls *LandmarkSet) Set(j Joint, p Point3) {
	if j < 0 || j >= JointCount {
		return
	}
	ls.Points[j] = p
	ls.Visible[j] = true
}

// MetricID indexes the fixed body-metric vector
type MetricID int

const (
	ShoulderTilt MetricID = iota
	HipTilt
	HipShoulderSeparation
	SpineAngle
	LeftKneeAngle
	RightKneeAngle
	LeftArmAngle
	RightArmAngle
	HeadSway
	LeftWristHeight
	RightWristHeight
	StanceWidth
	MetricCount
)

var MetricNames = [MetricCount]string{
	"shoulder_tilt",
	"hip_tilt",
	"hip_shoulder_separation",
	"spine_angle",
	"left_knee_angle",
	"right_knee_angle",
	"left_arm_angle",
	"right_arm_angle",
	"head_sway",
	"left_wrist_height",
	"right_wrist_height",
	"stance_width",
}

// BodyMetrics is the fixed vector of derived scalars for one frame.
// A metric whose source joints were missing stays zeroed with
// Present false, it is never an error.
type BodyMetrics struct {
	Values  [MetricCount]float64
	Present [MetricCount]bool
}

// Get returns a metric value and whether it could be derived
func (bm *BodyMetrics) Get(m MetricID) (float64, bool) {
	if m < 0 || m >= MetricCount {
		return 0, false
	}
	return bm.Values[m], bm.Present[m]
}

// Set records a derived metric
func (bm *BodyMetrics) Set(m MetricID, v float64) {
	if m < 0 || m >= MetricCount {
		return
	}
	bm.Values[m] = v
	bm.Present[m] = true
}

// Phase is one of the eight canonical swing phases, in order
type Phase int

const (
	Address Phase = iota
	Takeaway
	Backswing
	Top
	Downswing
	Impact
	FollowThrough
	Finish
	PhaseCount
)

var PhaseNames = [PhaseCount]string{
	"address",
	"takeaway",
	"backswing",
	"top",
	"downswing",
	"impact",
	"follow_through",
	"finish",
}

var PhaseDisplayNames = [PhaseCount]string{
	"Address",
	"Takeaway",
	"Backswing",
	"Top of Swing",
	"Downswing",
	"Impact",
	"Follow-Through",
	"Finish",
}

// HandProfile holds the auxiliary hand-position features,
// the most phase-discriminative signal in the whole vector
type HandProfile struct {
	AvgWristHeight      float64 // mean wrist y
	WristAboveShoulders float64 // mid-shoulder y minus mean wrist y
	WristLateralOffset  float64 // mean wrist x minus mid-hip x
}

// PhaseProfile is the curated reference appearance of one phase.
// Metrics.Present marks which metrics the profile defines.
type PhaseProfile struct {
	Metrics BodyMetrics
	Hands   HandProfile
}

// MetricBand is a tolerance band, (min_acceptable, ideal, max_acceptable)
type MetricBand struct {
	Min   float64
	Ideal float64
	Max   float64
}

// MetricRange is the tolerance table for one phase,
// a separate tuning surface from the PhaseProfile
type MetricRange map[MetricID]MetricBand

// PhaseAssignment maps each canonical phase to its representative
// absolute frame index. Indices are non-decreasing in phase order
// and always within [0, frame count).
type PhaseAssignment [PhaseCount]int

// Frame is a decoded grayscale frame buffer, row-major
type Frame struct {
	Width  int
	Height int
	Gray   []uint8
}

// PhaseScore is the scored result for one phase
type PhaseScore struct {
	Phase        string             `json:"phase"`
	DisplayName  string             `json:"display_name"`
	FrameIndex   int                `json:"frame_index"`
	Score        float64            `json:"score"`
	MetricScores map[string]float64 `json:"metric_scores"`
	GoodPoints   []string           `json:"good_points"`
	Issues       []string           `json:"issues"`
	WhyItMatters string             `json:"why_it_matters"`
	Tips         []string           `json:"improvement_tips"`
}

// ScoreReport is the full output of one analysis run
type ScoreReport struct {
	JobID     string       `json:"job_id"`
	Overall   float64      `json:"overall_score"`
	Comment   string       `json:"overall_comment"`
	Phases    []PhaseScore `json:"phases"`
	Quality   string       `json:"data_quality"`
	CreatedAt time.Time    `json:"created_at"`
}
