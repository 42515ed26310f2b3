package tempo

import (
	"strings"

	Mt "github.com/maroda/tempo/types"
)

// metricFeedback holds the comment templates for one metric.
// BadLow empty means a low value is never a fault (head sway).
type metricFeedback struct {
	Good    string
	BadLow  string
	BadHigh string
	Why     string
	Tip     string
}

var feedbackTable = map[Mt.MetricID]metricFeedback{
	Mt.SpineAngle: {
		Good:    "Good spine angle maintained",
		BadLow:  "Spine too upright, bend more from the hips",
		BadHigh: "Excessive forward bend, risk of back strain and inconsistent contact",
		Why:     "Proper spine angle sets the swing plane and ensures consistent ball striking",
		Tip:     "Practice with a club across your shoulders, tilting from hips until club points at ball",
	},
	Mt.LeftArmAngle: {
		Good:    "Lead arm nicely extended",
		BadLow:  "Lead arm too bent, losing width and power",
		BadHigh: "Lead arm overly rigid, minor flex is natural",
		Why:     "A straight lead arm maximizes swing arc and clubhead speed",
		Tip:     "Feel like you're pushing the club away from your body during takeaway",
	},
	Mt.RightArmAngle: {
		Good:    "Trail arm properly folded",
		BadLow:  "Trail arm too tight, restricting backswing",
		BadHigh: "Trail arm flying out, losing connection",
		Why:     "Proper trail arm fold creates a powerful position at the top",
		Tip:     "Imagine holding a tray with your right hand at the top of backswing",
	},
	Mt.HipShoulderSeparation: {
		Good:    "Great X-factor (hip-shoulder separation)",
		BadLow:  "Limited rotation, losing potential power",
		BadHigh: "Over-rotation, may lose control and balance",
		Why:     "Hip-shoulder separation stores elastic energy for an explosive downswing",
		Tip:     "Focus on turning shoulders against a stable lower body",
	},
	Mt.ShoulderTilt: {
		Good:    "Shoulders properly level at setup",
		BadLow:  "Right shoulder too high, will promote a steep swing",
		BadHigh: "Left shoulder too high, may cause reverse pivot",
		Why:     "Shoulder alignment at address determines initial swing path",
		Tip:     "Let your trail arm naturally lower the trail shoulder slightly",
	},
	Mt.LeftKneeAngle: {
		Good:    "Proper knee flex for athletic stance",
		BadLow:  "Knees too bent, restricts rotation",
		BadHigh: "Legs too straight, reduces stability and power",
		Why:     "Athletic knee flex provides a stable base and allows hip rotation",
		Tip:     "Feel like you're sitting slightly on a bar stool, just a gentle flex",
	},
	Mt.RightKneeAngle: {
		Good:    "Trail leg properly flexed",
		BadLow:  "Trail knee too bent",
		BadHigh: "Trail leg too straight",
		Why:     "Trail knee flex supports weight transfer and pivot",
		Tip:     "Maintain slight flex in trail knee throughout backswing, resist straightening",
	},
	Mt.HeadSway: {
		Good:    "Excellent head stability",
		BadHigh: "Excessive head movement, hurts consistency",
		Why:     "A steady head keeps the swing center stable for clean contact",
		Tip:     "Focus on a spot behind the ball and keep your head centered over it",
	},
	Mt.StanceWidth: {
		Good:    "Good stance width for the club",
		BadLow:  "Stance too narrow, may lose balance",
		BadHigh: "Stance too wide, restricts hip turn",
		Why:     "Proper stance width balances stability with rotational freedom",
		Tip:     "For driver, feet should be roughly shoulder-width apart",
	},
}

const maxFeedbackItems = 3

// BuildPhaseFeedback assembles the natural-language feedback for one
// phase's scored frame. Metrics scoring 70+ read as good points, the
// rest as issues with a matching tip, capped at three apiece.
func BuildPhaseFeedback(phase Mt.Phase, frameIdx int, phaseScore float64, metricScores map[string]float64, bm *Mt.BodyMetrics, ranges Mt.MetricRange) Mt.PhaseScore {
	ps := Mt.PhaseScore{
		Phase:        Mt.PhaseNames[phase],
		DisplayName:  Mt.PhaseDisplayNames[phase],
		FrameIndex:   frameIdx,
		Score:        FloatPrecise(phaseScore, 1),
		MetricScores: metricScores,
	}

	var whys []string

	for m := Mt.MetricID(0); m < Mt.MetricCount; m++ {
		score, scored := metricScores[Mt.MetricNames[m]]
		if !scored {
			continue
		}
		fb, ok := feedbackTable[m]
		if !ok {
			continue
		}

		value := 0.0
		if bm != nil {
			value, _ = bm.Get(m)
		}
		ideal := 50.0
		if band, ok := ranges[m]; ok {
			ideal = band.Ideal
		}

		switch {
		case score >= 70:
			ps.GoodPoints = append(ps.GoodPoints, fb.Good)
		case value < ideal:
			if fb.BadLow == "" {
				// Below ideal on this metric is never a fault
				ps.GoodPoints = append(ps.GoodPoints, fb.Good)
				continue
			}
			ps.Issues = append(ps.Issues, fb.BadLow)
			ps.Tips = append(ps.Tips, fb.Tip)
			whys = append(whys, fb.Why)
		default:
			ps.Issues = append(ps.Issues, fb.BadHigh)
			ps.Tips = append(ps.Tips, fb.Tip)
			whys = append(whys, fb.Why)
		}
	}

	if len(ps.GoodPoints) == 0 {
		ps.GoodPoints = append(ps.GoodPoints,
			"Reasonable "+strings.ToLower(ps.DisplayName)+" position overall")
	}
	if len(ps.Issues) == 0 {
		ps.Issues = append(ps.Issues, "No major issues detected")
	}
	if len(ps.Tips) == 0 {
		ps.Tips = append(ps.Tips, "Continue practicing this stage with focus on consistency")
	}

	if len(whys) > 0 {
		ps.WhyItMatters = whys[0]
	} else {
		ps.WhyItMatters = "The " + strings.ToLower(ps.DisplayName) + " stage sets the foundation for the phases that follow"
	}

	ps.GoodPoints = capItems(ps.GoodPoints)
	ps.Issues = capItems(ps.Issues)
	ps.Tips = capItems(ps.Tips)

	return ps
}

// OverallComment grades the summary line off the weighted score
func OverallComment(overall float64) string {
	switch {
	case overall >= 85:
		return "Excellent swing! Your fundamentals are very strong."
	case overall >= 70:
		return "Good swing with some areas for improvement. Focus on the noted issues."
	case overall >= 55:
		return "Decent swing foundation. Work on the highlighted areas for significant improvement."
	default:
		return "Several areas need attention. Start with the lowest-scoring stages."
	}
}

func capItems(items []string) []string {
	if len(items) > maxFeedbackItems {
		return items[:maxFeedbackItems]
	}
	return items
}
