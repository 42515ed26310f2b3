package tempo

import (
	"math"

	Mt "github.com/maroda/tempo/types"
)

const (
	// neutralScore is assigned when a metric could not be derived,
	// missing data is neither rewarded nor punished
	neutralScore = 70.0

	// minSigma keeps the z computation finite for degenerate bands
	minSigma = 1e-6
)

// ScoreMetric grades one observed value against its tolerance band.
// The band is asymmetric: the falloff below ideal uses the min side,
// above ideal the max side, the full half-band treated as one sigma.
// That lands ~61 at the band edge with gentle decay beyond it.
func ScoreMetric(value float64, band Mt.MetricBand) float64 {
	if math.Abs(value-band.Ideal) < minSigma {
		return 100
	}

	var sigma float64
	if value < band.Ideal {
		sigma = band.Ideal - band.Min
	} else {
		sigma = band.Max - band.Ideal
	}
	if sigma < minSigma {
		sigma = 1
	}

	z := (value - band.Ideal) / sigma
	return Clamp(100*math.Exp(-0.5*z*z), 0, 100)
}

// ScorePhase grades one phase's representative frame against its
// tolerance table. Metrics the frame could not derive score neutral.
// A phase with no tolerance table at all is also neutral.
func ScorePhase(bm *Mt.BodyMetrics, ranges Mt.MetricRange) (float64, map[string]float64) {
	scores := make(map[string]float64, len(ranges))
	if len(ranges) == 0 {
		// A phase with no tuning table yet
		return 75, scores
	}

	total := 0.0
	for m, band := range ranges {
		score := neutralScore
		if bm != nil {
			if v, ok := bm.Get(m); ok {
				score = ScoreMetric(v, band)
			}
		}
		scores[Mt.MetricNames[m]] = FloatPrecise(score, 1)
		total += score
	}

	return total / float64(len(ranges)), scores
}

// ComputeOverallScore combines the per-phase scores under the fixed
// phase weights, renormalized over the phases actually present, and
// rounds to one decimal for the wire
func ComputeOverallScore(phaseScores [Mt.PhaseCount]float64, present [Mt.PhaseCount]bool, weights [Mt.PhaseCount]float64) float64 {
	sum := 0.0
	weightSum := 0.0
	for p := 0; p < int(Mt.PhaseCount); p++ {
		if !present[p] {
			continue
		}
		sum += phaseScores[p] * weights[p]
		weightSum += weights[p]
	}
	if weightSum == 0 {
		return neutralScore
	}
	return FloatPrecise(sum/weightSum, 1)
}
