package tempo

import (
	"errors"
	"log/slog"
	"time"

	Mo "github.com/maroda/tempo/obvy"
	Mt "github.com/maroda/tempo/types"
)

// ReportSink receives completed reports for persistence.
// A nil sink is valid, reports are then returned only.
type ReportSink interface {
	WriteReport(r *Mt.ScoreReport) error
}

// Analyzer runs the full analysis for one clip:
// isolate, align, score, feedback, persist.
type Analyzer struct {
	Store *ProfileStore
	Stats *Mo.StatsInternal
	Sink  ReportSink
}

// NewAnalyzer wires the analysis engine with its profile source,
// stats registry, and report sink. Stats and Sink may be nil.
func NewAnalyzer(store *ProfileStore, stats *Mo.StatsInternal, sink ReportSink) (*Analyzer, error) {
	if store == nil {
		return nil, errors.New("analyzer needs a profile store")
	}
	return &Analyzer{Store: store, Stats: stats, Sink: sink}, nil
}

// Run analyzes one clip's pose sequence. The progress callback fires
// with a percentage and a human message as the stages complete, nil
// is fine. The only error surface is empty input, everything past
// that degrades through the quality branches.
func (a *Analyzer) Run(jobID string, poses []*Mt.LandmarkSet, frames []Mt.Frame, progress func(int, string)) (*Mt.ScoreReport, error) {
	start := time.Now()
	n := len(poses)
	if n == 0 {
		return nil, errors.New("no frames to analyze")
	}
	if progress == nil {
		progress = func(int, string) {}
	}

	progress(10, "Locating the swing...")
	assignment, quality := SegmentPhases(poses, n, frames, a.Store)

	progress(45, "Analyzing swing phases...")

	var phaseScores [Mt.PhaseCount]float64
	var present [Mt.PhaseCount]bool
	report := &Mt.ScoreReport{
		JobID:     jobID,
		Quality:   quality.String(),
		CreatedAt: time.Now().UTC(),
	}

	for p := Mt.Phase(0); p < Mt.PhaseCount; p++ {
		frameIdx := assignment[p]
		bm := ExtractBodyMetrics(poses[frameIdx])
		ranges := a.Store.Range(p)

		score, metricScores := ScorePhase(&bm, ranges)
		phaseScores[p] = score
		present[p] = true

		report.Phases = append(report.Phases,
			BuildPhaseFeedback(p, frameIdx, score, metricScores, &bm, ranges))

		progress(45+int(45*float64(p+1)/float64(Mt.PhaseCount)),
			"Analyzed "+Mt.PhaseDisplayNames[p]+"...")
	}

	report.Overall = ComputeOverallScore(phaseScores, present, a.Store.Weights)
	report.Comment = OverallComment(report.Overall)

	if a.Stats != nil {
		a.Stats.RecRun(quality.String())
		a.Stats.RecAnalysisTimer(time.Since(start))
	}

	if a.Sink != nil {
		if err := a.Sink.WriteReport(report); err != nil {
			// Persistence failure never blocks the caller's result
			slog.Error("Could not persist report",
				slog.String("JobID", jobID),
				slog.Any("Error", err))
		}
	}

	progress(100, "Analysis complete")

	slog.Info("Analysis run complete",
		slog.String("JobID", jobID),
		slog.String("Quality", quality.String()),
		slog.Float64("Overall", report.Overall),
		slog.Int64("DurationMS", time.Since(start).Milliseconds()))

	return report, nil
}
