package plugin

/*

	The Adapter sits aside /tempo/
	Contains core interfaces for Plugin

*/

import (
	"time"

	Mt "github.com/maroda/tempo/types"
)

// PoseSource decodes an external detector's landmark stream into the
// per-frame LandmarkSet sequence the engine consumes. A nil entry in
// the returned slice means no body was detected in that frame.
type PoseSource interface {
	Poses(raw []byte) ([]*Mt.LandmarkSet, error) // Parse one clip's worth of detector output
	Type() string                                // Unique ID for the source format
}

// OutputAdapter can be used to define a place for finished reports to
// go, one at a time or in batches if supported by the output type.
type OutputAdapter interface {
	WriteReport(r *Mt.ScoreReport) error                        // Write a single report
	WriteBatch(rs []*Mt.ScoreReport) error                      // Write batches of reports
	QueryRange(start, end time.Time) ([]*Mt.ScoreReport, error) // Time range query tool
	GetReport(jobID string) (*Mt.ScoreReport, error)            // Lookup by job ID
	Flush() error                                               // Flush any buffered data
	Close() error                                               // Close the adapter and release resources
	Type() string                                               // ID for output
}
