package plugin_test

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	Mp "github.com/maroda/tempo/plugin"
	Mt "github.com/maroda/tempo/types"
)

// makeTestReportStore gives an in-memory store with batch size 3
func makeTestReportStore(t *testing.T) (*Mp.ReportStore, func()) {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	assertError(t, err, nil)

	store := &Mp.ReportStore{
		DB:        db,
		BatchSize: 3,
		Buffer:    make([]*Mt.ScoreReport, 0, 3),
	}

	cleanup := func() {
		store.Close()
	}

	return store, cleanup
}

func makeTestReport(jobID string, created time.Time) *Mt.ScoreReport {
	return &Mt.ScoreReport{
		JobID:     jobID,
		Overall:   81.5,
		Comment:   "Good swing with some areas for improvement. Focus on the noted issues.",
		Quality:   "full",
		CreatedAt: created,
	}
}

func TestNewReportStore(t *testing.T) {
	t.Run("Creates new struct for output", func(t *testing.T) {
		got, err := Mp.NewReportStore(t.TempDir(), 10)
		assertError(t, err, nil)
		assertInt(t, got.BatchSize, 10)
		defer got.Close()
	})

	t.Run("Returns Type", func(t *testing.T) {
		store, closedb := makeTestReportStore(t)
		defer closedb()
		assertStringContains(t, store.Type(), "BadgerDB")
	})
}

func TestReportStore_WriteReport(t *testing.T) {
	t.Run("Writes report without error", func(t *testing.T) {
		store, closedb := makeTestReportStore(t)
		defer closedb()

		err := store.WriteReport(makeTestReport("aa00bb11", time.Now()))
		assertError(t, err, nil)
	})

	t.Run("Flushes at the batch size and reads back", func(t *testing.T) {
		store, closedb := makeTestReportStore(t)
		defer closedb()

		start := time.Now()
		// the test store batch size is 3
		for i, id := range []string{"job00aa", "job01bb", "job02cc"} {
			err := store.WriteReport(makeTestReport(id, start.Add(time.Duration(i)*time.Second)))
			assertError(t, err, nil)
		}

		reports, err := store.QueryRange(start.Add(-1*time.Second), start.Add(5*time.Second))
		assertError(t, err, nil)
		assertInt(t, len(reports), 3)
	})
}

func TestReportStore_Flush(t *testing.T) {
	store, closedb := makeTestReportStore(t)
	defer closedb()

	t.Run("Empty buffer flushes clean", func(t *testing.T) {
		assertError(t, store.Flush(), nil)
	})

	t.Run("Buffered report persists after flush", func(t *testing.T) {
		now := time.Now()
		assertError(t, store.WriteReport(makeTestReport("job03dd", now)), nil)
		assertError(t, store.Flush(), nil)

		reports, err := store.QueryRange(now.Add(-1*time.Second), now.Add(1*time.Second))
		assertError(t, err, nil)
		assertInt(t, len(reports), 1)
		assertStringContains(t, reports[0].JobID, "job03dd")
	})
}

func TestReportStore_QueryRange(t *testing.T) {
	store, closedb := makeTestReportStore(t)
	defer closedb()

	start := time.Now()
	for i, id := range []string{"job04ee", "job05ff", "job06aa"} {
		err := store.WriteReport(makeTestReport(id, start.Add(time.Duration(i)*time.Hour)))
		assertError(t, err, nil)
	}
	assertError(t, store.Flush(), nil)

	t.Run("Range filtering excludes outsiders", func(t *testing.T) {
		reports, err := store.QueryRange(start.Add(-time.Minute), start.Add(90*time.Minute))
		assertError(t, err, nil)
		assertInt(t, len(reports), 2)
	})

	t.Run("Empty range returns nothing", func(t *testing.T) {
		reports, err := store.QueryRange(start.Add(-2*time.Hour), start.Add(-time.Hour))
		assertError(t, err, nil)
		assertInt(t, len(reports), 0)
	})
}

func TestReportStore_GetReport(t *testing.T) {
	store, closedb := makeTestReportStore(t)
	defer closedb()

	now := time.Now()
	assertError(t, store.WriteReport(makeTestReport("job07bb", now)), nil)

	t.Run("Finds a buffered report before flush", func(t *testing.T) {
		got, err := store.GetReport("job07bb")
		assertError(t, err, nil)
		assertStringContains(t, got.JobID, "job07bb")
	})

	t.Run("Finds a flushed report", func(t *testing.T) {
		assertError(t, store.Flush(), nil)
		got, err := store.GetReport("job07bb")
		assertError(t, err, nil)
		assertStringContains(t, got.JobID, "job07bb")
	})

	t.Run("Unknown IDs return the sentinel", func(t *testing.T) {
		_, err := store.GetReport("nothere0")
		assertError(t, err, Mp.ErrReportNotFound)
	})
}

func TestReportRoundTrip(t *testing.T) {
	t.Run("Key sorts chronologically", func(t *testing.T) {
		early := Mp.ReportKey(makeTestReport("aaaa", time.Unix(100, 0)))
		late := Mp.ReportKey(makeTestReport("bbbb", time.Unix(200, 0)))
		if string(early) >= string(late) {
			t.Errorf("expected early key to sort before late key")
		}
	})

	t.Run("Encode and decode preserve the report", func(t *testing.T) {
		want := makeTestReport("job08cc", time.Now())
		got, err := Mp.ReportDecode(Mp.ReportEncode(want))
		assertError(t, err, nil)
		assertStringContains(t, got.JobID, want.JobID)
		if got.Overall != want.Overall {
			t.Errorf("overall score lost in round trip, got %f, want %f", got.Overall, want.Overall)
		}
	})
}
