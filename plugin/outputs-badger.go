package plugin

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	Mt "github.com/maroda/tempo/types"
)

type ReportStore struct {
	MU        sync.Mutex
	DB        *badger.DB
	BatchSize int
	Buffer    []*Mt.ScoreReport
}

func NewReportStore(path string, batchSize int) (*ReportStore, error) {
	opts := badger.DefaultOptions(path).
		WithCompression(options.ZSTD).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		slog.Error("ReportStore failed to open database", slog.Any("error", err))
		return nil, fmt.Errorf("database error: %w", err)
	}

	slog.Info("ReportStore opened",
		slog.String("path", path),
		slog.Int("batchSize", batchSize))

	return &ReportStore{
		DB:        db,
		BatchSize: batchSize,
		Buffer:    make([]*Mt.ScoreReport, 0, batchSize),
	}, nil
}

// WriteReport queues up a batch of reports,
// when batchsize is reached, it calls Flush()
// which calls WriteBatch() with the new batch
func (rs *ReportStore) WriteReport(r *Mt.ScoreReport) error {
	rs.MU.Lock()
	defer rs.MU.Unlock()

	rs.Buffer = append(rs.Buffer, r)
	if len(rs.Buffer) >= rs.BatchSize {
		return rs.flushLocked() // private Flush that does not lock
	}
	return nil
}

// WriteBatch performs the key/value creation to be stored
// and actually calls BadgerDB to write the data
func (rs *ReportStore) WriteBatch(reports []*Mt.ScoreReport) error {
	wb := rs.DB.NewWriteBatch()
	defer wb.Cancel()

	for _, r := range reports {
		k := ReportKey(r)
		v := ReportEncode(r)
		if err := wb.Set(k, v); err != nil {
			slog.Error("ReportStore failed to set key in batch",
				slog.Any("error", err),
				slog.Time("created", r.CreatedAt),
				slog.String("jobID", r.JobID))
			return fmt.Errorf("write batch error: %w", err)
		}
	}

	if err := wb.Flush(); err != nil {
		slog.Error("ReportStore failed to flush batch", slog.Any("error", err))
		return fmt.Errorf("batch flush error: %w", err)
	}

	return nil
}

// Flush is the public method that blocks,
// it sends data to WriteBatch and then clears the buffer
func (rs *ReportStore) Flush() error {
	rs.MU.Lock()
	defer rs.MU.Unlock()

	if len(rs.Buffer) == 0 {
		return nil
	}

	err := rs.WriteBatch(rs.Buffer) // Delegate to WriteBatch
	rs.Buffer = rs.Buffer[:0]       // Clear but keep capacity
	return err
}

// flushLocked mimics Flush without locking, called by WriteReport
func (rs *ReportStore) flushLocked() error {
	err := rs.WriteBatch(rs.Buffer) // Delegate to WriteBatch
	rs.Buffer = rs.Buffer[:0]       // Clear but keep capacity
	return err
}

// Close returns a Flush error but still attempts to close
func (rs *ReportStore) Close() error {
	slog.Info("ReportStore closing, flushing buffer",
		slog.Int("bufferSize", len(rs.Buffer)))
	flushErr := rs.Flush()
	closeErr := rs.DB.Close()

	if flushErr != nil {
		slog.Error("ReportStore failed to flush on close", slog.Any("error", flushErr))
		return fmt.Errorf("flush failed, close may have failed: %v", flushErr)
	}

	if closeErr != nil {
		slog.Error("ReportStore failed to close database", slog.Any("error", closeErr))
		return fmt.Errorf("close failed: %v", closeErr)
	}

	slog.Info("ReportStore closed successfully")
	return nil
}

func (rs *ReportStore) Type() string { return "BadgerDB" }

// ReportKey creates a composite key
// timestamp + first eight chars of the job ID
func ReportKey(r *Mt.ScoreReport) []byte {
	key := make([]byte, 8+8)

	// Using positive BigEndian integer to convert timestamp
	// so keys can be sorted chronologically by BadgerDB
	binary.BigEndian.PutUint64(key[0:8], uint64(r.CreatedAt.UnixNano()))

	// Keep the job ID at eight chars
	jBytes := []byte(r.JobID)
	n := len(jBytes)
	if n > 8 {
		n = 8
	}
	copy(key[8:8+n], jBytes[:n])

	return key
}

// ReportEncode serializes the report struct for data storage
func ReportEncode(r *Mt.ScoreReport) []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	enc.Encode(r)
	return buf.Bytes()
}

// ReportDecode deserializes the report data
func ReportDecode(data []byte) (*Mt.ScoreReport, error) {
	var r Mt.ScoreReport
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	err := dec.Decode(&r)
	return &r, err
}

// QueryRange retrieves reports within a time range
func (rs *ReportStore) QueryRange(start, end time.Time) ([]*Mt.ScoreReport, error) {
	var reports []*Mt.ScoreReport

	// db.View() callback
	// BadgerDB provides a transaction in which to get item.Value()
	err := rs.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			// item.Value() callback
			// BadgerDB passes bytes to the anon func
			err := item.Value(func(val []byte) error {
				report, err := ReportDecode(val)
				if err != nil {
					slog.Error("ReportStore failed to decode report", slog.Any("error", err))
					return fmt.Errorf("report decode error: %w", err)
				}

				// Filter by time range
				if report.CreatedAt.After(start) && report.CreatedAt.Before(end) {
					reports = append(reports, report)
				}

				return nil
			})
			if err != nil {
				slog.Error("ReportStore callback failure", slog.Any("error", err))
				return fmt.Errorf("item data error: %w", err)
			}
		}
		return nil
	})

	slog.Info("ReportStore QueryRange successful", slog.Int("count", len(reports)))

	return reports, err
}

// ErrReportNotFound is returned by GetReport when no key matches
var ErrReportNotFound = errors.New("report not found")

// GetReport scans for a report by its job ID.
// Buffered reports not yet flushed are checked first.
func (rs *ReportStore) GetReport(jobID string) (*Mt.ScoreReport, error) {
	rs.MU.Lock()
	for _, r := range rs.Buffer {
		if r.JobID == jobID {
			rs.MU.Unlock()
			return r, nil
		}
	}
	rs.MU.Unlock()

	var found *Mt.ScoreReport
	err := rs.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				report, err := ReportDecode(val)
				if err != nil {
					return fmt.Errorf("report decode error: %w", err)
				}
				if report.JobID == jobID {
					found = report
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("item data error: %w", err)
			}
			if found != nil {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrReportNotFound
	}
	return found, nil
}
