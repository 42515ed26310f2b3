package tempo

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	Mo "github.com/maroda/tempo/obvy"
	Mp "github.com/maroda/tempo/plugin"
	Ms "github.com/maroda/tempo/server"
)

// maxUploadBytes bounds a single detector-output upload
const maxUploadBytes = 32 << 20

// View serves the analysis data:
// - Prometheus metric endpoint
// - Websocket streaming job progress
// - Analysis job REST lifecycle
// - Stored report queries
type View struct {
	Analyzer *Ms.Analyzer
	Jobs     *JobManager
	Source   Mp.PoseSource
	Store    *Mp.ReportStore
	Stats    *Mo.StatsInternal
	server   *http.Server
}

// NewView wires the data server around an analyzer
func NewView(a *Ms.Analyzer, source Mp.PoseSource, store *Mp.ReportStore, stats *Mo.StatsInternal) (*View, error) {
	if a == nil {
		slog.Error("Could not get an Analyzer for display")
		return nil, errors.New("analyzer not found")
	}
	if stats == nil {
		stats = Mo.NewStatsInternal()
	}

	return &View{
		Analyzer: a,
		Jobs:     NewJobManager(),
		Source:   source,
		Store:    store,
		Stats:    stats,
	}, nil
}

// SetupMux handles all data serving
func (v *View) SetupMux() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", v.Stats.Handler())
	r.HandleFunc("/ws/{id}", v.WebsocketHandler)
	r.HandleFunc("/api/health", v.HealthHandler)
	r.HandleFunc("/api/version", v.VersionHandler)
	r.HandleFunc("/api/analyze", v.AnalyzeHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/status/{id}", v.StatusHandler)
	r.HandleFunc("/api/result/{id}", v.ResultHandler)
	r.HandleFunc("/api/reports", v.ReportsHandler)

	// Static files for the web frontend
	r.PathPrefix("/").Handler(http.FileServer(http.Dir("./web/")))

	api := r.PathPrefix("/api").Subrouter()
	api.Use(v.StatsMiddleware)

	return r
}

var Version = "dev"

func (v *View) VersionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"version": Version})
}

func (v *View) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// AnalyzeHandler accepts one clip's detector output and starts an
// analysis job. The response carries the job ID for status polling,
// the work itself runs in a goroutine.
func (v *View) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, "could not read upload", http.StatusBadRequest)
		return
	}

	poses, err := v.Source.Poses(raw)
	if err != nil {
		slog.Error("Could not parse pose upload", slog.Any("Error", err))
		http.Error(w, "could not parse pose data", http.StatusBadRequest)
		return
	}
	if len(poses) == 0 {
		http.Error(w, "no frames in upload", http.StatusBadRequest)
		return
	}

	job := v.Jobs.Create()

	go func() {
		result, err := v.Analyzer.Run(job.ID, poses, nil, func(pct int, msg string) {
			v.Jobs.Update(job.ID, pct, msg)
		})
		if err != nil {
			slog.Error("Analysis job failed",
				slog.String("JobID", job.ID),
				slog.Any("Error", err))
			v.Jobs.Fail(job.ID, err.Error())
			return
		}
		v.Jobs.Complete(job.ID, result)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"job_id": job.ID})
}

func (v *View) StatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, ok := v.Jobs.Get(id)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

func (v *View) ResultHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, ok := v.Jobs.Get(id)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	if job.Status != JobCompleted || job.Result == nil {
		http.Error(w, "job not completed", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Result)
}

// ReportsHandler queries the persisted report store by time range.
// Defaults to the trailing 24 hours, override with ?hours=N.
func (v *View) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	if v.Store == nil {
		http.Error(w, "no report store configured", http.StatusServiceUnavailable)
		return
	}

	hours := 24
	if h := r.URL.Query().Get("hours"); h != "" {
		parsed, err := strconv.Atoi(h)
		if err != nil || parsed < 1 {
			http.Error(w, "bad hours parameter", http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	end := time.Now().UTC().Add(time.Minute)
	start := end.Add(-time.Duration(hours) * time.Hour)

	reports, err := v.Store.QueryRange(start, end)
	if err != nil {
		slog.Error("Report query failed", slog.Any("Error", err))
		http.Error(w, "report query failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}

// RespWriter is a wrapper with StatsMiddleware, used for Prometheus
type RespWriter struct {
	http.ResponseWriter
	Status int
}

// WriteHeader is a helper for StatsMiddleware, used for Prometheus
func (w *RespWriter) WriteHeader(status int) {
	w.Status = status
	w.ResponseWriter.WriteHeader(status)
}

// Write is a helper for StatsMiddleware, used for Prometheus
func (w *RespWriter) Write(b []byte) (int, error) {
	return w.ResponseWriter.Write(b)
}

func (v *View) StatsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &RespWriter{
			ResponseWriter: w,
			Status:         200,
		}
		next.ServeHTTP(wrapped, r)

		v.Stats.RecWWW(strconv.Itoa(wrapped.Status), r.Method)
	})
}

// StartWeb runs the data server, blocking. Handlers are wrapped
// for tracing so every request carries a span.
func (v *View) StartWeb(addr string) error {
	v.server = &http.Server{
		Addr:    addr,
		Handler: otelhttp.NewHandler(v.SetupMux(), "tempo-www"),
	}

	slog.Info("Starting Tempo web server...", slog.String("Port", addr))
	if err := v.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Could not start web server", slog.Any("Error", err))
		return err
	}

	return nil
}
