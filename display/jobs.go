package tempo

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	Mt "github.com/maroda/tempo/types"
)

// Job lifecycle states
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// Job tracks one analysis from submission to result
type Job struct {
	ID        string          `json:"job_id"`
	Status    string          `json:"status"`
	Progress  int             `json:"progress"`
	Message   string          `json:"message"`
	Result    *Mt.ScoreReport `json:"-"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// JobManager holds in-flight and finished jobs in memory.
// Finished results also land in the report store, this map is
// the fast path for the polling UI.
type JobManager struct {
	MU   sync.RWMutex
	Jobs map[string]*Job
}

func NewJobManager() *JobManager {
	return &JobManager{Jobs: make(map[string]*Job)}
}

// NewJobID returns an 8-char hex identifier
func NewJobID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Create registers a new queued job and returns it
func (jm *JobManager) Create() *Job {
	job := &Job{
		ID:        NewJobID(),
		Status:    JobQueued,
		Message:   "Queued for analysis",
		CreatedAt: time.Now().UTC(),
	}

	jm.MU.Lock()
	jm.Jobs[job.ID] = job
	jm.MU.Unlock()

	return job
}

// Get returns a snapshot copy of a job's state
func (jm *JobManager) Get(id string) (Job, bool) {
	jm.MU.RLock()
	defer jm.MU.RUnlock()

	job, ok := jm.Jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Update moves a job's progress and message, marking it processing
func (jm *JobManager) Update(id string, progress int, message string) {
	jm.MU.Lock()
	defer jm.MU.Unlock()

	job, ok := jm.Jobs[id]
	if !ok {
		return
	}
	job.Status = JobProcessing
	job.Progress = progress
	job.Message = message
}

// Complete attaches the finished report
func (jm *JobManager) Complete(id string, result *Mt.ScoreReport) {
	jm.MU.Lock()
	defer jm.MU.Unlock()

	job, ok := jm.Jobs[id]
	if !ok {
		return
	}
	job.Status = JobCompleted
	job.Progress = 100
	job.Message = "Analysis complete"
	job.Result = result
}

// Fail marks the job failed with its error text
func (jm *JobManager) Fail(id string, errText string) {
	jm.MU.Lock()
	defer jm.MU.Unlock()

	job, ok := jm.Jobs[id]
	if !ok {
		return
	}
	job.Status = JobFailed
	job.Message = "Analysis failed"
	job.Error = errText
}
