package api

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/cancer-registry-edits/internal/service"
)

// JobStatus is the lifecycle state of a background validation
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is the externally visible state of one validation request
type Job struct {
	ID        string             `json:"validation_id"`
	Status    JobStatus          `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Error     string             `json:"error,omitempty"`
	Report    *service.RunReport `json:"report,omitempty"`
}

// jobStore keeps recent jobs in memory. Entries expire after ttl or when the
// store is full; onEvict runs for every removed job.
type jobStore struct {
	cache *expirable.LRU[string, Job]
}

func newJobStore(size int, ttl time.Duration, onEvict func(id string)) *jobStore {
	var callback expirable.EvictCallback[string, Job]
	if onEvict != nil {
		callback = func(id string, _ Job) { onEvict(id) }
	}
	return &jobStore{cache: expirable.NewLRU[string, Job](size, callback, ttl)}
}

func (s *jobStore) create(id string) Job {
	now := time.Now().UTC()
	job := Job{ID: id, Status: JobPending, CreatedAt: now, UpdatedAt: now}
	s.cache.Add(id, job)
	return job
}

// update applies fn to the stored job. Only the job's runner goroutine updates it.
func (s *jobStore) update(id string, fn func(j *Job)) {
	job, ok := s.cache.Peek(id)
	if !ok {
		return
	}
	fn(&job)
	job.UpdatedAt = time.Now().UTC()
	s.cache.Add(id, job)
}

func (s *jobStore) get(id string) (Job, bool) {
	return s.cache.Get(id)
}

func (s *jobStore) len() int {
	return s.cache.Len()
}
