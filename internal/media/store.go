package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

// JobStatus is the lifecycle of an asynchronous video job. Transitions are
// strictly linear: queued -> crafting -> generating -> (ready | failed).
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobCrafting   JobStatus = "crafting"
	JobGenerating JobStatus = "generating"
	JobReady      JobStatus = "ready"
	JobFailed     JobStatus = "failed"
)

// Job is the stored record of a video generation job. VideoURI is the bare
// download reference; the access credential is appended only when the job
// is read back and served, never stored.
type Job struct {
	ID           string             `json:"id"`
	Status       JobStatus          `json:"status"`
	Recipe       *recipe.Recipe     `json:"recipe"`
	Prompt       string             `json:"prompt,omitempty"`
	VideoURI     string             `json:"video_uri,omitempty"`
	ErrorKind    recipe.FailureKind `json:"error_kind,omitempty"`
	ErrorMessage string             `json:"error_message,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ErrJobNotFound is returned for unknown or expired job IDs.
var ErrJobNotFound = errors.New("video job not found")

// JobStore keeps video job records in Redis for the retrieval window.
// Records expire with the TTL; an expired job is indistinguishable from
// one that never existed. Recipes themselves are never persisted outside
// these job snapshots.
type JobStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewJobStore(rdb *redis.Client, ttl time.Duration) *JobStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobStore{rdb: rdb, ttl: ttl}
}

func jobKey(id string) string { return "media:video:job:" + id }

// Create records a new queued job for the given recipe snapshot.
func (s *JobStore) Create(ctx context.Context, id string, r *recipe.Recipe) (*Job, error) {
	now := time.Now().UTC()
	job := &Job{
		ID:        id,
		Status:    JobQueued,
		Recipe:    r,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.put(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Get fetches a job record.
func (s *JobStore) Get(ctx context.Context, id string) (*Job, error) {
	data, err := s.rdb.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

// Update writes the job back with a fresh UpdatedAt. Each write renews the
// TTL, so the retrieval window counts from the last state change.
func (s *JobStore) Update(ctx context.Context, job *Job) error {
	job.UpdatedAt = time.Now().UTC()
	return s.put(ctx, job)
}

// MarkFailed records a classified failure on the job.
func (s *JobStore) MarkFailed(ctx context.Context, job *Job, f *recipe.Failure) error {
	job.Status = JobFailed
	job.ErrorKind = f.Kind
	job.ErrorMessage = f.Message
	return s.Update(ctx, job)
}

func (s *JobStore) put(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	if err := s.rdb.Set(ctx, jobKey(job.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store job %s: %w", job.ID, err)
	}
	return nil
}
