package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/media"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/queue"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

// VideoWorker runs the asynchronous video pipeline off the request path:
// craft, submit, poll to completion, record the result. Job state moves
// strictly forward; every failure lands on the job record as a classified
// failure rather than bubbling into an asynq retry.
type VideoWorker struct {
	generator *media.VideoGenerator
	store     *media.JobStore
}

func NewVideoWorker(generator *media.VideoGenerator, store *media.JobStore) *VideoWorker {
	return &VideoWorker{generator: generator, store: store}
}

func (w *VideoWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.VideoGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	job, err := w.store.Get(ctx, payload.JobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", payload.JobID, err)
	}

	slog.Info("starting video job", "job_id", job.ID, "recipe", payload.Recipe.Title)

	job.Status = media.JobCrafting
	if err := w.store.Update(ctx, job); err != nil {
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}

	prompt := w.generator.CraftPrompt(ctx, payload.Recipe)
	job.Prompt = prompt

	ref, err := w.generator.Submit(ctx, prompt)
	if err != nil {
		return w.fail(ctx, job, err)
	}

	job.Status = media.JobGenerating
	if err := w.store.Update(ctx, job); err != nil {
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}

	uri, err := w.generator.Await(ctx, ref)
	if err != nil {
		return w.fail(ctx, job, err)
	}

	job.Status = media.JobReady
	job.VideoURI = uri
	if err := w.store.Update(ctx, job); err != nil {
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}

	slog.Info("video job complete", "job_id", job.ID)
	return nil
}

// fail records the classified failure on the job and swallows the error so
// asynq does not retry; the single-attempt policy holds for video jobs too.
func (w *VideoWorker) fail(ctx context.Context, job *media.Job, err error) error {
	f := recipe.AsFailure(err)
	slog.Error("video job failed", "job_id", job.ID, "kind", f.Kind, "error", err)
	if storeErr := w.store.MarkFailed(ctx, job, f); storeErr != nil {
		return fmt.Errorf("mark job %s failed: %w", job.ID, storeErr)
	}
	return nil
}
