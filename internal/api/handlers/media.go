package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/media"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/queue"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

// videoJobStore is the slice of the job store the handler needs.
// *media.JobStore satisfies it.
type videoJobStore interface {
	Create(ctx context.Context, id string, r *recipe.Recipe) (*media.Job, error)
	Get(ctx context.Context, id string) (*media.Job, error)
	MarkFailed(ctx context.Context, job *media.Job, f *recipe.Failure) error
}

// videoEnqueuer hands a recorded job to the worker. *queue.Client
// satisfies it.
type videoEnqueuer interface {
	EnqueueVideoGenerate(payload queue.VideoGeneratePayload) error
}

type MediaHandler struct {
	imageGen *media.ImageGenerator
	videoGen *media.VideoGenerator
	jobs     videoJobStore
	queue    videoEnqueuer
}

func NewMediaHandler(imageGen *media.ImageGenerator, videoGen *media.VideoGenerator, jobs videoJobStore, qc videoEnqueuer) *MediaHandler {
	return &MediaHandler{imageGen: imageGen, videoGen: videoGen, jobs: jobs, queue: qc}
}

func decodeRecipe(w http.ResponseWriter, r *http.Request) *recipe.Recipe {
	var rec recipe.Recipe
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return nil
	}
	if missing := rec.MissingFields(); len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "recipe is missing required fields: " + strings.Join(missing, ", "),
		})
		return nil
	}
	return &rec
}

// GenerateImage runs the synchronous image pipeline for a completed recipe.
func (h *MediaHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	rec := decodeRecipe(w, r)
	if rec == nil {
		return
	}

	result, err := h.imageGen.Generate(r.Context(), rec)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SubmitVideo records a queued job and hands it to the worker.
func (h *MediaHandler) SubmitVideo(w http.ResponseWriter, r *http.Request) {
	rec := decodeRecipe(w, r)
	if rec == nil {
		return
	}

	jobID := uuid.NewString()
	job, err := h.jobs.Create(r.Context(), jobID, rec)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not record video job"})
		return
	}

	if err := h.queue.EnqueueVideoGenerate(queue.VideoGeneratePayload{JobID: jobID, Recipe: rec}); err != nil {
		// The record was written as queued but no worker will ever pick it
		// up; mark it failed so a later status read does not report a
		// phantom job.
		if failErr := h.jobs.MarkFailed(r.Context(), job,
			recipe.NewFailure(recipe.ProviderError, "video job could not be queued")); failErr != nil {
			slog.Error("could not mark orphaned video job failed", "job_id", jobID, "error", failErr)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not enqueue video job"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

// videoStatusResponse is the job record as served to clients. The signed
// URL only exists on this response; the stored record stays credential-free.
type videoStatusResponse struct {
	ID       string          `json:"id"`
	Status   media.JobStatus `json:"status"`
	Prompt   string          `json:"prompt,omitempty"`
	VideoURL string          `json:"video_url,omitempty"`
	Error    *failureBody    `json:"error,omitempty"`
}

// VideoStatus reports job state; for a ready job the download reference is
// signed with the provider credential at this moment, not earlier.
func (h *MediaHandler) VideoStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid job ID"})
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, media.ErrJobNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "video job not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load video job"})
		return
	}

	resp := videoStatusResponse{
		ID:     job.ID,
		Status: job.Status,
		Prompt: job.Prompt,
	}
	if job.Status == media.JobReady {
		resp.VideoURL = h.videoGen.SignURL(job.VideoURI)
	}
	if job.Status == media.JobFailed {
		resp.Error = &failureBody{Kind: job.ErrorKind, Message: job.ErrorMessage}
	}

	writeJSON(w, http.StatusOK, resp)
}
