package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/auth"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/config"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/extract"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/media"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/queue"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

const extractReply = `{
	"title": "Carbonara",
	"description": "Roman pasta with eggs, guanciale, and pecorino.",
	"ingredients": ["spaghetti", "guanciale", "eggs", "pecorino"],
	"instructions": ["Render the guanciale.", "Toss pasta with the egg mixture off heat."],
	"servings": "2",
	"prepTime": "10 minutes",
	"cookTime": "15 minutes"
}`

type fakeTextProvider struct {
	calls int
	reply string
	err   error
}

func (f *fakeTextProvider) Name() string { return "fake-text" }

func (f *fakeTextProvider) Complete(context.Context, llm.TextRequest) (*llm.TextResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.TextResponse{Provider: f.Name(), Content: f.reply}, nil
}

type fakeVisionProvider struct {
	calls int
	reply string
}

func (f *fakeVisionProvider) Name() string { return "fake-vision" }

func (f *fakeVisionProvider) AnalyzeMedia(context.Context, llm.VisionRequest) (*llm.TextResponse, error) {
	f.calls++
	return &llm.TextResponse{Provider: f.Name(), Content: f.reply}, nil
}

type fakeMediaProvider struct {
	imageURL string
	imageErr error
}

func (f *fakeMediaProvider) Name() string { return "fake-media" }

func (f *fakeMediaProvider) GenerateImage(context.Context, string, string) (*llm.ImageResult, error) {
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return &llm.ImageResult{Provider: f.Name(), URL: f.imageURL}, nil
}

func (f *fakeMediaProvider) SubmitVideo(context.Context, string, string) (string, error) {
	return "op-1", nil
}

func (f *fakeMediaProvider) PollVideo(context.Context, string) (*llm.VideoOperation, error) {
	return &llm.VideoOperation{Ref: "op-1", Done: true, URI: "https://v.example/v.mp4"}, nil
}

func (f *fakeMediaProvider) SignURL(uri string) string { return uri + "?key=secret" }

func newRecipeHandler(text *fakeTextProvider, vision *fakeVisionProvider) *RecipeHandler {
	var tp llm.TextProvider
	if text != nil {
		tp = text
	}
	var vp llm.VisionProvider
	if vision != nil {
		vp = vision
	}
	gw := llm.NewGatewayWithProviders(tp, vp, nil)
	return NewRecipeHandler(extract.NewOrchestrator(gw, config.ExtractionConfig{}, config.ProvidersConfig{}))
}

func multipartBody(t *testing.T, text string, filename, fileMime string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if text != "" {
		require.NoError(t, mw.WriteField("text", text))
	}
	if fileData != nil {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
		h["Content-Type"] = []string{fileMime}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) failureBody {
	t.Helper()
	var body struct {
		Error failureBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestRecipeExtractHandler(t *testing.T) {
	t.Run("text submission returns the structured recipe", func(t *testing.T) {
		text := &fakeTextProvider{reply: extractReply}
		h := newRecipeHandler(text, &fakeVisionProvider{})

		body, contentType := multipartBody(t, "carbonara recipe...", "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/extract", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		h.Extract(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got recipe.Recipe
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Carbonara", got.Title)
		assert.Empty(t, got.MissingFields())
		assert.Equal(t, 1, text.calls)
	})

	t.Run("empty submission is 400 with zero provider calls", func(t *testing.T) {
		text := &fakeTextProvider{}
		vision := &fakeVisionProvider{}
		h := newRecipeHandler(text, vision)

		body, contentType := multipartBody(t, "", "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/extract", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		h.Extract(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, recipe.EmptyInput, decodeError(t, rec).Kind)
		assert.Zero(t, text.calls)
		assert.Zero(t, vision.calls)
	})

	t.Run("unsupported file type is 400 with zero provider calls", func(t *testing.T) {
		text := &fakeTextProvider{}
		vision := &fakeVisionProvider{}
		h := newRecipeHandler(text, vision)

		body, contentType := multipartBody(t, "", "recipe.docx", "application/msword", []byte{1, 2, 3})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/extract", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		h.Extract(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, recipe.UnsupportedMediaType, decodeError(t, rec).Kind)
		assert.Zero(t, text.calls)
		assert.Zero(t, vision.calls)
	})

	t.Run("image upload goes through the vision path", func(t *testing.T) {
		text := &fakeTextProvider{}
		vision := &fakeVisionProvider{reply: extractReply}
		h := newRecipeHandler(text, vision)

		body, contentType := multipartBody(t, "", "photo.jpg", "image/jpeg", []byte{0xFF, 0xD8})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/extract", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		h.Extract(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, vision.calls)
		assert.Zero(t, text.calls)
	})

	t.Run("malformed model output is 422 with the raw reply", func(t *testing.T) {
		text := &fakeTextProvider{reply: "Sorry, I can't help with that."}
		h := newRecipeHandler(text, &fakeVisionProvider{})

		body, contentType := multipartBody(t, "carbonara", "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/extract", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		h.Extract(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		errBody := decodeError(t, rec)
		assert.Equal(t, recipe.MalformedModelOutput, errBody.Kind)
		assert.Equal(t, "Sorry, I can't help with that.", errBody.RawOutput)
	})

	t.Run("missing text credential is 412", func(t *testing.T) {
		h := newRecipeHandler(nil, &fakeVisionProvider{})

		body, contentType := multipartBody(t, "carbonara", "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/extract", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		h.Extract(rec, req)

		assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
		assert.Equal(t, recipe.CredentialNotReady, decodeError(t, rec).Kind)
	})
}

func TestMediaGenerateImageHandler(t *testing.T) {
	validRecipe := `{
		"title": "Carbonara",
		"description": "Roman pasta.",
		"ingredients": ["spaghetti"],
		"instructions": ["Cook."]
	}`

	newHandler := func(mp llm.MediaProvider, tp llm.TextProvider) *MediaHandler {
		gw := llm.NewGatewayWithProviders(tp, nil, mp)
		crafter := media.NewCrafter(gw, "")
		return NewMediaHandler(media.NewImageGenerator(gw, crafter, ""), nil, nil, nil)
	}

	t.Run("returns the generated image and its prompt", func(t *testing.T) {
		mp := &fakeMediaProvider{imageURL: "https://img.example/c.png"}
		h := newHandler(mp, &fakeTextProvider{reply: "Macro shot of carbonara."})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/image", strings.NewReader(validRecipe))
		rec := httptest.NewRecorder()
		h.GenerateImage(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got media.ImageResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "https://img.example/c.png", got.URL)
		assert.Equal(t, "Macro shot of carbonara.", got.Prompt)
	})

	t.Run("invalid body is 400", func(t *testing.T) {
		h := newHandler(&fakeMediaProvider{}, &fakeTextProvider{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/image", strings.NewReader("not json"))
		rec := httptest.NewRecorder()
		h.GenerateImage(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("recipe missing required fields is 400", func(t *testing.T) {
		h := newHandler(&fakeMediaProvider{}, &fakeTextProvider{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/image",
			strings.NewReader(`{"title":"Carbonara"}`))
		rec := httptest.NewRecorder()
		h.GenerateImage(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing media credential is 412", func(t *testing.T) {
		h := newHandler(nil, &fakeTextProvider{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/image", strings.NewReader(validRecipe))
		rec := httptest.NewRecorder()
		h.GenerateImage(rec, req)

		assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
		assert.Equal(t, recipe.CredentialNotReady, decodeError(t, rec).Kind)
	})

	t.Run("provider failure is 502", func(t *testing.T) {
		mp := &fakeMediaProvider{imageErr: assert.AnError}
		h := newHandler(mp, &fakeTextProvider{reply: "p"})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/image", strings.NewReader(validRecipe))
		rec := httptest.NewRecorder()
		h.GenerateImage(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, recipe.ProviderError, decodeError(t, rec).Kind)
	})
}

type fakeJobStore struct {
	jobs map[string]*media.Job
}

func newFakeJobStore() *fakeJobStore { return &fakeJobStore{jobs: map[string]*media.Job{}} }

func (s *fakeJobStore) Create(_ context.Context, id string, r *recipe.Recipe) (*media.Job, error) {
	job := &media.Job{ID: id, Status: media.JobQueued, Recipe: r}
	s.jobs[id] = job
	return job, nil
}

func (s *fakeJobStore) Get(_ context.Context, id string) (*media.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, media.ErrJobNotFound
	}
	return job, nil
}

func (s *fakeJobStore) MarkFailed(_ context.Context, job *media.Job, f *recipe.Failure) error {
	job.Status = media.JobFailed
	job.ErrorKind = f.Kind
	job.ErrorMessage = f.Message
	s.jobs[job.ID] = job
	return nil
}

type fakeEnqueuer struct {
	err      error
	payloads []queue.VideoGeneratePayload
}

func (f *fakeEnqueuer) EnqueueVideoGenerate(p queue.VideoGeneratePayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

func TestMediaSubmitVideoHandler(t *testing.T) {
	validRecipe := `{
		"title": "Carbonara",
		"description": "Roman pasta.",
		"ingredients": ["spaghetti"],
		"instructions": ["Cook."]
	}`

	submittedJobID := func(t *testing.T, rec *httptest.ResponseRecorder) string {
		t.Helper()
		var body struct {
			JobID  string `json:"job_id"`
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body.JobID
	}

	t.Run("records a queued job and hands it to the worker", func(t *testing.T) {
		jobs := newFakeJobStore()
		q := &fakeEnqueuer{}
		h := NewMediaHandler(nil, nil, jobs, q)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/video", strings.NewReader(validRecipe))
		rec := httptest.NewRecorder()
		h.SubmitVideo(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)
		jobID := submittedJobID(t, rec)
		require.NotEmpty(t, jobID)

		require.Len(t, q.payloads, 1)
		assert.Equal(t, jobID, q.payloads[0].JobID)

		job, err := jobs.Get(context.Background(), jobID)
		require.NoError(t, err)
		assert.Equal(t, media.JobQueued, job.Status)
	})

	t.Run("enqueue failure marks the recorded job failed", func(t *testing.T) {
		jobs := newFakeJobStore()
		q := &fakeEnqueuer{err: assert.AnError}
		h := NewMediaHandler(nil, nil, jobs, q)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/video", strings.NewReader(validRecipe))
		rec := httptest.NewRecorder()
		h.SubmitVideo(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		// The record must not linger as queued: no worker will ever run it.
		require.Len(t, jobs.jobs, 1)
		for _, job := range jobs.jobs {
			assert.Equal(t, media.JobFailed, job.Status)
			assert.Equal(t, recipe.ProviderError, job.ErrorKind)
		}
	})

	t.Run("status of an orphaned job reports the failure", func(t *testing.T) {
		jobs := newFakeJobStore()
		h := NewMediaHandler(nil, nil, jobs, &fakeEnqueuer{err: assert.AnError})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/video", strings.NewReader(validRecipe))
		rec := httptest.NewRecorder()
		h.SubmitVideo(rec, req)
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var jobID string
		for id := range jobs.jobs {
			jobID = id
		}

		statusReq := httptest.NewRequest(http.MethodGet, "/api/v1/media/video/"+jobID, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", jobID)
		statusReq = statusReq.WithContext(context.WithValue(statusReq.Context(), chi.RouteCtxKey, rctx))
		statusRec := httptest.NewRecorder()
		h.VideoStatus(statusRec, statusReq)

		require.Equal(t, http.StatusOK, statusRec.Code)
		var got struct {
			Status media.JobStatus `json:"status"`
			Error  *failureBody    `json:"error"`
		}
		require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &got))
		assert.Equal(t, media.JobFailed, got.Status)
		require.NotNil(t, got.Error)
		assert.Equal(t, recipe.ProviderError, got.Error.Kind)
	})

	t.Run("unknown job is 404", func(t *testing.T) {
		h := NewMediaHandler(nil, nil, newFakeJobStore(), &fakeEnqueuer{})

		id := "2f0e8f0a-9f64-4f2b-9f6a-1de2ad8f2a10"
		req := httptest.NewRequest(http.MethodGet, "/api/v1/media/video/"+id, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		h.VideoStatus(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCredentialHandler(t *testing.T) {
	sessions := auth.NewSessions("test-secret", time.Hour)

	t.Run("verify with no configured provider is 412", func(t *testing.T) {
		gw := llm.NewGatewayWithProviders(nil, nil, nil)
		h := NewCredentialHandler(gw, sessions)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/credentials/verify", nil)
		rec := httptest.NewRecorder()
		h.Verify(rec, req)

		assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
		assert.Equal(t, recipe.CredentialNotReady, decodeError(t, rec).Kind)
	})

	t.Run("verify mints a session covering the ready capabilities", func(t *testing.T) {
		gw := llm.NewGatewayWithProviders(&fakeTextProvider{}, nil, &fakeMediaProvider{})
		h := NewCredentialHandler(gw, sessions)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/credentials/verify", nil)
		rec := httptest.NewRecorder()
		h.Verify(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var got struct {
			Token        string                 `json:"token"`
			Capabilities []llm.CapabilityStatus `json:"capabilities"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.NotEmpty(t, got.Token)
		require.Len(t, got.Capabilities, 3)
		assert.True(t, got.Capabilities[0].Ready)  // text
		assert.False(t, got.Capabilities[1].Ready) // vision
		assert.True(t, got.Capabilities[2].Ready)  // media

		// the minted token must pass its own gate
		gated := httptest.NewRequest(http.MethodPost, "/", nil)
		gated.Header.Set("Authorization", "Bearer "+got.Token)
		gatedRec := httptest.NewRecorder()
		sessions.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(gatedRec, gated)
		assert.Equal(t, http.StatusOK, gatedRec.Code)
	})

	t.Run("status lists every capability", func(t *testing.T) {
		gw := llm.NewGatewayWithProviders(&fakeTextProvider{}, &fakeVisionProvider{}, nil)
		h := NewCredentialHandler(gw, sessions)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/credentials", nil)
		rec := httptest.NewRecorder()
		h.Status(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got struct {
			Capabilities []llm.CapabilityStatus `json:"capabilities"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got.Capabilities, 3)
		assert.Equal(t, "fake-text", got.Capabilities[0].Provider)
		assert.Equal(t, "fake-vision", got.Capabilities[1].Provider)
		assert.Empty(t, got.Capabilities[2].Provider)
	})
}
