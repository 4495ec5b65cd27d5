package media

import (
	"context"
	"fmt"
	"time"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/config"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

// VideoGenerator drives the asynchronous video pipeline: submit once, then
// poll on a fixed interval until done, bounded by both a poll cap and a
// wall-clock deadline. Exceeding either bound is a Timeout failure, not an
// endless loop.
type VideoGenerator struct {
	gateway      *llm.Gateway
	crafter      *Crafter
	model        string
	pollInterval time.Duration
	maxPolls     int
	jobTimeout   time.Duration
}

func NewVideoGenerator(gw *llm.Gateway, crafter *Crafter, cfg config.MediaConfig) *VideoGenerator {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	maxPolls := cfg.MaxPolls
	if maxPolls <= 0 {
		maxPolls = 60
	}
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &VideoGenerator{
		gateway:      gw,
		crafter:      crafter,
		model:        cfg.VideoModel,
		pollInterval: interval,
		maxPolls:     maxPolls,
		jobTimeout:   timeout,
	}
}

// CraftPrompt produces the cinematic prompt, falling back deterministically.
func (g *VideoGenerator) CraftPrompt(ctx context.Context, r *recipe.Recipe) string {
	return g.crafter.Craft(ctx, r, TargetVideo)
}

// Submit starts the provider-side job and returns its operation reference.
func (g *VideoGenerator) Submit(ctx context.Context, prompt string) (string, error) {
	mp, err := g.gateway.Media()
	if err != nil {
		return "", recipe.WrapFailure(recipe.CredentialNotReady, "media capability is not configured", err)
	}

	ref, err := mp.SubmitVideo(ctx, g.model, prompt)
	if err != nil {
		return "", recipe.WrapFailure(recipe.ProviderError, "video submission failed", err)
	}
	return ref, nil
}

// Await polls the job to completion and returns the bare download URI.
// The access credential is deliberately not attached here; callers sign
// the link with SignURL at the moment it is actually served.
func (g *VideoGenerator) Await(ctx context.Context, ref string) (string, error) {
	mp, err := g.gateway.Media()
	if err != nil {
		return "", recipe.WrapFailure(recipe.CredentialNotReady, "media capability is not configured", err)
	}

	deadline := time.Now().Add(g.jobTimeout)

	for polls := 0; ; polls++ {
		if polls >= g.maxPolls {
			return "", recipe.NewFailure(recipe.Timeout,
				fmt.Sprintf("video job still running after %d status checks", g.maxPolls))
		}
		if time.Now().After(deadline) {
			return "", recipe.NewFailure(recipe.Timeout,
				fmt.Sprintf("video job still running after %s", g.jobTimeout))
		}

		op, err := mp.PollVideo(ctx, ref)
		if err != nil {
			return "", recipe.WrapFailure(recipe.ProviderError, "video status check failed", err)
		}
		if op.Done {
			return op.URI, nil
		}

		select {
		case <-ctx.Done():
			return "", recipe.WrapFailure(recipe.Timeout, "video polling canceled", ctx.Err())
		case <-time.After(g.pollInterval):
		}
	}
}

// SignURL attaches the provider credential to a download reference.
func (g *VideoGenerator) SignURL(uri string) string {
	mp, err := g.gateway.Media()
	if err != nil {
		return uri
	}
	return mp.SignURL(uri)
}
