package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/config"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

func sampleRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		Title:        "Miso Ramen",
		Description:  "Rich miso broth with springy noodles.",
		Ingredients:  []string{"miso paste", "ramen noodles", "scallions", "egg", "nori", "corn", "butter"},
		Instructions: []string{"Make the broth.", "Cook the noodles.", "Assemble."},
	}
}

type fakeTextProvider struct {
	calls    int
	lastUser string
	reply    string
	err      error
}

func (f *fakeTextProvider) Name() string { return "fake-text" }

func (f *fakeTextProvider) Complete(_ context.Context, req llm.TextRequest) (*llm.TextResponse, error) {
	f.calls++
	for _, m := range req.Messages {
		if m.Role == "user" {
			f.lastUser = m.Content
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.TextResponse{Provider: f.Name(), Content: f.reply}, nil
}

type fakeMediaProvider struct {
	imageURL    string
	imageErr    error
	lastModel   string
	lastPrompt  string
	submitRef   string
	submitErr   error
	pollResults []llm.VideoOperation
	pollErr     error
	polls       int
	signed      []string
}

func (f *fakeMediaProvider) Name() string { return "fake-media" }

func (f *fakeMediaProvider) GenerateImage(_ context.Context, model, prompt string) (*llm.ImageResult, error) {
	f.lastModel = model
	f.lastPrompt = prompt
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return &llm.ImageResult{Provider: f.Name(), URL: f.imageURL}, nil
}

func (f *fakeMediaProvider) SubmitVideo(_ context.Context, model, prompt string) (string, error) {
	f.lastModel = model
	f.lastPrompt = prompt
	return f.submitRef, f.submitErr
}

func (f *fakeMediaProvider) PollVideo(_ context.Context, _ string) (*llm.VideoOperation, error) {
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	i := f.polls
	f.polls++
	if i >= len(f.pollResults) {
		i = len(f.pollResults) - 1
	}
	op := f.pollResults[i]
	return &op, nil
}

func (f *fakeMediaProvider) SignURL(uri string) string {
	f.signed = append(f.signed, uri)
	return uri + "?key=secret"
}

func newVideoGen(mp llm.MediaProvider, tp llm.TextProvider, maxPolls int) *VideoGenerator {
	gw := llm.NewGatewayWithProviders(tp, nil, mp)
	return &VideoGenerator{
		gateway:      gw,
		crafter:      NewCrafter(gw, ""),
		pollInterval: time.Millisecond,
		maxPolls:     maxPolls,
		jobTimeout:   time.Minute,
	}
}

func TestCrafter(t *testing.T) {
	t.Run("crafts from the recipe with at most five ingredients", func(t *testing.T) {
		tp := &fakeTextProvider{reply: "Overhead shot of steaming miso ramen, warm side light."}
		gw := llm.NewGatewayWithProviders(tp, nil, nil)

		prompt := NewCrafter(gw, "").Craft(context.Background(), sampleRecipe(), TargetImage)

		assert.Equal(t, "Overhead shot of steaming miso ramen, warm side light.", prompt)
		assert.Contains(t, tp.lastUser, "Miso Ramen")
		assert.Contains(t, tp.lastUser, "nori")
		assert.NotContains(t, tp.lastUser, "corn", "ingredient list is capped at five")
	})

	t.Run("falls back when the text provider fails", func(t *testing.T) {
		tp := &fakeTextProvider{err: errors.New("rate limited")}
		gw := llm.NewGatewayWithProviders(tp, nil, nil)

		prompt := NewCrafter(gw, "").Craft(context.Background(), sampleRecipe(), TargetVideo)
		assert.Equal(t, "Professional video of Miso Ramen", prompt)
	})

	t.Run("falls back when no text provider is configured", func(t *testing.T) {
		gw := llm.NewGatewayWithProviders(nil, nil, nil)

		prompt := NewCrafter(gw, "").Craft(context.Background(), sampleRecipe(), TargetImage)
		assert.Equal(t, "Professional image of Miso Ramen", prompt)
	})

	t.Run("falls back on an empty reply", func(t *testing.T) {
		tp := &fakeTextProvider{reply: "   "}
		gw := llm.NewGatewayWithProviders(tp, nil, nil)

		prompt := NewCrafter(gw, "").Craft(context.Background(), sampleRecipe(), TargetImage)
		assert.Equal(t, "Professional image of Miso Ramen", prompt)
	})
}

func TestImageGenerator(t *testing.T) {
	t.Run("generates with the crafted prompt", func(t *testing.T) {
		mp := &fakeMediaProvider{imageURL: "https://img.example/ramen.png"}
		tp := &fakeTextProvider{reply: "Steaming ramen macro shot."}
		gw := llm.NewGatewayWithProviders(tp, nil, mp)

		result, err := NewImageGenerator(gw, NewCrafter(gw, ""), "").Generate(context.Background(), sampleRecipe())
		require.NoError(t, err)

		assert.Equal(t, "https://img.example/ramen.png", result.URL)
		assert.Equal(t, "Steaming ramen macro shot.", result.Prompt)
		assert.Equal(t, "Steaming ramen macro shot.", mp.lastPrompt)
	})

	t.Run("proceeds with the fallback prompt when crafting fails", func(t *testing.T) {
		mp := &fakeMediaProvider{imageURL: "https://img.example/ramen.png"}
		tp := &fakeTextProvider{err: errors.New("boom")}
		gw := llm.NewGatewayWithProviders(tp, nil, mp)

		result, err := NewImageGenerator(gw, NewCrafter(gw, ""), "").Generate(context.Background(), sampleRecipe())
		require.NoError(t, err)
		assert.Equal(t, "Professional image of Miso Ramen", result.Prompt)
	})

	t.Run("passes the configured model through to the provider", func(t *testing.T) {
		mp := &fakeMediaProvider{imageURL: "https://img.example/ramen.png"}
		tp := &fakeTextProvider{reply: "p"}
		gw := llm.NewGatewayWithProviders(tp, nil, mp)

		_, err := NewImageGenerator(gw, NewCrafter(gw, ""), "imagen-custom").Generate(context.Background(), sampleRecipe())
		require.NoError(t, err)
		assert.Equal(t, "imagen-custom", mp.lastModel)
	})

	t.Run("missing media credential is not ready", func(t *testing.T) {
		gw := llm.NewGatewayWithProviders(&fakeTextProvider{}, nil, nil)

		_, err := NewImageGenerator(gw, NewCrafter(gw, ""), "").Generate(context.Background(), sampleRecipe())
		require.Error(t, err)
		assert.Equal(t, recipe.CredentialNotReady, recipe.AsFailure(err).Kind)
	})

	t.Run("generation failure is a provider error", func(t *testing.T) {
		mp := &fakeMediaProvider{imageErr: errors.New("quota exceeded")}
		gw := llm.NewGatewayWithProviders(&fakeTextProvider{reply: "p"}, nil, mp)

		_, err := NewImageGenerator(gw, NewCrafter(gw, ""), "").Generate(context.Background(), sampleRecipe())
		require.Error(t, err)
		assert.Equal(t, recipe.ProviderError, recipe.AsFailure(err).Kind)
	})
}

func TestVideoGeneratorAwait(t *testing.T) {
	t.Run("returns the bare URI after exactly n+1 status checks", func(t *testing.T) {
		mp := &fakeMediaProvider{pollResults: []llm.VideoOperation{
			{Ref: "op-1"},
			{Ref: "op-1"},
			{Ref: "op-1"},
			{Ref: "op-1", Done: true, URI: "https://videos.example/ramen.mp4"},
		}}
		gen := newVideoGen(mp, nil, 60)

		uri, err := gen.Await(context.Background(), "op-1")
		require.NoError(t, err)

		assert.Equal(t, "https://videos.example/ramen.mp4", uri)
		assert.NotContains(t, uri, "key=", "stored URI never carries a credential")
		assert.Equal(t, 4, mp.polls)
	})

	t.Run("times out after the poll cap", func(t *testing.T) {
		mp := &fakeMediaProvider{pollResults: []llm.VideoOperation{{Ref: "op-1"}}}
		gen := newVideoGen(mp, nil, 3)

		_, err := gen.Await(context.Background(), "op-1")
		require.Error(t, err)

		assert.Equal(t, recipe.Timeout, recipe.AsFailure(err).Kind)
		assert.Equal(t, 3, mp.polls)
	})

	t.Run("poll failure is a provider error", func(t *testing.T) {
		mp := &fakeMediaProvider{pollErr: errors.New("operation lookup failed")}
		gen := newVideoGen(mp, nil, 60)

		_, err := gen.Await(context.Background(), "op-1")
		require.Error(t, err)
		assert.Equal(t, recipe.ProviderError, recipe.AsFailure(err).Kind)
	})

	t.Run("context cancellation surfaces as timeout", func(t *testing.T) {
		mp := &fakeMediaProvider{pollResults: []llm.VideoOperation{{Ref: "op-1"}}}
		gen := newVideoGen(mp, nil, 60)
		gen.pollInterval = time.Second

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := gen.Await(ctx, "op-1")
		require.Error(t, err)
		assert.Equal(t, recipe.Timeout, recipe.AsFailure(err).Kind)
	})
}

func TestVideoGeneratorSubmitAndSign(t *testing.T) {
	t.Run("submit returns the operation reference", func(t *testing.T) {
		mp := &fakeMediaProvider{submitRef: "operations/abc123"}
		gen := newVideoGen(mp, &fakeTextProvider{reply: "Cinematic ramen pour."}, 60)

		prompt := gen.CraftPrompt(context.Background(), sampleRecipe())
		assert.Equal(t, "Cinematic ramen pour.", prompt)

		ref, err := gen.Submit(context.Background(), prompt)
		require.NoError(t, err)
		assert.Equal(t, "operations/abc123", ref)
		assert.Equal(t, "Cinematic ramen pour.", mp.lastPrompt)
	})

	t.Run("submit passes the configured model through to the provider", func(t *testing.T) {
		mp := &fakeMediaProvider{submitRef: "operations/abc123"}
		gw := llm.NewGatewayWithProviders(nil, nil, mp)
		gen := NewVideoGenerator(gw, NewCrafter(gw, ""), config.MediaConfig{VideoModel: "veo-custom"})

		_, err := gen.Submit(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, "veo-custom", mp.lastModel)
	})

	t.Run("submit without a media credential is not ready", func(t *testing.T) {
		gen := newVideoGen(nil, nil, 60)

		_, err := gen.Submit(context.Background(), "p")
		require.Error(t, err)
		assert.Equal(t, recipe.CredentialNotReady, recipe.AsFailure(err).Kind)
	})

	t.Run("signing attaches the credential only at serve time", func(t *testing.T) {
		mp := &fakeMediaProvider{}
		gen := newVideoGen(mp, nil, 60)

		signed := gen.SignURL("https://videos.example/ramen.mp4")
		assert.True(t, strings.HasSuffix(signed, "?key=secret"))
		assert.Equal(t, []string{"https://videos.example/ramen.mp4"}, mp.signed)
	})
}
