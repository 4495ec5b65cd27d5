package queue

import "github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"

const (
	TypeVideoGenerate = "media:video:generate"
)

// VideoGeneratePayload carries the recipe snapshot the video is derived
// from. The snapshot travels in the task so the worker never depends on
// any recipe store existing.
type VideoGeneratePayload struct {
	JobID  string         `json:"job_id"`
	Recipe *recipe.Recipe `json:"recipe"`
}
