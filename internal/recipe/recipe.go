package recipe

import "strings"

// Recipe is the canonical structured output of extraction. The four
// required fields are always non-empty after a successful extraction;
// the optional fields may be absent and absence means "unknown".
type Recipe struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Servings     string   `json:"servings,omitempty"`
	PrepTime     string   `json:"prepTime,omitempty"`
	CookTime     string   `json:"cookTime,omitempty"`
}

// MissingFields reports which required fields are empty.
func (r *Recipe) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(r.Description) == "" {
		missing = append(missing, "description")
	}
	if len(r.Ingredients) == 0 {
		missing = append(missing, "ingredients")
	}
	if len(r.Instructions) == 0 {
		missing = append(missing, "instructions")
	}
	return missing
}

// GeneratedMedia holds derived artifacts for a specific Recipe snapshot.
type GeneratedMedia struct {
	ImageURL string `json:"imageUrl,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
}
