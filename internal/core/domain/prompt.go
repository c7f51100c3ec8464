package domain

import (
	"strings"
	"time"
)

// PromptTemplate is a published, immutable prompt version. Edits create a
// new version; answers record which version produced them.
type PromptTemplate struct {
	Version           string    `json:"version"`
	Text              string    `json:"text"`
	RequiredVariables []string  `json:"required_variables"`
	CreatedAt         time.Time `json:"created_at"`
}

// Fill substitutes {{name}} placeholders. Missing required variables are
// returned so the caller can fail before touching the generation service.
func (t PromptTemplate) Fill(vars map[string]string) (string, []string) {
	var missing []string
	for _, name := range t.RequiredVariables {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", missing
	}

	out := t.Text
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out, nil
}
