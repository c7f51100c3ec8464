// Package prompts ships the built-in answer prompt versions and seeds
// them into the registry on startup. Seeding never overwrites: a version
// already present in the store stays exactly as published.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/core/ports"
)

//go:embed templates.yaml
var templatesYAML []byte

type seedFile struct {
	Templates []struct {
		Version           string   `yaml:"version"`
		RequiredVariables []string `yaml:"required_variables"`
		Text              string   `yaml:"text"`
	} `yaml:"templates"`
}

func builtin() ([]domain.PromptTemplate, error) {
	var file seedFile
	if err := yaml.Unmarshal(templatesYAML, &file); err != nil {
		return nil, fmt.Errorf("parse builtin templates: %w", err)
	}

	templates := make([]domain.PromptTemplate, 0, len(file.Templates))
	for _, t := range file.Templates {
		if t.Version == "" || t.Text == "" {
			return nil, fmt.Errorf("builtin template missing version or text")
		}
		templates = append(templates, domain.PromptTemplate{
			Version:           t.Version,
			Text:              t.Text,
			RequiredVariables: t.RequiredVariables,
		})
	}
	return templates, nil
}

// Seed publishes every builtin version that is not yet in the store.
func Seed(ctx context.Context, store ports.PromptStore, logger *slog.Logger) error {
	templates, err := builtin()
	if err != nil {
		return err
	}

	for _, tpl := range templates {
		if _, err := store.Get(ctx, tpl.Version); err == nil {
			continue
		} else if !domain.IsKind(err, domain.ErrUnknownPromptVersion) {
			return fmt.Errorf("check prompt version %s: %w", tpl.Version, err)
		}

		if err := store.Publish(ctx, tpl); err != nil {
			// Another instance may have published it between Get and Publish.
			if domain.IsKind(err, domain.ErrInvalidInput) {
				continue
			}
			return fmt.Errorf("seed prompt version %s: %w", tpl.Version, err)
		}
		logger.Info("prompt_version_seeded", "version", tpl.Version)
	}
	return nil
}
