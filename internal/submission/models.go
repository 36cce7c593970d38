package submission

import (
	"strings"

	"github.com/codalotl/benchrelay/internal/harness"
	"github.com/codalotl/benchrelay/internal/output"
)

// knownModels maps provider/model identifiers that have appeared in nightly
// runs to their leaderboard display metadata. Unknown models fall back to
// slug-derived defaults.
var knownModels = map[string]ModelMetadata{
	"anthropic/claude-sonnet-4-5": {
		Name:           "claude-sonnet-4-5",
		Provider:       "anthropic",
		DisplayName:    "Claude Sonnet 4.5",
		OrgDisplayName: "Anthropic",
	},
	"anthropic/claude-opus-4-5": {
		Name:           "claude-opus-4-5",
		Provider:       "anthropic",
		DisplayName:    "Claude Opus 4.5",
		OrgDisplayName: "Anthropic",
	},
	"openai/gpt-5.2": {
		Name:           "gpt-5.2",
		Provider:       "openai",
		DisplayName:    "GPT-5.2",
		OrgDisplayName: "OpenAI",
	},
	"openai/gpt-5-codex": {
		Name:           "gpt-5-codex",
		Provider:       "openai",
		DisplayName:    "GPT-5 Codex",
		OrgDisplayName: "OpenAI",
	},
}

// artifactModelPrefixes maps the slugged model prefix in an artifact name
// back to the provider/model identifier. Artifact names look like
// terminal-bench-results-anthropic-claude-opus-4-5-12345, so a plain split
// cannot separate model from run ID; known prefixes are matched instead.
var artifactModelPrefixes = []struct {
	prefix string
	model  string
}{
	{"anthropic-claude-sonnet-4-5", "anthropic/claude-sonnet-4-5"},
	{"anthropic-claude-opus-4-5", "anthropic/claude-opus-4-5"},
	{"openai-gpt-5.2", "openai/gpt-5.2"},
	{"openai-gpt-5-codex", "openai/gpt-5-codex"},
}

// ModelFromArtifactName extracts the provider/model identifier from an
// artifact directory name, or "" when it matches no known model.
func ModelFromArtifactName(name string) string {
	if !strings.HasPrefix(name, harness.ArtifactPrefix) {
		return ""
	}
	remainder := strings.TrimPrefix(name, harness.ArtifactPrefix)
	for _, entry := range artifactModelPrefixes {
		if strings.HasPrefix(remainder, entry.prefix) {
			return entry.model
		}
	}
	return ""
}

// Slug converts a provider/model identifier to its directory-safe form.
func Slug(model string) string {
	return strings.ReplaceAll(model, "/", "-")
}

func metadataForModel(model string, printer *output.Printer) ModelMetadata {
	if meta, ok := knownModels[model]; ok {
		return meta
	}
	if printer != nil {
		printer.Warnf("unknown model %s, using defaults", model)
	}
	name := model
	provider := ""
	if idx := strings.Index(model, "/"); idx >= 0 {
		provider = model[:idx]
		name = model[idx+1:]
	}
	return ModelMetadata{
		Name:           name,
		Provider:       provider,
		DisplayName:    name,
		OrgDisplayName: titleCase(provider),
	}
}

func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
