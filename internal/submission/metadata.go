package submission

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// AgentMetadata identifies the submitting agent in metadata.yaml.
type AgentMetadata struct {
	URL            string `yaml:"agent_url"`
	DisplayName    string `yaml:"agent_display_name"`
	OrgDisplayName string `yaml:"agent_org_display_name"`
}

// ModelMetadata is one model descriptor block in metadata.yaml.
type ModelMetadata struct {
	Name           string `yaml:"model_name"`
	Provider       string `yaml:"model_provider"`
	DisplayName    string `yaml:"model_display_name"`
	OrgDisplayName string `yaml:"model_org_display_name"`
}

// Metadata is the full metadata.yaml document.
type Metadata struct {
	AgentMetadata `yaml:",inline"`
	Models        []ModelMetadata `yaml:"models"`
}

// DefaultAgent is the submitting agent identity unless overridden by flags.
var DefaultAgent = AgentMetadata{
	URL:            "https://github.com/coder/mux",
	DisplayName:    "mux",
	OrgDisplayName: "Coder",
}

// writeMetadataIfAbsent writes metadata.yaml for the given model. The first
// writer wins: an existing file may have been hand-edited and is never
// clobbered.
func writeMetadataIfAbsent(path string, agent AgentMetadata, model ModelMetadata) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	doc := Metadata{
		AgentMetadata: agent,
		Models:        []ModelMetadata{model},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
