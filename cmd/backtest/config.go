package main

import (
	"os"

	"github.com/rxtech-lab/argo-catalyst/internal/regime"
	"github.com/rxtech-lab/argo-catalyst/internal/strategy"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
	"gopkg.in/yaml.v3"
)

// runConfig holds the strategy and regime sections of a run config file.
// The engine keys live at the top level of the same file and are parsed
// by the engine itself.
type runConfig struct {
	Strategy strategy.Config `yaml:"strategy"`
	Regime   regime.Config   `yaml:"regime"`
}

func defaultRunConfig() runConfig {
	return runConfig{
		Strategy: strategy.DefaultConfig(),
		Regime:   regime.DefaultConfig(),
	}
}

// loadRunConfig reads the config file at path (or nothing when path is
// empty), applies the latency override and returns the engine document
// together with the parsed strategy and regime sections.
func loadRunConfig(path string, latency string) (string, runConfig, error) {
	var content []byte

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", runConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
		}

		content = data
	}

	return parseRunConfig(content, latency)
}

func parseRunConfig(content []byte, latency string) (string, runConfig, error) {
	config := defaultRunConfig()

	if err := yaml.Unmarshal(content, &config); err != nil {
		return "", runConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Strategy.Validate(); err != nil {
		return "", runConfig{}, err
	}

	if err := config.Regime.Validate(); err != nil {
		return "", runConfig{}, err
	}

	if latency != "" {
		overridden, err := overrideLatency(content, latency)
		if err != nil {
			return "", runConfig{}, err
		}

		content = overridden
	}

	return string(content), config, nil
}

// overrideLatency sets the top level latency key of a YAML document,
// adding it when missing.
func overrideLatency(content []byte, latency string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "config must be a mapping")
	}

	found := false

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "latency" {
			root.Content[i+1].SetString(latency)

			found = true
		}
	}

	if !found {
		key := &yaml.Node{}
		key.SetString("latency")

		value := &yaml.Node{}
		value.SetString(latency)

		root.Content = append(root.Content, key, value)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode config", err)
	}

	return out, nil
}
